package model

// Component types, in classification priority order. A content block is
// tried against each pattern in this order and the first match wins, so a
// block is never double-classified.
const (
	// ComponentForm is a block containing labeled input controls.
	ComponentForm = "form"

	// ComponentTable is a tabular structure with a header row or at
	// least two data rows.
	ComponentTable = "table"

	// ComponentHeroBanner is a prominent heading block whose class naming
	// follows hero/banner conventions.
	ComponentHeroBanner = "hero_banner"

	// ComponentMediaGallery is a block with two or more images. A single
	// stray image is not a gallery.
	ComponentMediaGallery = "media_gallery"

	// ComponentList is an ordered or unordered list outside navigation
	// chrome with at least two items.
	ComponentList = "list"

	// ComponentRichText is a heading followed by substantial prose.
	ComponentRichText = "rich_text"

	// ComponentTextBlock is the fallback for any block with non-trivial
	// visible text that matched none of the above.
	ComponentTextBlock = "text_block"
)

// Classification thresholds and output caps.
// These bound the output size regardless of page size and keep truncation
// deterministic and testable.
const (
	// MinBlockTextLen is the minimum visible text length for a block to be
	// considered at all. Shorter blocks are layout noise.
	MinBlockTextLen = 20

	// HeroSubtitleMinLen and HeroSubtitleMaxLen bound the paragraph picked
	// as a hero banner subtitle. Very short paragraphs are labels, very
	// long ones are body copy rather than a tagline.
	HeroSubtitleMinLen = 20
	HeroSubtitleMaxLen = 200

	// RichTextMinLen is the minimum prose length under a heading for the
	// block to count as rich text rather than a plain text block.
	RichTextMinLen = 100

	// PreviewMaxLen caps the rich_text content preview.
	PreviewMaxLen = 300

	// TextBlockMinLen is the minimum visible text for a fallback text
	// block. TextBlockMaxLen caps its stored content.
	TextBlockMinLen = 50
	TextBlockMaxLen = 400

	// MainFallbackMaxLen caps the whole-page text block emitted when no
	// individual block classified.
	MainFallbackMaxLen = 600

	// MaxFieldLabelLen drops absurdly long form field labels, which are
	// usually concatenated markup rather than a real label.
	MaxFieldLabelLen = 50

	// TableSampleRows caps how many data rows a table component samples.
	TableSampleRows = 5

	// MaxGalleryImages caps the images recorded for one gallery.
	MaxGalleryImages = 5

	// MaxListItems caps list items; MaxListItemLen drops run-on items.
	MaxListItems   = 10
	MaxListItemLen = 200
)

// Component is one classified content block of a page.
//
// Design decision: We use a single struct with a type tag and per-variant
// fields rather than an interface with one type per variant because:
//  1. The JSON shape is a tagged union; one struct with omitempty fields
//     serializes to exactly that without custom marshalers
//  2. Report writers and the database can handle components generically
//  3. Adding a variant is a constant plus fields, not a new type plumbed
//     through every consumer
//
// Only the fields belonging to the variant named by Type are set; all
// others stay at their zero value and are omitted from JSON.
type Component struct {
	// Type is one of the Component* constants.
	Type string `json:"type"`

	// Title and Subtitle belong to hero_banner.
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`

	// Fields belongs to form: field labels in document order, deduplicated.
	Fields []string `json:"fields,omitempty"`

	// Columns and SampleData belong to table. SampleData holds at most
	// TableSampleRows rows.
	Columns    []string   `json:"columns,omitempty"`
	SampleData [][]string `json:"sample_data,omitempty"`

	// Items belongs to list.
	Items []string `json:"items,omitempty"`

	// Images belongs to media_gallery.
	Images []GalleryImage `json:"images,omitempty"`

	// Heading and ContentPreview belong to rich_text. ContentPreview is
	// capped at PreviewMaxLen with an ellipsis marker on truncation.
	Heading        string `json:"heading,omitempty"`
	ContentPreview string `json:"content_preview,omitempty"`

	// Content belongs to text_block, capped at TextBlockMaxLen.
	Content string `json:"content,omitempty"`
}

// GalleryImage is one image of a media_gallery component.
type GalleryImage struct {
	// Alt is the image alt text, "Image" when the markup has none.
	Alt string `json:"alt"`

	// Src is the image source as written in the markup.
	Src string `json:"src"`
}

// Truncate shortens s to at most limit characters, appending an ellipsis
// marker when the text was actually cut. Text at or under the limit is
// returned unchanged, so short content never grows a marker.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
