package model

// Link set caps. Link sets are deduplicated and bounded so that a single
// link-farm page cannot blow up the inventory.
const (
	// MaxInternalLinks caps the internal link set per page.
	MaxInternalLinks = 20

	// MaxExternalLinks caps the external link set per page.
	MaxExternalLinks = 10
)

// Page represents one crawled page of the inventory.
//
// Design decision: We keep crawl-internal fields (URL, ContentHash) on the
// same struct but exclude them from JSON because:
//  1. The crawler, deduplicator, and database all key on them
//  2. The serialized shape stays exactly the inventory document
//  3. A parallel internal struct would have to be kept in sync by hand
type Page struct {
	// Slug is a stable identifier derived from the URL path. It is the
	// last path segment with markup extensions stripped, lowercased, and
	// with non-alphanumeric runs collapsed to single hyphens. The root
	// path yields "home".
	Slug string `json:"page_slug"`

	// Title is the page title from the <title> tag.
	Title string `json:"page_title"`

	// Path is the URL path portion, "/" for the site root.
	Path string `json:"path"`

	// Components are the classified content blocks in document order.
	Components []Component `json:"components"`

	// Links are the categorized navigational links found on the page.
	Links PageLinks `json:"links"`

	// URL is the full normalized URL the page was fetched from.
	URL string `json:"-"` // crawl bookkeeping, not part of the inventory

	// ContentHash is the digest of the page's normalized visible text.
	// It exists only for duplicate detection and change tracking.
	ContentHash string `json:"-"`
}

// PageLinks partitions a page's navigational links by host.
// Both sets are deduplicated; ordering carries no meaning.
type PageLinks struct {
	// Internal holds same-host links, capped at MaxInternalLinks.
	Internal []string `json:"internal"`

	// External holds absolute links to other hosts, capped at
	// MaxExternalLinks.
	External []string `json:"external"`
}

// NewPage creates a page record with initialized collections so the JSON
// output always carries components/links keys, never null.
func NewPage(url string) *Page {
	return &Page{
		URL:        url,
		Components: make([]Component, 0),
		Links: PageLinks{
			Internal: make([]string, 0),
			External: make([]string, 0),
		},
	}
}

// AddComponent appends a classified component, preserving document order.
func (p *Page) AddComponent(c Component) {
	p.Components = append(p.Components, c)
}
