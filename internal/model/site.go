package model

import "time"

// Chrome extraction caps.
const (
	// MaxNavLinks caps the navigation labels extracted from the header.
	MaxNavLinks = 10

	// MaxFooterLinks caps the link list extracted from the footer.
	MaxFooterLinks = 10
)

// Site is the root inventory aggregate. It is built incrementally during a
// crawl and serialized once, wrapped in a {"website": ...} envelope by the
// report writer.
//
// Design decision: We use a single aggregate with slices rather than a
// map keyed by URL because:
//  1. The output contract is an ordered page sequence (discovery order)
//  2. Serialization needs no post-processing or sorting
//  3. Pages are append-only during the crawl, which a slice models exactly
type Site struct {
	// Name is the site name from the entry page title, with any
	// "- suffix" or "| suffix" branding removed.
	Name string `json:"name"`

	// URL is the entry URL the crawl was started from.
	URL string `json:"url"`

	// Description is the entry page's meta description, if any.
	Description string `json:"description,omitempty"`

	// Chrome holds the site-global header and footer, extracted at most
	// once per crawl.
	Chrome Chrome `json:"global_components"`

	// Pages are the deduplicated page records in discovery order.
	Pages []*Page `json:"pages"`

	// CrawledAt is when the crawl started. Stored in the run history
	// database, not part of the inventory document.
	CrawledAt time.Time `json:"-"`
}

// NewSite creates an empty site result for the given entry URL.
func NewSite(url string) *Site {
	return &Site{
		URL:       url,
		Pages:     make([]*Page, 0),
		CrawledAt: time.Now(),
	}
}

// AddPage appends a page record. Pages are append-only; the crawler owns
// ordering and deduplication.
func (s *Site) AddPage(p *Page) {
	s.Pages = append(s.Pages, p)
}

// Chrome groups the site-global header and footer structures. Both are
// optional; a site with unrecognizable chrome simply has neither.
type Chrome struct {
	Header *Header `json:"header,omitempty"`
	Footer *Footer `json:"footer,omitempty"`
}

// IsEmpty reports whether no chrome was extracted at all. The crawler uses
// this to decide whether to retry extraction on a later page.
func (c Chrome) IsEmpty() bool {
	return (c.Header == nil || c.Header.IsEmpty()) &&
		(c.Footer == nil || c.Footer.IsEmpty())
}

// Header is the site-global header region.
type Header struct {
	// Logo is the branding text: the header image alt text, or the text
	// of a branding element when the site has no image logo.
	Logo string `json:"logo,omitempty"`

	// Navigation holds the header's link labels in document order,
	// filtered of boilerplate and capped at MaxNavLinks.
	Navigation []string `json:"navigation,omitempty"`

	// Contact holds email/phone details found inside the header.
	Contact *Contact `json:"contact,omitempty"`
}

// IsEmpty reports whether the header carries no extracted data.
func (h *Header) IsEmpty() bool {
	return h == nil || (h.Logo == "" && len(h.Navigation) == 0 && h.Contact == nil)
}

// Contact is an email/phone pair found in a chrome region.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Footer is the site-global footer region.
type Footer struct {
	// Address is free-text postal address content, when an address-like
	// element exists in the footer.
	Address string `json:"address,omitempty"`

	// Email and Phone are contact details scoped to the footer.
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	// FooterLinks are the footer's internal links with short labels,
	// capped at MaxFooterLinks.
	FooterLinks []FooterLink `json:"footer_links,omitempty"`

	// SocialLinks are recognized social platform names, title-cased and
	// deduplicated by platform.
	SocialLinks []string `json:"social_links,omitempty"`
}

// IsEmpty reports whether the footer carries no extracted data.
func (f *Footer) IsEmpty() bool {
	return f == nil || (f.Address == "" && f.Email == "" && f.Phone == "" &&
		len(f.FooterLinks) == 0 && len(f.SocialLinks) == 0)
}

// FooterLink is one labeled footer link.
type FooterLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}
