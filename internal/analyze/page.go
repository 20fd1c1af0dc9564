package analyze

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/webinventory/internal/model"
)

// titleSuffixRe matches the "- Brand" / "| Brand" tail CMS themes append
// to every page title. The leading segment is the stable name.
var titleSuffixRe = regexp.MustCompile(`\s*[-|–]\s*.*$`)

// Slug sanitation patterns.
var (
	// slugExtRe strips markup file extensions from the slug segment.
	slugExtRe = regexp.MustCompile(`(?i)\.(php|html|htm)$`)

	// slugJunkRe collapses anything outside [a-z0-9-] after lowercasing.
	slugJunkRe = regexp.MustCompile(`[^a-z0-9-]+`)

	// slugDashRe collapses the hyphen runs slugJunkRe leaves behind.
	slugDashRe = regexp.MustCompile(`-+`)
)

// BuildPage assembles the inventory record for one page from its
// chrome-detached document: metadata, classified components, and
// categorized links.
func BuildPage(doc *goquery.Document, pageURL *url.URL) *model.Page {
	page := model.NewPage(NormalizeURL(pageURL))
	page.Slug = Slug(pageURL)
	page.Title = Title(doc)
	page.Path = PathOf(pageURL)
	page.Components = Classify(MainRegion(doc))
	page.Links = Links(doc, pageURL)
	return page
}

// Title returns the page's <title> text, whitespace-normalized.
func Title(doc *goquery.Document) string {
	return Text(doc.Find("title").First())
}

// SiteName returns the document title with any trailing branding suffix
// removed: "Welcome - Acme Corp" and "Welcome | Acme Corp" both yield
// "Welcome".
func SiteName(doc *goquery.Document) string {
	return strings.TrimSpace(titleSuffixRe.ReplaceAllString(Title(doc), ""))
}

// MetaDescription returns the content of the standard description meta
// tag, or "" when the page has none.
func MetaDescription(doc *goquery.Document) string {
	desc, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	return strings.TrimSpace(desc)
}

// Slug derives a stable page identifier from the URL path: the last path
// segment with markup extensions stripped, lowercased, non-alphanumeric
// runs collapsed to single hyphens. The root path yields "home".
func Slug(u *url.URL) string {
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return "home"
	}

	p = slugExtRe.ReplaceAllString(p, "")
	segments := strings.Split(p, "/")
	slug := strings.ToLower(segments[len(segments)-1])
	slug = slugJunkRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slugDashRe.ReplaceAllString(slug, "-"), "-")
	if slug == "" {
		return "home"
	}
	return slug
}

// PathOf returns the URL path portion, "/" for the site root.
func PathOf(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return u.Path
}
