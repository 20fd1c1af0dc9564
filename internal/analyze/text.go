package analyze

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseDocument parses a fetched body into a goquery document with
// non-content nodes already stripped, so every later Text call sees only
// what a reader would. Bodies with no element content at all yield
// ErrNoContent.
func ParseDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	doc.Find("script, style, noscript, template").Remove()

	if doc.Find("body").Children().Length() == 0 {
		return nil, ErrNoContent
	}
	return doc, nil
}

// Text returns the selection's visible text with whitespace runs collapsed
// to single spaces and surrounding whitespace trimmed.
func Text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// MainRegion returns the page's main content area: the semantic <main>
// element, else a content-ish container, else the whole body. Chrome
// regions should be detached before calling this so a body fallback does
// not drag navigation into content analysis.
func MainRegion(doc *goquery.Document) *goquery.Selection {
	if main := doc.Find("main").First(); main.Length() > 0 {
		return main
	}

	for _, sel := range []string{"#content", "#main", "div.content", "div.main"} {
		if region := doc.Find(sel).First(); region.Length() > 0 {
			return region
		}
	}

	return doc.Find("body")
}
