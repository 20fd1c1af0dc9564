package analyze

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/webinventory/internal/model"
)

// mediaExtRe matches link targets that download assets rather than pages.
var mediaExtRe = regexp.MustCompile(`(?i)\.(pdf|jpg|jpeg|png|gif|zip|doc|docx)$`)

// pseudoSchemes are anchor targets that never navigate anywhere. The
// contact schemes among them feed chrome contact extraction instead.
var pseudoSchemes = []string{"javascript:", "mailto:", "tel:"}

// Links partitions the document's anchors into internal and external link
// sets relative to the page URL. Chrome must be detached first so that
// site-wide navigation does not reappear on every page.
//
// Internal links are normalized, which lets them double as crawl frontier
// input; external links keep their absolute form. Both sets are
// deduplicated and capped. Fragment-only targets, script and contact
// pseudo-links, consent links, and media downloads are excluded from both.
func Links(doc *goquery.Document, pageURL *url.URL) model.PageLinks {
	links := model.PageLinks{
		Internal: make([]string, 0),
		External: make([]string, 0),
	}
	seenInternal := make(map[string]bool)
	seenExternal := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if skipHref(href) {
			return
		}

		target, err := pageURL.Parse(href)
		if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
			return
		}
		if IsMediaURL(target) {
			return
		}

		if SameHost(target.Host, pageURL.Host) {
			clean := NormalizeURL(target)
			if !seenInternal[clean] && len(links.Internal) < model.MaxInternalLinks {
				seenInternal[clean] = true
				links.Internal = append(links.Internal, clean)
			}
			return
		}

		absolute := target.String()
		if !seenExternal[absolute] && len(links.External) < model.MaxExternalLinks {
			seenExternal[absolute] = true
			links.External = append(links.External, absolute)
		}
	})

	return links
}

// DiscoverLinks returns every same-host page link in the document,
// normalized and deduplicated, in document order. Unlike Links it is
// uncapped and meant to run before chrome detachment: the crawl frontier
// must see navigation links, and the page-record caps are a reporting
// shape, not a crawl bound.
func DiscoverLinks(doc *goquery.Document, pageURL *url.URL) []string {
	found := make([]string, 0)
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if skipHref(href) {
			return
		}

		target, err := pageURL.Parse(href)
		if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
			return
		}
		if IsMediaURL(target) || !SameHost(target.Host, pageURL.Host) {
			return
		}

		clean := NormalizeURL(target)
		if !seen[clean] {
			seen[clean] = true
			found = append(found, clean)
		}
	})

	return found
}

// skipHref reports whether a raw anchor target is a non-navigational
// pseudo-link.
func skipHref(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return true
	}

	lower := strings.ToLower(href)
	for _, scheme := range pseudoSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return strings.Contains(lower, "cookie")
}

// IsMediaURL reports whether the URL path points at a downloadable asset
// rather than a page.
func IsMediaURL(u *url.URL) bool {
	return mediaExtRe.MatchString(u.Path)
}

// SameHost reports whether two hosts name the same site, ignoring case
// and a leading www. Ports are significant: two servers on one machine
// are two sites.
func SameHost(a, b string) bool {
	return canonicalHost(a) == canonicalHost(b)
}

func canonicalHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// NormalizeURL canonicalizes a URL for identity comparisons: fragment and
// query dropped, trailing slash trimmed except on the root, scheme and
// host lowercased. Pages differing only in those parts are one page.
func NormalizeURL(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	c.RawQuery = ""
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)

	if c.Path != "/" {
		c.Path = strings.TrimSuffix(c.Path, "/")
	}
	if c.Path == "" {
		c.Path = "/"
	}
	return c.String()
}
