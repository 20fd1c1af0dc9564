package analyze

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/webinventory/internal/model"
)

// Class patterns for locating chrome when semantic landmarks are missing.
var (
	headerClassRe   = regexp.MustCompile(`(?i)header|navbar|navigation|menu`)
	brandingClassRe = regexp.MustCompile(`(?i)logo|brand`)
	addressClassRe  = regexp.MustCompile(`(?i)address`)
)

// Contact patterns. The footer shape admits longer numbers than the
// header one: footers tend to carry full international numbers while
// headers show short local ones.
var (
	emailRe       = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	headerPhoneRe = regexp.MustCompile(`\+?\d[\d\s\-()]{7,15}`)
	footerPhoneRe = regexp.MustCompile(`\+?\d[\d\s\-/()]{10,20}`)
)

// Navigation label bounds. Shorter labels are icons or glyphs, longer
// ones are running text that happens to be wrapped in an anchor.
const (
	minNavLabelLen = 3
	maxNavLabelLen = 50
)

// maxFooterLabelLen drops footer anchors whose text is a sentence rather
// than a link label.
const maxFooterLabelLen = 30

// Navigation filter hints.
var (
	// socialHrefHints exclude social profile links from navigation; they
	// are reported as footer social links instead.
	socialHrefHints = []string{"twitter", "facebook", "linkedin", "youtube", "instagram"}

	// consentTextHints exclude cookie-banner buttons masquerading as links.
	consentTextHints = []string{"cookie", "consent", "refuse"}
)

// platformTitler renders platform names for output ("twitter" → "Twitter").
var platformTitler = cases.Title(language.English)

// ChromeRegions holds the chrome selections detached from one document.
type ChromeRegions struct {
	// Header is the semantic <header>, else the first nav or div whose
	// class follows header naming conventions. Nil when the page has
	// neither.
	Header *goquery.Selection

	// Footer is the semantic <footer>. Footers are only trusted as
	// semantic elements; class-matched lookalikes produce too many false
	// positives. Nil when the page has none.
	Footer *goquery.Selection
}

// DetachChrome removes the site-chrome regions from the document and
// returns them. Classification and link collection then run on the
// remaining document, so site-wide navigation never pollutes per-page
// content; the returned regions stay queryable for chrome extraction.
func DetachChrome(doc *goquery.Document) ChromeRegions {
	var regions ChromeRegions

	if header := doc.Find("header").First(); header.Length() > 0 {
		regions.Header = header.Remove()
	} else if header := firstClassMatch(doc.Selection, "nav, div", headerClassRe); header != nil {
		regions.Header = header.Remove()
	}

	if footer := doc.Find("footer").First(); footer.Length() > 0 {
		regions.Footer = footer.Remove()
	}

	// Sweep secondary landmarks (sub-navs, article headers) out of the
	// content tree.
	doc.Find("header, footer, nav").Remove()

	return regions
}

// ExtractChrome pulls the site-global header and footer structures out of
// detached chrome regions. A region that yields nothing becomes nil, so
// the caller can retry extraction on a later page while Chrome.IsEmpty
// reports true.
func ExtractChrome(regions ChromeRegions, pageURL *url.URL) model.Chrome {
	return model.Chrome{
		Header: extractHeader(regions.Header),
		Footer: extractFooter(regions.Footer, pageURL),
	}
}

func extractHeader(region *goquery.Selection) *model.Header {
	if region == nil {
		return nil
	}

	header := &model.Header{
		Logo:       headerLogo(region),
		Navigation: navigationLabels(region),
		Contact:    contactIn(region, headerPhoneRe),
	}
	if header.IsEmpty() {
		return nil
	}
	return header
}

// headerLogo returns the branding text: the first header image with alt
// text, else the text of a branding-class element.
func headerLogo(region *goquery.Selection) string {
	logo := ""
	region.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if alt := strings.TrimSpace(img.AttrOr("alt", "")); alt != "" {
			logo = alt
			return false
		}
		return true
	})
	if logo != "" {
		return logo
	}

	if branding := firstClassMatch(region, "*", brandingClassRe); branding != nil {
		return Text(branding)
	}
	return ""
}

// navigationLabels returns the header's cleaned link labels in document
// order, deduplicated and capped at MaxNavLinks.
func navigationLabels(region *goquery.Selection) []string {
	labels := make([]string, 0, model.MaxNavLinks)
	seen := make(map[string]bool)

	region.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := Text(a)
		if !isNavLabel(text, a.AttrOr("href", "")) || seen[text] {
			return true
		}
		seen[text] = true
		labels = append(labels, text)
		return len(labels) < model.MaxNavLinks
	})

	return labels
}

// isNavLabel applies the navigation filter: human-sized label, no contact
// or social targets, no document downloads or policy pages, no
// consent-banner boilerplate.
func isNavLabel(text, href string) bool {
	if len(text) < minNavLabelLen || len(text) > maxNavLabelLen {
		return false
	}
	if strings.Contains(text, "@") || strings.Contains(href, "@") {
		return false
	}

	lowerHref := strings.ToLower(href)
	for _, hint := range socialHrefHints {
		if strings.Contains(lowerHref, hint) {
			return false
		}
	}
	if strings.HasSuffix(lowerHref, ".pdf") || strings.Contains(lowerHref, "policy") {
		return false
	}

	lowerText := strings.ToLower(text)
	for _, hint := range consentTextHints {
		if strings.Contains(lowerText, hint) {
			return false
		}
	}
	return true
}

// contactIn extracts the first email and phone appearing in the region's
// text, falling back to mailto:/tel: link targets. Contact pseudo-links
// never reach the page link sets, so chrome is the only place they
// surface.
func contactIn(region *goquery.Selection, phoneRe *regexp.Regexp) *model.Contact {
	text := Text(region)

	contact := &model.Contact{
		Email: emailRe.FindString(text),
		Phone: strings.TrimSpace(phoneRe.FindString(text)),
	}
	if contact.Email == "" {
		contact.Email = schemeTarget(region, "mailto:")
	}
	if contact.Phone == "" {
		contact.Phone = schemeTarget(region, "tel:")
	}

	if contact.Email == "" && contact.Phone == "" {
		return nil
	}
	return contact
}

// schemeTarget returns the first anchor target in the region using the
// given pseudo-scheme, with the scheme and any query stripped.
func schemeTarget(region *goquery.Selection, scheme string) string {
	target := ""
	region.Find(`a[href^="` + scheme + `"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		value := strings.TrimPrefix(a.AttrOr("href", ""), scheme)
		if i := strings.IndexByte(value, '?'); i >= 0 {
			value = value[:i]
		}
		if value = strings.TrimSpace(value); value != "" {
			target = value
			return false
		}
		return true
	})
	return target
}

func extractFooter(region *goquery.Selection, pageURL *url.URL) *model.Footer {
	if region == nil {
		return nil
	}

	footer := &model.Footer{
		Address:     footerAddress(region),
		FooterLinks: footerLinks(region, pageURL),
		SocialLinks: socialLinks(region),
	}
	if contact := contactIn(region, footerPhoneRe); contact != nil {
		footer.Email = contact.Email
		footer.Phone = contact.Phone
	}

	if footer.IsEmpty() {
		return nil
	}
	return footer
}

// footerAddress returns the footer's postal address from a semantic
// <address> element, else an address-class element.
func footerAddress(region *goquery.Selection) string {
	if addr := region.Find("address").First(); addr.Length() > 0 {
		return Text(addr)
	}
	if addr := firstClassMatch(region, "*", addressClassRe); addr != nil {
		return Text(addr)
	}
	return ""
}

// footerLinks returns the footer's internal navigation links with short
// labels, deduplicated by label and capped at MaxFooterLinks. Document
// downloads and external targets are dropped.
func footerLinks(region *goquery.Selection, pageURL *url.URL) []model.FooterLink {
	links := make([]model.FooterLink, 0, model.MaxFooterLinks)
	seen := make(map[string]bool)

	region.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		label := Text(a)
		href := strings.TrimSpace(a.AttrOr("href", ""))

		if label == "" || len(label) >= maxFooterLabelLen || seen[label] {
			return true
		}
		if strings.HasSuffix(strings.ToLower(href), ".pdf") {
			return true
		}
		target, err := pageURL.Parse(href)
		if err != nil || !SameHost(target.Host, pageURL.Host) {
			return true
		}

		seen[label] = true
		links = append(links, model.FooterLink{Label: label, URL: NormalizeURL(target)})
		return len(links) < model.MaxFooterLinks
	})

	return links
}

// socialLinks returns the social platforms linked from the footer,
// title-cased, deduplicated by platform, in stable platform order.
func socialLinks(region *goquery.Selection) []string {
	found := make(map[model.SocialPlatform]bool)
	region.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if platform := socialPlatformOf(a.AttrOr("href", "")); platform.IsValid() {
			found[platform] = true
		}
	})
	if len(found) == 0 {
		return nil
	}

	names := make([]string, 0, len(found))
	for _, platform := range model.AllSocialPlatforms() {
		if found[platform] {
			names = append(names, platformTitler.String(platform.String()))
		}
	}
	return names
}

// socialPlatformOf matches a link target's host against the known
// platform keywords. Relative targets are never social links.
func socialPlatformOf(href string) model.SocialPlatform {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.Host == "" {
		return model.SocialPlatformUnknown
	}

	host := canonicalHost(u.Host)
	if host == "x.com" {
		return model.SocialPlatformTwitter
	}
	for _, platform := range model.AllSocialPlatforms() {
		if strings.Contains(host, platform.String()) {
			return platform
		}
	}
	return model.SocialPlatformUnknown
}

// firstClassMatch returns the first element under root matching the
// selector whose class attribute matches re, in document order, or nil.
func firstClassMatch(root *goquery.Selection, selector string, re *regexp.Regexp) *goquery.Selection {
	var found *goquery.Selection
	root.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if class, ok := s.Attr("class"); ok && re.MatchString(class) {
			found = s
			return false
		}
		return true
	})
	return found
}
