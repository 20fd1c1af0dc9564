package crawler

import (
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/nao1215/webinventory/internal/analyze"
)

// sitemapCandidates are probed in order at the crawl host's root. The
// first candidate that yields any usable page URL wins.
var sitemapCandidates = []string{"/sitemap.xml", "/sitemap_index.xml", "/sitemap"}

// maxSitemapChildren bounds how many child sitemaps of a sitemap index
// are fetched. The index is followed one level only; indexes nested
// inside indexes are ignored.
const maxSitemapChildren = 10

// urlset and sitemapindex mirror the sitemaps.org protocol. XMLName pins
// the root element so a urlset document never half-parses as an index.
type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapLoc `xml:"url"`
}

type sitemapindex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// discoverSitemap probes the well-known sitemap locations on the entry
// host and returns normalized same-host page URLs in document order.
//
// Every failure here is silent: a missing or malformed sitemap just means
// the crawl discovers pages through links alone. Sitemap probes never
// count as crawl failures.
func (c *Crawler) discoverSitemap(ctx context.Context, base *url.URL) []string {
	for _, candidate := range sitemapCandidates {
		probe := *base
		probe.Path = candidate
		probe.RawQuery = ""
		probe.Fragment = ""

		locs := c.sitemapURLs(ctx, probe.String(), true)
		if len(locs) > 0 {
			c.logger.Debug("sitemap found", "url", probe.String(), "locations", len(locs))
			return locs
		}
	}

	c.logger.Debug("no sitemap found", "host", base.Host)
	return nil
}

// sitemapURLs fetches one sitemap document and returns its page URLs.
// followIndex permits one level of sitemap-index recursion.
func (c *Crawler) sitemapURLs(ctx context.Context, sitemapURL string, followIndex bool) []string {
	resp, err := c.client.Fetch(ctx, sitemapURL)
	if err != nil {
		c.logger.Debug("sitemap fetch failed", "url", sitemapURL, "error", err)
		return nil
	}
	if !resp.IsXML() {
		c.logger.Debug("sitemap is not XML", "url", sitemapURL, "content_type", resp.ContentType)
		return nil
	}

	var set urlset
	if err := xml.Unmarshal(resp.Body, &set); err == nil && len(set.URLs) > 0 {
		return c.pageLocs(set.URLs)
	}

	if !followIndex {
		return nil
	}

	var index sitemapindex
	if err := xml.Unmarshal(resp.Body, &index); err != nil || len(index.Sitemaps) == 0 {
		return nil
	}
	if len(index.Sitemaps) > maxSitemapChildren {
		index.Sitemaps = index.Sitemaps[:maxSitemapChildren]
	}

	var locs []string
	for _, child := range index.Sitemaps {
		locs = append(locs, c.sitemapURLs(ctx, strings.TrimSpace(child.Loc), false)...)
	}
	return locs
}

// pageLocs filters raw <loc> values down to crawlable page URLs: http(s)
// on the crawl host, no media extensions, normalized for the visited set.
func (c *Crawler) pageLocs(entries []sitemapLoc) []string {
	locs := make([]string, 0, len(entries))
	for _, entry := range entries {
		u, err := url.Parse(strings.TrimSpace(entry.Loc))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		if !analyze.SameHost(u.Host, c.host) || analyze.IsMediaURL(u) {
			continue
		}
		locs = append(locs, analyze.NormalizeURL(u))
	}
	return locs
}
