// Package crawler walks a website and assembles its content inventory.
//
// # Architecture
//
// The package is designed around the Crawler type, which coordinates the
// crawl: it seeds a frontier from the entry page and the site's sitemap,
// walks the frontier breadth-first in bounded-concurrency waves, and hands
// every fetched page to the analyze package for chrome extraction, block
// classification, and link categorization.
//
// Design decision: We implement our own crawler rather than using a
// third-party crawling framework because:
//  1. The frontier policy (same host only, normalized URLs, media
//     extensions excluded) is the product, not an add-on
//  2. The inventory must list pages in discovery order even under
//     concurrency, which general-purpose crawlers do not guarantee
//  3. The dedup registry and the site-global chrome slot are shared crawl
//     state that a callback-style framework would scatter
//
// # Components
//
//   - Crawler: coordinates the crawl and owns the shared state
//   - Sitemap probing: seeds the frontier from /sitemap.xml and friends
//   - Wave processing: errgroup-bounded fetches with index-addressed
//     results so ordering stays deterministic
//
// # Politeness
//
// The crawler is designed to be polite:
//   - Limits concurrent requests (default 4)
//   - Optional delay between requests per worker
//   - Page budget and context cancellation stop the crawl cleanly
//
// # Usage
//
//	client := fetch.NewClient(fetch.WithTimeout(20 * time.Second))
//	c := crawler.NewCrawler(client, crawler.WithMaxPages(50))
//	site, err := c.Crawl(ctx, "https://example.com")
//
// Per-URL fetch and parse failures never abort a crawl; they are collected
// and available from Failures after the run. Only the entry URL is fatal.
package crawler
