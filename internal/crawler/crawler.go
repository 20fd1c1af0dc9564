package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/webinventory/internal/analyze"
	"github.com/nao1215/webinventory/internal/dedup"
	"github.com/nao1215/webinventory/internal/fetch"
	"github.com/nao1215/webinventory/internal/model"
)

// DefaultConcurrency is the number of concurrent fetches when no
// concurrency option is given.
const DefaultConcurrency = 4

// Crawler walks one website and assembles its content inventory.
//
// A Crawler carries per-crawl state (visited set, dedup registry, chrome
// slot, failure list); create a fresh Crawler for each crawl and do not
// call Crawl concurrently on the same instance.
type Crawler struct {
	// client performs all HTTP fetches, including sitemap probes.
	// Request policy (User-Agent, timeout, body cap) lives on the client.
	client *fetch.Client

	// concurrency is the maximum number of in-flight fetches per wave.
	concurrency int

	// delay is the pause each worker takes after a fetch, zero for none.
	delay time.Duration

	// maxPages caps the number of recorded pages, 0 meaning unbounded.
	maxPages int

	// ignorePatterns are URL path patterns excluded from the frontier.
	// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
	ignorePatterns []string

	// followPatterns restrict the frontier to matching URL paths when
	// set. Empty means all paths are allowed, subject to ignorePatterns.
	followPatterns []string

	// logger receives crawl progress at info and per-URL detail at debug.
	logger *slog.Logger

	// host is the crawl's host, taken from the entry page's final URL
	// after redirects. Links and sitemap entries on other hosts are
	// never followed.
	host string

	// visited tracks normalized URLs that have been scheduled so no URL
	// is fetched twice. Guarded by mu.
	visited map[string]bool

	// registry deduplicates pages by content fingerprint.
	registry *dedup.Registry

	// chrome is the site-global header/footer slot. The first page whose
	// extraction yields anything writes it; afterwards it is frozen.
	// Guarded by mu.
	chrome    model.Chrome
	chromeSet bool

	// failures aggregates per-URL errors. They never abort the crawl.
	// Guarded by mu.
	failures *multierror.Error

	// stats accumulates crawl counters. Guarded by mu.
	stats Stats

	mu sync.Mutex
}

// Stats summarizes a finished crawl.
type Stats struct {
	// PagesRecorded is the number of page records in the inventory.
	PagesRecorded int

	// Duplicates is the number of pages omitted as duplicate content.
	Duplicates int

	// Failures is the number of URLs that failed to fetch or parse.
	Failures int

	// Skipped is the number of responses skipped without error, such as
	// non-HTML content or off-host redirects.
	Skipped int

	// Elapsed is the wall-clock crawl duration.
	Elapsed time.Duration
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithConcurrency sets the maximum number of concurrent fetches.
// Default is DefaultConcurrency if not specified.
func WithConcurrency(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithDelay sets the pause each worker takes between fetches.
// Default is no delay.
func WithDelay(d time.Duration) Option {
	return func(c *Crawler) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithMaxPages caps how many pages are recorded. Zero means unbounded.
func WithMaxPages(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf"). The entry URL is
// never filtered.
func WithIgnorePatterns(patterns []string) Option {
	return func(c *Crawler) {
		c.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// If set, only URLs matching at least one pattern join the frontier.
// Empty means all URLs are allowed.
func WithFollowPatterns(patterns []string) Option {
	return func(c *Crawler) {
		c.followPatterns = patterns
	}
}

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCrawler creates a crawler that fetches through the given client.
//
// Design decision: The fetch client is a required argument rather than an
// option because:
//  1. Every crawl needs one, and the zero value is not usable
//  2. Request policy is configured on the client by the caller, keeping
//     crawl policy and request policy apart
//  3. Tests inject a client pointed at an httptest server
func NewCrawler(client *fetch.Client, opts ...Option) *Crawler {
	c := &Crawler{
		client:      client,
		concurrency: DefaultConcurrency,
		visited:     make(map[string]bool),
		registry:    dedup.NewRegistry(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// result is the outcome of processing one frontier URL. A nil page with a
// nil error means the URL was skipped or its content was a duplicate;
// links may still be present to feed the frontier.
type result struct {
	url   string
	page  *model.Page
	links []string
	err   error
}

// Crawl walks the site starting from entryURL and returns the assembled
// inventory. The entry page is processed first and alone; its failure is
// the only fatal error. The rest of the frontier is processed in
// breadth-first waves with at most the configured number of concurrent
// fetches.
//
// Design decision: We process the frontier in waves with an
// index-addressed results slice rather than a shared work queue because:
//  1. Pages land in the inventory in discovery order even under
//     concurrency, keeping output deterministic
//  2. Each wave boundary is a natural checkpoint for the page budget and
//     for cancellation
//  3. errgroup.SetLimit already provides the worker pool; a queue would
//     duplicate it
//
// Cancellation (signal or deadline) stops scheduling and finishes with
// the pages completed so far. Partial results are valid output, so Crawl
// returns them with a nil error; per-URL problems are available from
// Failures.
func (c *Crawler) Crawl(ctx context.Context, entryURL string) (*model.Site, error) {
	start := time.Now()

	entry, err := url.Parse(entryURL)
	if err != nil || entry.Host == "" || (entry.Scheme != "http" && entry.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid URL %q", ErrEntryURL, entryURL)
	}

	c.logger.Info("starting crawl",
		"url", entryURL,
		"concurrency", c.concurrency,
		"max_pages", c.maxPages,
	)

	site := model.NewSite(entryURL)

	doc, finalURL, err := c.fetchAndParse(ctx, entry.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEntryURL, err)
	}
	c.host = finalURL.Host
	c.visit(analyze.NormalizeURL(entry))
	c.visit(analyze.NormalizeURL(finalURL))

	// Site-level metadata comes from the entry page only.
	site.Name = analyze.SiteName(doc)
	site.Description = analyze.MetaDescription(doc)

	page, links := c.record(doc, finalURL)
	if page != nil {
		site.AddPage(page)
	}

	frontier := c.enqueue(append(c.discoverSitemap(ctx, finalURL), links...))

	for len(frontier) > 0 && ctx.Err() == nil {
		wave := frontier
		var rest []string

		budget := c.pageBudget(len(site.Pages))
		if budget == 0 {
			c.logger.Info("page budget reached", "max_pages", c.maxPages)
			break
		}
		if budget > 0 && budget < len(wave) {
			wave, rest = wave[:budget], wave[budget:]
		}

		results := make([]*result, len(wave))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)

		for i, u := range wave {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				res := c.processURL(gctx, u)

				c.mu.Lock()
				results[i] = res
				c.mu.Unlock()

				if c.delay > 0 {
					select {
					case <-gctx.Done():
					case <-time.After(c.delay):
					}
				}
				return nil
			})
		}
		waveErr := g.Wait()

		var discovered []string
		for _, res := range results {
			if res == nil {
				continue // cancelled before this URL started
			}
			if res.err != nil {
				c.fail(res.url, res.err)
				continue
			}
			if res.page != nil {
				site.AddPage(res.page)
			}
			discovered = append(discovered, res.links...)
		}

		if waveErr != nil {
			c.logger.Info("crawl cancelled, keeping completed pages", "cause", waveErr)
			break
		}

		frontier = append(rest, c.enqueue(discovered)...)
	}

	c.mu.Lock()
	site.Chrome = c.chrome
	c.stats.PagesRecorded = len(site.Pages)
	c.stats.Elapsed = time.Since(start)
	stats := c.stats
	c.mu.Unlock()

	c.logger.Info("crawl complete",
		"pages", stats.PagesRecorded,
		"duplicates", stats.Duplicates,
		"failures", stats.Failures,
		"skipped", stats.Skipped,
		"elapsed", stats.Elapsed,
	)

	return site, nil
}

// Failures returns the per-URL errors collected during the crawl, nil
// when every scheduled URL succeeded. The result is a *multierror.Error,
// so callers can report the count or unwrap individual causes.
func (c *Crawler) Failures() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.failures.ErrorOrNil()
}

// Stats returns a copy of the crawl counters.
func (c *Crawler) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stats
}

// fetchAndParse retrieves one URL and parses it into a document. It
// returns the final URL after redirects; non-HTML responses come back as
// errNotHTML so the caller can decide whether that is fatal.
func (c *Crawler) fetchAndParse(ctx context.Context, rawURL string) (*goquery.Document, *url.URL, error) {
	resp, err := c.client.Fetch(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}

	if !resp.IsHTML() {
		return nil, nil, fmt.Errorf("%w: %s is %s", errNotHTML, rawURL, resp.ContentType)
	}

	doc, err := analyze.ParseDocument(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	finalURL, err := url.Parse(resp.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse final URL %q: %w", resp.URL, err)
	}

	return doc, finalURL, nil
}

// processURL runs the per-URL state machine for one frontier URL:
// fetched, then deduplicated or recorded, with chrome extraction on the
// way. Skips are silent; failures are returned for aggregation.
func (c *Crawler) processURL(ctx context.Context, rawURL string) *result {
	doc, finalURL, err := c.fetchAndParse(ctx, rawURL)
	if err != nil {
		if errors.Is(err, errNotHTML) {
			c.skip(rawURL, "not an HTML page")
			return &result{url: rawURL}
		}
		return &result{url: rawURL, err: err}
	}

	// A redirect can land off-host. That content is not part of this
	// site, and its links must not leak the crawl onto another host.
	if !analyze.SameHost(finalURL.Host, c.host) {
		c.skip(rawURL, "redirected off host")
		return &result{url: rawURL}
	}

	page, links := c.record(doc, finalURL)
	return &result{url: rawURL, page: page, links: links}
}

// record turns a parsed document into a page record. Frontier links are
// gathered from the full document first, since site navigation usually
// lives in the chrome that is detached next; then the dedup registry
// gates on the main region's fingerprint. Duplicates yield no page but
// still donate their links to the frontier.
func (c *Crawler) record(doc *goquery.Document, pageURL *url.URL) (*model.Page, []string) {
	frontier := analyze.DiscoverLinks(doc, pageURL)

	regions := analyze.DetachChrome(doc)
	c.extractChromeOnce(regions, pageURL)

	mainHTML, err := goquery.OuterHtml(analyze.MainRegion(doc))
	if err != nil {
		mainHTML = ""
	}
	fingerprint := dedup.Fingerprint(mainHTML)

	normalized := analyze.NormalizeURL(pageURL)
	if first, fresh := c.registry.Register(fingerprint, normalized); !fresh {
		c.logger.Debug("duplicate content, page omitted",
			"url", normalized,
			"duplicate_of", first,
		)
		c.mu.Lock()
		c.stats.Duplicates++
		c.mu.Unlock()

		return nil, frontier
	}

	page := analyze.BuildPage(doc, pageURL)
	page.ContentHash = fingerprint

	c.logger.Debug("page recorded",
		"url", page.URL,
		"slug", page.Slug,
		"components", len(page.Components),
	)

	return page, frontier
}

// extractChromeOnce fills the site-global chrome slot from the first page
// whose header or footer yields anything, then freezes it for the run.
func (c *Crawler) extractChromeOnce(regions analyze.ChromeRegions, pageURL *url.URL) {
	c.mu.Lock()
	done := c.chromeSet
	c.mu.Unlock()
	if done {
		return
	}

	chrome := analyze.ExtractChrome(regions, pageURL)
	if chrome.IsEmpty() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.chromeSet {
		c.chrome = chrome
		c.chromeSet = true
	}
}

// visit marks a normalized URL as scheduled. It reports whether this was
// the first visit.
func (c *Crawler) visit(normURL string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.visited[normURL] {
		return false
	}
	c.visited[normURL] = true
	return true
}

// enqueue filters candidate URLs through the ignore/follow patterns and
// the visited set, marking the survivors as scheduled so no URL lands in
// two waves.
func (c *Crawler) enqueue(candidates []string) []string {
	queued := make([]string, 0, len(candidates))
	for _, u := range candidates {
		if !c.allowed(u) {
			c.logger.Debug("url excluded by pattern", "url", u)
			continue
		}
		if c.visit(u) {
			queued = append(queued, u)
		}
	}
	return queued
}

// pageBudget returns how many more pages may be recorded, or -1 when the
// crawl is unbounded.
func (c *Crawler) pageBudget(recorded int) int {
	if c.maxPages <= 0 {
		return -1
	}
	if remaining := c.maxPages - recorded; remaining > 0 {
		return remaining
	}
	return 0
}

// skip notes a URL that produced no page and no error.
func (c *Crawler) skip(rawURL, reason string) {
	c.logger.Debug("page skipped", "url", rawURL, "reason", reason)

	c.mu.Lock()
	c.stats.Skipped++
	c.mu.Unlock()
}

// fail records a per-URL failure and keeps the crawl going.
func (c *Crawler) fail(rawURL string, err error) {
	c.logger.Debug("page failed, continuing crawl", "url", rawURL, "error", err)

	c.mu.Lock()
	c.failures = multierror.Append(c.failures, err)
	c.stats.Failures++
	c.mu.Unlock()
}
