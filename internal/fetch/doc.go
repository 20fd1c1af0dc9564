// Package fetch retrieves pages over HTTP for the crawler.
//
// The Client owns everything transport-shaped: the User-Agent header,
// per-request timeouts, redirect following, a response body size cap, and
// charset detection so callers always receive UTF-8. Higher layers consume
// a fetched Response and never touch net/http directly.
//
// Failures are reported as *Error values carrying the URL, the HTTP status
// when one was received, and the underlying cause otherwise. The crawler
// uses them to distinguish a fatal entry-page failure from the per-page
// failures a crawl simply records and skips.
package fetch
