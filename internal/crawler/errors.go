package crawler

import "errors"

// ErrEntryURL is returned when the entry URL cannot be fetched or parsed.
// It is the only fatal crawl error; a crawl that cannot read its entry
// page has nothing to inventory.
var ErrEntryURL = errors.New("crawler: entry URL could not be crawled")

// errNotHTML marks responses that are not HTML pages. Frontier URLs that
// hit it are skipped silently; the entry URL treats it as fatal.
var errNotHTML = errors.New("crawler: not an HTML page")
