// Package main provides the entry point for the webinventory CLI.
//
// webinventory crawls a website and produces a structured JSON inventory
// of its content: global header and footer, per-page components, and
// categorized links.
//
// Usage:
//
//	webinventory crawl <url>
//	webinventory compare <site>
//
// See --help for all available options.
package main

// main is the entry point for webinventory.
func main() {
	Execute()
}
