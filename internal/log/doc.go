// Package log provides crawl logging with automatic truncation of oversized
// attribute values, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Bounded attribute values so page content never floods the terminal
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Why truncation
//
// Crawl logging routinely attaches page titles, extracted text, and long
// URLs to records. A single noisy page can otherwise push kilobytes of
// markup into one log line, which makes verbose output unusable and bloats
// any captured logs. The TruncatingHandler cuts string values at a fixed
// bound and marks the cut, keeping every record a readable single line.
//
// # Usage
//
//	// Create a logger for the crawl
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("page recorded",
//	    "url", "https://example.com/pricing",
//	    "text", veryLongPageText, // cut at the configured bound
//	)
package log
