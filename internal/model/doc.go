// Package model defines the core data structures used throughout webinventory.
//
// This package contains the following main types:
//   - Site: The root inventory aggregate written as the "website" document
//   - Page: A single crawled page with its classified components and links
//   - Component: A tagged content variant (hero banner, form, table, ...)
//   - Chrome: The site-global header/footer structures
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, analyze, report, database) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage. Classification thresholds and output caps live here as
// named constants so that every package truncates and samples consistently.
package model
