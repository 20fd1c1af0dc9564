// Package pipeline orchestrates the stages of a crawl: walking the
// site, writing the inventory report, and recording the run in the
// history database.
//
// A Pipeline executes Steps in order against a shared Job. Steps that
// implement the Finalizer interface still run after the context is
// cancelled, which is how an interrupted crawl gets its partial
// inventory written and recorded. The BatchProcessor runs one pipeline
// per target for multi-site crawls, bounding how many sites are
// crawled at once.
package pipeline
