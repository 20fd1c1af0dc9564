// Package database provides SQLite-based storage for crawl run history.
//
// This package implements the HistoryDB, which stores:
//   - One run record per completed crawl (site, entry URL, page count)
//   - Per-page titles and content hashes for run-to-run comparison
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// Full inventory documents are not stored here; they live in the JSON
// files the crawl command writes. The database keeps only what the
// compare command needs to detect added, removed, and changed pages.
package database
