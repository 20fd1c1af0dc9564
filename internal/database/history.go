package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/webinventory/internal/model"
)

// dbFileName is the SQLite database file created under the data directory.
const dbFileName = "webinventory.db"

// sqliteTimeLayout is the format run timestamps are stored in. It sorts
// lexicographically, so crawled_at comparisons work as text.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// HistoryDB provides SQLite-based storage for crawl run history.
//
// Design decision: We use a single database file for all sites rather
// than one file per site. This keeps the compare and list queries in one
// place and simplifies backup/restore operations.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite selects create-or-open behavior through the DSN:
	// mode=rw refuses to create new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer; cap the pool accordingly.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store one row per completed crawl
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		site TEXT NOT NULL,
		url TEXT NOT NULL,
		crawled_at DATETIME NOT NULL,
		pages INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_site ON runs(site);
	CREATE INDEX IF NOT EXISTS idx_runs_crawled_at ON runs(crawled_at);

	-- Run pages store per-page titles and content hashes for comparison
	CREATE TABLE IF NOT EXISTS run_pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		title TEXT,
		content_hash TEXT NOT NULL,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_run_pages_run ON run_pages(run_id);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one recorded crawl run.
type Run struct {
	// ID is the run's UUID, assigned by SaveRun.
	ID string

	// Site is the history grouping key derived from the entry URL,
	// see SiteKey.
	Site string

	// URL is the entry URL the crawl was started from.
	URL string

	// CrawledAt is when the crawl started.
	CrawledAt time.Time

	// Pages is the number of page records the crawl produced.
	Pages int
}

// RunPage is one page snapshot belonging to a run.
type RunPage struct {
	// URL is the normalized page URL.
	URL string

	// Title is the page title at crawl time.
	Title string

	// ContentHash is the page's content digest, used to detect changes
	// between runs.
	ContentHash string
}

// SaveRun records a completed crawl and its per-page snapshots.
// It returns the generated run ID. The run and its pages are written in
// one transaction, so a partially recorded run never becomes visible.
func (hdb *HistoryDB) SaveRun(ctx context.Context, site *model.Site) (string, error) {
	runID := uuid.New().String()

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, site, url, crawled_at, pages) VALUES (?, ?, ?, ?, ?)`,
		runID,
		SiteKey(site.URL),
		site.URL,
		site.CrawledAt.UTC().Format(sqliteTimeLayout),
		len(site.Pages),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, page := range site.Pages {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_pages (run_id, url, title, content_hash) VALUES (?, ?, ?, ?)`,
			runID,
			page.URL,
			page.Title,
			page.ContentHash,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert run page %s: %w", page.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// ListSites returns the site keys of all recorded runs, sorted.
func (hdb *HistoryDB) ListSites(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx,
		`SELECT DISTINCT site FROM runs ORDER BY site`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// ListRuns returns the runs recorded for a site, newest first.
// A non-zero since restricts the result to runs crawled at or after it.
func (hdb *HistoryDB) ListRuns(ctx context.Context, site string, since time.Time) ([]Run, error) {
	query := `
	SELECT id, site, url, crawled_at, pages
	FROM runs
	WHERE site = ?
	`
	args := []interface{}{site}

	if !since.IsZero() {
		query += " AND crawled_at >= ?"
		args = append(args, since.UTC().Format(sqliteTimeLayout))
	}

	// rowid breaks ties between runs recorded in the same second
	query += " ORDER BY crawled_at DESC, rowid DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var crawledAt string

		if err := rows.Scan(&run.ID, &run.Site, &run.URL, &crawledAt, &run.Pages); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.CrawledAt = parseTimestamp(crawledAt)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRun retrieves one run by ID. It returns (nil, nil) when no run with
// that ID exists.
func (hdb *HistoryDB) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	var crawledAt string

	err := hdb.db.QueryRowContext(ctx,
		`SELECT id, site, url, crawled_at, pages FROM runs WHERE id = ?`,
		runID,
	).Scan(&run.ID, &run.Site, &run.URL, &crawledAt, &run.Pages)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.CrawledAt = parseTimestamp(crawledAt)
	return &run, nil
}

// GetRunPages retrieves the page snapshots of a run in insertion order,
// which is the crawl's discovery order.
func (hdb *HistoryDB) GetRunPages(ctx context.Context, runID string) ([]RunPage, error) {
	rows, err := hdb.db.QueryContext(ctx,
		`SELECT url, title, content_hash FROM run_pages WHERE run_id = ? ORDER BY id`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run pages: %w", err)
	}
	defer rows.Close()

	var pages []RunPage
	for rows.Next() {
		var page RunPage
		if err := rows.Scan(&page.URL, &page.Title, &page.ContentHash); err != nil {
			return nil, fmt.Errorf("failed to scan run page: %w", err)
		}
		pages = append(pages, page)
	}

	return pages, rows.Err()
}

// SiteKey derives the history grouping key for a URL or bare host.
// Keys are lowercased hosts with any www. prefix removed. The port is
// kept so differently addressed instances stay separate.
func SiteKey(rawURL string) string {
	raw := strings.TrimSpace(rawURL)

	host := raw
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		host = u.Host
	} else if i := strings.Index(raw, "/"); i >= 0 {
		host = raw[:i]
	}

	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
