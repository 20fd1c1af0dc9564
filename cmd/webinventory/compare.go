package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nao1215/webinventory/internal/config"
	"github.com/nao1215/webinventory/internal/database"
	"github.com/nao1215/webinventory/internal/model"
	"github.com/nao1215/webinventory/internal/report"
	"github.com/spf13/cobra"
)

// Output formats accepted by the compare command.
const (
	formatText     = "text"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

// NewCompareCmd creates the compare command.
// This command compares crawl runs recorded in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [site]",
		Short: "Compare crawl runs from the history database",
		Long: `Compare shows how a website changed between two recorded crawl runs.

This command retrieves run history from the database and reports:
- Added pages that appeared since the older run
- Removed pages that are no longer present
- Changed pages whose content differs between the runs

The comparison requires at least two recorded runs for the specified
site. Use 'webinventory crawl' to crawl a site and record runs. The site
can be given as a URL or a bare host; a leading www. is ignored.

Examples:
  # Compare the latest two runs for a site
  webinventory compare example.com

  # List run history for a site
  webinventory compare --list example.com

  # Compare the latest run with a specific older run
  webinventory compare --with-run-id 2f1c9f8a-... example.com

  # Compare with the first run recorded after a date
  webinventory compare --since 2026-01-01 example.com

  # Output the comparison as JSON
  webinventory compare --format json example.com

  # List all crawled sites in the database
  webinventory compare --list-sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List run history for the specified site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all crawled sites in the database")

	// Comparison target flags
	cmd.Flags().StringP("with-run-id", "i", "",
		"Compare with a specific run by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first run after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().StringP("format", "f", formatText,
		"Output format: text, json, or markdown")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-sites flag first (requires database but no site)
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-sites).
	// This prevents database lock issues when validation fails.
	var site string
	if !listSites {
		// Require a site for other operations
		if len(args) == 0 {
			return errors.New("site is required (use --list-sites to see crawled sites)")
		}

		// Normalize the site to its history grouping key
		site = database.SiteKey(args[0])
		if site == "" {
			return fmt.Errorf("invalid site %q", args[0])
		}
	}

	// Validate the output format before opening the database too
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	writer, err := newDiffWriter(format)
	if err != nil {
		return err
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-sites flag
	if listSites {
		return listCrawledSites(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listRunHistory(ctx, db, site)
	}

	// Get comparison target flags
	withRunID, err := cmd.Flags().GetString("with-run-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, site, withRunID, sinceDate, writer)
}

// newDiffWriter builds the report writer for the requested output format.
func newDiffWriter(format string) (report.Writer, error) {
	switch format {
	case formatText:
		return report.NewSimpleWriter(os.Stdout), nil
	case formatJSON:
		return report.NewJSONWriter(os.Stdout, report.WithPrettyPrint()), nil
	case formatMarkdown:
		return report.NewMarkdownWriter(os.Stdout), nil
	default:
		return nil, fmt.Errorf("unknown format %q (expected text, json, or markdown)", format)
	}
}

// listCrawledSites lists all sites that have run records in the database.
func listCrawledSites(ctx context.Context, db *database.HistoryDB) error {
	sites, err := db.ListSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Println("No crawled sites found in the database.")
		fmt.Println("\nUse 'webinventory crawl <url>' to crawl a website.")
		return nil
	}

	fmt.Printf("Crawled sites (%d):\n\n", len(sites))
	for _, s := range sites {
		fmt.Printf("  • %s\n", s)
	}
	fmt.Println("\nUse 'webinventory compare --list <site>' to see run history for a site.")

	return nil
}

// listRunHistory lists all recorded runs for a specific site.
func listRunHistory(ctx context.Context, db *database.HistoryDB, site string) error {
	runs, err := db.ListRuns(ctx, site, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No run history found for %s\n", site)
		fmt.Println("\nUse 'webinventory crawl' to crawl this site.")
		return nil
	}

	fmt.Printf("Run history for %s (%d runs):\n\n", site, len(runs))
	fmt.Printf("  %-36s  %-20s  %s\n", "ID", "Date", "Pages")
	fmt.Println("  " + strings.Repeat("-", 65))

	for _, run := range runs {
		fmt.Printf("  %-36s  %-20s  %d\n",
			run.ID,
			run.CrawledAt.Format("2006-01-02 15:04:05"),
			run.Pages,
		)
	}

	fmt.Println("\nUse 'webinventory compare <site>' to compare the latest two runs.")
	fmt.Println("Use 'webinventory compare --with-run-id <id> <site>' to compare with a specific run.")

	return nil
}

// runComparison compares the latest run against an older one and writes
// the result. The older run is picked by ID, by date, or defaults to the
// second most recent.
func runComparison(ctx context.Context, db *database.HistoryDB, site, withRunID, sinceDate string, writer report.Writer) error {
	// Get the run history, newest first
	runs, err := db.ListRuns(ctx, site, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		return fmt.Errorf("no run history found for %s", site)
	}

	if len(runs) < 2 && withRunID == "" && sinceDate == "" {
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
	}

	// Latest run is always the newer side of the comparison
	newer := &runs[0]

	var older *database.Run

	switch {
	case withRunID != "":
		// Find the run with the specified ID
		older, err = db.GetRun(ctx, withRunID)
		if err != nil {
			return fmt.Errorf("failed to get run %s: %w", withRunID, err)
		}
		if older == nil {
			return fmt.Errorf("run %s not found", withRunID)
		}
		// Validate that the run belongs to the same site
		if older.Site != site {
			return fmt.Errorf("run %s belongs to %s, not %s", withRunID, older.Site, site)
		}
	case sinceDate != "":
		// Parse the date and find the first (oldest) run at or after it
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Runs are sorted newest first, so iterate in reverse to find
		// the oldest run at or after the date
		for i := len(runs) - 1; i >= 0; i-- {
			if runs[i].CrawledAt.After(parsedDate) || runs[i].CrawledAt.Equal(parsedDate) {
				older = &runs[i]
				break
			}
		}
		if older == nil {
			return fmt.Errorf("no runs found since %s", sinceDate)
		}
		// If the only run since the date is the latest one, there is
		// nothing to compare against
		if older.ID == newer.ID {
			return fmt.Errorf("only one run found since %s; at least 2 runs are required for comparison", sinceDate)
		}
	default:
		// Default: compare with the previous run
		older = &runs[1]
	}

	diff, err := buildDiff(ctx, db, older, newer)
	if err != nil {
		return err
	}

	if _, err := writer.WriteDiff(diff); err != nil {
		return fmt.Errorf("failed to write comparison: %w", err)
	}

	return nil
}

// buildDiff loads the page snapshots of both runs and matches them by
// URL: pages only in the newer run are added, pages only in the older
// run are removed, and pages in both with different content hashes are
// changed. Added and changed pages keep the newer run's discovery order,
// removed pages the older run's.
func buildDiff(ctx context.Context, db *database.HistoryDB, older, newer *database.Run) (*model.Diff, error) {
	oldPages, err := db.GetRunPages(ctx, older.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pages of run %s: %w", older.ID, err)
	}

	newPages, err := db.GetRunPages(ctx, newer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pages of run %s: %w", newer.ID, err)
	}

	oldByURL := make(map[string]database.RunPage, len(oldPages))
	for _, p := range oldPages {
		oldByURL[p.URL] = p
	}

	newByURL := make(map[string]database.RunPage, len(newPages))
	for _, p := range newPages {
		newByURL[p.URL] = p
	}

	diff := model.NewDiff(newer.Site)
	diff.OldRunID = older.ID
	diff.NewRunID = newer.ID
	diff.OldCrawledAt = older.CrawledAt
	diff.NewCrawledAt = newer.CrawledAt

	for _, p := range newPages {
		old, ok := oldByURL[p.URL]
		if !ok {
			diff.Added = append(diff.Added, model.PageChange{URL: p.URL, Title: p.Title})
			continue
		}
		if old.ContentHash != p.ContentHash {
			diff.Changed = append(diff.Changed, model.PageChange{URL: p.URL, Title: p.Title})
		}
	}

	for _, p := range oldPages {
		if _, ok := newByURL[p.URL]; !ok {
			diff.Removed = append(diff.Removed, model.PageChange{URL: p.URL, Title: p.Title})
		}
	}

	return diff, nil
}
