package model

import "time"

// Diff is the comparison between two crawl runs of the same site. It is
// computed from the run history database by matching page URLs and
// comparing content hashes.
type Diff struct {
	// Site is the host the compared runs crawled.
	Site string `json:"site"`

	// OldRunID and NewRunID identify the compared runs.
	OldRunID string `json:"old_run_id"`
	NewRunID string `json:"new_run_id"`

	// OldCrawledAt and NewCrawledAt are the start times of the runs.
	OldCrawledAt time.Time `json:"old_crawled_at"`
	NewCrawledAt time.Time `json:"new_crawled_at"`

	// Added holds pages present only in the newer run.
	Added []PageChange `json:"added"`

	// Removed holds pages present only in the older run.
	Removed []PageChange `json:"removed"`

	// Changed holds pages present in both runs whose content hash
	// differs.
	Changed []PageChange `json:"changed"`
}

// PageChange identifies one page implicated in a run comparison.
type PageChange struct {
	// URL is the normalized page URL the runs are matched on.
	URL string `json:"url"`

	// Title is the page title, taken from the newer run when the page
	// exists there, otherwise from the older run.
	Title string `json:"title,omitempty"`
}

// NewDiff creates an empty comparison with initialized change sets so the
// JSON output always carries added/removed/changed keys, never null.
func NewDiff(site string) *Diff {
	return &Diff{
		Site:    site,
		Added:   make([]PageChange, 0),
		Removed: make([]PageChange, 0),
		Changed: make([]PageChange, 0),
	}
}

// HasChanges reports whether the two runs differ at all.
func (d *Diff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0
}

// TotalChanges returns the number of pages implicated in the comparison.
func (d *Diff) TotalChanges() int {
	return len(d.Added) + len(d.Removed) + len(d.Changed)
}
