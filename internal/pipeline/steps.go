package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/webinventory/internal/crawler"
	"github.com/nao1215/webinventory/internal/database"
	"github.com/nao1215/webinventory/internal/report"
)

// ErrNoInventory is returned by steps that need a crawled site when the
// crawl step did not run or did not produce one.
var ErrNoInventory = errors.New("pipeline: job has no inventory")

// CrawlStep walks the target site and stores the inventory on the job.
//
// Design decision: The crawl is the only step that is not a Finalizer.
// If cancellation arrives before the crawl starts there is nothing to
// finalize, and the crawler itself already treats cancellation during
// the crawl as a normal termination mode with a partial inventory.
type CrawlStep struct {
	// crawler performs the actual crawl. Each job needs a fresh
	// crawler because it carries per-crawl state.
	crawler *crawler.Crawler

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCrawlStep creates a crawl step around a configured crawler.
func NewCrawlStep(c *crawler.Crawler, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		crawler: c,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl. Only an uncrawlable entry URL is an error;
// per-page failures are collected on the job and the crawl continues.
func (s *CrawlStep) Do(ctx context.Context, job *Job) error {
	site, err := s.crawler.Crawl(ctx, job.Target)
	if err != nil {
		return err
	}

	job.Site = site
	job.Stats = s.crawler.Stats()
	job.Failures = s.crawler.Failures()

	if job.Failures != nil {
		s.logger.Warn("some pages could not be crawled",
			"target", job.Target,
			"failures", job.Stats.Failures,
		)
	}

	return nil
}

// ReportStep writes the job's inventory through a report writer.
type ReportStep struct {
	// writer renders the inventory; the destination is configured on
	// the writer itself.
	writer report.Writer

	// logger for structured logging.
	logger *slog.Logger
}

// ReportStepOption configures a ReportStep.
type ReportStepOption func(*ReportStep)

// WithReportLogger sets a custom logger for the report step.
func WithReportLogger(logger *slog.Logger) ReportStepOption {
	return func(s *ReportStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewReportStep creates a report step around a configured writer.
func NewReportStep(w report.Writer, opts ...ReportStepOption) *ReportStep {
	s := &ReportStep{
		writer: w,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// FinalizeOnCancel marks the report step as a finalizer: a partial
// inventory from an interrupted crawl is still written out.
func (s *ReportStep) FinalizeOnCancel() bool {
	return true
}

// Do writes the inventory. A write failure is fatal; without the report
// the crawl produced nothing.
func (s *ReportStep) Do(_ context.Context, job *Job) error {
	if job.Site == nil {
		return fmt.Errorf("report step: %w", ErrNoInventory)
	}

	n, err := s.writer.Write(job.Site)
	if err != nil {
		return fmt.Errorf("failed to write inventory: %w", err)
	}

	s.logger.Debug("inventory written",
		"target", job.Target,
		"bytes", n,
	)

	return nil
}

// PersistStep records the run in the history database.
type PersistStep struct {
	// db is the opened history database.
	db *database.HistoryDB

	// logger for structured logging.
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewPersistStep creates a persist step around an opened history database.
func NewPersistStep(db *database.HistoryDB, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// FinalizeOnCancel marks the persist step as a finalizer so interrupted
// crawls still land in the run history.
func (s *PersistStep) FinalizeOnCancel() bool {
	return true
}

// Do records the run. Persistence is best-effort: the report file is the
// primary artifact, so a history write failure is logged and does not
// fail the job.
func (s *PersistStep) Do(ctx context.Context, job *Job) error {
	if job.Site == nil {
		return fmt.Errorf("persist step: %w", ErrNoInventory)
	}

	runID, err := s.db.SaveRun(ctx, job.Site)
	if err != nil {
		s.logger.Error("failed to record run history",
			"target", job.Target,
			"error", err,
		)
		return nil
	}

	job.RunID = runID
	s.logger.Debug("run recorded",
		"target", job.Target,
		"run_id", runID,
	)

	return nil
}
