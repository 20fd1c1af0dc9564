package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchProcessor handles concurrent crawling of multiple sites.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-crawl execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for one target.
	// Each target gets a fresh pipeline because steps carry per-crawl
	// state such as the crawler's visit set and the report's output
	// file. Building a pipeline can fail (the output file may not be
	// creatable), and that failure belongs to the target's own job
	// rather than aborting the whole batch.
	pipelineFactory func(target string) (*Pipeline, error)

	// concurrency is the maximum number of concurrent site crawls.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed jobs.
	// Access is synchronized via mutex.
	results []*Job
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent site crawls.
// Default is 3 if not specified: each crawl runs its own fetch workers,
// so the effective number of in-flight requests is this value times the
// per-site concurrency.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each target to create a fresh
// pipeline instance. This ensures that pipeline state doesn't leak between
// crawls and allows for per-target customization such as output paths.
func NewBatchProcessor(pipelineFactory func(target string) (*Pipeline, error), opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     3,
		results:         make([]*Job, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch crawls multiple sites concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each target gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all jobs collected, in input order, even for targets that
// failed. The error return indicates if the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*Job, error) {
	bp.logger.Info("starting batch crawl",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*Job, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("crawling site",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			job := NewJob(target)

			pipeline, err := bp.pipelineFactory(target)
			if err != nil {
				job.Err = err

				bp.mu.Lock()
				bp.results[i] = job
				bp.mu.Unlock()

				bp.logger.Warn("failed to build pipeline",
					"target", target,
					"error", err,
				)
				// Don't return error to errgroup - we want to continue other crawls
				return nil
			}

			err = pipeline.Execute(ctx, job)

			// Store result regardless of error
			// The job carries error information if the crawl failed
			bp.mu.Lock()
			bp.results[i] = job
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("crawl failed",
					"target", target,
					"error", err,
				)
				// The error is recorded on the job by Execute
				return nil
			}

			bp.logger.Info("crawl completed",
				"target", target,
			)

			return nil
		})
	}

	// Wait for all crawls to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch crawl complete",
		"total_targets", len(targets),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback crawls multiple sites and calls a callback
// for each completed crawl. This is useful for streaming results.
//
// The callback receives the job and the index of the target in the
// original slice. The callback is called from the goroutine that completed
// the crawl, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(job *Job, index int),
) error {
	bp.logger.Info("starting batch crawl with callback",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			job := NewJob(target)

			pipeline, err := bp.pipelineFactory(target)
			if err != nil {
				job.Err = err
				callback(job, i)
				return nil
			}

			_ = pipeline.Execute(ctx, job) //nolint:errcheck // Error is stored in job

			// Call the callback with the result
			callback(job, i)

			return nil
		})
	}

	return g.Wait()
}
