package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/webinventory/internal/crawler"
	"github.com/nao1215/webinventory/internal/model"
)

// Job carries one crawl's state through the pipeline. Steps fill it in
// sequence; later steps read what earlier steps produced.
type Job struct {
	// Target is the entry URL to crawl.
	Target string

	// Site is the assembled inventory, set by the crawl step.
	Site *model.Site

	// Stats summarizes the crawl, set by the crawl step.
	Stats crawler.Stats

	// Failures aggregates the crawl's non-fatal per-page errors.
	Failures error

	// RunID identifies the recorded history run, set by the persist
	// step when history saving is enabled.
	RunID string

	// Completed lists the names of the steps that ran, in order.
	Completed []string

	// Err records the last step failure when the pipeline is configured
	// to continue on error.
	Err error
}

// NewJob creates a job for one target URL.
func NewJob(target string) *Job {
	return &Job{
		Target:    target,
		Completed: make([]string, 0),
	}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the accumulated
// job from previous steps.
//
/// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the job to modify.
	// Returns an error if the step fails critically; non-critical errors
	// should be logged and return nil.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Finalizer is implemented by steps that must still run after the context
// is cancelled. The report and persist steps finalize partial crawls;
// skipping them would throw away the pages an interrupted crawl already
// collected.
type Finalizer interface {
	// FinalizeOnCancel reports whether the step runs after cancellation.
	FinalizeOnCancel() bool
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, a default logger is created.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. Failed steps are logged and recorded on the
// job, but subsequent steps still execute.
//
/// Design decision: This option exists because some failures (e.g., a
// history database write) shouldn't prevent the remaining output steps.
// However, the default is to stop on error because early failures often
// indicate fundamental problems (e.g., the entry URL is unreachable).
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// It respects context cancellation and logs each step's execution.
//
// Design decision: Cancellation does not simply abort the remainder of
// the pipeline. An interrupted crawl returns a partial inventory, and
// the steps after it exist precisely to finalize that partial result.
// Steps implementing Finalizer still run after cancellation; they get a
// context stripped of the cancellation (context.WithoutCancel) so a
// database write or file write is not torn mid-operation. Steps that do
// not finalize stop the pipeline with the context's error, matching the
// usual cancellation contract.
//
// Returns the first error encountered if continueOnError is false,
// or nil if all steps complete (errors are recorded on the job).
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		stepCtx := ctx
		if ctx.Err() != nil {
			if !finalizes(step) {
				p.logger.Warn("pipeline cancelled",
					"step", step.Name(),
					"target", job.Target,
					"reason", ctx.Err(),
				)
				return ctx.Err()
			}
			stepCtx = context.WithoutCancel(ctx)
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"target", job.Target,
		)

		if err := step.Do(stepCtx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"target", job.Target,
				"error", err,
			)

			job.Err = err

			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"target", job.Target,
			)
		}

		job.Completed = append(job.Completed, step.Name())
	}

	return nil
}

// finalizes reports whether a step runs after context cancellation.
func finalizes(step Step) bool {
	f, ok := step.(Finalizer)
	return ok && f.FinalizeOnCancel()
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
