package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newNoopFactory returns a factory producing pipelines with a single
// no-op step.
func newNoopFactory() func(target string) (*Pipeline, error) {
	return func(_ string) (*Pipeline, error) {
		p := New()
		p.AddStep(&mockStep{name: "noop"})
		return p, nil
	}
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(newNoopFactory())

		if bp == nil {
			t.Fatal("expected non-nil processor")
		}
		if bp.concurrency != 3 {
			t.Errorf("expected default concurrency 3, got %d", bp.concurrency)
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(newNoopFactory(), WithConcurrency(5))

		if bp.concurrency != 5 {
			t.Errorf("expected concurrency 5, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(newNoopFactory(), WithConcurrency(0))

		if bp.concurrency != 3 { // Should keep default
			t.Errorf("expected concurrency 3, got %d", bp.concurrency)
		}
	})

	t.Run("applies WithBatchLogger option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(newNoopFactory(), WithBatchLogger(nil))

		// When WithBatchLogger(nil) is passed, the logger should be set to default
		if bp == nil {
			t.Fatal("expected non-nil processor")
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("processes all targets", func(t *testing.T) {
		t.Parallel()

		var processedCount atomic.Int32

		bp := NewBatchProcessor(func(_ string) (*Pipeline, error) {
			p := New()
			p.AddStep(&mockStep{
				name: "counter",
				doFunc: func(_ context.Context, _ *Job) error {
					processedCount.Add(1)
					return nil
				},
			})
			return p, nil
		})

		targets := []string{
			"https://first.test",
			"https://second.test",
			"https://third.test",
		}

		results, err := bp.ProcessBatch(context.Background(), targets)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Errorf("expected 3 results, got %d", len(results))
		}
		if processedCount.Load() != 3 {
			t.Errorf("expected 3 processed, got %d", processedCount.Load())
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var maxConcurrent atomic.Int32
		var currentConcurrent atomic.Int32
		var mu sync.Mutex

		bp := NewBatchProcessor(
			func(_ string) (*Pipeline, error) {
				p := New()
				p.AddStep(&mockStep{
					name: "concurrent-counter",
					doFunc: func(_ context.Context, _ *Job) error {
						current := currentConcurrent.Add(1)

						// Update max if needed (with mutex for safety)
						mu.Lock()
						if current > maxConcurrent.Load() {
							maxConcurrent.Store(current)
						}
						mu.Unlock()

						// Simulate some work
						time.Sleep(50 * time.Millisecond)

						currentConcurrent.Add(-1)
						return nil
					},
				})
				return p, nil
			},
			WithConcurrency(2),
		)

		targets := make([]string, 10)
		for i := range targets {
			targets[i] = "https://acme.test"
		}

		_, err := bp.ProcessBatch(context.Background(), targets)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if maxConcurrent.Load() > 2 {
			t.Errorf("max concurrent was %d, expected <= 2", maxConcurrent.Load())
		}
	})

	t.Run("maintains result order", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(newNoopFactory())

		targets := []string{
			"https://first.test",
			"https://second.test",
			"https://third.test",
		}

		results, err := bp.ProcessBatch(context.Background(), targets)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, result := range results {
			if result.Target != targets[i] {
				t.Errorf("result[%d]: got %q, expected %q",
					i, result.Target, targets[i])
			}
		}
	})

	t.Run("continues after individual crawl failure", func(t *testing.T) {
		t.Parallel()

		var processedCount atomic.Int32

		bp := NewBatchProcessor(func(_ string) (*Pipeline, error) {
			p := New()
			p.AddStep(&mockStep{
				name: "sometimes-fails",
				doFunc: func(_ context.Context, job *Job) error {
					processedCount.Add(1)
					// Fail for the second target only
					if job.Target == "https://fail.test" {
						return errors.New("simulated crawl failure")
					}
					return nil
				},
			})
			return p, nil
		})

		targets := []string{
			"https://first.test",
			"https://fail.test",
			"https://third.test",
		}

		results, err := bp.ProcessBatch(context.Background(), targets)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if processedCount.Load() != 3 {
			t.Errorf("expected 3 processed, got %d", processedCount.Load())
		}
		// Check that the failed crawl has an error recorded
		if results[1].Err == nil {
			t.Error("expected error in second result")
		}
	})

	t.Run("factory failure is recorded on the job", func(t *testing.T) {
		t.Parallel()

		factoryErr := errors.New("cannot open output file")

		bp := NewBatchProcessor(func(target string) (*Pipeline, error) {
			if target == "https://broken.test" {
				return nil, factoryErr
			}
			p := New()
			p.AddStep(&mockStep{name: "noop"})
			return p, nil
		})

		targets := []string{
			"https://first.test",
			"https://broken.test",
		}

		results, err := bp.ProcessBatch(context.Background(), targets)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Err != nil {
			t.Errorf("expected first result to succeed, got %v", results[0].Err)
		}
		if !errors.Is(results[1].Err, factoryErr) {
			t.Errorf("expected factory error on second result, got %v", results[1].Err)
		}
	})

	t.Run("handles context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var startedCount atomic.Int32

		bp := NewBatchProcessor(
			func(_ string) (*Pipeline, error) {
				p := New()
				p.AddStep(&mockStep{
					name: "slow-step",
					doFunc: func(ctx context.Context, _ *Job) error {
						startedCount.Add(1)
						select {
						case <-ctx.Done():
							return ctx.Err()
						case <-time.After(time.Second):
							return nil
						}
					},
				})
				return p, nil
			},
			WithConcurrency(2),
		)

		targets := make([]string, 10)
		for i := range targets {
			targets[i] = "https://acme.test"
		}

		// Cancel after a short delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			cancel()
		}()

		_, err := bp.ProcessBatch(ctx, targets)

		// Should return context.Canceled
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		// Not all targets should have started
		//nolint:gosec // len(targets) is small, no overflow risk
		if startedCount.Load() >= int32(len(targets)) {
			t.Error("expected some targets to not start due to cancellation")
		}
	})
}

// TestBatchProcessorProcessBatchWithCallback tests callback-based processing.
func TestBatchProcessorProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	t.Run("calls callback for each result", func(t *testing.T) {
		t.Parallel()

		var callbackCount atomic.Int32
		var mu sync.Mutex
		receivedTargets := make(map[string]int)

		bp := NewBatchProcessor(newNoopFactory())

		targets := []string{
			"https://first.test",
			"https://second.test",
			"https://third.test",
		}

		err := bp.ProcessBatchWithCallback(
			context.Background(),
			targets,
			func(job *Job, index int) {
				callbackCount.Add(1)
				mu.Lock()
				receivedTargets[job.Target] = index
				mu.Unlock()
			},
		)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if callbackCount.Load() != 3 {
			t.Errorf("expected 3 callbacks, got %d", callbackCount.Load())
		}
		for i, target := range targets {
			index, ok := receivedTargets[target]
			if !ok {
				t.Errorf("missing callback for %q", target)
				continue
			}
			if index != i {
				t.Errorf("callback for %q: got index %d, expected %d", target, index, i)
			}
		}
	})

	t.Run("factory failure still reaches the callback", func(t *testing.T) {
		t.Parallel()

		factoryErr := errors.New("cannot open output file")

		bp := NewBatchProcessor(func(_ string) (*Pipeline, error) {
			return nil, factoryErr
		})

		var gotErr error
		err := bp.ProcessBatchWithCallback(
			context.Background(),
			[]string{"https://broken.test"},
			func(job *Job, _ int) {
				gotErr = job.Err
			},
		)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !errors.Is(gotErr, factoryErr) {
			t.Errorf("expected factory error on job, got %v", gotErr)
		}
	})
}
