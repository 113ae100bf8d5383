package bulk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Default batching configuration.
const (
	DefaultBatchSize = 100
	MinBatchSize     = 1
	MaxBatchSize     = 1000
)

// Common runner errors.
var (
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 1000")
	ErrNilBatchFunc     = errors.New("batch func cannot be nil")
	ErrNoIDs            = errors.New("no ids to process")
)

// BatchFunc processes one batch of ids. batchIndex is 0-based.
type BatchFunc func(ctx context.Context, ids []string, batchIndex int) error

// ProgressFunc is called after each successful batch.
type ProgressFunc func(ProgressSnapshot)

// Runner splits ids into batches and runs a BatchFunc over them.
type Runner struct {
	batchSize   int
	concurrency int
	onProgress  ProgressFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency runs up to n batches at once. Values below 2 run
// sequentially.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.concurrency = max(n, 1)
	}
}

// WithProgress sets a progress callback. Concurrent runs call it from several
// goroutines, one call at a time.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) {
		r.onProgress = fn
	}
}

// NewRunner creates a runner with the given batch size.
func NewRunner(batchSize int, opts ...Option) (*Runner, error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	r := &Runner{batchSize: batchSize, concurrency: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// BatchSize returns the configured batch size.
func (r *Runner) BatchSize() int {
	return r.batchSize
}

// Batches returns the [start, end) bounds of each batch for total ids.
func (r *Runner) Batches(total int) [][2]int {
	n := total / r.batchSize
	if total%r.batchSize > 0 {
		n++
	}
	bounds := make([][2]int, n)
	for i := range n {
		start := i * r.batchSize
		bounds[i] = [2]int{start, min(start+r.batchSize, total)}
	}
	return bounds
}

// Run processes ids in batches. Sequential runs stop at the first failing
// batch; concurrent runs let started batches finish and join every failure.
func (r *Runner) Run(ctx context.Context, ids []string, fn BatchFunc) error {
	if len(ids) == 0 {
		return ErrNoIDs
	}
	if fn == nil {
		return ErrNilBatchFunc
	}

	bounds := r.Batches(len(ids))
	progress := NewProgress(len(ids), len(bounds), r.batchSize)
	var mu sync.Mutex
	done := func(n int) {
		mu.Lock()
		defer mu.Unlock()
		progress.AddProcessed(n)
		if r.onProgress != nil {
			r.onProgress(progress.Snapshot())
		}
	}

	if r.concurrency <= 1 {
		for i, b := range bounds {
			if err := ctx.Err(); err != nil {
				return err
			}
			batch := ids[b[0]:b[1]]
			if err := fn(ctx, batch, i); err != nil {
				return fmt.Errorf("batch %d failed: %w", i, err)
			}
			done(len(batch))
		}
		return nil
	}

	var (
		eg      errgroup.Group
		errs    = make([]error, len(bounds))
		stopped error
	)
	eg.SetLimit(r.concurrency)
	for i, b := range bounds {
		if err := ctx.Err(); err != nil {
			stopped = err
			break
		}
		batch := ids[b[0]:b[1]]
		eg.Go(func() error {
			if err := fn(ctx, batch, i); err != nil {
				errs[i] = fmt.Errorf("batch %d failed: %w", i, err)
				return nil
			}
			done(len(batch))
			return nil
		})
	}
	_ = eg.Wait() // Batch errors are collected in errs.
	return errors.Join(append(errs, stopped)...)
}
