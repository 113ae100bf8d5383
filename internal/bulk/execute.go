package bulk

import (
	"context"
	"fmt"
	"sync"

	"github.com/rshade/recongrid/internal/provider"
)

// Target is the bulk action lifecycle of a grid. *grid.Grid implements it.
type Target interface {
	BeginBulkAction() ([]string, error)
	CompleteBulkAction(err error) error
}

// PartialError is returned when some batches failed after others succeeded.
type PartialError struct {
	Succeeded []string
	Total     int
	Err       error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%d of %d processed: %v", len(e.Succeeded), e.Total, e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// SucceededIDs returns the ids of the batches that succeeded.
func (e *PartialError) SucceededIDs() []string {
	return e.Succeeded
}

// Execute deletes the target's selected rows through d in batches. The
// target's selection is cleared only when every batch succeeded; after a
// partial failure the error is a *PartialError naming the deleted ids. It
// returns the ids it attempted.
func Execute(ctx context.Context, target Target, d provider.Deleter, r *Runner) ([]string, error) {
	ids, err := target.BeginBulkAction()
	if err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		done []string
	)
	runErr := r.Run(ctx, ids, func(ctx context.Context, batch []string, _ int) error {
		if err := d.Delete(ctx, batch); err != nil {
			return err
		}
		mu.Lock()
		done = append(done, batch...)
		mu.Unlock()
		return nil
	})
	if runErr != nil && len(done) > 0 {
		runErr = &PartialError{Succeeded: done, Total: len(ids), Err: runErr}
	}
	if err := target.CompleteBulkAction(runErr); err != nil {
		return ids, err
	}
	return ids, runErr
}
