package provider

import (
	"context"
	"slices"
	"sync"

	"github.com/rshade/recongrid/internal/grid/datasource"
	"github.com/rshade/recongrid/internal/grid/pagination"
	"github.com/rshade/recongrid/internal/grid/selection"
	"github.com/rshade/recongrid/internal/grid/sorting"
)

// MemoryConfig configures a MemoryProvider.
type MemoryConfig[T any] struct {
	ID          selection.IDFunc[T]
	Match       datasource.MatchFunc[T]
	Filters     map[string]datasource.FilterFunc[T]
	Comparators sorting.Comparators[T]
	// BeforeFetch, when set, runs before every fetch; a non-nil error fails it.
	BeforeFetch func(ctx context.Context, q Query) error
}

// MemoryProvider serves pages from a slice. It is safe for concurrent use.
type MemoryProvider[T any] struct {
	mu      sync.RWMutex
	rows    []T
	cfg     MemoryConfig[T]
	adapter *datasource.Adapter[T]
}

// NewMemoryProvider creates a provider over a copy of rows.
func NewMemoryProvider[T any](rows []T, cfg MemoryConfig[T]) *MemoryProvider[T] {
	return &MemoryProvider[T]{
		rows: slices.Clone(rows),
		cfg:  cfg,
		adapter: datasource.New(datasource.Config[T]{
			Mode:        datasource.ModeLocal,
			Match:       cfg.Match,
			Filters:     cfg.Filters,
			Comparators: cfg.Comparators,
		}),
	}
}

// FetchPage filters, sorts and pages the rows.
func (p *MemoryProvider[T]) FetchPage(ctx context.Context, q Query) (Page[T], error) {
	if err := ctx.Err(); err != nil {
		return Page[T]{}, &NetworkError{Op: "fetch", Err: err}
	}
	if p.cfg.BeforeFetch != nil {
		if err := p.cfg.BeforeFetch(ctx, q); err != nil {
			return Page[T]{}, AsNetworkError("fetch", err)
		}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if q.All {
		rows := sorting.Sort(p.adapter.Filter(p.rows, q.Search, q.Filters), q.Sort, p.cfg.Comparators)
		return Page[T]{
			Rows: rows,
			Meta: pagination.NewMetadata(pagination.State{}, len(rows)),
		}, nil
	}

	res := p.adapter.Materialize(datasource.Input[T]{
		Rows:       p.rows,
		Pagination: q.State(),
		Sort:       q.Sort,
		Search:     q.Search,
		Filters:    q.Filters,
	})
	return Page[T]{
		Rows: slices.Clone(res.VisibleRows),
		Meta: pagination.NewMetadata(q.State(), res.TotalCount),
	}, nil
}

// Delete removes rows by id. Unknown ids are ignored.
func (p *MemoryProvider[T]) Delete(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return &NetworkError{Op: "delete", Err: err}
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = slices.DeleteFunc(p.rows, func(row T) bool {
		return drop[p.cfg.ID(row)]
	})
	return nil
}

// Add appends rows.
func (p *MemoryProvider[T]) Add(rows ...T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = append(p.rows, rows...)
}

// Len returns the number of rows held.
func (p *MemoryProvider[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.rows)
}
