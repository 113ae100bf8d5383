// Package datasource turns the rows a grid holds into the rows it shows.
//
// In local mode the grid holds the complete dataset and the adapter filters,
// sorts and slices it. In remote mode the grid holds exactly one page that a
// provider already narrowed, and the counts come from the page metadata.
package datasource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rshade/recongrid/internal/grid/pagination"
	"github.com/rshade/recongrid/internal/grid/sorting"
)

// Mode says who owns the row set.
type Mode int

const (
	// ModeLocal computes pages from an in-memory dataset.
	ModeLocal Mode = iota
	// ModeRemote shows one provider page as-is.
	ModeRemote
)

// ErrInvalidMode is returned by ParseMode.
var ErrInvalidMode = errors.New("invalid data source mode")

func (m Mode) String() string {
	switch m {
	case ModeLocal:
		return "local"
	case ModeRemote:
		return "remote"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "local" or "remote". An empty string selects remote.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local":
		return ModeLocal, nil
	case "remote", "":
		return ModeRemote, nil
	default:
		return 0, fmt.Errorf("%w: %q (must be local or remote)", ErrInvalidMode, s)
	}
}

// MatchFunc reports whether row matches the committed search text. It is
// only called with non-empty text.
type MatchFunc[T any] func(row T, text string) bool

// FilterFunc reports whether row passes a filter set to value.
type FilterFunc[T any] func(row T, value string) bool

// Config configures an Adapter.
type Config[T any] struct {
	Mode        Mode
	Match       MatchFunc[T]
	Filters     map[string]FilterFunc[T]
	Comparators sorting.Comparators[T]
}

// Input is everything the adapter needs to derive a page.
type Input[T any] struct {
	Rows       []T
	Pagination pagination.State
	Sort       sorting.State
	Search     string
	Filters    map[string]string
	// Meta is the metadata of the page held in remote mode.
	Meta *pagination.Metadata
}

// Result is the derived view of one page.
type Result[T any] struct {
	VisibleRows []T
	PageCount   int
	TotalCount  int
}

// Adapter derives pages under one fixed Mode.
type Adapter[T any] struct {
	cfg Config[T]
}

// New creates an adapter.
func New[T any](cfg Config[T]) *Adapter[T] {
	return &Adapter[T]{cfg: cfg}
}

// Mode returns the adapter's mode.
func (a *Adapter[T]) Mode() Mode {
	return a.cfg.Mode
}

// Materialize derives the visible page. It never invents rows: a page index
// past the end yields no rows in local mode and the orchestrator is expected
// to clamp.
func (a *Adapter[T]) Materialize(in Input[T]) Result[T] {
	if a.cfg.Mode == ModeRemote {
		return a.remote(in)
	}
	return a.local(in)
}

func (a *Adapter[T]) remote(in Input[T]) Result[T] {
	res := Result[T]{VisibleRows: in.Rows}
	if in.Meta != nil {
		res.TotalCount = in.Meta.Total
		res.PageCount = in.Meta.PageCount()
	}
	return res
}

func (a *Adapter[T]) local(in Input[T]) Result[T] {
	matched := a.Filter(in.Rows, in.Search, in.Filters)
	sorted := sorting.Sort(matched, in.Sort, a.cfg.Comparators)

	res := Result[T]{
		TotalCount: len(sorted),
		PageCount:  pagination.PageCount(len(sorted), in.Pagination.PageSize),
	}
	res.VisibleRows = Slice(sorted, in.Pagination)
	return res
}

// Filter returns the rows matching the search text and every filter, in
// input order. Filters without a registered FilterFunc and empty filter
// values are ignored.
func (a *Adapter[T]) Filter(rows []T, text string, filters map[string]string) []T {
	text = strings.TrimSpace(text)
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if text != "" && a.cfg.Match != nil && !a.cfg.Match(row, text) {
			continue
		}
		if !a.passes(row, filters) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (a *Adapter[T]) passes(row T, filters map[string]string) bool {
	for key, value := range filters {
		if value == "" {
			continue
		}
		fn, ok := a.cfg.Filters[key]
		if !ok {
			continue
		}
		if !fn(row, value) {
			return false
		}
	}
	return true
}

// Slice returns the rows of the page described by state. A non-positive page
// size returns every row.
func Slice[T any](rows []T, state pagination.State) []T {
	if state.PageSize <= 0 {
		return rows
	}
	start := state.Offset()
	if start >= len(rows) || start < 0 {
		return []T{}
	}
	end := min(start+state.PageSize, len(rows))
	return rows[start:end]
}
