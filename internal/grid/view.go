package grid

import (
	"slices"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/recongrid/internal/grid/columns"
	"github.com/rshade/recongrid/internal/grid/datasource"
	"github.com/rshade/recongrid/internal/grid/pagination"
	"github.com/rshade/recongrid/internal/grid/search"
	"github.com/rshade/recongrid/internal/grid/sorting"
)

// View is a consistent snapshot of everything a renderer needs.
type View[T any] struct {
	Mode   datasource.Mode
	Status Status
	// Err is the error of the latest failed fetch while Status is StatusError.
	Err error
	// BulkErr is the error of the latest failed bulk action.
	BulkErr     error
	BulkPending bool

	Rows       []T
	Pagination pagination.State
	PageSizes  []int
	PageCount  int
	TotalCount int

	Sort      sorting.State
	Search    search.State
	Searching bool
	Filters   map[string]string

	// SelectedIDs is sorted.
	SelectedIDs      []string
	SelectedRows     []T
	PageAllSelected  bool
	PageSomeSelected bool

	Columns []columns.Def
	Footer  string
}

// IsSelected reports whether the row with id is selected.
func (v View[T]) IsSelected(id string) bool {
	_, found := slices.BinarySearch(v.SelectedIDs, id)
	return found
}

// HasPrevious reports whether a page exists before the current one.
func (v View[T]) HasPrevious() bool {
	return v.Pagination.PageIndex > 0
}

// HasNext reports whether a page exists after the current one.
func (v View[T]) HasNext() bool {
	return v.Pagination.PageIndex < v.PageCount-1
}

// Footer renders the selection summary shown under a grid, e.g.
// "3 of 137 row(s) selected.".
func Footer(selected, total int) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d of %d row(s) selected.", selected, total)
}
