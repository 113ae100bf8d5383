package grid

import (
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rshade/recongrid/internal/grid/columns"
	"github.com/rshade/recongrid/internal/grid/datasource"
	"github.com/rshade/recongrid/internal/grid/pagination"
	"github.com/rshade/recongrid/internal/grid/search"
	"github.com/rshade/recongrid/internal/grid/selection"
	"github.com/rshade/recongrid/internal/grid/sorting"
	"github.com/rshade/recongrid/internal/provider"
)

// Grid errors.
var (
	ErrNoIDFunc         = errors.New("grid: ID function is required")
	ErrNoDispatch       = errors.New("grid: Dispatch function is required")
	ErrNothingSelected  = errors.New("grid: no rows selected")
	ErrBulkInProgress   = errors.New("grid: a bulk action is already in progress")
	ErrNoBulkInProgress = errors.New("grid: no bulk action in progress")
	ErrRemoteMode       = errors.New("grid: operation requires local mode")
)

// Request is one fetch the grid wants performed. Seq increases with every
// request the grid issues.
type Request struct {
	Seq   uint64
	Query provider.Query
}

// Options configures a Grid.
type Options[T any] struct {
	// ID returns a row's stable identity. Required.
	ID selection.IDFunc[T]
	// Dispatch performs a Request and eventually calls Resolve. It is never
	// called with the grid's lock held. Required.
	Dispatch func(Request)

	Mode            datasource.Mode
	PageSizes       []int
	DefaultPageSize int
	// PaginationStore makes pagination controlled by the caller.
	PaginationStore pagination.Store

	Match           datasource.MatchFunc[T]
	Filters         map[string]datasource.FilterFunc[T]
	Comparators     sorting.Comparators[T]
	SortableColumns []string
	Columns         []columns.Def

	Events Events[T]
	Logger *zerolog.Logger
}

// Grid is the state of one data browser. It is safe for concurrent use.
type Grid[T any] struct {
	mu sync.Mutex

	id       selection.IDFunc[T]
	dispatch func(Request)
	log      zerolog.Logger

	adapter   *datasource.Adapter[T]
	pager     *pagination.Controller
	sorter    *sorting.Controller
	search    *search.Controller
	selection *selection.Set
	columns   *columns.Controller
	filters   map[string]string

	status  Status
	err     error
	rows    []T
	hasData bool
	meta    *pagination.Metadata
	known   map[string]T
	seq     uint64
	pending bool

	bulk    []string
	bulkErr error

	lastPagination pagination.State
	subs           []subscription[T]
	nextSub        int
}

// New creates a grid in StatusIdle. Call Mount to issue the first fetch.
func New[T any](opts Options[T]) (*Grid[T], error) {
	if opts.ID == nil {
		return nil, ErrNoIDFunc
	}
	if opts.Dispatch == nil {
		return nil, ErrNoDispatch
	}

	var pagerOpts []pagination.Option
	if len(opts.PageSizes) > 0 {
		pagerOpts = append(pagerOpts, pagination.WithPageSizes(opts.PageSizes...))
	}
	if opts.DefaultPageSize > 0 {
		pagerOpts = append(pagerOpts, pagination.WithDefaultPageSize(opts.DefaultPageSize))
	}
	if opts.PaginationStore != nil {
		pagerOpts = append(pagerOpts, pagination.WithStore(opts.PaginationStore))
	}
	pager, err := pagination.NewController(pagerOpts...)
	if err != nil {
		return nil, err
	}

	cols, err := columns.NewController(opts.Columns...)
	if err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	g := &Grid[T]{
		id:       opts.ID,
		dispatch: opts.Dispatch,
		log:      log.With().Str("component", "grid").Str("mode", opts.Mode.String()).Logger(),
		adapter: datasource.New(datasource.Config[T]{
			Mode:        opts.Mode,
			Match:       opts.Match,
			Filters:     opts.Filters,
			Comparators: opts.Comparators,
		}),
		pager:          pager,
		sorter:         sorting.NewController(opts.SortableColumns...),
		search:         search.NewController(),
		selection:      selection.New(),
		columns:        cols,
		filters:        map[string]string{},
		known:          map[string]T{},
		lastPagination: pager.State(),
	}
	if !opts.Events.empty() {
		g.subs = append(g.subs, subscription[T]{id: 0, events: opts.Events})
	}
	return g, nil
}

// txn collects what a transition changed while the lock is held.
type txn[T any] struct {
	prevPagination pagination.State
	prevSelection  *selection.Set
	changed        bool
	commit         *string
	bulk           []string
	request        *Request
}

func (g *Grid[T]) begin() *txn[T] {
	g.mu.Lock()
	return &txn[T]{
		prevPagination: g.lastPagination,
		prevSelection:  g.selection.Clone(),
	}
}

// end releases the lock, then notifies listeners and dispatches the request
// the transition issued, if any.
func (g *Grid[T]) end(tx *txn[T]) {
	cur := g.pager.State()
	n := notification[T]{
		commit:     tx.commit,
		bulk:       tx.bulk,
		selChanged: !g.selection.Equal(tx.prevSelection),
	}
	if cur != tx.prevPagination {
		n.pagination = &cur
	}
	g.lastPagination = cur
	if n.selChanged {
		n.selection = g.selectedRows()
	}
	n.changed = tx.changed || n.pagination != nil || n.selChanged || n.bulk != nil
	subs := slices.Clone(g.subs)
	if n.changed && slices.ContainsFunc(subs, func(s subscription[T]) bool { return s.events.OnChange != nil }) {
		n.view = g.viewLocked()
	}
	dispatch := g.dispatch
	g.mu.Unlock()

	n.send(subs)
	if tx.request != nil {
		dispatch(*tx.request)
	}
}

// reject logs a validation error. State is unchanged.
func (g *Grid[T]) reject(op string, err error) error {
	if err != nil {
		g.log.Debug().Err(err).Str("op", op).Msg("rejected invalid update")
	}
	return err
}

func (g *Grid[T]) remote() bool {
	return g.adapter.Mode() == datasource.ModeRemote
}

// query derives the request for the current state. Local mode always asks
// for the whole dataset.
func (g *Grid[T]) query() provider.Query {
	if !g.remote() {
		return provider.Query{All: true}
	}
	state := g.pager.State()
	q := provider.Query{
		PageIndex: state.PageIndex,
		PageSize:  state.PageSize,
		Sort:      g.sorter.State(),
		Search:    g.search.Committed(),
	}
	if len(g.filters) > 0 {
		q.Filters = maps.Clone(g.filters)
	}
	return q
}

// fetch issues a request for the current state, superseding any in flight.
func (g *Grid[T]) fetch(tx *txn[T]) Request {
	g.seq++
	req := Request{Seq: g.seq, Query: g.query()}
	g.status = StatusLoading
	g.pending = true
	tx.request = &req
	tx.changed = true
	g.log.Debug().Uint64("seq", req.Seq).Int("page_index", req.Query.PageIndex).
		Int("page_size", req.Query.PageSize).Str("search", req.Query.Search).Msg("dispatching fetch")
	return req
}

// paramsChanged reacts to a change of pagination, sort, search or filters.
// Remote grids refetch once mounted; local grids recompute and clamp.
func (g *Grid[T]) paramsChanged(tx *txn[T]) {
	tx.changed = true
	if g.remote() {
		if g.status != StatusIdle {
			g.fetch(tx)
		}
		return
	}
	if g.hasData {
		g.clampLocal()
	}
}

func (g *Grid[T]) clampLocal() {
	res := g.derive()
	if s, changed := g.pager.Clamp(res.PageCount); changed {
		g.log.Debug().Int("page_index", s.PageIndex).Int("page_count", res.PageCount).Msg("clamped page index")
	}
}

func (g *Grid[T]) derive() datasource.Result[T] {
	return g.adapter.Materialize(datasource.Input[T]{
		Rows:       g.rows,
		Pagination: g.pager.State(),
		Sort:       g.sorter.State(),
		Search:     g.search.Committed(),
		Filters:    g.filters,
		Meta:       g.meta,
	})
}

// Mount issues the first fetch. Calling it again has no effect.
func (g *Grid[T]) Mount() {
	tx := g.begin()
	defer g.end(tx)
	if g.status != StatusIdle {
		return
	}
	g.fetch(tx)
}

// Reload refetches the current state. It is the retry after a failure and
// the way a local grid picks up a changed dataset.
func (g *Grid[T]) Reload() {
	tx := g.begin()
	defer g.end(tx)
	g.fetch(tx)
}

// Resolve delivers the outcome of req. It reports whether the outcome was
// applied; responses to superseded requests or to queries that no longer
// match the grid's state are discarded without any change.
func (g *Grid[T]) Resolve(req Request, page provider.Page[T], err error) bool {
	tx := g.begin()
	defer g.end(tx)

	if req.Seq != g.seq || !g.pending || !req.Query.Equal(g.query()) {
		g.log.Debug().Uint64("seq", req.Seq).Uint64("latest", g.seq).Msg("discarding stale response")
		return false
	}
	g.pending = false
	tx.changed = true

	if err != nil {
		g.status = StatusError
		g.err = err
		g.search.Settle(req.Seq)
		g.log.Warn().Err(err).Uint64("seq", req.Seq).Msg("fetch failed")
		return true
	}

	if g.remote() {
		pageCount := page.Meta.PageCount()
		if req.Query.PageIndex > pagination.LastPageIndex(pageCount) {
			s, _ := g.pager.Clamp(pageCount)
			g.log.Debug().Int("page_index", s.PageIndex).Int("page_count", pageCount).
				Msg("page out of range, refetching last page")
			g.fetch(tx)
			return true
		}
		meta := page.Meta
		g.meta = &meta
		g.rows = page.Rows
		g.rememberPage(page.Rows)
	} else {
		g.loadLocal(page.Rows)
	}

	g.status = StatusLoaded
	g.err = nil
	g.search.Settle(req.Seq)
	return true
}

// rememberPage keeps the rows of the current page and every selected row
// seen so far, so selected rows can be reported across pages.
func (g *Grid[T]) rememberPage(rows []T) {
	known := make(map[string]T, len(rows)+g.selection.Len())
	for _, id := range g.selection.IDs() {
		if row, ok := g.known[id]; ok {
			known[id] = row
		}
	}
	for _, row := range rows {
		known[g.id(row)] = row
	}
	g.known = known
}

// loadLocal replaces the local dataset. Selected ids that no longer exist
// are dropped.
func (g *Grid[T]) loadLocal(rows []T) {
	g.rows = rows
	g.meta = nil
	g.hasData = true
	g.known = make(map[string]T, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		id := g.id(row)
		g.known[id] = row
		ids = append(ids, id)
	}
	g.selection.Retain(ids)
	g.clampLocal()
}

// SetData replaces the dataset of a local grid directly, superseding any
// fetch in flight.
func (g *Grid[T]) SetData(rows []T) error {
	tx := g.begin()
	defer g.end(tx)
	if g.remote() {
		return g.reject("set_data", ErrRemoteMode)
	}
	g.seq++
	g.pending = false
	g.loadLocal(rows)
	g.status = StatusLoaded
	g.err = nil
	tx.changed = true
	return nil
}

// SetPagination applies a pagination updater.
func (g *Grid[T]) SetPagination(update pagination.Updater) error {
	tx := g.begin()
	defer g.end(tx)
	prev := g.pager.State()
	next, err := g.pager.Set(update)
	if err != nil {
		return g.reject("set_pagination", err)
	}
	if g.remote() && g.meta != nil {
		// The last response's total bounds the index until a new one arrives.
		if s, clamped := g.pager.Clamp(pagination.PageCount(g.meta.Total, next.PageSize)); clamped {
			g.log.Debug().Int("page_index", s.PageIndex).Msg("clamped page index to known page count")
			next = s
		}
	}
	if next != prev {
		g.paramsChanged(tx)
	}
	return nil
}

// SetPageIndex moves to a zero-based page.
func (g *Grid[T]) SetPageIndex(index int) error {
	return g.SetPagination(func(s pagination.State) pagination.State {
		s.PageIndex = index
		return s
	})
}

// SetPageSize changes the page size and returns to the first page.
func (g *Grid[T]) SetPageSize(size int) error {
	return g.SetPagination(func(s pagination.State) pagination.State {
		s.PageSize = size
		return s
	})
}

// NextPage advances one page unless the current page is the last known one.
func (g *Grid[T]) NextPage() error {
	return g.SetPagination(func(s pagination.State) pagination.State {
		// Runs under g.mu inside SetPagination.
		if pageCount := g.derive().PageCount; pageCount > 0 && s.PageIndex >= pageCount-1 {
			return s
		}
		s.PageIndex++
		return s
	})
}

// PrevPage goes back one page, stopping at the first.
func (g *Grid[T]) PrevPage() error {
	return g.SetPagination(func(s pagination.State) pagination.State {
		if s.PageIndex > 0 {
			s.PageIndex--
		}
		return s
	})
}

// Sync picks up a change a parent made to a controlled pagination store.
// The parent is not notified of its own change.
func (g *Grid[T]) Sync() {
	tx := g.begin()
	defer g.end(tx)
	if !g.pager.Controlled() {
		return
	}
	cur := g.pager.State()
	if cur == g.lastPagination {
		return
	}
	tx.prevPagination = cur
	g.lastPagination = cur
	g.paramsChanged(tx)
}

// ToggleSort cycles a column through ascending, descending and unsorted.
func (g *Grid[T]) ToggleSort(columnID string) error {
	tx := g.begin()
	defer g.end(tx)
	if _, err := g.sorter.Toggle(columnID); err != nil {
		return g.reject("toggle_sort", err)
	}
	g.paramsChanged(tx)
	return nil
}

// SetSort replaces the sort state.
func (g *Grid[T]) SetSort(state sorting.State) error {
	tx := g.begin()
	defer g.end(tx)
	prev := g.sorter.State()
	next, err := g.sorter.Set(state)
	if err != nil {
		return g.reject("set_sort", err)
	}
	if !next.Equal(prev) {
		g.paramsChanged(tx)
	}
	return nil
}

// SetDraft binds live search input. It never triggers a fetch.
func (g *Grid[T]) SetDraft(text string) {
	tx := g.begin()
	defer g.end(tx)
	if g.search.Draft() == text {
		return
	}
	g.search.SetDraft(text)
	tx.changed = true
}

// CommitSearch commits the draft. A changed committed value returns to the
// first page and, in remote mode, fetches with the searching indicator set
// until the response arrives.
func (g *Grid[T]) CommitSearch() {
	tx := g.begin()
	defer g.end(tx)
	draft := g.search.Draft()
	if !g.search.Commit() {
		if draft != g.search.Draft() {
			tx.changed = true
		}
		return
	}
	text := g.search.Committed()
	tx.commit = &text
	g.searchChanged(tx)
}

// SetCommittedSearch adopts a committed search value owned by the caller,
// e.g. a programmatic clear. The draft follows unless the user is typing.
func (g *Grid[T]) SetCommittedSearch(text string) {
	tx := g.begin()
	defer g.end(tx)
	if !g.search.Reconcile(text) {
		return
	}
	g.searchChanged(tx)
}

// ClearSearch empties and commits the search box.
func (g *Grid[T]) ClearSearch() {
	g.SetDraft("")
	g.CommitSearch()
}

func (g *Grid[T]) searchChanged(tx *txn[T]) {
	g.pager.Reset()
	g.paramsChanged(tx)
	if tx.request != nil {
		g.search.BeginSearch(tx.request.Seq)
	}
}

// SetFilter sets a filter value; an empty value removes the filter. A change
// returns to the first page.
func (g *Grid[T]) SetFilter(key, value string) {
	tx := g.begin()
	defer g.end(tx)
	if g.filters[key] == value {
		return
	}
	if value == "" {
		delete(g.filters, key)
	} else {
		g.filters[key] = value
	}
	g.pager.Reset()
	g.paramsChanged(tx)
}

// ClearFilters removes every filter.
func (g *Grid[T]) ClearFilters() {
	tx := g.begin()
	defer g.end(tx)
	if len(g.filters) == 0 {
		return
	}
	clear(g.filters)
	g.pager.Reset()
	g.paramsChanged(tx)
}

// Toggle flips the selection of one row.
func (g *Grid[T]) Toggle(id string) {
	tx := g.begin()
	defer g.end(tx)
	g.selection.Toggle(id)
}

// ToggleAllOnPage selects every row on the current page, or deselects them
// when all are already selected. Rows on other pages are untouched.
func (g *Grid[T]) ToggleAllOnPage() {
	tx := g.begin()
	defer g.end(tx)
	g.selection.ToggleAllOnPage(selection.IDsOf(g.derive().VisibleRows, g.id))
}

// ClearSelection deselects everything.
func (g *Grid[T]) ClearSelection() {
	tx := g.begin()
	defer g.end(tx)
	g.selection.Clear()
}

// IsSelected reports whether the row with id is selected.
func (g *Grid[T]) IsSelected(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selection.IsSelected(id)
}

// SetColumnVisible shows or hides a column.
func (g *Grid[T]) SetColumnVisible(id string, visible bool) error {
	tx := g.begin()
	defer g.end(tx)
	if err := g.columns.SetVisible(id, visible); err != nil {
		return g.reject("set_column_visible", err)
	}
	tx.changed = true
	return nil
}

// ToggleColumn flips a column's visibility.
func (g *Grid[T]) ToggleColumn(id string) error {
	tx := g.begin()
	defer g.end(tx)
	if err := g.columns.ToggleVisible(id); err != nil {
		return g.reject("toggle_column", err)
	}
	tx.changed = true
	return nil
}

// ColumnDefs returns every column, hidden ones included.
func (g *Grid[T]) ColumnDefs() []columns.Def {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.columns.Columns()
}

// ColumnVisible reports whether the column id is shown.
func (g *Grid[T]) ColumnVisible(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.columns.Visible(id)
}

// SetColumnWidth overrides a column's width.
func (g *Grid[T]) SetColumnWidth(id string, width int) error {
	tx := g.begin()
	defer g.end(tx)
	if err := g.columns.SetWidth(id, width); err != nil {
		return g.reject("set_column_width", err)
	}
	tx.changed = true
	return nil
}

// BeginBulkAction starts a bulk action over the selected ids and returns
// them.
func (g *Grid[T]) BeginBulkAction() ([]string, error) {
	tx := g.begin()
	defer g.end(tx)
	if g.bulk != nil {
		return nil, ErrBulkInProgress
	}
	ids := g.selection.IDs()
	if len(ids) == 0 {
		return nil, ErrNothingSelected
	}
	g.bulk = ids
	g.bulkErr = nil
	tx.bulk = slices.Clone(ids)
	return ids, nil
}

// partialFailure is implemented by bulk errors that know which ids were
// processed before the failure.
type partialFailure interface {
	SucceededIDs() []string
}

// CompleteBulkAction finishes the bulk action in progress and refetches. On
// success the selection is cleared. On failure the error is shown in the
// view and only the ids the error reports as processed are deselected.
func (g *Grid[T]) CompleteBulkAction(err error) error {
	tx := g.begin()
	defer g.end(tx)
	if g.bulk == nil {
		return ErrNoBulkInProgress
	}
	g.bulk = nil
	tx.changed = true
	if err != nil {
		g.bulkErr = err
		g.log.Warn().Err(err).Msg("bulk action failed")
		var partial partialFailure
		if errors.As(err, &partial) {
			g.selection.Deselect(partial.SucceededIDs()...)
		}
		// Batches that succeeded changed the provider.
		if g.status != StatusIdle {
			g.fetch(tx)
		}
		return nil
	}
	g.bulkErr = nil
	g.selection.Clear()
	if g.status != StatusIdle {
		g.fetch(tx)
	}
	return nil
}

func (g *Grid[T]) selectedRows() []T {
	ids := g.selection.IDs()
	rows := make([]T, 0, len(ids))
	for _, id := range ids {
		if row, ok := g.known[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// Snapshot returns the current view.
func (g *Grid[T]) Snapshot() View[T] {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewLocked()
}

func (g *Grid[T]) viewLocked() View[T] {
	res := g.derive()
	pageIDs := selection.IDsOf(res.VisibleRows, g.id)
	v := View[T]{
		Mode:             g.adapter.Mode(),
		Status:           g.status,
		Err:              g.err,
		BulkErr:          g.bulkErr,
		BulkPending:      g.bulk != nil,
		Rows:             res.VisibleRows,
		Pagination:       g.pager.State(),
		PageSizes:        g.pager.PageSizes(),
		PageCount:        res.PageCount,
		TotalCount:       res.TotalCount,
		Sort:             g.sorter.State(),
		Search:           g.search.State(),
		Searching:        g.search.IsSearching(),
		Filters:          maps.Clone(g.filters),
		SelectedIDs:      g.selection.IDs(),
		SelectedRows:     g.selectedRows(),
		PageAllSelected:  g.selection.AllSelected(pageIDs),
		PageSomeSelected: g.selection.SomeSelected(pageIDs),
		Columns:          g.columns.VisibleColumns(),
	}
	v.Footer = Footer(len(v.SelectedIDs), v.TotalCount)
	return v
}
