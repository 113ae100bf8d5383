package grid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/recongrid/internal/bulk"
	"github.com/rshade/recongrid/internal/grid/columns"
	"github.com/rshade/recongrid/internal/grid/datasource"
	"github.com/rshade/recongrid/internal/grid/pagination"
	"github.com/rshade/recongrid/internal/grid/sorting"
	"github.com/rshade/recongrid/internal/provider"
)

type asset struct {
	ID     string
	Name   string
	Status string
}

func assetID(a asset) string { return a.ID }

// assets returns n rows; exactly three names contain "alpha" when n >= 93.
func assets(n int) []asset {
	out := make([]asset, 0, n)
	for i := range n {
		name := fmt.Sprintf("asset-%03d", i)
		if i%46 == 0 {
			name = fmt.Sprintf("alpha-%03d", i)
		}
		status := "active"
		if i%2 == 1 {
			status = "paused"
		}
		out = append(out, asset{ID: fmt.Sprintf("a%03d", i), Name: name, Status: status})
	}
	return out
}

func matchAsset(a asset, text string) bool {
	return strings.Contains(a.Name, text)
}

func assetFilters() map[string]datasource.FilterFunc[asset] {
	return map[string]datasource.FilterFunc[asset]{
		"status": func(a asset, v string) bool { return a.Status == v },
	}
}

func assetComparators() sorting.Comparators[asset] {
	return sorting.Comparators[asset]{
		"name": func(a, b asset) int { return strings.Compare(a.Name, b.Name) },
	}
}

// recorder captures dispatched requests so tests decide when and in which
// order they resolve.
type recorder struct {
	mu   sync.Mutex
	reqs []Request
}

func (r *recorder) dispatch(req Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reqs)
}

func (r *recorder) last(t *testing.T) Request {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.reqs, "no request dispatched")
	return r.reqs[len(r.reqs)-1]
}

type fixture struct {
	grid *Grid[asset]
	rec  *recorder
	data *provider.MemoryProvider[asset]
}

func newFixture(t *testing.T, mode datasource.Mode, n int, mutate ...func(*Options[asset])) *fixture {
	t.Helper()
	rec := &recorder{}
	opts := Options[asset]{
		ID:          assetID,
		Dispatch:    rec.dispatch,
		Mode:        mode,
		Match:       matchAsset,
		Filters:     assetFilters(),
		Comparators: assetComparators(),
		Columns: []columns.Def{
			{ID: "name", Title: "Name", Width: 30, Sortable: true},
			{ID: "status", Title: "Status", Width: 10},
		},
	}
	for _, m := range mutate {
		m(&opts)
	}
	g, err := New(opts)
	require.NoError(t, err)

	return &fixture{
		grid: g,
		rec:  rec,
		data: provider.NewMemoryProvider(assets(n), provider.MemoryConfig[asset]{
			ID:          assetID,
			Match:       matchAsset,
			Filters:     assetFilters(),
			Comparators: assetComparators(),
		}),
	}
}

// serve answers req from the in-memory dataset and resolves it.
func (f *fixture) serve(t *testing.T, req Request) bool {
	t.Helper()
	page, err := f.data.FetchPage(context.Background(), req.Query)
	require.NoError(t, err)
	return f.grid.Resolve(req, page, nil)
}

// serveLast resolves the most recent request.
func (f *fixture) serveLast(t *testing.T) bool {
	t.Helper()
	return f.serve(t, f.rec.last(t))
}

func TestNew_RequiresIDAndDispatch(t *testing.T) {
	_, err := New(Options[asset]{Dispatch: func(Request) {}})
	require.ErrorIs(t, err, ErrNoIDFunc)

	_, err = New(Options[asset]{ID: assetID})
	require.ErrorIs(t, err, ErrNoDispatch)

	_, err = New(Options[asset]{ID: assetID, Dispatch: func(Request) {}, DefaultPageSize: 15})
	require.ErrorIs(t, err, pagination.ErrInvalidPageSize)
}

func TestGrid_Lifecycle(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	assert.Equal(t, StatusIdle, f.grid.Snapshot().Status)

	f.grid.Mount()
	assert.Equal(t, StatusLoading, f.grid.Snapshot().Status)
	f.grid.Mount()
	assert.Equal(t, 1, f.rec.count(), "mount is idempotent")

	require.True(t, f.serveLast(t))
	v := f.grid.Snapshot()
	assert.Equal(t, StatusLoaded, v.Status)
	assert.Len(t, v.Rows, 10)
	assert.Equal(t, "loaded", v.Status.String())
}

func TestRemote_CountsComeFromMetadata(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	f.grid.Mount()
	require.True(t, f.serveLast(t))

	require.NoError(t, f.grid.SetPageIndex(13))
	req := f.rec.last(t)
	assert.Equal(t, 13, req.Query.PageIndex)
	require.True(t, f.serve(t, req))

	v := f.grid.Snapshot()
	assert.Equal(t, 14, v.PageCount)
	assert.Equal(t, 137, v.TotalCount)
	assert.Len(t, v.Rows, 7)
	assert.Equal(t, "a130", v.Rows[0].ID)
	assert.False(t, v.HasNext())
	assert.True(t, v.HasPrevious())
}

func TestRemote_LastRequestWins(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	f.grid.Mount()
	require.True(t, f.serveLast(t))

	require.NoError(t, f.grid.NextPage())
	page1 := f.rec.last(t)
	require.NoError(t, f.grid.NextPage())
	page2 := f.rec.last(t)
	require.Equal(t, 1, page1.Query.PageIndex)
	require.Equal(t, 2, page2.Query.PageIndex)

	assert.True(t, f.serve(t, page2))
	assert.False(t, f.serve(t, page1), "older response must be discarded")

	v := f.grid.Snapshot()
	assert.Equal(t, StatusLoaded, v.Status)
	assert.Equal(t, 2, v.Pagination.PageIndex)
	require.Len(t, v.Rows, 10)
	assert.Equal(t, "a020", v.Rows[0].ID)
}

func TestRemote_StaleResponseCausesNoChange(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	f.grid.Mount()
	first := f.rec.last(t)
	require.NoError(t, f.grid.NextPage())

	changes := 0
	unsubscribe := f.grid.Subscribe(Events[asset]{OnChange: func(View[asset]) { changes++ }})
	defer unsubscribe()

	assert.False(t, f.serve(t, first))
	assert.Zero(t, changes, "stale responses do not notify")
	assert.Equal(t, StatusLoading, f.grid.Snapshot().Status)

	// Same sequence, different query: also stale.
	req := f.rec.last(t)
	forged := Request{Seq: req.Seq, Query: req.Query}
	forged.Query.PageIndex = 7
	assert.False(t, f.serve(t, forged))

	assert.True(t, f.serve(t, req))
	assert.False(t, f.serve(t, req), "a response is applied once")
}

func TestRemote_ClampsToKnownPageCount(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	f.grid.Mount()
	require.True(t, f.serveLast(t))

	require.NoError(t, f.grid.SetPageIndex(14))
	v := f.grid.Snapshot()
	assert.Equal(t, 13, v.Pagination.PageIndex)
	assert.Equal(t, 14, v.PageCount)

	req := f.rec.last(t)
	assert.Equal(t, 13, req.Query.PageIndex, "no request beyond the known last page")
	require.True(t, f.serve(t, req))
	assert.Len(t, f.grid.Snapshot().Rows, 7)

	n := f.rec.count()
	require.NoError(t, f.grid.SetPageIndex(20))
	assert.Equal(t, n, f.rec.count(), "clamping onto the current page fetches nothing")
}

func TestRemote_ClampsWhenServerTotalShrinks(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	f.grid.Mount()
	require.True(t, f.serveLast(t))
	require.NoError(t, f.grid.SetPageIndex(13))
	require.True(t, f.serveLast(t))

	// The server loses 20 rows, so page 13 no longer exists.
	ids := make([]string, 0, 20)
	for i := range 20 {
		ids = append(ids, fmt.Sprintf("a%03d", i))
	}
	require.NoError(t, f.data.Delete(context.Background(), ids))

	var paged []pagination.State
	f.grid.Subscribe(Events[asset]{OnPaginationChange: func(s pagination.State) { paged = append(paged, s) }})

	f.grid.Reload()
	outOfRange := f.rec.last(t)
	require.Equal(t, 13, outOfRange.Query.PageIndex)
	require.True(t, f.serve(t, outOfRange))

	v := f.grid.Snapshot()
	assert.Equal(t, 11, v.Pagination.PageIndex)
	assert.Equal(t, StatusLoading, v.Status, "follow-up request for the last page is in flight")
	assert.Equal(t, []pagination.State{{PageIndex: 11, PageSize: 10}}, paged)

	followUp := f.rec.last(t)
	assert.Equal(t, 11, followUp.Query.PageIndex)
	require.True(t, f.serve(t, followUp))
	assert.Len(t, f.grid.Snapshot().Rows, 7)
}

func TestRemote_ErrorKeepsRows(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	f.grid.Mount()
	require.True(t, f.serveLast(t))
	before := f.grid.Snapshot().Rows

	require.NoError(t, f.grid.NextPage())
	boom := &provider.NetworkError{Op: "fetch", StatusCode: 503}
	require.True(t, f.grid.Resolve(f.rec.last(t), provider.Page[asset]{}, boom))

	v := f.grid.Snapshot()
	assert.Equal(t, StatusError, v.Status)
	assert.ErrorIs(t, v.Err, boom)
	assert.Equal(t, before, v.Rows, "previously loaded rows stay visible")
	assert.Equal(t, 137, v.TotalCount)

	f.grid.Reload()
	assert.Equal(t, StatusLoading, f.grid.Snapshot().Status)
	require.True(t, f.serveLast(t))
	v = f.grid.Snapshot()
	assert.Equal(t, StatusLoaded, v.Status)
	require.NoError(t, v.Err)
	assert.Equal(t, "a010", v.Rows[0].ID)
}

func TestRemote_SearchAlpha(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	f.grid.Mount()
	require.True(t, f.serveLast(t))
	require.NoError(t, f.grid.SetPageIndex(3))
	require.True(t, f.serveLast(t))

	var searching []bool
	var commits []string
	f.grid.Subscribe(Events[asset]{
		OnChange:       func(v View[asset]) { searching = append(searching, v.Searching) },
		OnSearchCommit: func(text string) { commits = append(commits, text) },
	})

	f.grid.SetDraft("alpha")
	assert.Equal(t, 2, f.rec.count(), "typing never fetches")

	// A page change still in flight when the search is committed.
	require.NoError(t, f.grid.SetPageIndex(4))
	inFlight := f.rec.last(t)

	f.grid.CommitSearch()
	req := f.rec.last(t)
	assert.Equal(t, "alpha", req.Query.Search)
	assert.Equal(t, 0, req.Query.PageIndex, "committed search resets the page")
	assert.Equal(t, []string{"alpha"}, commits)
	assert.True(t, f.grid.Snapshot().Searching)

	assert.False(t, f.serve(t, inFlight))
	assert.True(t, f.grid.Snapshot().Searching, "stale response must not clear the indicator")

	require.True(t, f.serve(t, req))
	v := f.grid.Snapshot()
	assert.False(t, v.Searching)
	assert.Equal(t, 1, v.PageCount)
	assert.Equal(t, 3, v.TotalCount)
	assert.Len(t, v.Rows, 3)

	cleared := 0
	for i := 1; i < len(searching); i++ {
		if searching[i-1] && !searching[i] {
			cleared++
		}
	}
	assert.Equal(t, 1, cleared, "indicator clears exactly once")
	assert.False(t, searching[len(searching)-1])
}

func TestRemote_SearchErrorClearsIndicator(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	f.grid.Mount()
	require.True(t, f.serveLast(t))

	f.grid.SetDraft("alpha")
	f.grid.CommitSearch()
	require.True(t, f.grid.Snapshot().Searching)

	require.True(t, f.grid.Resolve(f.rec.last(t), provider.Page[asset]{}, errors.New("timeout")))
	assert.False(t, f.grid.Snapshot().Searching)
}

func TestLocal_SearchAlpha(t *testing.T) {
	f := newFixture(t, datasource.ModeLocal, 137)
	f.grid.Mount()
	req := f.rec.last(t)
	assert.True(t, req.Query.All, "local mode fetches the whole dataset")
	require.True(t, f.serve(t, req))

	v := f.grid.Snapshot()
	assert.Equal(t, 14, v.PageCount)
	assert.Equal(t, 137, v.TotalCount)

	require.NoError(t, f.grid.SetPageIndex(5))
	f.grid.SetDraft("alpha")
	f.grid.CommitSearch()
	assert.Equal(t, 1, f.rec.count(), "local mode never refetches on parameter changes")

	v = f.grid.Snapshot()
	assert.Equal(t, 0, v.Pagination.PageIndex)
	assert.Equal(t, 1, v.PageCount)
	assert.Equal(t, 3, v.TotalCount)
	assert.Len(t, v.Rows, 3)
	assert.False(t, v.Searching)
}

func TestLocal_ClampsAndPages(t *testing.T) {
	f := newFixture(t, datasource.ModeLocal, 0)
	require.NoError(t, f.grid.SetData(assets(137)))

	require.NoError(t, f.grid.SetPageIndex(14))
	v := f.grid.Snapshot()
	assert.Equal(t, 13, v.Pagination.PageIndex)
	assert.Len(t, v.Rows, 7)

	require.NoError(t, f.grid.NextPage())
	assert.Equal(t, 13, f.grid.Snapshot().Pagination.PageIndex, "next stops at the last page")

	// Shrinking the dataset pulls the index back in range.
	require.NoError(t, f.grid.SetData(assets(25)))
	assert.Equal(t, 2, f.grid.Snapshot().Pagination.PageIndex)
}

func TestLocal_SetDataRejectedInRemoteMode(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 0)
	require.ErrorIs(t, f.grid.SetData(assets(3)), ErrRemoteMode)
}

func TestLocal_ReloadPrunesSelection(t *testing.T) {
	f := newFixture(t, datasource.ModeLocal, 0)
	require.NoError(t, f.grid.SetData(assets(20)))
	f.grid.Toggle("a001")
	f.grid.Toggle("a015")

	require.NoError(t, f.grid.SetData(assets(10)))
	assert.Equal(t, []string{"a001"}, f.grid.Snapshot().SelectedIDs)
}

func TestPageSize(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	f.grid.Mount()
	require.True(t, f.serveLast(t))
	require.NoError(t, f.grid.SetPageIndex(4))
	require.True(t, f.serveLast(t))

	require.NoError(t, f.grid.SetPageSize(20))
	req := f.rec.last(t)
	assert.Equal(t, provider.Query{PageIndex: 0, PageSize: 20}, req.Query)

	n := f.rec.count()
	status := f.grid.Snapshot().Status
	require.ErrorIs(t, f.grid.SetPageSize(25), pagination.ErrInvalidPageSize)
	assert.Equal(t, n, f.rec.count(), "invalid size does not fetch")
	assert.Equal(t, status, f.grid.Snapshot().Status)
	assert.Equal(t, 20, f.grid.Snapshot().Pagination.PageSize)
}

func TestSortKeepsPageFilterResetsIt(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137, func(o *Options[asset]) {
		o.SortableColumns = []string{"name"}
	})
	f.grid.Mount()
	require.True(t, f.serveLast(t))
	require.NoError(t, f.grid.SetPageIndex(2))
	require.True(t, f.serveLast(t))

	require.NoError(t, f.grid.ToggleSort("name"))
	req := f.rec.last(t)
	assert.Equal(t, 2, req.Query.PageIndex)
	assert.Equal(t, sorting.State{{ColumnID: "name"}}, req.Query.Sort)
	require.True(t, f.serve(t, req))

	require.ErrorIs(t, f.grid.ToggleSort("status"), sorting.ErrInvalidSortField)

	f.grid.SetFilter("status", "paused")
	req = f.rec.last(t)
	assert.Equal(t, 0, req.Query.PageIndex)
	assert.Equal(t, map[string]string{"status": "paused"}, req.Query.Filters)
	require.True(t, f.serve(t, req))
	assert.Equal(t, 68, f.grid.Snapshot().TotalCount)

	n := f.rec.count()
	f.grid.SetFilter("status", "paused")
	assert.Equal(t, n, f.rec.count(), "unchanged filter does not fetch")

	f.grid.ClearFilters()
	assert.Nil(t, f.rec.last(t).Query.Filters)
}

func TestSelection_SurvivesPagination(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	f.grid.Mount()
	require.True(t, f.serveLast(t))

	var selected [][]asset
	f.grid.Subscribe(Events[asset]{OnSelectionChange: func(rows []asset) { selected = append(selected, rows) }})

	f.grid.ToggleAllOnPage()
	v := f.grid.Snapshot()
	assert.True(t, v.PageAllSelected)
	assert.Len(t, v.SelectedIDs, 10)
	assert.Equal(t, "10 of 137 row(s) selected.", v.Footer)
	require.Len(t, selected, 1)
	assert.Len(t, selected[0], 10)

	require.NoError(t, f.grid.NextPage())
	require.True(t, f.serveLast(t))
	v = f.grid.Snapshot()
	assert.False(t, v.PageAllSelected)
	assert.False(t, v.PageSomeSelected)
	assert.Len(t, v.SelectedRows, 10, "rows from other pages are still reported")

	require.NoError(t, f.grid.PrevPage())
	require.True(t, f.serveLast(t))
	v = f.grid.Snapshot()
	assert.True(t, v.PageAllSelected)
	assert.True(t, v.IsSelected("a000"))
	assert.Len(t, selected, 1, "paging does not change the selection")

	f.grid.Toggle("a003")
	v = f.grid.Snapshot()
	assert.True(t, v.PageSomeSelected)

	f.grid.ToggleAllOnPage()
	assert.Len(t, f.grid.Snapshot().SelectedIDs, 10)
	f.grid.ToggleAllOnPage()
	assert.Empty(t, f.grid.Snapshot().SelectedIDs)
}

func TestSelection_SurvivesSort(t *testing.T) {
	f := newFixture(t, datasource.ModeLocal, 0)
	require.NoError(t, f.grid.SetData(assets(30)))
	f.grid.Toggle("a005")

	require.NoError(t, f.grid.ToggleSort("name"))
	require.NoError(t, f.grid.ToggleSort("name"))
	v := f.grid.Snapshot()
	assert.True(t, v.IsSelected("a005"))
	assert.Equal(t, "1 of 30 row(s) selected.", v.Footer)
}

func TestEvents_OncePerTransition(t *testing.T) {
	f := newFixture(t, datasource.ModeLocal, 0)
	require.NoError(t, f.grid.SetData(assets(30)))

	changes, selections, pages := 0, 0, 0
	unsubscribe := f.grid.Subscribe(Events[asset]{
		OnChange:           func(View[asset]) { changes++ },
		OnSelectionChange:  func([]asset) { selections++ },
		OnPaginationChange: func(pagination.State) { pages++ },
	})

	require.NoError(t, f.grid.SetPageIndex(1))
	assert.Equal(t, 1, changes)
	assert.Equal(t, 1, pages)

	f.grid.Toggle("a010")
	assert.Equal(t, 2, changes)
	assert.Equal(t, 1, selections)

	f.grid.ClearSelection()
	f.grid.ClearSelection()
	assert.Equal(t, 2, selections, "clearing an empty selection is not a change")

	require.NoError(t, f.grid.SetPageIndex(1))
	assert.Equal(t, 1, pages, "same page is not a change")

	unsubscribe()
	f.grid.Toggle("a010")
	assert.Equal(t, 2, selections)
}

// parentStore is pagination state owned by the caller.
type parentStore struct {
	mu    sync.Mutex
	state pagination.State
}

func (p *parentStore) Get() pagination.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *parentStore) Set(s pagination.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}

func TestSync_IgnoredWithoutControlledStore(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	f.grid.Mount()
	require.True(t, f.serveLast(t))

	n := f.rec.count()
	f.grid.Sync()
	assert.Equal(t, n, f.rec.count())
	assert.Equal(t, StatusLoaded, f.grid.Snapshot().Status)
}

func TestControlledPagination(t *testing.T) {
	parent := &parentStore{state: pagination.State{PageIndex: 2, PageSize: 20}}
	f := newFixture(t, datasource.ModeRemote, 137, func(o *Options[asset]) {
		o.PaginationStore = parent
	})

	var notified []pagination.State
	f.grid.Subscribe(Events[asset]{OnPaginationChange: func(s pagination.State) { notified = append(notified, s) }})

	f.grid.Mount()
	req := f.rec.last(t)
	assert.Equal(t, 2, req.Query.PageIndex)
	assert.Equal(t, 20, req.Query.PageSize)
	require.True(t, f.serve(t, req))

	require.NoError(t, f.grid.NextPage())
	assert.Equal(t, 3, parent.Get().PageIndex, "writes go to the parent's store")
	require.True(t, f.serveLast(t))
	assert.Len(t, notified, 1)

	parent.Set(pagination.State{PageIndex: 5, PageSize: 20})
	f.grid.Sync()
	req = f.rec.last(t)
	assert.Equal(t, 5, req.Query.PageIndex)
	assert.Len(t, notified, 1, "the parent is not told about its own change")

	n := f.rec.count()
	f.grid.Sync()
	assert.Equal(t, n, f.rec.count())
}

func TestColumns(t *testing.T) {
	f := newFixture(t, datasource.ModeLocal, 0)
	require.NoError(t, f.grid.SetColumnVisible("status", false))
	require.NoError(t, f.grid.SetColumnWidth("name", 40))

	v := f.grid.Snapshot()
	require.Len(t, v.Columns, 1)
	assert.Equal(t, 40, v.Columns[0].Width)

	require.ErrorIs(t, f.grid.ToggleColumn("owner"), columns.ErrUnknownColumn)
	require.ErrorIs(t, f.grid.SetColumnWidth("name", -1), columns.ErrInvalidWidth)
	require.NoError(t, f.grid.ToggleColumn("status"))
	assert.Len(t, f.grid.Snapshot().Columns, 2)
}

func TestSetCommittedSearch(t *testing.T) {
	f := newFixture(t, datasource.ModeLocal, 0)
	require.NoError(t, f.grid.SetData(assets(137)))

	f.grid.SetDraft("alpha")
	f.grid.CommitSearch()
	assert.Equal(t, 3, f.grid.Snapshot().TotalCount)

	f.grid.SetCommittedSearch("")
	v := f.grid.Snapshot()
	assert.Empty(t, v.Search.Draft, "idle draft follows the external value")
	assert.Equal(t, 137, v.TotalCount)

	f.grid.SetDraft("bet")
	f.grid.SetCommittedSearch("asset-00")
	v = f.grid.Snapshot()
	assert.Equal(t, "bet", v.Search.Draft, "in-flight typing is kept")
	assert.Equal(t, "asset-00", v.Search.Committed)

	f.grid.ClearSearch()
	assert.Equal(t, 137, f.grid.Snapshot().TotalCount)
}

func TestBulkAction(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	f.grid.Mount()
	require.True(t, f.serveLast(t))

	_, err := f.grid.BeginBulkAction()
	require.ErrorIs(t, err, ErrNothingSelected)
	require.ErrorIs(t, f.grid.CompleteBulkAction(nil), ErrNoBulkInProgress)

	var bulk []string
	f.grid.Subscribe(Events[asset]{OnBulkAction: func(ids []string) { bulk = ids }})

	f.grid.Toggle("a002")
	f.grid.Toggle("a001")
	ids, err := f.grid.BeginBulkAction()
	require.NoError(t, err)
	assert.Equal(t, []string{"a001", "a002"}, ids)
	assert.Equal(t, ids, bulk)
	assert.True(t, f.grid.Snapshot().BulkPending)

	_, err = f.grid.BeginBulkAction()
	require.ErrorIs(t, err, ErrBulkInProgress)

	// A failed action keeps the selection.
	require.NoError(t, f.grid.CompleteBulkAction(errors.New("forbidden")))
	v := f.grid.Snapshot()
	require.Error(t, v.BulkErr)
	assert.Len(t, v.SelectedIDs, 2)

	_, err = f.grid.BeginBulkAction()
	require.NoError(t, err)
	require.NoError(t, f.data.Delete(context.Background(), ids))
	n := f.rec.count()
	require.NoError(t, f.grid.CompleteBulkAction(nil))
	assert.Equal(t, n+1, f.rec.count(), "success refetches")
	assert.Empty(t, f.grid.Snapshot().SelectedIDs)

	require.True(t, f.serveLast(t))
	v = f.grid.Snapshot()
	assert.Equal(t, 135, v.TotalCount)
	assert.NoError(t, v.BulkErr)
}

// failingDeleter deletes from data but fails its nth call.
type failingDeleter struct {
	data   *provider.MemoryProvider[asset]
	failAt int
	calls  int
}

func (d *failingDeleter) Delete(ctx context.Context, ids []string) error {
	d.calls++
	if d.calls == d.failAt {
		return &provider.NetworkError{Op: "delete", StatusCode: 500}
	}
	return d.data.Delete(ctx, ids)
}

func TestBulkAction_PartialFailure(t *testing.T) {
	f := newFixture(t, datasource.ModeRemote, 137)
	f.grid.Mount()
	require.True(t, f.serveLast(t))
	f.grid.ToggleAllOnPage()
	require.Len(t, f.grid.Snapshot().SelectedIDs, 10)

	r, err := bulk.NewRunner(5)
	require.NoError(t, err)
	n := f.rec.count()
	_, err = bulk.Execute(context.Background(), f.grid, &failingDeleter{data: f.data, failAt: 2}, r)
	require.Error(t, err)

	assert.Equal(t, n+1, f.rec.count(), "a partial failure refetches")
	v := f.grid.Snapshot()
	require.Error(t, v.BulkErr)
	assert.Equal(t, []string{"a005", "a006", "a007", "a008", "a009"}, v.SelectedIDs,
		"deleted ids leave the selection, failed ones stay")

	require.True(t, f.serveLast(t))
	v = f.grid.Snapshot()
	assert.Equal(t, 132, v.TotalCount)
	assert.Equal(t, "a005", v.Rows[0].ID)
	assert.Error(t, v.BulkErr, "the failure stays visible after the refetch")
}

func TestAsyncDispatcher_OlderRequestCannotCancelNewer(t *testing.T) {
	gate := make(chan struct{})
	data := provider.NewMemoryProvider(assets(30), provider.MemoryConfig[asset]{
		ID: assetID,
		BeforeFetch: func(ctx context.Context, _ provider.Query) error {
			select {
			case <-gate:
				return ctx.Err()
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})

	res := &resolutions{}
	d := NewAsyncDispatcher[asset](context.Background(), data, zerolog.Nop())
	d.Attach(res)

	d.Dispatch(Request{Seq: 2, Query: provider.Query{PageIndex: 1, PageSize: 10}})
	d.Dispatch(Request{Seq: 1, Query: provider.Query{PageIndex: 0, PageSize: 10}})
	close(gate)
	d.Wait()

	require.Len(t, res.got, 1, "the older request is dropped")
	assert.Equal(t, uint64(2), res.got[0].seq)
	assert.NoError(t, res.got[0].err)
}

type resolution struct {
	seq uint64
	err error
}

// resolutions records every outcome delivered by a dispatcher.
type resolutions struct {
	mu  sync.Mutex
	got []resolution
}

func (r *resolutions) Resolve(req Request, _ provider.Page[asset], err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, resolution{seq: req.Seq, err: err})
	return true
}

func TestAsyncDispatcher_DiscardsSuperseded(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)

	data := provider.NewMemoryProvider(assets(137), provider.MemoryConfig[asset]{
		ID: assetID,
		BeforeFetch: func(ctx context.Context, q provider.Query) error {
			if q.PageIndex != 0 {
				return nil
			}
			select {
			case <-gate:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})

	g, d, err := NewAsync(context.Background(), data, Options[asset]{ID: assetID, Mode: datasource.ModeRemote})
	require.NoError(t, err)

	g.Mount()
	require.NoError(t, g.SetPageIndex(1))
	d.Wait()

	v := g.Snapshot()
	assert.Equal(t, StatusLoaded, v.Status)
	require.NoError(t, v.Err)
	require.Len(t, v.Rows, 10)
	assert.Equal(t, "a010", v.Rows[0].ID)
}

func TestNewSync(t *testing.T) {
	data := provider.NewMemoryProvider(assets(42), provider.MemoryConfig[asset]{ID: assetID})
	g, err := NewSync(context.Background(), data, Options[asset]{ID: assetID, Mode: datasource.ModeLocal})
	require.NoError(t, err)

	g.Mount()
	v := g.Snapshot()
	assert.Equal(t, StatusLoaded, v.Status)
	assert.Equal(t, 42, v.TotalCount)
	assert.Equal(t, 5, v.PageCount)
}

func TestFooter(t *testing.T) {
	assert.Equal(t, "0 of 0 row(s) selected.", Footer(0, 0))
	assert.Equal(t, "3 of 137 row(s) selected.", Footer(3, 137))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}
