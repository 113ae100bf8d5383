package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/recongrid/internal/bulk"
	"github.com/rshade/recongrid/internal/grid"
	"github.com/rshade/recongrid/internal/grid/columns"
	"github.com/rshade/recongrid/internal/grid/datasource"
	"github.com/rshade/recongrid/internal/provider"
	"github.com/rshade/recongrid/internal/recon"
	listview "github.com/rshade/recongrid/internal/tui/list"
)

// Layout constants.
const (
	defaultWidth  = 120
	defaultHeight = 30
	// chromeHeight is the number of lines around the table.
	chromeHeight  = 8
	pickerHeight  = 8
	checkboxWidth = 3
)

// statusCycle is the order the status filter key walks through.
//
//nolint:gochecknoglobals // Read-only cycle.
var statusCycle = []string{"", recon.StatusActive, recon.StatusPaused, recon.StatusFailed, recon.StatusArchived}

// ErrNoProvider is returned when a browser is created without a provider.
var ErrNoProvider = errors.New("tui: a provider is required")

// BrowseConfig configures a BrowseModel.
type BrowseConfig struct {
	Kind     recon.Kind
	Provider provider.Provider[recon.Asset]
	// Deleter enables bulk delete when set.
	Deleter         provider.Deleter
	Runner          *bulk.Runner
	Mode            datasource.Mode
	PageSizes       []int
	DefaultPageSize int
	Logger          *zerolog.Logger
}

// bulkDoneMsg reports a finished bulk delete.
type bulkDoneMsg struct {
	count int
	err   error
}

// BrowseModel is the interactive asset browser.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type BrowseModel struct {
	ctx      context.Context
	kind     recon.Kind
	grid     *grid.Grid[recon.Asset]
	dispatch *cmdDispatcher[recon.Asset]
	deleter  provider.Deleter
	runner   *bulk.Runner
	keys     keyMap

	view    grid.View[recon.Asset]
	table   table.Model
	search  textinput.Model
	loading *LoadingState
	picker  *listview.Model[columns.Def]

	width      int
	height     int
	editing    bool
	confirming bool
	notice     string
}

// NewBrowseModel creates the browser and issues its first fetch.
func NewBrowseModel(ctx context.Context, cfg BrowseConfig) (BrowseModel, error) {
	if cfg.Provider == nil {
		return BrowseModel{}, ErrNoProvider
	}
	d := newCmdDispatcher(ctx, cfg.Provider)

	g, err := grid.New(grid.Options[recon.Asset]{
		ID:              recon.AssetID,
		Dispatch:        d.Dispatch,
		Mode:            cfg.Mode,
		PageSizes:       cfg.PageSizes,
		DefaultPageSize: cfg.DefaultPageSize,
		Match:           recon.MatchAsset,
		Filters:         recon.Filters(),
		Comparators:     recon.Comparators(),
		SortableColumns: recon.SortableColumns(),
		Columns:         recon.Columns(),
		Logger:          cfg.Logger,
	})
	if err != nil {
		return BrowseModel{}, fmt.Errorf("creating grid: %w", err)
	}

	runner := cfg.Runner
	if runner == nil {
		runner, _ = bulk.NewRunner(bulk.DefaultBatchSize)
	}

	m := BrowseModel{
		ctx:      ctx,
		kind:     cfg.Kind,
		grid:     g,
		dispatch: d,
		deleter:  cfg.Deleter,
		runner:   runner,
		keys:     defaultKeyMap(),
		search:   newTextInput(),
		loading:  NewLoadingState("Loading " + cfg.Kind.Title() + "..."),
		table: table.New(
			table.WithFocused(true),
			table.WithHeight(defaultHeight-chromeHeight),
		),
		width:  defaultWidth,
		height: defaultHeight,
	}
	g.Mount()
	m.sync()
	return m, nil
}

func newTextInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "search name, organization, status"
	ti.Prompt = "/ "
	ti.CharLimit = 128
	return ti
}

// Grid exposes the underlying grid.
func (m BrowseModel) Grid() *grid.Grid[recon.Asset] {
	return m.grid
}

// Init starts the spinner and the first fetch.
func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), m.dispatch.Cmd())
}

// Update handles messages (Bubble Tea interface).
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(msg.Height-chromeHeight, 1))
		m.table.SetWidth(msg.Width)
		return m, nil

	case fetchedMsg[recon.Asset]:
		m.grid.Resolve(msg.req, msg.page, msg.err)
		return m.refresh(nil)

	case bulkDoneMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("delete failed: %v", msg.err)
		} else {
			m.notice = fmt.Sprintf("deleted %d %s", msg.count, m.kind.Plural())
		}
		return m.refresh(nil)

	case spinner.TickMsg:
		return m, m.loading.Update(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// refresh re-reads the grid and starts any fetch it asked for.
func (m BrowseModel) refresh(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.sync()
	return m, tea.Batch(cmd, m.dispatch.Cmd())
}

// sync copies the grid view into the table.
func (m *BrowseModel) sync() {
	m.view = m.grid.Snapshot()

	cols := make([]table.Column, 0, len(m.view.Columns)+1)
	cols = append(cols, table.Column{Title: checkbox(m.view.PageAllSelected, m.view.PageSomeSelected), Width: checkboxWidth})
	for _, c := range m.view.Columns {
		cols = append(cols, table.Column{Title: m.columnTitle(c), Width: c.Width})
	}

	rows := make([]table.Row, 0, len(m.view.Rows))
	for _, a := range m.view.Rows {
		row := make(table.Row, 0, len(cols))
		row = append(row, checkbox(m.view.IsSelected(a.ID), false))
		for _, c := range m.view.Columns {
			row = append(row, recon.CellValue(a, c.ID))
		}
		rows = append(rows, row)
	}

	// Rows must never be wider than the columns while they change.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m BrowseModel) columnTitle(c columns.Def) string {
	if desc, ok := m.view.Sort.Direction(c.ID); ok {
		if desc {
			return c.Title + " ▼"
		}
		return c.Title + " ▲"
	}
	return c.Title
}

func checkbox(all, some bool) string {
	switch {
	case all:
		return "[x]"
	case some:
		return "[-]"
	default:
		return "[ ]"
	}
}

func (m BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.picker != nil:
		return m.handlePickerKey(msg)
	case m.editing:
		return m.handleSearchKey(msg)
	case m.confirming:
		return m.handleConfirmKey(msg)
	}

	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.dispatch.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	case key.Matches(msg, m.keys.PrevPage):
		m.report(m.grid.PrevPage())
	case key.Matches(msg, m.keys.NextPage):
		m.report(m.grid.NextPage())
	case key.Matches(msg, m.keys.FirstPage):
		m.report(m.grid.SetPageIndex(0))
	case key.Matches(msg, m.keys.LastPage):
		m.report(m.grid.SetPageIndex(max(m.view.PageCount-1, 0)))
	case key.Matches(msg, m.keys.Toggle):
		if a, ok := m.currentRow(); ok {
			m.grid.Toggle(a.ID)
		}
	case key.Matches(msg, m.keys.ToggleAll):
		m.grid.ToggleAllOnPage()
	case key.Matches(msg, m.keys.Clear):
		m.grid.ClearSelection()
	case key.Matches(msg, m.keys.Search):
		m.editing = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Filter):
		m.grid.SetFilter(recon.FilterStatus, nextStatus(m.view.Filters[recon.FilterStatus]))
	case key.Matches(msg, m.keys.Sort):
		m.toggleSort(msg.String())
	case key.Matches(msg, m.keys.PageSizeUp):
		m.stepPageSize(1)
	case key.Matches(msg, m.keys.PageSizeDn):
		m.stepPageSize(-1)
	case key.Matches(msg, m.keys.Columns):
		m.openPicker()
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		return m.startDelete()
	case key.Matches(msg, m.keys.Reload):
		m.grid.Reload()
	default:
		return m, nil
	}
	return m.refresh(nil)
}

func (m *BrowseModel) report(err error) {
	if err != nil {
		m.notice = err.Error()
	}
}

func (m BrowseModel) currentRow() (recon.Asset, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.view.Rows) {
		return recon.Asset{}, false
	}
	return m.view.Rows[i], true
}

func nextStatus(current string) string {
	i := slices.Index(statusCycle, current)
	return statusCycle[(i+1)%len(statusCycle)]
}

// toggleSort toggles the sort of the nth visible column.
func (m *BrowseModel) toggleSort(digit string) {
	n := int(digit[0] - '1')
	if n < 0 || n >= len(m.view.Columns) {
		return
	}
	c := m.view.Columns[n]
	if !c.Sortable {
		m.notice = c.Title + " is not sortable"
		return
	}
	m.report(m.grid.ToggleSort(c.ID))
}

func (m *BrowseModel) stepPageSize(step int) {
	sizes := m.view.PageSizes
	i := slices.Index(sizes, m.view.Pagination.PageSize) + step
	if i < 0 || i >= len(sizes) {
		return
	}
	m.report(m.grid.SetPageSize(sizes[i]))
}

func (m BrowseModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // Everything else is typed into the box.
	switch msg.Type {
	case tea.KeyEnter:
		m.editing = false
		m.search.Blur()
		m.grid.CommitSearch()
		return m.refresh(nil)
	case tea.KeyEsc:
		m.editing = false
		m.search.Blur()
		m.search.SetValue("")
		m.grid.ClearSearch()
		return m.refresh(nil)
	case tea.KeyCtrlC:
		m.dispatch.Stop()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.grid.SetDraft(m.search.Value())
	return m.refresh(cmd)
}

// openPicker shows the column visibility chooser.
func (m *BrowseModel) openPicker() {
	defs := m.grid.ColumnDefs()
	m.picker = listview.New(defs, pickerHeight, m.renderPickerItem)
}

func (m BrowseModel) renderPickerItem(c columns.Def, cursor bool) string {
	mark := checkbox(m.grid.ColumnVisible(c.ID), false)
	line := mark + " " + c.Title
	if c.Fixed {
		line += MutedStyle.Render(" (fixed)")
	}
	if cursor {
		return HeaderStyle.Render("> ") + line
	}
	return "  " + line
}

func (m BrowseModel) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc, key.Matches(msg, m.keys.Columns):
		m.picker = nil
		return m, nil
	case msg.Type == tea.KeyEnter, key.Matches(msg, m.keys.Toggle):
		if c, ok := m.picker.Current(); ok {
			m.report(m.grid.ToggleColumn(c.ID))
		}
		return m.refresh(nil)
	case key.Matches(msg, m.keys.Quit):
		m.dispatch.Stop()
		return m, tea.Quit
	}
	m.picker.Update(msg)
	return m, nil
}

func (m BrowseModel) startDelete() (tea.Model, tea.Cmd) {
	switch {
	case m.deleter == nil:
		m.notice = "this provider does not support deleting"
	case len(m.view.SelectedIDs) == 0:
		m.notice = grid.ErrNothingSelected.Error()
	case m.view.BulkPending:
		m.notice = grid.ErrBulkInProgress.Error()
	default:
		m.confirming = true
	}
	return m, nil
}

func (m BrowseModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirming = false
	if msg.String() != "y" && msg.String() != "Y" {
		m.notice = "delete cancelled"
		return m, nil
	}

	ctx, g, d, r := m.ctx, m.grid, m.deleter, m.runner
	run := func() tea.Msg {
		ids, err := bulk.Execute(ctx, g, d, r)
		return bulkDoneMsg{count: len(ids), err: err}
	}
	m.notice = fmt.Sprintf("deleting %d %s...", len(m.view.SelectedIDs), m.kind.Plural())
	return m, run
}
