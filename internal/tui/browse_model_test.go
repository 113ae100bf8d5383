package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/recongrid/internal/grid"
	"github.com/rshade/recongrid/internal/grid/datasource"
	"github.com/rshade/recongrid/internal/grid/sorting"
	"github.com/rshade/recongrid/internal/provider"
	"github.com/rshade/recongrid/internal/recon"
)

// assets returns n targets; every 46th is named "alpha".
func assets(n int) []recon.Asset {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	out := make([]recon.Asset, n)
	for i := range out {
		name := fmt.Sprintf("host%03d.example.com", i)
		if i%46 == 0 {
			name = fmt.Sprintf("alpha%03d.example.com", i)
		}
		status := recon.StatusActive
		if i%2 == 1 {
			status = recon.StatusPaused
		}
		out[i] = recon.Asset{
			ID:           fmt.Sprintf("t%04d", i),
			Kind:         recon.KindTarget,
			Name:         name,
			Organization: "Acme Corp",
			Status:       status,
			Severity:     recon.SeverityLow,
			UpdatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func memory(n int) *provider.MemoryProvider[recon.Asset] {
	return provider.NewMemoryProvider(assets(n), provider.MemoryConfig[recon.Asset]{
		ID:          recon.AssetID,
		Match:       recon.MatchAsset,
		Filters:     recon.Filters(),
		Comparators: recon.Comparators(),
	})
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// settle runs cmd and everything it leads to, feeding fetch and bulk results
// back into the model. Other messages are dropped.
func settle(t *testing.T, m BrowseModel, cmd tea.Cmd) BrowseModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case fetchedMsg[recon.Asset], bulkDoneMsg:
			next, more := m.Update(msg)
			m = next.(BrowseModel)
			queue = append(queue, more)
		}
	}
	return m
}

func press(t *testing.T, m BrowseModel, keys ...string) BrowseModel {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(keyMsg(k))
		m = settle(t, next.(BrowseModel), cmd)
	}
	return m
}

// typeText sends keystrokes without running their commands; the text input
// returns cursor blink timers.
func typeText(m BrowseModel, keys ...string) BrowseModel {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(BrowseModel)
	}
	return m
}

func newBrowser(t *testing.T, cfg BrowseConfig) BrowseModel {
	t.Helper()
	if cfg.Kind == "" {
		cfg.Kind = recon.KindTarget
	}
	m, err := NewBrowseModel(context.Background(), cfg)
	require.NoError(t, err)
	return settle(t, m, m.Init())
}

func TestNewBrowseModel_RequiresProvider(t *testing.T) {
	_, err := NewBrowseModel(context.Background(), BrowseConfig{})
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestBrowse_InitialLoad(t *testing.T) {
	m := newBrowser(t, BrowseConfig{Mode: datasource.ModeRemote, Provider: memory(137)})

	assert.Equal(t, grid.StatusLoaded, m.view.Status)
	assert.Len(t, m.view.Rows, 10)
	assert.Equal(t, 137, m.view.TotalCount)
	assert.Len(t, m.table.Rows(), 10)

	out := m.View()
	assert.Contains(t, out, "Targets")
	assert.Contains(t, out, "0 of 137 row(s) selected.")
	assert.Contains(t, out, "Page 1 of 14")
	assert.Contains(t, out, "alpha000.example.com")
}

func TestBrowse_Paging(t *testing.T) {
	m := newBrowser(t, BrowseConfig{Mode: datasource.ModeRemote, Provider: memory(137)})

	m = press(t, m, "l")
	assert.Equal(t, 1, m.view.Pagination.PageIndex)
	assert.Equal(t, "t0010", m.view.Rows[0].ID)

	m = press(t, m, "G")
	assert.Equal(t, 13, m.view.Pagination.PageIndex)
	assert.Len(t, m.view.Rows, 7)

	m = press(t, m, "l")
	assert.Equal(t, 13, m.view.Pagination.PageIndex)

	m = press(t, m, "h", "g")
	assert.Equal(t, 0, m.view.Pagination.PageIndex)

	m = press(t, m, "+")
	assert.Equal(t, 20, m.view.Pagination.PageSize)
	assert.Len(t, m.view.Rows, 20)
	m = press(t, m, "-", "-")
	assert.Equal(t, 10, m.view.Pagination.PageSize)
}

func TestBrowse_SelectionAcrossPages(t *testing.T) {
	m := newBrowser(t, BrowseConfig{Mode: datasource.ModeRemote, Provider: memory(137)})

	m = press(t, m, " ")
	assert.Equal(t, []string{"t0000"}, m.view.SelectedIDs)
	assert.Equal(t, "[x]", m.table.Rows()[0][0])

	m = press(t, m, "l", "a")
	assert.Len(t, m.view.SelectedIDs, 11)
	assert.True(t, m.view.PageAllSelected)
	assert.Contains(t, m.View(), "11 of 137 row(s) selected.")

	m = press(t, m, "h")
	assert.Len(t, m.view.SelectedRows, 11)
	assert.Equal(t, "[-]", m.table.Columns()[0].Title)

	m = press(t, m, "x")
	assert.Empty(t, m.view.SelectedIDs)
}

func TestBrowse_Search(t *testing.T) {
	m := newBrowser(t, BrowseConfig{Mode: datasource.ModeRemote, Provider: memory(137)})
	m = press(t, m, "l")

	next, _ := m.Update(keyMsg("/"))
	m = next.(BrowseModel)
	require.True(t, m.editing)

	m = typeText(m, "a", "l", "p", "h", "a")
	assert.Equal(t, "alpha", m.view.Search.Draft)
	assert.Equal(t, 137, m.view.TotalCount, "typing does not fetch")

	m = press(t, m, "enter")
	assert.False(t, m.editing)
	assert.Equal(t, "alpha", m.view.Search.Committed)
	assert.Equal(t, 3, m.view.TotalCount)
	assert.Equal(t, 0, m.view.Pagination.PageIndex)
	assert.False(t, m.view.Searching)

	next, _ = m.Update(keyMsg("/"))
	m = press(t, next.(BrowseModel), "esc")
	assert.Empty(t, m.view.Search.Committed)
	assert.Equal(t, 137, m.view.TotalCount)
}

func TestBrowse_FilterAndSort(t *testing.T) {
	m := newBrowser(t, BrowseConfig{Mode: datasource.ModeRemote, Provider: memory(137)})

	m = press(t, m, "f")
	assert.Equal(t, recon.StatusActive, m.view.Filters[recon.FilterStatus])
	assert.Equal(t, 69, m.view.TotalCount)

	m = press(t, m, "f")
	assert.Equal(t, 68, m.view.TotalCount)

	m = press(t, m, "1")
	assert.Equal(t, sorting.State{{ColumnID: recon.ColumnName}}, m.view.Sort)
	assert.Equal(t, "Name ▲", m.table.Columns()[1].Title)

	m = press(t, m, "1")
	assert.Equal(t, sorting.State{{ColumnID: recon.ColumnName, Desc: true}}, m.view.Sort)
	assert.Equal(t, "t0135", m.view.Rows[0].ID)

	m = press(t, m, "9")
	assert.Len(t, m.view.Sort, 1)
}

func TestBrowse_ColumnPicker(t *testing.T) {
	m := newBrowser(t, BrowseConfig{Mode: datasource.ModeRemote, Provider: memory(20)})
	before := len(m.view.Columns)

	m = press(t, m, "c")
	require.NotNil(t, m.picker)
	assert.Contains(t, m.View(), "COLUMNS")

	m = press(t, m, "down", "enter")
	assert.Len(t, m.view.Columns, before-1)
	for _, c := range m.view.Columns {
		assert.NotEqual(t, recon.ColumnOrganization, c.ID)
	}
	assert.Len(t, m.table.Rows()[0], before)

	m = press(t, m, "esc")
	assert.Nil(t, m.picker)
}

func TestBrowse_BulkDelete(t *testing.T) {
	p := memory(25)
	m := newBrowser(t, BrowseConfig{Mode: datasource.ModeRemote, Provider: p, Deleter: p})

	m = press(t, m, " ", "down", " ", "d")
	require.True(t, m.confirming)
	assert.Contains(t, m.View(), "Delete 2 selected? (y/N)")

	m = press(t, m, "y")
	assert.False(t, m.confirming)
	assert.Equal(t, "deleted 2 targets", m.notice)
	assert.Empty(t, m.view.SelectedIDs)
	assert.Equal(t, 23, m.view.TotalCount)
	assert.Equal(t, 23, p.Len())
}

func TestBrowse_DeleteGuards(t *testing.T) {
	p := memory(5)

	m := newBrowser(t, BrowseConfig{Mode: datasource.ModeRemote, Provider: p})
	m = press(t, m, " ", "d")
	assert.False(t, m.confirming)
	assert.Contains(t, m.notice, "does not support")

	m = newBrowser(t, BrowseConfig{Mode: datasource.ModeRemote, Provider: p, Deleter: p})
	m = press(t, m, "d")
	assert.Equal(t, grid.ErrNothingSelected.Error(), m.notice)

	m = press(t, m, " ", "d", "n")
	assert.Equal(t, "delete cancelled", m.notice)
	assert.Equal(t, 5, p.Len())
}

func TestBrowse_FetchError(t *testing.T) {
	failing := provider.Func[recon.Asset](func(context.Context, provider.Query) (provider.Page[recon.Asset], error) {
		return provider.Page[recon.Asset]{}, &provider.NetworkError{Op: "fetch", StatusCode: 503}
	})
	m := newBrowser(t, BrowseConfig{Mode: datasource.ModeRemote, Provider: failing})

	assert.Equal(t, grid.StatusError, m.view.Status)
	out := m.View()
	assert.Contains(t, out, "Error: fetch: status 503")
	assert.Contains(t, out, "r to retry")
}

func TestBrowse_LocalMode(t *testing.T) {
	m := newBrowser(t, BrowseConfig{Provider: memory(137), Mode: datasource.ModeLocal})

	assert.Equal(t, 137, m.view.TotalCount)
	assert.Equal(t, 14, m.view.PageCount)

	m = press(t, m, "l")
	assert.Equal(t, "t0010", m.view.Rows[0].ID)

	next, _ := m.Update(keyMsg("/"))
	m = typeText(next.(BrowseModel), "a", "l", "p", "h", "a")
	m = press(t, m, "enter")
	assert.Equal(t, 3, m.view.TotalCount)
	assert.Contains(t, m.View(), "local")
}

func TestBrowse_Quit(t *testing.T) {
	m := newBrowser(t, BrowseConfig{Mode: datasource.ModeRemote, Provider: memory(3)})
	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBrowse_WindowResize(t *testing.T) {
	m := newBrowser(t, BrowseConfig{Mode: datasource.ModeRemote, Provider: memory(3)})
	next, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	assert.Nil(t, cmd)
	m = next.(BrowseModel)
	assert.Equal(t, 80, m.width)
	assert.Equal(t, 20, m.height)
}
