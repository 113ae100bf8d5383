package listview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc renders one item; cursor is true for the item under the cursor.
type RenderFunc[T any] func(item T, cursor bool) string

// Model is a list with a cursor and a viewport of fixed height.
type Model[T any] struct {
	items  []T
	render RenderFunc[T]
	cursor int
	offset int
	height int
}

// New creates a list showing height rows at a time.
func New[T any](items []T, height int, render RenderFunc[T]) *Model[T] {
	if height < 1 {
		height = 1
	}
	return &Model[T]{items: items, render: render, height: height}
}

// SetItems replaces the items, keeping the cursor in range.
func (m *Model[T]) SetItems(items []T) {
	m.items = items
	m.SetCursor(m.cursor)
}

// SetHeight resizes the viewport.
func (m *Model[T]) SetHeight(height int) {
	m.height = max(height, 1)
	m.scroll()
}

// Update moves the cursor on navigation keys.
//
//nolint:exhaustive // Only navigation keys matter.
func (m *Model[T]) Update(msg tea.Msg) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || len(m.items) == 0 {
		return
	}
	switch km.Type {
	case tea.KeyUp:
		m.SetCursor(m.cursor - 1)
	case tea.KeyDown:
		m.SetCursor(m.cursor + 1)
	case tea.KeyPgUp:
		m.SetCursor(m.cursor - m.height)
	case tea.KeyPgDown:
		m.SetCursor(m.cursor + m.height)
	case tea.KeyHome:
		m.SetCursor(0)
	case tea.KeyEnd:
		m.SetCursor(len(m.items) - 1)
	case tea.KeyRunes:
		switch km.String() {
		case "k":
			m.SetCursor(m.cursor - 1)
		case "j":
			m.SetCursor(m.cursor + 1)
		}
	}
}

// SetCursor moves the cursor, clamped to the items.
func (m *Model[T]) SetCursor(index int) {
	switch {
	case len(m.items) == 0:
		index = 0
	case index < 0:
		index = 0
	case index >= len(m.items):
		index = len(m.items) - 1
	}
	m.cursor = index
	m.scroll()
}

// scroll keeps the cursor inside the viewport.
func (m *Model[T]) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	m.offset = max(0, min(m.offset, len(m.items)-m.height))
}

// Cursor returns the cursor index.
func (m *Model[T]) Cursor() int {
	return m.cursor
}

// Current returns the item under the cursor, or false for an empty list.
func (m *Model[T]) Current() (T, bool) {
	var zero T
	if len(m.items) == 0 {
		return zero, false
	}
	return m.items[m.cursor], true
}

// Len returns the number of items.
func (m *Model[T]) Len() int {
	return len(m.items)
}

// View renders the rows inside the viewport.
func (m *Model[T]) View() string {
	end := min(m.offset+m.height, len(m.items))
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.render(m.items[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}
