// Package columns tracks which grid columns are shown and how wide they are.
package columns

import (
	"errors"
	"fmt"
	"maps"
)

// Column layout errors. The layout is unchanged whenever one is returned.
var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateColumn = errors.New("duplicate column id")
	ErrInvalidWidth    = errors.New("column width must be positive")
	ErrColumnFixed     = errors.New("column cannot be hidden")
)

// Def describes one column.
type Def struct {
	ID    string
	Title string
	// Width is the default width in cells.
	Width int
	// Hidden columns start out invisible.
	Hidden bool
	// Fixed columns are always visible.
	Fixed    bool
	Sortable bool
}

// Layout is the per-column visibility and width overrides.
type Layout struct {
	Visibility map[string]bool `json:"visibility" yaml:"visibility"`
	Sizing     map[string]int  `json:"sizing"     yaml:"sizing"`
}

// Controller owns a grid's column layout.
type Controller struct {
	defs   []Def
	index  map[string]int
	layout Layout
}

// NewController creates a controller over defs.
func NewController(defs ...Def) (*Controller, error) {
	c := &Controller{
		layout: Layout{Visibility: map[string]bool{}, Sizing: map[string]int{}},
	}
	if err := c.SetColumns(defs); err != nil {
		return nil, err
	}
	return c, nil
}

// SetColumns replaces the column set. Layout overrides for columns that still
// exist are kept; the rest are pruned.
func (c *Controller) SetColumns(defs []Def) error {
	index := make(map[string]int, len(defs))
	for i, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("%w: empty id at position %d", ErrUnknownColumn, i)
		}
		if _, dup := index[d.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, d.ID)
		}
		index[d.ID] = i
	}
	c.defs = append([]Def(nil), defs...)
	c.index = index
	c.Prune()
	return nil
}

// Columns returns every column definition in display order.
func (c *Controller) Columns() []Def {
	return append([]Def(nil), c.defs...)
}

// Layout returns a copy of the current overrides.
func (c *Controller) Layout() Layout {
	return Layout{
		Visibility: maps.Clone(c.layout.Visibility),
		Sizing:     maps.Clone(c.layout.Sizing),
	}
}

func (c *Controller) def(id string) (Def, error) {
	i, ok := c.index[id]
	if !ok {
		return Def{}, fmt.Errorf("%w: %q", ErrUnknownColumn, id)
	}
	return c.defs[i], nil
}

// SetVisible shows or hides a column.
func (c *Controller) SetVisible(id string, visible bool) error {
	d, err := c.def(id)
	if err != nil {
		return err
	}
	if d.Fixed && !visible {
		return fmt.Errorf("%w: %q", ErrColumnFixed, id)
	}
	c.layout.Visibility[id] = visible
	return nil
}

// ToggleVisible flips a column's visibility.
func (c *Controller) ToggleVisible(id string) error {
	if _, err := c.def(id); err != nil {
		return err
	}
	return c.SetVisible(id, !c.Visible(id))
}

// ShowAll clears every visibility override and shows hidden-by-default
// columns.
func (c *Controller) ShowAll() {
	clear(c.layout.Visibility)
	for _, d := range c.defs {
		if d.Hidden {
			c.layout.Visibility[d.ID] = true
		}
	}
}

// SetWidth overrides a column's width.
func (c *Controller) SetWidth(id string, width int) error {
	if _, err := c.def(id); err != nil {
		return err
	}
	if width <= 0 {
		return fmt.Errorf("%w: %q got %d", ErrInvalidWidth, id, width)
	}
	c.layout.Sizing[id] = width
	return nil
}

// Visible reports whether a column is shown. Unknown columns are not.
func (c *Controller) Visible(id string) bool {
	d, err := c.def(id)
	if err != nil {
		return false
	}
	if d.Fixed {
		return true
	}
	if v, ok := c.layout.Visibility[id]; ok {
		return v
	}
	return !d.Hidden
}

// Width returns a column's effective width, or 0 for unknown columns.
func (c *Controller) Width(id string) int {
	d, err := c.def(id)
	if err != nil {
		return 0
	}
	if w, ok := c.layout.Sizing[id]; ok {
		return w
	}
	return d.Width
}

// VisibleColumns returns the shown columns in display order with their
// effective widths applied.
func (c *Controller) VisibleColumns() []Def {
	out := make([]Def, 0, len(c.defs))
	for _, d := range c.defs {
		if !c.Visible(d.ID) {
			continue
		}
		d.Width = c.Width(d.ID)
		d.Hidden = false
		out = append(out, d)
	}
	return out
}

// Prune drops overrides for columns that no longer exist.
func (c *Controller) Prune() {
	drop := func(id string) bool {
		_, ok := c.index[id]
		return !ok
	}
	maps.DeleteFunc(c.layout.Visibility, func(id string, _ bool) bool { return drop(id) })
	maps.DeleteFunc(c.layout.Sizing, func(id string, _ int) bool { return drop(id) })
}
