// Package sorting holds the sort state of a grid and the stable multi-key
// sort used when rows are computed locally.
package sorting

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort directions as they appear in sort expressions.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ErrInvalidSortField is returned when a sort key names a column that is not
// sortable.
var ErrInvalidSortField = errors.New("invalid sort field")

// ErrInvalidSortExpression is returned for malformed "field:order" input.
var ErrInvalidSortExpression = errors.New("invalid sort expression")

// Key sorts by one column.
type Key struct {
	ColumnID string `json:"id"   yaml:"id"`
	Desc     bool   `json:"desc" yaml:"desc"`
}

// State is an ordered list of sort keys. Earlier keys take precedence. An
// empty State means the default row order.
type State []Key

// Clone returns a copy of s.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// Equal reports whether two states sort identically.
func (s State) Equal(other State) bool {
	return slices.Equal(s, other)
}

// Direction returns the direction of columnID, or false if it is not sorted.
//
//nolint:nonamedreturns // Named returns document the two booleans.
func (s State) Direction(columnID string) (desc, ok bool) {
	for _, k := range s {
		if k.ColumnID == columnID {
			return k.Desc, true
		}
	}
	return false, false
}

// Controller owns a grid's sort state.
type Controller struct {
	state   State
	allowed map[string]bool
}

// NewController creates a controller. When fields are given, only those
// column ids may be sorted on.
func NewController(fields ...string) *Controller {
	c := &Controller{}
	if len(fields) > 0 {
		c.allowed = make(map[string]bool, len(fields))
		for _, f := range fields {
			c.allowed[f] = true
		}
	}
	return c
}

// State returns a copy of the current sort state.
func (c *Controller) State() State {
	return c.state.Clone()
}

// IsValidField reports whether columnID may be sorted on.
func (c *Controller) IsValidField(columnID string) bool {
	if columnID == "" {
		return false
	}
	if c.allowed == nil {
		return true
	}
	return c.allowed[columnID]
}

// ValidFields returns the sortable column ids, or nil when any column is
// sortable.
func (c *Controller) ValidFields() []string {
	if c.allowed == nil {
		return nil
	}
	fields := make([]string, 0, len(c.allowed))
	for f := range c.allowed {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (c *Controller) invalidField(columnID string) error {
	if fields := c.ValidFields(); len(fields) > 0 {
		return fmt.Errorf("%w: %q (sortable: %s)", ErrInvalidSortField, columnID, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %q", ErrInvalidSortField, columnID)
}

// Toggle cycles the active column through ascending, descending and
// unsorted. Toggling a column that is not the primary key replaces the whole
// state with that column ascending.
func (c *Controller) Toggle(columnID string) (State, error) {
	if !c.IsValidField(columnID) {
		return c.State(), c.invalidField(columnID)
	}

	var next State
	switch {
	case len(c.state) == 0 || c.state[0].ColumnID != columnID:
		next = State{{ColumnID: columnID}}
	case !c.state[0].Desc:
		next = State{{ColumnID: columnID, Desc: true}}
	default:
		next = nil
	}
	c.state = next
	return c.State(), nil
}

// Set replaces the state. Duplicate column ids keep their first occurrence.
// An invalid column rejects the whole update.
func (c *Controller) Set(keys State) (State, error) {
	next := make(State, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !c.IsValidField(k.ColumnID) {
			return c.State(), c.invalidField(k.ColumnID)
		}
		if seen[k.ColumnID] {
			continue
		}
		seen[k.ColumnID] = true
		next = append(next, k)
	}
	if len(next) == 0 {
		next = nil
	}
	c.state = next
	return c.State(), nil
}

// Clear returns to the default order.
func (c *Controller) Clear() {
	c.state = nil
}

// Compare orders two rows by one column, returning a negative number, zero or
// a positive number.
type Compare[T any] func(a, b T) int

// Comparators maps column ids to their comparison.
type Comparators[T any] map[string]Compare[T]

// Sort returns a sorted copy of rows; rows itself is never modified. Keys
// without a comparator are skipped. Equal rows keep their input order.
func Sort[T any](rows []T, state State, cmps Comparators[T]) []T {
	sorted := make([]T, len(rows))
	copy(sorted, rows)

	keys := make([]Key, 0, len(state))
	for _, k := range state {
		if _, ok := cmps[k.ColumnID]; ok {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return sorted
	}

	slices.SortStableFunc(sorted, func(a, b T) int {
		for _, k := range keys {
			r := cmps[k.ColumnID](a, b)
			if r == 0 {
				continue
			}
			if k.Desc {
				return -r
			}
			return r
		}
		return 0
	})
	return sorted
}

//nolint:gochecknoglobals // Collator is not safe for concurrent use; guarded by collatorMu.
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.English, collate.IgnoreCase, collate.Numeric)
)

// CompareStrings compares two strings in English collation order, ignoring
// case and ordering digit runs numerically ("host2" < "host10").
func CompareStrings(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// sortPartsMax is the maximum number of parts in a sort key (field:order).
const sortPartsMax = 2

// ParseExpression parses a comma separated list of "field" or "field:order"
// keys, e.g. "severity:desc,name". A key without an order sorts ascending.
func ParseExpression(expr string) (State, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	var state State
	for _, part := range strings.Split(expr, ",") {
		pieces := strings.Split(part, ":")
		if len(pieces) > sortPartsMax {
			return nil, fmt.Errorf("%w: too many colons in %q", ErrInvalidSortExpression, part)
		}
		field := strings.TrimSpace(pieces[0])
		if field == "" {
			return nil, fmt.Errorf("%w: empty field in %q", ErrInvalidSortExpression, expr)
		}
		order := OrderAsc
		if len(pieces) == sortPartsMax {
			order = strings.ToLower(strings.TrimSpace(pieces[1]))
		}
		if order != OrderAsc && order != OrderDesc {
			return nil, fmt.Errorf("%w: order %q must be asc or desc", ErrInvalidSortExpression, order)
		}
		state = append(state, Key{ColumnID: field, Desc: order == OrderDesc})
	}
	return state, nil
}

// Format renders state in the "ordering" wire form used by the HTTP API:
// comma separated fields, descending ones prefixed with '-'.
func Format(state State) string {
	parts := make([]string, 0, len(state))
	for _, k := range state {
		if k.Desc {
			parts = append(parts, "-"+k.ColumnID)
		} else {
			parts = append(parts, k.ColumnID)
		}
	}
	return strings.Join(parts, ",")
}

// ParseOrdering is the inverse of Format.
func ParseOrdering(ordering string) State {
	var state State
	for _, part := range strings.Split(ordering, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		part = strings.TrimPrefix(part, "-")
		if part == "" {
			continue
		}
		state = append(state, Key{ColumnID: part, Desc: desc})
	}
	return state
}
