// Package selection tracks which rows of a grid are selected. Rows are keyed
// by a caller supplied id, never by position, so a selection survives
// re-sorting and refetching.
package selection

import (
	"maps"
	"slices"
)

// IDFunc extracts the stable identity of a row.
type IDFunc[T any] func(T) string

// Set is a set of selected row ids. The zero value is an empty set ready to
// use.
type Set struct {
	ids map[string]struct{}
}

// New returns a set holding ids.
func New(ids ...string) *Set {
	s := &Set{}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *Set) add(id string) {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	s.ids[id] = struct{}{}
}

// Toggle flips the membership of id.
func (s *Set) Toggle(id string) {
	if s.IsSelected(id) {
		delete(s.ids, id)
		return
	}
	s.add(id)
}

// Select adds ids. It reports whether the set changed.
func (s *Set) Select(ids ...string) bool {
	changed := false
	for _, id := range ids {
		if !s.IsSelected(id) {
			s.add(id)
			changed = true
		}
	}
	return changed
}

// Deselect removes ids. It reports whether the set changed.
func (s *Set) Deselect(ids ...string) bool {
	changed := false
	for _, id := range ids {
		if s.IsSelected(id) {
			delete(s.ids, id)
			changed = true
		}
	}
	return changed
}

// ToggleAllOnPage deselects pageIDs when all of them are selected and selects
// all of them otherwise. Ids outside the page are untouched. An empty page is
// a no-op.
func (s *Set) ToggleAllOnPage(pageIDs []string) bool {
	if len(pageIDs) == 0 {
		return false
	}
	if s.AllSelected(pageIDs) {
		return s.Deselect(pageIDs...)
	}
	return s.Select(pageIDs...)
}

// Clear empties the set. It reports whether anything was selected.
func (s *Set) Clear() bool {
	if len(s.ids) == 0 {
		return false
	}
	clear(s.ids)
	return true
}

// Retain drops every selected id not in keep. It reports whether the set
// changed.
func (s *Set) Retain(keep []string) bool {
	if len(s.ids) == 0 {
		return false
	}
	allowed := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		allowed[id] = struct{}{}
	}
	before := len(s.ids)
	maps.DeleteFunc(s.ids, func(id string, _ struct{}) bool {
		_, ok := allowed[id]
		return !ok
	})
	return len(s.ids) != before
}

// IsSelected reports whether id is selected.
func (s *Set) IsSelected(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// AllSelected reports whether every id is selected. It is false for no ids.
func (s *Set) AllSelected(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !s.IsSelected(id) {
			return false
		}
	}
	return true
}

// SomeSelected reports whether at least one id, but not all, is selected.
func (s *Set) SomeSelected(ids []string) bool {
	n := 0
	for _, id := range ids {
		if s.IsSelected(id) {
			n++
		}
	}
	return n > 0 && n < len(ids)
}

// Len returns the number of selected ids.
func (s *Set) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in sorted order.
func (s *Set) IDs() []string {
	return slices.Sorted(maps.Keys(s.ids))
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	return &Set{ids: maps.Clone(s.ids)}
}

// Equal reports whether both sets hold the same ids.
func (s *Set) Equal(other *Set) bool {
	if other == nil {
		return s.Len() == 0
	}
	if len(s.ids) != len(other.ids) {
		return false
	}
	for id := range s.ids {
		if !other.IsSelected(id) {
			return false
		}
	}
	return true
}

// SelectedRows returns the rows of known whose id is selected, in the order
// of known. Selected ids with no known row are skipped.
func SelectedRows[T any](s *Set, known []T, id IDFunc[T]) []T {
	out := make([]T, 0, s.Len())
	for _, row := range known {
		if s.IsSelected(id(row)) {
			out = append(out, row)
		}
	}
	return out
}

// IDsOf returns the ids of rows in order.
func IDsOf[T any](rows []T, id IDFunc[T]) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, id(row))
	}
	return out
}
