package grid

import "github.com/rshade/recongrid/internal/grid/pagination"

// Events are the callbacks a grid notifies. Nil callbacks are skipped.
type Events[T any] struct {
	// OnChange receives the derived view after any settled transition.
	OnChange func(View[T])
	// OnPaginationChange receives the new pagination state whenever the grid
	// changes it.
	OnPaginationChange func(pagination.State)
	// OnSelectionChange receives the selected rows whenever membership
	// changes.
	OnSelectionChange func(rows []T)
	// OnSearchCommit receives newly committed search text.
	OnSearchCommit func(text string)
	// OnBulkAction receives the ids a bulk action was started for.
	OnBulkAction func(ids []string)
}

func (e Events[T]) empty() bool {
	return e.OnChange == nil && e.OnPaginationChange == nil && e.OnSelectionChange == nil &&
		e.OnSearchCommit == nil && e.OnBulkAction == nil
}

type subscription[T any] struct {
	id     int
	events Events[T]
}

// Subscribe registers listeners and returns a function removing them.
func (g *Grid[T]) Subscribe(events Events[T]) func() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextSub++
	id := g.nextSub
	g.subs = append(g.subs, subscription[T]{id: id, events: events})

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, s := range g.subs {
			if s.id == id {
				g.subs = append(g.subs[:i:i], g.subs[i+1:]...)
				return
			}
		}
	}
}

// notification is what one transition has to tell listeners.
type notification[T any] struct {
	changed    bool
	view       View[T]
	pagination *pagination.State
	selection  []T
	selChanged bool
	commit     *string
	bulk       []string
}

func (n notification[T]) send(subs []subscription[T]) {
	for _, s := range subs {
		ev := s.events
		if n.commit != nil && ev.OnSearchCommit != nil {
			ev.OnSearchCommit(*n.commit)
		}
		if n.pagination != nil && ev.OnPaginationChange != nil {
			ev.OnPaginationChange(*n.pagination)
		}
		if n.selChanged && ev.OnSelectionChange != nil {
			ev.OnSelectionChange(n.selection)
		}
		if n.bulk != nil && ev.OnBulkAction != nil {
			ev.OnBulkAction(n.bulk)
		}
		if n.changed && ev.OnChange != nil {
			ev.OnChange(n.view)
		}
	}
}
