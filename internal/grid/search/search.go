// Package search implements the two-phase search box of a grid: a draft bound
// to live input and a committed value that drives filtering and refetching.
package search

import "strings"

// State is the observable search state.
type State struct {
	Draft        string `json:"draft"`
	Committed    string `json:"committed"`
	HasCommitted bool   `json:"has_committed"`
}

// Controller holds the draft and committed search text and tracks whether a
// committed search is still waiting for its results. It is not safe for
// concurrent use; the grid serializes access.
type Controller struct {
	state     State
	searching bool
	pending   uint64
}

// NewController creates a controller with nothing committed.
func NewController() *Controller {
	return &Controller{}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Draft returns the live input text.
func (c *Controller) Draft() string {
	return c.state.Draft
}

// Committed returns the text that drives filtering.
func (c *Controller) Committed() string {
	return c.state.Committed
}

// SetDraft binds live input. It never affects the committed value.
func (c *Controller) SetDraft(text string) {
	c.state.Draft = text
}

// Commit moves the draft, trimmed of surrounding space, into the committed
// value. It reports whether the committed value changed.
func (c *Controller) Commit() bool {
	text := strings.TrimSpace(c.state.Draft)
	c.state.Draft = text
	changed := text != c.state.Committed
	c.state.Committed = text
	c.state.HasCommitted = true
	return changed
}

// Clear empties both draft and committed text. It reports whether the
// committed value changed.
func (c *Controller) Clear() bool {
	c.state.Draft = ""
	return c.Commit()
}

// Reconcile adopts an externally owned committed value. The draft follows it
// unless the user has typed something not yet committed. It reports whether
// the committed value changed.
func (c *Controller) Reconcile(external string) bool {
	if external == c.state.Committed {
		return false
	}
	if c.state.Draft == c.state.Committed {
		c.state.Draft = external
	}
	c.state.Committed = external
	c.state.HasCommitted = true
	return true
}

// BeginSearch marks the committed value as in flight under request seq.
func (c *Controller) BeginSearch(seq uint64) {
	c.searching = true
	c.pending = seq
}

// Settle records the arrival of the response to request seq, applied or
// failed. Responses to requests older than the pending one do not clear the
// indicator. It reports whether the indicator went from true to false.
func (c *Controller) Settle(seq uint64) bool {
	if !c.searching || seq < c.pending {
		return false
	}
	c.searching = false
	return true
}

// IsSearching reports whether a committed search is awaiting its results.
func (c *Controller) IsSearching() bool {
	return c.searching
}
