package pagination

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Default page sizes offered by a grid.
const (
	DefaultPageSize = 10
	MinPageSize     = 1
	MaxPageSize     = 1000
)

// DefaultPageSizes is the preset list a page size must be drawn from unless a
// grid is configured with its own.
//
//nolint:gochecknoglobals // Read-only preset table.
var DefaultPageSizes = []int{10, 20, 30, 40, 50}

// Validation errors. These never escalate past the controller's caller; the
// previous valid state is always retained.
var (
	ErrInvalidPageSize  = errors.New("page size is not one of the allowed presets")
	ErrInvalidPageIndex = errors.New("page index must be non-negative")
	ErrEmptyPresets     = errors.New("page size presets cannot be empty")
)

// State is the zero-based page a grid is showing.
type State struct {
	PageIndex int `json:"page_index" yaml:"page_index"`
	PageSize  int `json:"page_size"  yaml:"page_size"`
}

// Offset returns the number of rows preceding the page.
func (s State) Offset() int {
	return s.PageIndex * s.PageSize
}

// Updater derives the next state from the current one.
type Updater func(State) State

// Value returns an Updater that ignores the current state and sets s.
func Value(s State) Updater {
	return func(State) State { return s }
}

// Store is an externally owned pagination state, the pair a parent hands down
// when it wants to control paging itself.
type Store interface {
	Get() State
	Set(State)
}

// localStore is the store an uncontrolled controller owns.
type localStore struct {
	mu    sync.RWMutex
	state State
}

func (s *localStore) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *localStore) Set(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Controller reads and writes pagination state. Whether the state lives in
// the controller or in a parent Store is invisible to callers.
type Controller struct {
	store      Store
	controlled bool
	pageSizes  []int
	initial    State
	sizeSet    bool
}

// Option configures a Controller.
type Option func(*Controller) error

// WithStore makes the controller a pass-through to a parent-owned store.
func WithStore(store Store) Option {
	return func(c *Controller) error {
		if store == nil {
			return errors.New("pagination store cannot be nil")
		}
		c.store = store
		c.controlled = true
		return nil
	}
}

// WithPageSizes replaces the allowed page size presets.
func WithPageSizes(sizes ...int) Option {
	return func(c *Controller) error {
		if len(sizes) == 0 {
			return ErrEmptyPresets
		}
		for _, size := range sizes {
			if size < MinPageSize || size > MaxPageSize {
				return fmt.Errorf("%w: got %d", ErrInvalidPageSize, size)
			}
		}
		c.pageSizes = slices.Clone(sizes)
		slices.Sort(c.pageSizes)
		c.pageSizes = slices.Compact(c.pageSizes)
		return nil
	}
}

// WithDefaultPageSize sets the page size an uncontrolled controller starts with.
func WithDefaultPageSize(size int) Option {
	return func(c *Controller) error {
		c.initial.PageSize = size
		c.sizeSet = true
		return nil
	}
}

// NewController creates a controller. Without WithStore it owns its state,
// starting at page 0 with the default page size.
func NewController(opts ...Option) (*Controller, error) {
	c := &Controller{
		pageSizes: slices.Clone(DefaultPageSizes),
		initial:   State{PageIndex: 0, PageSize: DefaultPageSize},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if !c.IsValidPageSize(c.initial.PageSize) {
		if c.sizeSet {
			return nil, fmt.Errorf("%w: default %d not in %v", ErrInvalidPageSize, c.initial.PageSize, c.pageSizes)
		}
		c.initial.PageSize = c.pageSizes[0]
	}

	if c.store == nil {
		c.store = &localStore{state: c.initial}
	}
	return c, nil
}

// Controlled reports whether a parent owns the state.
func (c *Controller) Controlled() bool {
	return c.controlled
}

// PageSizes returns the allowed presets in ascending order.
func (c *Controller) PageSizes() []int {
	return slices.Clone(c.pageSizes)
}

// State returns the current state.
func (c *Controller) State() State {
	return c.store.Get()
}

// Set applies an updater. The resulting state is validated; invalid results
// are rejected and the previous state is kept. A page size change resets the
// page index to 0 regardless of what the updater asked for.
func (c *Controller) Set(update Updater) (State, error) {
	if update == nil {
		return c.State(), nil
	}
	prev := c.store.Get()
	next := update(prev)

	if next.PageIndex < 0 {
		return prev, fmt.Errorf("%w: got %d", ErrInvalidPageIndex, next.PageIndex)
	}
	if !c.IsValidPageSize(next.PageSize) {
		return prev, fmt.Errorf("%w: got %d, allowed %v", ErrInvalidPageSize, next.PageSize, c.pageSizes)
	}
	if next.PageSize != prev.PageSize {
		next.PageIndex = 0
	}
	if next != prev {
		c.store.Set(next)
	}
	return next, nil
}

// SetPageIndex moves to the given zero-based page.
func (c *Controller) SetPageIndex(index int) (State, error) {
	return c.Set(func(s State) State {
		s.PageIndex = index
		return s
	})
}

// SetPageSize changes the page size and returns to the first page.
func (c *Controller) SetPageSize(size int) (State, error) {
	return c.Set(func(s State) State {
		s.PageSize = size
		return s
	})
}

// Next advances one page. It does not check the upper bound; Clamp does.
func (c *Controller) Next() (State, error) {
	return c.Set(func(s State) State {
		s.PageIndex++
		return s
	})
}

// Prev goes back one page, stopping at the first page.
func (c *Controller) Prev() (State, error) {
	return c.Set(func(s State) State {
		if s.PageIndex > 0 {
			s.PageIndex--
		}
		return s
	})
}

// Reset returns to the first page keeping the page size.
func (c *Controller) Reset() State {
	next, _ := c.SetPageIndex(0)
	return next
}

// Clamp pulls the page index into [0, pageCount-1]. A page count of zero is
// treated as a single empty page. It reports whether the state changed.
func (c *Controller) Clamp(pageCount int) (State, bool) {
	s := c.State()
	last := LastPageIndex(pageCount)
	if s.PageIndex <= last {
		return s, false
	}
	next, err := c.SetPageIndex(last)
	if err != nil {
		return s, false
	}
	return next, true
}

// IsValidPageSize reports whether size is one of the presets.
func (c *Controller) IsValidPageSize(size int) bool {
	return slices.Contains(c.pageSizes, size)
}

// LastPageIndex returns the highest valid page index for pageCount pages.
func LastPageIndex(pageCount int) int {
	if pageCount <= 0 {
		return 0
	}
	return pageCount - 1
}

// PageCount returns the number of pages needed for total rows.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}
