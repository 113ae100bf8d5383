package pagination

import (
	"errors"
	"fmt"
	"strings"
)

// CLI defaults and limits for page-based listing.
const (
	DefaultPage      = 1
	MinPage          = 1
	DefaultSortOrder = "asc"
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"
)

// Common flag validation errors.
var (
	ErrInvalidPage       = errors.New("page must be >= 1")
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'name:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
)

// Params holds page-based listing flags as a user types them: a 1-based page
// and a page size.
type Params struct {
	// Page is the 1-based page number.
	Page int

	// PageSize is the number of rows per page.
	PageSize int

	// Sort is the raw sort expression (e.g., "name:desc").
	Sort string

	// Search is the search text sent to the provider.
	Search string
}

// NewParams creates Params with default values.
func NewParams() *Params {
	return &Params{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}
}

// Validate checks flag bounds (value receiver).
func (p Params) Validate() error {
	if p.Page < MinPage {
		return fmt.Errorf("%w: got %d", ErrInvalidPage, p.Page)
	}
	if p.PageSize < MinPageSize || p.PageSize > MaxPageSize {
		return fmt.Errorf("page-size must be between %d and %d: got %d", MinPageSize, MaxPageSize, p.PageSize)
	}
	if _, _, err := ParseSort(p.Sort); err != nil {
		return err
	}
	return nil
}

// State converts the 1-based flags into a zero-based State.
func (p Params) State() State {
	index := p.Page - 1
	if index < 0 {
		index = 0
	}
	return State{PageIndex: index, PageSize: p.PageSize}
}

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// ParseSort parses a sort string in the format "field" or "field:order".
// Examples: "name", "updated:desc", "severity:asc".
// An empty string means default order and returns empty field.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (field, order string, err error) {
	if strings.TrimSpace(sortStr) == "" {
		return "", DefaultSortOrder, nil
	}

	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		order = DefaultSortOrder
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", "", ErrEmptySortField
	}

	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}

	return field, order, nil
}
