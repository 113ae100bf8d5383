package cli

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFilter is returned for filter expressions not in key=value form.
var ErrInvalidFilter = errors.New("invalid filter: use key=value (e.g., status=active)")

// ParseFilters turns repeated --filter key=value flags into a map. Empty
// expressions are ignored and later keys win.
func ParseFilters(exprs []string) (map[string]string, error) {
	filters := make(map[string]string, len(exprs))
	for _, expr := range exprs {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}
		key, value, ok := strings.Cut(expr, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, expr)
		}
		filters[key] = strings.TrimSpace(value)
	}
	return filters, nil
}
