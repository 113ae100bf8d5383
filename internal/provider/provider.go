// Package provider defines the contract between a grid and whatever fetches
// its rows, plus an in-memory implementation.
package provider

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"

	"github.com/rshade/recongrid/internal/grid/pagination"
	"github.com/rshade/recongrid/internal/grid/sorting"
)

// Query describes the rows a grid wants.
type Query struct {
	PageIndex int               `json:"page_index"`
	PageSize  int               `json:"page_size"`
	Sort      sorting.State     `json:"sort,omitempty"`
	Search    string            `json:"search,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
	// All asks for the complete filtered dataset instead of one page.
	All bool `json:"all,omitempty"`
}

// Equal reports whether two queries ask for the same rows. Empty and nil
// filter maps are equal.
func (q Query) Equal(other Query) bool {
	return q.PageIndex == other.PageIndex &&
		q.PageSize == other.PageSize &&
		q.Search == other.Search &&
		q.All == other.All &&
		q.Sort.Equal(other.Sort) &&
		maps.Equal(q.Filters, other.Filters)
}

// State returns the pagination state the query asks for.
func (q Query) State() pagination.State {
	return pagination.State{PageIndex: q.PageIndex, PageSize: q.PageSize}
}

// Page is one page of rows and its metadata. The JSON shape matches the HTTP
// API's list responses.
type Page[T any] struct {
	Rows []T                 `json:"results"`
	Meta pagination.Metadata `json:"pagination"`
}

// Provider fetches pages. Failures are returned as *NetworkError.
type Provider[T any] interface {
	FetchPage(ctx context.Context, q Query) (Page[T], error)
}

// Func adapts a function to Provider.
type Func[T any] func(ctx context.Context, q Query) (Page[T], error)

// FetchPage calls f.
func (f Func[T]) FetchPage(ctx context.Context, q Query) (Page[T], error) {
	return f(ctx, q)
}

// Deleter is implemented by providers that can delete rows by id.
type Deleter interface {
	Delete(ctx context.Context, ids []string) error
}

// NetworkError is a failed fetch or write.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	msg := e.Op
	if e.URL != "" {
		msg += " " + e.URL
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the same request may succeed.
func (e *NetworkError) Temporary() bool {
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

// AsNetworkError wraps err as a *NetworkError for op unless it already is one.
func AsNetworkError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return err
	}
	return &NetworkError{Op: op, Err: err}
}
