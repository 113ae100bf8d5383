package grid

import "fmt"

// Status is the fetch lifecycle state.
type Status int

const (
	// StatusIdle is the state before Mount.
	StatusIdle Status = iota
	// StatusLoading means a request is in flight.
	StatusLoading
	// StatusLoaded means the latest request succeeded.
	StatusLoaded
	// StatusError means the latest request failed. Rows loaded earlier stay
	// visible.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}
