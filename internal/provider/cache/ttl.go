package cache

import (
	"fmt"
	"strconv"
	"time"
)

// TTL bounds and defaults.
const (
	DefaultTTLSeconds = 300
	MinTTLSeconds     = 1
	MaxTTLSeconds     = 604800
)

// ErrInvalidTTL is returned by ParseTTL for out-of-range values.
var ErrInvalidTTL = fmt.Errorf("TTL must be between %d and %d seconds", MinTTLSeconds, MaxTTLSeconds)

// ParseTTL parses "300" (seconds) or a duration such as "5m" or "1h30m".
func ParseTTL(s string) (int, error) {
	seconds, err := strconv.Atoi(s)
	if err != nil {
		d, durErr := time.ParseDuration(s)
		if durErr != nil {
			return 0, fmt.Errorf("invalid TTL format: %w", durErr)
		}
		seconds = int(d.Seconds())
	}
	if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
	}
	return seconds, nil
}
