package cache

import (
	"encoding/json"
	"time"
)

// Entry is one cached value with its expiry.
type Entry struct {
	Key        string          `json:"key"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
	TTLSeconds int             `json:"ttl_seconds"`
}

// NewEntry creates an entry expiring ttl seconds from now.
func NewEntry(key string, data json.RawMessage, ttlSeconds int) *Entry {
	now := time.Now().UTC().Truncate(time.Second)
	return &Entry{
		Key:        key,
		Data:       data,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Duration(ttlSeconds) * time.Second),
		TTLSeconds: ttlSeconds,
	}
}

// IsExpired reports whether the entry is past its expiry.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Age returns the time since the entry was written.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// TimeUntilExpiration returns the remaining lifetime, or 0 once expired.
func (e *Entry) TimeUntilExpiration() time.Duration {
	return max(time.Until(e.ExpiresAt), 0)
}
