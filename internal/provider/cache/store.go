package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const entryExt = ".json"

// Store errors.
var (
	ErrNotFound   = errors.New("cache entry not found")
	ErrExpired    = errors.New("cache entry expired")
	ErrInvalidKey = errors.New("cache key cannot be empty")
	ErrDisabled   = errors.New("cache is disabled")
)

// FileStore keeps entries as JSON files in one directory. It is safe for
// concurrent use within a process.
type FileStore struct {
	dir        string
	enabled    bool
	ttlSeconds int
	mu         sync.RWMutex
}

// NewFileStore creates the store, creating dir when needed. A disabled store
// answers every call with ErrDisabled.
func NewFileStore(dir string, enabled bool, ttlSeconds int) (*FileStore, error) {
	if !enabled {
		return &FileStore{}, nil
	}
	if dir == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultTTLSeconds
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &FileStore{dir: dir, enabled: true, ttlSeconds: ttlSeconds}, nil
}

// Enabled reports whether the store caches anything.
func (s *FileStore) Enabled() bool {
	return s.enabled
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// TTL returns the entry lifetime in seconds.
func (s *FileStore) TTL() int {
	return s.ttlSeconds
}

func (s *FileStore) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(s.dir, safe+entryExt)
}

// Get returns the live entry for key. Expired entries are removed and
// reported as ErrExpired.
func (s *FileStore) Get(key string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrDisabled
	}
	if key == "" {
		return nil, ErrInvalidKey
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.path(key))
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	if entry.IsExpired() {
		_ = s.Delete(key)
		return nil, ErrExpired
	}
	return &entry, nil
}

// Set writes data under key, replacing any previous entry. The write goes to
// a temporary file that is renamed into place.
func (s *FileStore) Set(key string, data json.RawMessage) error {
	if !s.enabled {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	encoded, err := json.MarshalIndent(NewEntry(key, data, s.ttlSeconds), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o600); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming cache entry: %w", err)
	}
	return nil
}

// Delete removes key. Missing entries are not an error.
func (s *FileStore) Delete(key string) error {
	if !s.enabled {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (s *FileStore) Clear() error {
	return s.removeWhere(func(string) bool { return true })
}

// CleanupExpired removes expired and unreadable entries.
func (s *FileStore) CleanupExpired() error {
	return s.removeWhere(func(path string) bool {
		data, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			return true
		}
		return entry.IsExpired()
	})
}

func (s *FileStore) removeWhere(match func(path string) bool) error {
	if !s.enabled {
		return ErrDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != entryExt {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if !match(path) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing cache entry %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Count returns the number of entries, expired ones included.
func (s *FileStore) Count() (int, error) {
	if !s.enabled {
		return 0, ErrDisabled
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == entryExt {
			n++
		}
	}
	return n, nil
}
