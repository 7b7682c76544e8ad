package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Store owns the two pieces of process-wide discovery state: the persistent
// email cache and the search query budget. A single mutex guards both so
// concurrent batch invocations cannot lose cache writes or budget
// increments, and cache persistence goes through a temp-file rename so
// readers never observe a half-written file.
type Store struct {
	mu      sync.Mutex
	cache   map[string]string
	path    string
	used    int
	maxUsed int
	logger  zerolog.Logger
}

// NewStore creates a Store backed by the JSON cache file at path, loading
// any existing cache. A missing or corrupt file degrades to an empty cache;
// it is logged, never an error. maxQueries caps the search queries issued
// over the process lifetime.
func NewStore(path string, maxQueries int, logger zerolog.Logger) *Store {
	s := &Store{
		cache:   make(map[string]string),
		path:    path,
		maxUsed: maxQueries,
		logger:  logger.With().Str("component", "discovery-store").Logger(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", path).Msg("cache read failed, starting empty")
		}
		return s
	}
	if err := json.Unmarshal(data, &s.cache); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("cache file corrupt, starting empty")
		s.cache = make(map[string]string)
	}

	return s
}

// CacheKey computes the normalized cache key for an author name and
// affiliation pair.
func CacheKey(name, affiliation string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(affiliation))
}

// Lookup returns the cached email for the key, if any.
func (s *Store) Lookup(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.cache[key]
	return email, ok
}

// Insert records a discovered email under the key and persists the whole
// cache. A key that is already mapped keeps its existing value: cache
// entries are never overwritten or removed. Persistence errors are logged
// and ignored.
func (s *Store) Insert(key, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache[key]; ok {
		return
	}
	s.cache[key] = email

	if err := s.persistLocked(); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("cache write failed")
	}
}

// TryConsumeQuery consumes one unit of the process-wide query budget.
// It returns false once the budget is at its cap; the counter is monotonic
// and only resets on process restart.
func (s *Store) TryConsumeQuery() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.used >= s.maxUsed {
		return false
	}
	s.used++
	return true
}

// QueriesUsed returns the number of budget units consumed so far.
func (s *Store) QueriesUsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

// persistLocked rewrites the cache file atomically. Callers must hold s.mu.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename cache file: %w", err)
	}

	return nil
}
