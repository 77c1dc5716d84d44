// Package cache provides the in-process TTL cache shared by all
// upstream clients and the resolution pipeline.
//
// The cache is deliberately volatile: entries live in memory only and
// disappear on restart. Every read is revalidated against its TTL, so
// a stale entry is never returned even if the sweep has not run yet.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Store is a concurrency-safe TTL cache keyed by namespaced strings.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty cache store.
func New() *Store {
	return &Store{
		entries: make(map[string]entry),
	}
}

// Key builds a cache key from an operation name and its arguments.
// Arguments are lowercased and trimmed so equivalent requests share
// one entry.
func Key(operation string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, operation)
	for _, arg := range args {
		parts = append(parts, strings.ToLower(strings.TrimSpace(arg)))
	}
	return strings.Join(parts, ":")
}

// Get returns the cached value for key. Expired entries count as
// misses; removal is left to Sweep.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !time.Now().Before(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Put stores value under key for ttl. An existing entry is replaced
// unconditionally, even if it has not expired yet.
func (s *Store) Put(key string, value interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete removes key if present.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Sweep removes all expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// GetAs returns the entry for key type-asserted to V. A value of the
// wrong type counts as a miss so callers fall through to a fresh fetch.
func GetAs[V any](s *Store, key string) (V, bool) {
	var zero V
	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(V)
	if !ok {
		return zero, false
	}
	return typed, true
}
