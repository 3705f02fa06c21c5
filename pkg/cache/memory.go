package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with per-entry TTL and a bounded entry
// count. Suitable for tests and single-process deployments; use RedisStore
// when entries must be shared across processes.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	maxSize int
	ttl     time.Duration
}

type memoryEntry struct {
	payload   map[string]any
	expiresAt time.Time
}

// NewMemoryStore creates a memory store holding at most maxSize entries.
// Non-positive maxSize means unbounded; non-positive ttl means DefaultTTL.
func NewMemoryStore(maxSize int, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Lookup implements Store.
func (s *MemoryStore) Lookup(_ context.Context, key string) (map[string]any, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		if ok {
			s.mu.Lock()
			delete(s.entries, key)
			s.mu.Unlock()
		}
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("memory").Inc()

	return entry.payload, nil
}

// Store implements Store. When the store is full, one arbitrary entry is
// evicted to make room; last write for a key wins.
func (s *MemoryStore) Store(_ context.Context, key string, payload map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSize > 0 && len(s.entries) >= s.maxSize {
		if _, exists := s.entries[key]; !exists {
			for victim := range s.entries {
				delete(s.entries, victim)
				break
			}
		}
	}

	s.entries[key] = memoryEntry{
		payload:   payload,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()
	return nil
}

// Len reports the current number of live entries (for tests).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
