package cache

import (
	"context"
	"errors"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is the response cache contract consumed by the dispatch engine.
// Implementations must be safe for concurrent use; same-key writes are
// last-write-wins since the engine does not deduplicate identical requests.
type Store interface {
	// Lookup retrieves the payload stored under key, or ErrCacheMiss.
	// Other errors are storage failures.
	Lookup(ctx context.Context, key string) (map[string]any, error)

	// Store persists a payload under key.
	Store(ctx context.Context, key string, payload map[string]any) error

	// Remove deletes the entry under key, if any.
	Remove(ctx context.Context, key string) error

	// Clear drops every entry in the store.
	Clear(ctx context.Context) error
}
