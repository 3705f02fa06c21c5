// Package cache provides response caching with Redis and in-memory backends.
//
// The dispatch engine consumes the Store contract: payloads are looked up,
// stored, and removed by the cache key derived from a request descriptor.
// Key properties:
//
//   - Verify-then-cache: the engine only stores payloads it has already
//     decoded into a model, so the cache never holds uninterpretable data
//   - Poisoned-cache prevention: a mapping failure removes any prior entry
//     under the same key
//   - Per-entry TTL with automatic expiry
//   - Prometheus metrics for observability
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create a Redis-backed store
//	store := cache.NewRedisStore(redisClient, 5*time.Minute)
//
//	// Lookup by a request's cache key
//	payload, err := store.Lookup(ctx, req.CacheKey())
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - the engine reports it, it never falls back to network
//	}
//
// # Backends
//
//   - RedisStore: shared across processes, entries expire server-side
//   - MemoryStore: per-process, bounded entry count
//   - NopStore: caching disabled, every lookup misses
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - api_cache_hits_total{layer} - Cache hits by backend
//   - api_cache_misses_total - Cache misses
//   - api_cache_size_bytes{layer} - Cached payload bytes
//   - api_cache_errors_total{operation} - Cache operation errors
//   - api_cache_evictions_total{reason} - Defensive entry removals
package cache
