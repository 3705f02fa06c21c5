package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces client entries inside a shared Redis instance.
const keyPrefix = "halcyon:cache:"

// DefaultTTL bounds how long a cached payload is served before the entry
// silently expires.
const DefaultTTL = 5 * time.Minute

// RedisStore is a Store backed by Redis.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store. A non-positive ttl falls back
// to DefaultTTL.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{redis: redisClient, ttl: ttl}
}

// Lookup implements Store.
func (s *RedisStore) Lookup(ctx context.Context, key string) (map[string]any, error) {
	data, err := s.redis.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("lookup").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		CacheErrors.WithLabelValues("lookup").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	CacheHits.WithLabelValues("redis").Inc()
	CacheSize.WithLabelValues("redis").Add(float64(len(data)))

	return payload, nil
}

// Store implements Store.
func (s *RedisStore) Store(ctx context.Context, key string, payload map[string]any) error {
	if payload == nil {
		return fmt.Errorf("payload cannot be nil")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		CacheErrors.WithLabelValues("store").Inc()
		return fmt.Errorf("marshal payload: %w", err)
	}

	if err := s.redis.Set(ctx, keyPrefix+key, data, s.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("store").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheSize.WithLabelValues("redis").Add(float64(len(data)))

	return nil
}

// Remove implements Store.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, keyPrefix+key).Err(); err != nil {
		CacheErrors.WithLabelValues("remove").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear implements Store. Only keys under the client's prefix are dropped.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.redis.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			CacheErrors.WithLabelValues("clear").Inc()
			return fmt.Errorf("redis del: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}
