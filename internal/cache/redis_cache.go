package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "skyscout:lookup:"

// RedisCache shares cached lookups between processes
type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisCache wraps an existing redis client
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: client, ttl: ttl}
}

// Get retrieves a value; misses and redis failures both report false
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.redis.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a value with the cache TTL. A non-positive TTL disables writes.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if r.ttl <= 0 {
		return nil
	}
	if err := r.redis.Set(ctx, redisKey(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set lookup: %w", err)
	}
	return nil
}

// Ping checks that the server is reachable
func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.redis.Ping(ctx).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (r *RedisCache) Close() error {
	return r.redis.Close()
}

func redisKey(key string) string {
	return redisKeyPrefix + hashKey(key)
}
