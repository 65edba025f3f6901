package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/batchblast/batchblast/internal/core"
)

var errEmptyKey = errors.New("key cannot be empty")

// RedisKVRepo implements core.KeyValueStore on Redis. Keys are namespaced with a prefix.
type RedisKVRepo struct {
	client redis.UniversalClient
	prefix string
}

var _ core.KeyValueStore = (*RedisKVRepo)(nil)

// NewRedisKVRepo creates a new RedisKVRepo; prefix may be empty.
func NewRedisKVRepo(client redis.UniversalClient, prefix string) *RedisKVRepo {
	return &RedisKVRepo{client: client, prefix: prefix}
}

// Set stores value under key. A zero ttl never expires.
func (r *RedisKVRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errEmptyKey
	}
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get returns nil, nil for a missing key.
func (r *RedisKVRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errEmptyKey
	}

	result, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return result, nil
}

// Delete removes key and reports whether it existed.
func (r *RedisKVRepo) Delete(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}

	n, err := r.client.Del(ctx, r.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n > 0, nil
}

// Health pings Redis.
func (r *RedisKVRepo) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
