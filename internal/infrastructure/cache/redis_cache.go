// Package cache provides the Redis-backed fast side of the history store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Phicks-debug/daisii/internal/domain/chat"
	"github.com/Phicks-debug/daisii/internal/infrastructure/logger"
)

const connectTimeout = 5 * time.Second

// RedisCache implements chat.Cache over a single Redis endpoint. Safe for
// concurrent use by simultaneous requests.
type RedisCache struct {
	client *redis.Client
}

var _ chat.Cache = (*RedisCache)(nil)

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(addr, password string) (*RedisCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address must be provided")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log := logger.GetLogger()
	log.Info().Str("addr", addr).Msg("connected to redis cache")

	return &RedisCache{client: client}, nil
}

// Get returns the value at key, or chat.ErrCacheMiss when absent.
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", chat.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get value from cache: %w", err)
	}
	return val, nil
}

// Set stores value at key with the given expiration.
func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// HealthCheck verifies the connection is alive.
func (r *RedisCache) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
