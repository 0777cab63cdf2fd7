package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store shared between replicas.
type Redis struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedis connects to the Redis server at url and verifies it with a PING.
func NewRedis(ctx context.Context, url string, defaultTTL time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisFromClient(client, defaultTTL), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, defaultTTL time.Duration) *Redis {
	return &Redis{client: client, defaultTTL: effectiveTTL(defaultTTL, DefaultTTL)}
}

// Get returns the cached value for key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return b, true, nil
}

// Set stores value under key with an expiry.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, effectiveTTL(ttl, r.defaultTTL)).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Name returns "redis".
func (r *Redis) Name() string { return BackendRedis }

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Store = (*Redis)(nil)
