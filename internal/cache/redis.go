// Package cache wraps the Redis client behind the handful of operations
// the service needs: cached user lookups for token verification and the
// login rate limiter's token buckets.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pool sizing for a single API instance. Session lookups dominate the
// traffic, so the pool stays small with a few warm connections.
const (
	poolSize        = 16
	minIdleConns    = 4
	poolTimeout     = 3 * time.Second
	connMaxIdleTime = 10 * time.Minute
)

// Cache is the Redis-backed cache for the service.
type Cache struct {
	client *redis.Client
}

// New connects to Redis at redisURL and verifies the connection.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = poolSize
	opt.MinIdleConns = minIdleConns
	opt.PoolTimeout = poolTimeout
	opt.ConnMaxIdleTime = connMaxIdleTime

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the underlying Redis client for the audit stream
// publisher and worker, which speak the stream API directly.
func (c *Cache) Client() *redis.Client {
	return c.client
}
