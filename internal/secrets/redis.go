package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache decorates a Provider with a Redis-backed cache so repeated
// provider construction does not hammer the underlying secret source.
// Entries expire after the configured TTL. Cache failures degrade to the
// inner provider; they never fail a lookup on their own.
type RedisCache struct {
	client *redis.Client
	inner  Provider
	ttl    time.Duration
	prefix string
	log    *slog.Logger
}

// NewRedisCache connects to Redis at addr and wraps inner with a cache.
// Keys are stored under prefix with the given TTL.
func NewRedisCache(ctx context.Context, addr string, inner Provider, ttl time.Duration, prefix string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Secret cache initialized", "addr", addr, "ttl", ttl)
	return &RedisCache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		prefix: prefix,
		log:    slog.Default(),
	}, nil
}

// NewRedisCacheWithClient wraps inner using an existing Redis client (for
// testing).
func NewRedisCacheWithClient(client *redis.Client, inner Provider, ttl time.Duration, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		prefix: prefix,
		log:    slog.Default(),
	}
}

func (c *RedisCache) key(name string) string {
	return c.prefix + ":" + name
}

// GetSecret returns the cached value when present, otherwise fetches from
// the inner provider and caches the result under the TTL.
func (c *RedisCache) GetSecret(ctx context.Context, name string) (string, error) {
	value, err := c.client.Get(ctx, c.key(name)).Result()
	if err == nil {
		return value, nil
	}
	if err != redis.Nil {
		c.log.Warn("Secret cache read failed, falling through", "name", name, "error", err)
	}

	value, err = c.inner.GetSecret(ctx, name)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, c.key(name), value, c.ttl).Err(); err != nil {
		c.log.Warn("Secret cache write failed", "name", name, "error", err)
	}
	return value, nil
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
