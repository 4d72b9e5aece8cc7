// Package cache provides an optional Redis-backed result cache for
// conversion and probe responses. Keys are derived from the input payload
// digest so identical uploads are served without re-decoding.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zsiec/rasterize/internal/config"
	"github.com/zsiec/rasterize/internal/metrics"
)

// ErrMiss indicates the key is not present in the cache.
var ErrMiss = errors.New("cache miss")

// ResultCache stores encoded conversion results keyed by input digest.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a result cache from configuration and verifies connectivity.
func New(ctx context.Context, cfg *config.CacheConfig) (*ResultCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &ResultCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

// NewWithClient creates a result cache around an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

// Key derives the cache key for an operation over an input payload.
func Key(operation string, input []byte) string {
	sum := sha256.Sum256(input)
	return "rasterize:" + operation + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached value for key, or ErrMiss.
func (c *ResultCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.IncrementCacheOp("get", "miss")
		return nil, ErrMiss
	}
	if err != nil {
		metrics.IncrementCacheOp("get", "error")
		return nil, fmt.Errorf("cache get: %w", err)
	}
	metrics.IncrementCacheOp("get", "hit")
	return val, nil
}

// Set stores a value under key with the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		metrics.IncrementCacheOp("set", "error")
		return fmt.Errorf("cache set: %w", err)
	}
	metrics.IncrementCacheOp("set", "ok")
	return nil
}

// Ping verifies connectivity for health checks.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Client exposes the underlying client for health checkers.
func (c *ResultCache) Client() *redis.Client {
	return c.client
}

// Close releases the underlying connection pool.
func (c *ResultCache) Close() error {
	return c.client.Close()
}
