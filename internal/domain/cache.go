package domain

import (
	"context"
	"time"
)

// Cache is the interface for verdict and lookup caching. Backed by a local
// LRU (embedded), Redis, or both in a two-phase arrangement.
type Cache interface {
	// Get retrieves a value from cache. Returns nil, nil if the key is
	// not present.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error

	// Health check.
	Ping(ctx context.Context) error

	// Lifecycle.
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis".
	Type string

	// Local LRU cache settings.
	LocalMaxSize int
	LocalTTL     time.Duration

	// Redis settings.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Two-phase settings: check the local LRU first, then Redis.
	EnableTwoPhase bool
}
