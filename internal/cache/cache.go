package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// New creates a cache based on configuration.
// The embedded deployment gets the local LRU; deployments with Redis can
// run it standalone or as L2 behind the LRU (two-phase).
func New(cfg domain.CacheConfig) (domain.Cache, error) {
	switch cfg.Type {
	case "memory":
		return NewLRUCache(cfg.LocalMaxSize), nil

	case "redis":
		if cfg.EnableTwoPhase {
			return NewTwoPhaseCache(cfg)
		}
		return NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}

// TwoPhaseCache layers a local LRU (L1) over Redis (L2): reads check the
// LRU first and backfill it on a Redis hit; writes go to both.
type TwoPhaseCache struct {
	local  *LRUCache
	remote *RedisCache
	l1TTL  time.Duration
}

// NewTwoPhaseCache creates a two-phase cache with LRU + Redis.
func NewTwoPhaseCache(cfg domain.CacheConfig) (*TwoPhaseCache, error) {
	local := NewLRUCache(cfg.LocalMaxSize)

	remote, err := NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis cache: %w", err)
	}

	l1TTL := cfg.LocalTTL
	if l1TTL == 0 {
		l1TTL = 5 * time.Minute
	}

	return &TwoPhaseCache{
		local:  local,
		remote: remote,
		l1TTL:  l1TTL,
	}, nil
}

// Get checks L1 first, then L2, backfilling L1 on a hit.
func (c *TwoPhaseCache) Get(ctx context.Context, key string) ([]byte, error) {
	if val, err := c.local.Get(ctx, key); err == nil && val != nil {
		return val, nil
	}

	val, err := c.remote.Get(ctx, key)
	if err != nil || val == nil {
		return val, err
	}

	_ = c.local.Set(ctx, key, val, c.l1TTL)
	return val, nil
}

// Set writes both layers.
func (c *TwoPhaseCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	l1TTL := ttl
	if l1TTL > c.l1TTL {
		l1TTL = c.l1TTL
	}
	_ = c.local.Set(ctx, key, value, l1TTL)
	return c.remote.Set(ctx, key, value, ttl)
}

// Delete removes the key from both layers.
func (c *TwoPhaseCache) Delete(ctx context.Context, key string) error {
	_ = c.local.Delete(ctx, key)
	return c.remote.Delete(ctx, key)
}

// Ping checks the remote layer.
func (c *TwoPhaseCache) Ping(ctx context.Context) error {
	return c.remote.Ping(ctx)
}

// Close closes both layers.
func (c *TwoPhaseCache) Close() error {
	_ = c.local.Close()
	return c.remote.Close()
}
