package cache

import (
	"context"
	"testing"
	"time"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

func TestLRUCache(t *testing.T) {
	c := NewLRUCache(100)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		if err := c.Set(ctx, "key1", []byte("value1"), time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		val, err := c.Get(ctx, "key1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(val) != "value1" {
			t.Errorf("expected 'value1', got '%s'", string(val))
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		val, err := c.Get(ctx, "nonexistent")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if val != nil {
			t.Errorf("expected nil for cache miss, got: %v", val)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = c.Set(ctx, "key2", []byte("value2"), time.Minute)

		if err := c.Delete(ctx, "key2"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		val, _ := c.Get(ctx, "key2")
		if val != nil {
			t.Errorf("expected nil after delete, got: %v", val)
		}
	})

	t.Run("Expiration", func(t *testing.T) {
		_ = c.Set(ctx, "short", []byte("gone soon"), 10*time.Millisecond)
		time.Sleep(20 * time.Millisecond)

		val, _ := c.Get(ctx, "short")
		if val != nil {
			t.Errorf("expected expired entry to miss, got: %v", val)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = c.Set(ctx, "key3", []byte("old"), time.Minute)
		_ = c.Set(ctx, "key3", []byte("new"), time.Minute)

		val, _ := c.Get(ctx, "key3")
		if string(val) != "new" {
			t.Errorf("expected 'new', got '%s'", string(val))
		}
	})
}

func TestLRUEviction(t *testing.T) {
	c := NewLRUCache(3)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, key, []byte(key), time.Minute)
	}

	// Touch "a" so "b" becomes the eviction candidate.
	_, _ = c.Get(ctx, "a")

	_ = c.Set(ctx, "d", []byte("d"), time.Minute)

	if val, _ := c.Get(ctx, "b"); val != nil {
		t.Error("expected 'b' to be evicted")
	}
	if val, _ := c.Get(ctx, "a"); val == nil {
		t.Error("expected 'a' to survive eviction")
	}

	size, capacity := c.Stats()
	if size != 3 || capacity != 3 {
		t.Errorf("expected size 3/3, got %d/%d", size, capacity)
	}
}

func TestCacheFactory(t *testing.T) {
	c, err := New(domain.CacheConfig{Type: "memory", LocalMaxSize: 10})
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	defer c.Close()

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("ping failed: %v", err)
	}

	if _, err := New(domain.CacheConfig{Type: "memcached"}); err == nil {
		t.Error("expected error for unsupported cache type")
	}
}
