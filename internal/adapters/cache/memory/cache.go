package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vncsmyrnk/pollapp/internal/core/ports"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

type cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewCache returns an in-process cache. Expired entries are dropped lazily on
// access.
func NewCache() ports.Cache {
	return newCache(time.Now)
}

func newCache(now func() time.Time) *cache {
	return &cache{
		entries: make(map[string]entry),
		now:     now,
	}
}

func (c *cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ports.ErrCacheMiss
	}
	if c.expired(e) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && c.expired(cur) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, ports.ErrCacheMiss
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (c *cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *cache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

func (c *cache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	return ok && !c.expired(e), nil
}

func (c *cache) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}
