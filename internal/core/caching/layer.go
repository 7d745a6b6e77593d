package caching

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	generationStripes = 256

	DefaultOpTimeout    = 500 * time.Millisecond
	DefaultPurgeTimeout = 2 * time.Second
	DefaultLoadTimeout  = 10 * time.Second
)

// Layer puts a read-through, invalidate-on-write protocol in front of a
// ports.Cache. Cache failures are logged and never returned to callers.
//
// Every key maps onto a generation counter. Invalidate bumps the counter
// before deleting, and a read-through only keeps what it populated if the
// counter did not move while it was loading from the store.
type Layer struct {
	cache        ports.Cache
	l            *zap.Logger
	group        singleflight.Group
	generations  [generationStripes]atomic.Uint64
	opTimeout    time.Duration
	purgeTimeout time.Duration
	loadTimeout  time.Duration
}

type Option func(*Layer)

func WithOpTimeout(d time.Duration) Option {
	return func(c *Layer) {
		if d > 0 {
			c.opTimeout = d
		}
	}
}

func WithPurgeTimeout(d time.Duration) Option {
	return func(c *Layer) {
		if d > 0 {
			c.purgeTimeout = d
		}
	}
}

// WithLoadTimeout bounds a shared store load, which outlives the caller that
// started it.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Layer) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

func NewLayer(cache ports.Cache, l *zap.Logger, opts ...Option) *Layer {
	c := &Layer{
		cache:        cache,
		l:            l,
		opTimeout:    DefaultOpTimeout,
		purgeTimeout: DefaultPurgeTimeout,
		loadTimeout:  DefaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Layer) generation(key string) *atomic.Uint64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &c.generations[h.Sum32()%generationStripes]
}

// ReadThrough returns the cached value of key, or loads it, populates the
// cache and returns it. Errors from load are returned as-is and nothing is
// cached for them.
func ReadThrough[T any](ctx context.Context, c *Layer, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if c.get(ctx, key, &cached) {
		return cached, nil
	}

	gen := c.generation(key).Load()
	flight := key + "@" + strconv.FormatUint(gen, 10)

	// The shared load is detached from the caller that started it. Each caller
	// stops waiting on its own cancellation.
	ch := c.group.DoChan(flight, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		loaded, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.populate(loadCtx, key, loaded, gen)
		return loaded, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Refresh loads key from the store regardless of what is cached and
// repopulates the cache with the result.
func Refresh[T any](ctx context.Context, c *Layer, key string, load func(context.Context) (T, error)) (T, error) {
	gen := c.generation(key).Load()
	loaded, err := load(ctx)
	if err != nil {
		return loaded, err
	}
	c.populate(ctx, key, loaded, gen)
	return loaded, nil
}

// Cached reports whether key currently has an entry. Failures count as absent.
func (c *Layer) Cached(ctx context.Context, key string) bool {
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	ok, err := c.cache.Exists(opCtx, key)
	if err != nil {
		c.l.Warn("cache exists failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

// Invalidate deletes keys from the cache. It is meant to run after a durable
// write committed and keeps going when ctx is cancelled.
func (c *Layer) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	for _, key := range keys {
		c.generation(key).Add(1)
	}

	purgeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.purgeTimeout)
	defer cancel()

	if err := c.cache.Delete(purgeCtx, keys...); err != nil {
		c.l.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
		return
	}
	c.l.Debug("cache invalidated", zap.Strings("keys", keys))
}

func (c *Layer) get(ctx context.Context, key string, dst any) bool {
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	raw, err := c.cache.Get(opCtx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			c.l.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		c.l.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		if err := c.cache.Delete(opCtx, key); err != nil {
			c.l.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	c.l.Debug("cache hit", zap.String("key", key))
	return true
}

func (c *Layer) populate(ctx context.Context, key string, value any, gen uint64) {
	counter := c.generation(key)
	if counter.Load() != gen {
		c.l.Debug("skipping stale populate", zap.String("key", key))
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.l.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opTimeout)
	defer cancel()

	if err := c.cache.Set(opCtx, key, raw, TTLFor(key)); err != nil {
		c.l.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return
	}

	// An invalidation may have landed between the check above and the write.
	if counter.Load() != gen {
		if err := c.cache.Delete(opCtx, key); err != nil {
			c.l.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}
