package tarantoolcache

import (
	"context"
	"fmt"
	"time"

	"github.com/tarantool/go-tarantool"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
	"go.uber.org/zap"
)

const ensureSpace = `
local name = ...
local space = box.schema.space.create(name, {
	if_not_exists = true,
	format = {
		{name = 'key', type = 'string'},
		{name = 'value', type = 'string'},
		{name = 'expires_at', type = 'unsigned'},
	},
})
space:create_index('primary', {parts = {'key'}, if_not_exists = true})
`

// Tuples are stored as {key, value, expires_at} where expires_at is a unix
// timestamp in nanoseconds, or 0 for entries that never expire.
const (
	fieldKey = iota
	fieldValue
	fieldExpiresAt
)

type cache struct {
	conn  *tarantool.Connection
	space string
	l     *zap.Logger
	now   func() time.Time
}

// NewCache creates the cache space when it does not exist yet. Expired tuples
// are removed when they are read.
func NewCache(conn *tarantool.Connection, space string, l *zap.Logger) (ports.Cache, error) {
	if _, err := conn.Eval(ensureSpace, []interface{}{space}); err != nil {
		return nil, fmt.Errorf("failed to ensure space %s: %w", space, err)
	}
	return &cache{
		conn:  conn,
		space: space,
		l:     l,
		now:   time.Now,
	}, nil
}

func (c *cache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, expiresAt, found, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ports.ErrCacheMiss
	}
	if isExpired(expiresAt, c.now()) {
		if _, err := c.conn.Delete(c.space, "primary", []interface{}{key}); err != nil {
			c.l.Debug("failed to drop expired tuple", zap.String("key", key), zap.Error(err))
		}
		return nil, ports.ErrCacheMiss
	}
	return value, nil
}

func (c *cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var expiresAt uint64
	if ttl > 0 {
		expiresAt = uint64(c.now().Add(ttl).UnixNano())
	}

	resp, err := c.conn.Replace(c.space, []interface{}{key, string(value), expiresAt})
	if err != nil {
		return fmt.Errorf("tarantool replace error: %w", err)
	}
	c.l.Debug("tarantool response",
		zap.Uint32("status_code", resp.Code),
		zap.String("key", key))
	return nil
}

func (c *cache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := c.conn.Delete(c.space, "primary", []interface{}{key}); err != nil {
			return fmt.Errorf("tarantool delete error: %w", err)
		}
	}
	return nil
}

func (c *cache) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, expiresAt, found, err := c.lookup(key)
	if err != nil {
		return false, err
	}
	return found && !isExpired(expiresAt, c.now()), nil
}

func (c *cache) lookup(key string) ([]byte, uint64, bool, error) {
	resp, err := c.conn.Select(c.space, "primary", 0, 1, tarantool.IterEq, []interface{}{key})
	if err != nil {
		return nil, 0, false, fmt.Errorf("tarantool select error: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, 0, false, nil
	}

	tuple, ok := resp.Data[0].([]interface{})
	if !ok {
		return nil, 0, false, fmt.Errorf("unexpected tuple type %T", resp.Data[0])
	}
	value, expiresAt, err := decodeTuple(tuple)
	if err != nil {
		return nil, 0, false, err
	}
	return value, expiresAt, true, nil
}

func decodeTuple(tuple []interface{}) ([]byte, uint64, error) {
	if len(tuple) <= fieldExpiresAt {
		return nil, 0, fmt.Errorf("unexpected tuple length %d", len(tuple))
	}

	var value []byte
	switch v := tuple[fieldValue].(type) {
	case string:
		value = []byte(v)
	case []byte:
		value = v
	default:
		return nil, 0, fmt.Errorf("unexpected value type %T", tuple[fieldValue])
	}

	var expiresAt uint64
	switch v := tuple[fieldExpiresAt].(type) {
	case uint64:
		expiresAt = v
	case int64:
		expiresAt = uint64(v)
	case uint32:
		expiresAt = uint64(v)
	case int:
		expiresAt = uint64(v)
	default:
		return nil, 0, fmt.Errorf("unexpected expiry type %T", tuple[fieldExpiresAt])
	}

	return value, expiresAt, nil
}

func isExpired(expiresAt uint64, now time.Time) bool {
	return expiresAt != 0 && uint64(now.UnixNano()) >= expiresAt
}
