package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollapp/internal/adapters/repository/sqlstore"
)

func TestNewDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, CacheMemory, cfg.CacheDriver)
	assert.Equal(t, 500*time.Millisecond, cfg.CacheOpTimeout)
	assert.Equal(t, EventsLog, cfg.EventsDriver)
	assert.Equal(t, sqlstore.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "cache", cfg.Tarantool.Space)
	assert.Equal(t, "votes-exchange", cfg.AMQP.Exchange)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestNewFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/poll.db")
	t.Setenv("CORS", "https://a.example,https://b.example")
	t.Setenv("CACHE_OP_TIMEOUT", "250ms")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, CacheRedis, cfg.CacheDriver)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, sqlstore.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/poll.db", cfg.DB.SQLitePath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 250*time.Millisecond, cfg.CacheOpTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWTSecret:    "s",
			CacheDriver:  CacheMemory,
			EventsDriver: EventsLog,
			DB:           sqlstore.Config{Driver: sqlstore.DriverSQLite},
		}
	}

	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"missing secret": func(c *Config) { c.JWTSecret = "" },
		"cache driver":   func(c *Config) { c.CacheDriver = "memcached" },
		"events driver":  func(c *Config) { c.EventsDriver = "kafka" },
		"db driver":      func(c *Config) { c.DB.Driver = "mysql" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
