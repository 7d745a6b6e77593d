package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/vncsmyrnk/pollapp/internal/adapters/cache/rediscache"
	"github.com/vncsmyrnk/pollapp/internal/adapters/notifier/rabbitmq"
	"github.com/vncsmyrnk/pollapp/internal/adapters/repository/sqlstore"
	"github.com/vncsmyrnk/pollapp/pkg/logger"
	"github.com/vncsmyrnk/pollapp/pkg/tarantool"
)

const (
	CacheMemory    = "memory"
	CacheRedis     = "redis"
	CacheTarantool = "tarantool"

	EventsLog  = "log"
	EventsAMQP = "amqp"
)

type Config struct {
	HTTPAddr       string        `yaml:"HTTP_ADDR"        env:"HTTP_ADDR"        env-default:"0.0.0.0:8080"`
	JWTSecret      string        `yaml:"JWT_SECRET"       env:"JWT_SECRET"`
	TokenTTL       time.Duration `yaml:"TOKEN_TTL"        env:"TOKEN_TTL"        env-default:"15m"`
	AllowedOrigins []string      `yaml:"CORS"             env:"CORS"             env-default:"*"             env-separator:","`
	CookieDomain   string        `yaml:"COOKIE_DOMAIN"    env:"COOKIE_DOMAIN"`
	CookieSecure   bool          `yaml:"COOKIE_SECURE"    env:"COOKIE_SECURE"    env-default:"true"`

	CacheDriver       string        `yaml:"CACHE_DRIVER"        env:"CACHE_DRIVER"        env-default:"memory"`
	CachePrefix       string        `yaml:"CACHE_PREFIX"        env:"CACHE_PREFIX"        env-default:"pollapp:"`
	CacheOpTimeout    time.Duration `yaml:"CACHE_OP_TIMEOUT"    env:"CACHE_OP_TIMEOUT"    env-default:"500ms"`
	CachePurgeTimeout time.Duration `yaml:"CACHE_PURGE_TIMEOUT" env:"CACHE_PURGE_TIMEOUT" env-default:"2s"`
	CacheLoadTimeout  time.Duration `yaml:"CACHE_LOAD_TIMEOUT"  env:"CACHE_LOAD_TIMEOUT"  env-default:"10s"`

	EventsDriver string `yaml:"EVENTS_DRIVER" env:"EVENTS_DRIVER" env-default:"log"`

	Log       logger.Config
	DB        sqlstore.Config
	Redis     rediscache.Config
	Tarantool tarantool.Config
	AMQP      rabbitmq.Config
}

// New loads .env when present and reads the configuration from the
// environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.CacheDriver {
	case CacheMemory, CacheRedis, CacheTarantool:
	default:
		return fmt.Errorf("unknown CACHE_DRIVER %q", c.CacheDriver)
	}
	switch c.EventsDriver {
	case EventsLog, EventsAMQP:
	default:
		return fmt.Errorf("unknown EVENTS_DRIVER %q", c.EventsDriver)
	}
	switch c.DB.Driver {
	case sqlstore.DriverPostgres, sqlstore.DriverSQLite:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}
	return nil
}
