package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver     string `yaml:"DB_DRIVER"         env:"DB_DRIVER"         env-default:"postgres"`
	Host       string `yaml:"POSTGRES_HOST"     env:"POSTGRES_HOST"     env-default:"localhost"`
	Port       string `yaml:"POSTGRES_PORT"     env:"POSTGRES_PORT"     env-default:"5432"`
	User       string `yaml:"POSTGRES_USER"     env:"POSTGRES_USER"     env-default:"poll"`
	Password   string `yaml:"POSTGRES_PASSWORD" env:"POSTGRES_PASSWORD"`
	Name       string `yaml:"POSTGRES_DB"       env:"POSTGRES_DB"       env-default:"poll"`
	SSLMode    string `yaml:"POSTGRES_SSLMODE"  env:"POSTGRES_SSLMODE"  env-default:"disable"`
	SQLitePath string `yaml:"SQLITE_PATH"       env:"SQLITE_PATH"       env-default:"pollapp.db"`
}

func (c Config) DSN() string {
	if c.Driver == DriverSQLite {
		return SQLiteDSN(c.SQLitePath)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.PathEscape(c.User), url.PathEscape(c.Password), c.Host, c.Port, c.Name, c.SSLMode)
}

// SQLiteDSN enables foreign keys, which sqlite leaves off by default.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	switch cfg.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
