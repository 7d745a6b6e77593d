package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/vncsmyrnk/pollapp/internal/adapters/repository/sqlstore"
	"github.com/vncsmyrnk/pollapp/internal/config"
	"github.com/vncsmyrnk/pollapp/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var list bool
	flag.StringVar(&cfg.DB.Driver, "driver", cfg.DB.Driver, "Database driver (postgres or sqlite)")
	flag.StringVar(&cfg.DB.SQLitePath, "sqlite-path", cfg.DB.SQLitePath, "SQLite database file")
	flag.BoolVar(&list, "list", false, "Only list the embedded migrations")
	flag.Parse()

	l, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer l.Sync()

	if list {
		migrations, err := sqlstore.Migrations(cfg.DB.Driver)
		if err != nil {
			l.Fatal("failed to read migrations", zap.Error(err))
		}
		for _, m := range migrations {
			l.Info("migration", zap.String("name", m.Name))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sqlstore.Open(ctx, cfg.DB)
	if err != nil {
		l.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	applied, err := sqlstore.Migrate(ctx, db, cfg.DB.Driver)
	if err != nil {
		l.Fatal("failed to apply migrations", zap.Error(err))
	}
	l.Info("migrations applied", zap.Strings("applied", applied), zap.String("driver", cfg.DB.Driver))
}
