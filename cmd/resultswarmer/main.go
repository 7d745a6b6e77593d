package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/vncsmyrnk/pollapp/internal/app"
	"github.com/vncsmyrnk/pollapp/internal/config"
	"github.com/vncsmyrnk/pollapp/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var timeout time.Duration
	flag.StringVar(&cfg.CacheDriver, "cache", cfg.CacheDriver, "Cache backend (memory, redis or tarantool)")
	flag.StringVar(&cfg.Redis.Addr, "redis-addr", cfg.Redis.Addr, "Redis address")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Maximum duration of the job")
	flag.Parse()

	l, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer l.Sync()

	if cfg.CacheDriver == config.CacheMemory {
		l.Warn("warming an in-process cache has no effect on running servers")
	}

	// Bound the whole job so it cannot hang on a slow store.
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		l.Fatal("failed to start", zap.Error(err))
	}
	defer a.Close()

	l.Info("warming poll results")
	start := time.Now()
	if err := a.Results.WarmAll(ctx); err != nil {
		l.Fatal("failed to warm poll results", zap.Error(err))
	}
	l.Info("poll results warmed", zap.Duration("took", time.Since(start)))
}
