package main

import (
	"context"
	"errors"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/vncsmyrnk/pollapp/internal/adapters/handler/http"
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

	l, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		l.Fatal("failed to start", zap.Error(err))
	}
	defer a.Close()

	authn := http.NewAuthenticator(a.Auth, l)
	handler := http.NewHandler(http.Handlers{
		Polls: http.NewPollHandler(a.Polls, a.Results, l),
		Votes: http.NewVoteHandler(a.Votes, l),
		Users: http.NewUserHandler(a.Users, a.Votes, l),
		Auth: http.NewAuthHandler(a.Auth, a.Users, http.CookieConfig{
			Domain:   cfg.CookieDomain,
			Secure:   cfg.CookieSecure,
			SameSite: stdhttp.SameSiteLaxMode,
			MaxAge:   cfg.TokenTTL,
		}, l),
	}, authn, cfg.AllowedOrigins, l)

	server := &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Info("http server listening", zap.String("addr", cfg.HTTPAddr),
			zap.String("cache", cfg.CacheDriver), zap.String("events", cfg.EventsDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			l.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	l.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error("shutdown failed", zap.Error(err))
	}
}
