package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/pollapp/internal/adapters/cache/memory"
	"github.com/vncsmyrnk/pollapp/internal/adapters/cache/rediscache"
	"github.com/vncsmyrnk/pollapp/internal/adapters/cache/tarantoolcache"
	"github.com/vncsmyrnk/pollapp/internal/adapters/notifier/lognotifier"
	"github.com/vncsmyrnk/pollapp/internal/adapters/notifier/rabbitmq"
	"github.com/vncsmyrnk/pollapp/internal/adapters/repository/sqlstore"
	"github.com/vncsmyrnk/pollapp/internal/config"
	"github.com/vncsmyrnk/pollapp/internal/core/caching"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
	"github.com/vncsmyrnk/pollapp/internal/core/services"
	"github.com/vncsmyrnk/pollapp/pkg/tarantool"
	"go.uber.org/zap"
)

// App holds the services and the connections they run on.
type App struct {
	DB      *sql.DB
	Cache   *caching.Layer
	Users   ports.UserService
	Polls   ports.PollService
	Votes   ports.VoteService
	Results ports.ResultService
	Auth    *services.AuthService

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	a := &App{}

	db, err := sqlstore.Open(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	a.DB = db

	backend, err := a.openCache(ctx, cfg, l)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Cache = caching.NewLayer(backend, l,
		caching.WithOpTimeout(cfg.CacheOpTimeout),
		caching.WithPurgeTimeout(cfg.CachePurgeTimeout),
		caching.WithLoadTimeout(cfg.CacheLoadTimeout))

	events, err := a.openNotifier(cfg, l)
	if err != nil {
		a.Close()
		return nil, err
	}

	userRepo := sqlstore.NewUserRepository(db)
	pollRepo := sqlstore.NewPollRepository(db)
	optionRepo := sqlstore.NewOptionRepository(db)
	voteRepo := sqlstore.NewVoteRepository(db)

	a.Users = services.NewUserService(userRepo, pollRepo, voteRepo, a.Cache, events, l)
	a.Polls = services.NewPollService(pollRepo, optionRepo, userRepo, voteRepo, a.Cache, events, l)
	a.Votes = services.NewVoteService(pollRepo, optionRepo, userRepo, voteRepo, a.Cache, events, l)
	a.Results = services.NewResultService(pollRepo, voteRepo, a.Cache, l)
	a.Auth = services.NewAuthService(a.Users, cfg.JWTSecret, cfg.TokenTTL)

	return a, nil
}

func (a *App) openCache(ctx context.Context, cfg *config.Config, l *zap.Logger) (ports.Cache, error) {
	switch cfg.CacheDriver {
	case config.CacheRedis:
		client, err := rediscache.New(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return rediscache.NewCache(client, cfg.CachePrefix), nil
	case config.CacheTarantool:
		conn, err := tarantool.New(cfg.Tarantool)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to tarantool: %w", err)
		}
		a.closers = append(a.closers, conn.Close)
		return tarantoolcache.NewCache(conn, cfg.Tarantool.Space, l)
	default:
		return memory.NewCache(), nil
	}
}

func (a *App) openNotifier(cfg *config.Config, l *zap.Logger) (ports.EventNotifier, error) {
	if cfg.EventsDriver != config.EventsAMQP {
		return lognotifier.New(l), nil
	}

	n, err := rabbitmq.New(cfg.AMQP)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	a.closers = append(a.closers, n.Close)
	return n, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
