package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollapp/internal/adapters/cache/memory"
	"github.com/vncsmyrnk/pollapp/internal/adapters/repository/sqlstore"
	"github.com/vncsmyrnk/pollapp/internal/core/caching"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

// spyCache records every purge that reaches the backend.
type spyCache struct {
	ports.Cache

	mu      sync.Mutex
	deleted []string
	fail    bool
}

func (s *spyCache) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failing() {
		return nil, errors.New("cache down")
	}
	return s.Cache.Get(ctx, key)
}

func (s *spyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.failing() {
		return errors.New("cache down")
	}
	return s.Cache.Set(ctx, key, value, ttl)
}

func (s *spyCache) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, keys...)
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return errors.New("cache down")
	}
	return s.Cache.Delete(ctx, keys...)
}

func (s *spyCache) failing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail
}

func (s *spyCache) setFailing(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

func (s *spyCache) purged() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func (s *spyCache) reset() {
	s.mu.Lock()
	s.deleted = nil
	s.mu.Unlock()
}

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (r *recorder) Notify(_ context.Context, event domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) last() domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return domain.Event{}
	}
	return r.events[len(r.events)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type testEnv struct {
	db      *sql.DB
	cache   *spyCache
	layer   *caching.Layer
	events  *recorder
	users   ports.UserService
	polls   ports.PollService
	votes   ports.VoteService
	results ports.ResultService
	auth    *AuthService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:     sqlstore.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "poll.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = sqlstore.Migrate(ctx, db, sqlstore.DriverSQLite)
	require.NoError(t, err)

	l := zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
	spy := &spyCache{Cache: memory.NewCache()}
	layer := caching.NewLayer(spy, l)
	events := &recorder{}

	userRepo := sqlstore.NewUserRepository(db)
	pollRepo := sqlstore.NewPollRepository(db)
	optionRepo := sqlstore.NewOptionRepository(db)
	voteRepo := sqlstore.NewVoteRepository(db)

	users := NewUserService(userRepo, pollRepo, voteRepo, layer, events, l)
	users.(*userService).hashCost = bcrypt.MinCost

	return &testEnv{
		db:      db,
		cache:   spy,
		layer:   layer,
		events:  events,
		users:   users,
		polls:   NewPollService(pollRepo, optionRepo, userRepo, voteRepo, layer, events, l),
		votes:   NewVoteService(pollRepo, optionRepo, userRepo, voteRepo, layer, events, l),
		results: NewResultService(pollRepo, voteRepo, layer, l),
		auth:    NewAuthService(users, "test-secret", time.Minute),
	}
}

func (e *testEnv) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), ports.CreateUserInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "secret-" + name,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) poll(t *testing.T, creator *domain.User, question string, options ...string) *domain.Poll {
	t.Helper()
	p, err := e.polls.Create(context.Background(), ports.CreatePollInput{
		Question:  question,
		CreatedBy: creator.ID,
		Options:   options,
	})
	require.NoError(t, err)
	return p
}
