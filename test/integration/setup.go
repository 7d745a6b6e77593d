package integration

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	handler "github.com/vncsmyrnk/pollapp/internal/adapters/handler/http"
	"github.com/vncsmyrnk/pollapp/internal/adapters/repository/sqlstore"
	"github.com/vncsmyrnk/pollapp/internal/app"
	"github.com/vncsmyrnk/pollapp/internal/config"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// Backends are the containers shared by the replicas of a test.
type Backends struct {
	DB    sqlstore.Config
	Redis string

	containers []testcontainers.Container
}

func setupBackends(t *testing.T) *Backends {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	redisAddr, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	b := &Backends{
		DB: sqlstore.Config{
			Driver:   sqlstore.DriverPostgres,
			Host:     host,
			Port:     port.Port(),
			User:     "user",
			Password: "password",
			Name:     "testdb",
			SSLMode:  "disable",
		},
		Redis:      redisAddr,
		containers: []testcontainers.Container{pgContainer, redisContainer},
	}
	t.Cleanup(func() {
		for _, c := range b.containers {
			if err := c.Terminate(context.Background()); err != nil {
				t.Logf("failed to terminate container: %v", err)
			}
		}
	})

	db, err := sqlstore.Open(ctx, b.DB)
	require.NoError(t, err)
	defer db.Close()
	_, err = sqlstore.Migrate(ctx, db, sqlstore.DriverPostgres)
	require.NoError(t, err)

	return b
}

// TestApp is one server replica running over the shared backends.
type TestApp struct {
	App    *app.App
	Server *httptest.Server
	Client *http.Client
}

func (b *Backends) startReplica(t *testing.T) *TestApp {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:    "test-secret",
		TokenTTL:     15 * time.Minute,
		CacheDriver:  config.CacheRedis,
		CachePrefix:  "it:",
		EventsDriver: config.EventsLog,
		DB:           b.DB,
	}
	cfg.Redis.Addr = b.Redis

	l := zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
	a, err := app.New(context.Background(), cfg, l)
	require.NoError(t, err)

	router := handler.NewHandler(handler.Handlers{
		Polls: handler.NewPollHandler(a.Polls, a.Results, l),
		Votes: handler.NewVoteHandler(a.Votes, l),
		Users: handler.NewUserHandler(a.Users, a.Votes, l),
		Auth:  handler.NewAuthHandler(a.Auth, a.Users, handler.CookieConfig{MaxAge: cfg.TokenTTL}, l),
	}, handler.NewAuthenticator(a.Auth, l), []string{"*"}, l)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		a.Close()
	})

	return &TestApp{App: a, Server: server, Client: server.Client()}
}

func (app *TestApp) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	raw := []byte{}
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, app.Server.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (app *TestApp) createUserAndToken(t *testing.T, name string) (*domain.User, string) {
	t.Helper()

	var user domain.User
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": name,
		"email":    name + "@example.com",
		"password": "pw-" + name,
	}, &user))

	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    name + "@example.com",
		"password": "pw-" + name,
	}, &login))

	return &user, login.AccessToken
}

func (app *TestApp) createPoll(t *testing.T, token, question string, options ...string) *domain.Poll {
	t.Helper()

	var poll domain.Poll
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/polls", token, map[string]any{
		"question": question,
		"options":  options,
	}, &poll))
	return &poll
}

func resultsPath(poll *domain.Poll) string {
	return fmt.Sprintf("/api/polls/%s/results", poll.ID)
}

func votesPath(poll *domain.Poll) string {
	return fmt.Sprintf("/api/polls/%s/votes", poll.ID)
}
