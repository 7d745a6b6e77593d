package integration

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
)

// TestPollFlow runs the vote lifecycle against postgres and redis.
func TestPollFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	b := setupBackends(t)
	app := b.startReplica(t)

	_, aliceToken := app.createUserAndToken(t, "alice")
	_, bobToken := app.createUserAndToken(t, "bob")
	poll := app.createPoll(t, aliceToken, "Java or Python?", "Java", "Python")

	java := map[string]any{"option_id": poll.Options[0].ID}
	python := map[string]any{"option_id": poll.Options[1].ID}

	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, votesPath(poll), bobToken, java, nil))
	require.Equal(t, http.StatusConflict, app.do(t, http.MethodPost, votesPath(poll), bobToken, java, nil))

	var results domain.PollResults
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, resultsPath(poll), "", nil, &results))
	assert.Equal(t, int64(1), results.Options[0].Votes)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodPut, votesPath(poll), bobToken, python, nil))

	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, resultsPath(poll), "", nil, &results))
	assert.Equal(t, int64(0), results.Options[0].Votes)
	assert.Equal(t, int64(1), results.Options[1].Votes)

	var count int
	err := app.App.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE poll_id = $1", poll.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// TestReplicasShareInvalidation checks that a write through one replica is
// visible to reads through another, both going through the same redis.
func TestReplicasShareInvalidation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	b := setupBackends(t)
	first := b.startReplica(t)
	second := b.startReplica(t)

	_, aliceToken := first.createUserAndToken(t, "alice")
	poll := first.createPoll(t, aliceToken, "Tabs or spaces?", "Tabs", "Spaces")

	var results domain.PollResults
	require.Equal(t, http.StatusOK, first.do(t, http.MethodGet, resultsPath(poll), "", nil, &results))
	assert.Equal(t, int64(0), results.Total)

	require.Equal(t, http.StatusCreated, second.do(t, http.MethodPost, votesPath(poll), "",
		map[string]any{"option_id": poll.Options[1].ID}, nil))

	require.Equal(t, http.StatusOK, first.do(t, http.MethodGet, resultsPath(poll), "", nil, &results))
	assert.Equal(t, int64(1), results.Total)
	assert.Equal(t, int64(1), results.Options[1].Votes)

	var opt domain.VoteOption
	require.Equal(t, http.StatusCreated, second.do(t, http.MethodPost,
		fmt.Sprintf("/api/polls/%s/options", poll.ID), aliceToken, map[string]string{"caption": "Both"}, &opt))

	var got domain.Poll
	require.Equal(t, http.StatusOK, first.do(t, http.MethodGet, "/api/polls/"+poll.ID.String(), "", nil, &got))
	assert.Len(t, got.Options, 3)
}

// TestConcurrentVotes races casts of a single voter; postgres keeps exactly one.
func TestConcurrentVotes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	b := setupBackends(t)
	app := b.startReplica(t)

	_, aliceToken := app.createUserAndToken(t, "alice")
	_, bobToken := app.createUserAndToken(t, "bob")
	poll := app.createPoll(t, aliceToken, "Best editor?", "vim", "emacs")

	var created, conflicts atomic.Int64
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body := map[string]any{"option_id": poll.Options[i%2].ID}
			switch app.do(t, http.MethodPost, votesPath(poll), bobToken, body, nil) {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), created.Load())
	assert.Equal(t, int64(19), conflicts.Load())

	var results domain.PollResults
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, resultsPath(poll), "", nil, &results))
	assert.Equal(t, int64(1), results.Total)
}

// TestResultsWarming fills the shared cache the way the warmer job does.
func TestResultsWarming(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	b := setupBackends(t)
	app := b.startReplica(t)

	_, aliceToken := app.createUserAndToken(t, "alice")
	poll := app.createPoll(t, aliceToken, "Java or Python?", "Java", "Python")
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, votesPath(poll), "",
		map[string]any{"option_id": poll.Options[0].ID}, nil))

	warmer := b.startReplica(t)
	require.NoError(t, warmer.App.Results.WarmAll(t.Context()))

	var results domain.PollResults
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, resultsPath(poll), "", nil, &results))
	assert.Equal(t, int64(1), results.Total)
}
