package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollapp/internal/core/caching"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
)

func TestCreatePollDefaults(t *testing.T) {
	env := setupEnv(t)
	alice := env.user(t, "alice")

	poll := env.poll(t, alice, "  Java or Python?  ", "Java", "Python")

	assert.Equal(t, "Java or Python?", poll.Question)
	assert.True(t, poll.IsPublic)
	assert.Equal(t, alice.ID, poll.CreatedBy)
	assert.WithinDuration(t, poll.PublishedAt.Add(domain.DefaultPollDuration), poll.ValidUntil, time.Second)
	require.Len(t, poll.Options, 2)
	assert.Equal(t, 1, poll.Options[0].PresentationOrder)
	assert.Equal(t, 2, poll.Options[1].PresentationOrder)
	assert.ElementsMatch(t, caching.PollCreatedKeys(alice.ID), env.cache.purged()[len(env.cache.purged())-2:])
}

func TestCreatePollValidation(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t)
	alice := env.user(t, "alice")
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name  string
		input ports.CreatePollInput
		want  error
	}{
		{"missing question", ports.CreatePollInput{Question: " ", CreatedBy: alice.ID}, domain.ErrQuestionRequired},
		{"missing creator", ports.CreatePollInput{Question: "q"}, domain.ErrCreatorRequired},
		{"unknown creator", ports.CreatePollInput{Question: "q", CreatedBy: uuid.New()}, domain.ErrCreatorRequired},
		{"empty caption", ports.CreatePollInput{Question: "q", CreatedBy: alice.ID, Options: []string{"a", ""}}, domain.ErrCaptionRequired},
		{"ends in the past", ports.CreatePollInput{Question: "q", CreatedBy: alice.ID, ValidUntil: &past}, domain.ErrInvalidValidity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.polls.Create(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestGetPollReadsThroughAndSeesNewOptions(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t)
	alice := env.user(t, "alice")
	poll := env.poll(t, alice, "Java or Python?", "Java", "Python")

	got, err := env.polls.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.Len(t, got.Options, 2)
	assert.True(t, env.layer.Cached(ctx, caching.PollKey(poll.ID)))

	_, err = env.polls.ListPolls(ctx)
	require.NoError(t, err)
	_, err = env.users.ListUserPolls(ctx, alice.ID)
	require.NoError(t, err)

	opt, err := env.polls.AddOption(ctx, poll.ID, "Go")
	require.NoError(t, err)
	assert.Equal(t, 3, opt.PresentationOrder)
	assert.False(t, env.layer.Cached(ctx, caching.PollKey(poll.ID)))

	listed, err := env.polls.ListPolls(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Len(t, listed[0].Options, 3)

	authored, err := env.users.ListUserPolls(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, authored, 1)
	assert.Len(t, authored[0].Options, 3)

	got, err = env.polls.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	require.Len(t, got.Options, 3)
	assert.Equal(t, "Go", got.Options[2].Caption)

	options, err := env.polls.ListOptions(ctx, poll.ID)
	require.NoError(t, err)
	assert.Len(t, options, 3)

	_, err = env.polls.GetPoll(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestOptionOperations(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t)
	alice := env.user(t, "alice")
	poll := env.poll(t, alice, "Java or Python?", "Java", "Python")
	other := env.poll(t, alice, "Tabs or spaces?", "Tabs")

	got, err := env.polls.GetOption(ctx, poll.ID, poll.Options[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Python", got.Caption)

	_, err = env.polls.GetOption(ctx, other.ID, poll.Options[1].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidRelationship)

	_, err = env.polls.AddOption(ctx, poll.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrCaptionRequired)
	_, err = env.polls.AddOption(ctx, uuid.New(), "Go")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	vote, err := env.votes.Cast(ctx, ports.VoteInput{PollID: poll.ID, OptionID: poll.Options[1].ID})
	require.NoError(t, err)
	_, err = env.votes.GetVote(ctx, vote.ID)
	require.NoError(t, err)
	require.True(t, env.layer.Cached(ctx, caching.VoteKey(vote.ID)))

	assert.ErrorIs(t, env.polls.DeleteOption(ctx, other.ID, poll.Options[1].ID), domain.ErrInvalidRelationship)

	env.cache.reset()
	require.NoError(t, env.polls.DeleteOption(ctx, poll.ID, poll.Options[1].ID))
	assert.ElementsMatch(t, caching.OptionDeletedKeys(poll, poll.Options[1].ID, []*domain.Vote{vote}), env.cache.purged())

	_, err = env.polls.GetOption(ctx, poll.ID, poll.Options[1].ID)
	assert.ErrorIs(t, err, domain.ErrOptionNotFound)
	_, err = env.votes.GetVote(ctx, vote.ID)
	assert.ErrorIs(t, err, domain.ErrVoteNotFound)

	counts, err := env.results.CountVotes(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int64{poll.Options[0].ID: 0}, counts)
}

func TestUpdateVisibility(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	poll := env.poll(t, alice, "Java or Python?", "Java", "Python")

	_, err := env.polls.UpdateVisibility(ctx, poll.ID, false, bob.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.polls.UpdateVisibility(ctx, poll.ID, false, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = env.polls.UpdateVisibility(ctx, uuid.New(), false, alice.ID)
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	cached, err := env.polls.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.True(t, cached.IsPublic)

	env.cache.reset()
	updated, err := env.polls.UpdateVisibility(ctx, poll.ID, false, alice.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsPublic)
	assert.ElementsMatch(t, caching.PollVisibilityChangedKeys(poll.ID, alice.ID), env.cache.purged())

	got, err := env.polls.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPublic)

	public, err := env.polls.ListPublicPolls(ctx)
	require.NoError(t, err)
	assert.Empty(t, public)

	private, err := env.polls.ListPrivatePolls(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, private, 1)
	assert.Equal(t, poll.ID, private[0].ID)

	private, err = env.polls.ListPrivatePolls(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, private)
}

func TestDeletePollLeavesNoOrphans(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	poll := env.poll(t, alice, "Java or Python?", "Java", "Python")

	vote, err := env.votes.Cast(ctx, ports.VoteInput{PollID: poll.ID, OptionID: poll.Options[0].ID, VoterID: &bob.ID})
	require.NoError(t, err)

	_, err = env.votes.GetVote(ctx, vote.ID)
	require.NoError(t, err)
	require.True(t, env.layer.Cached(ctx, caching.VoteKey(vote.ID)))
	_, err = env.results.Results(ctx, poll.ID)
	require.NoError(t, err)
	_, err = env.polls.ListPolls(ctx)
	require.NoError(t, err)

	env.cache.reset()
	require.NoError(t, env.polls.DeletePoll(ctx, poll.ID))
	assert.Subset(t, env.cache.purged(), caching.PollDeletedKeys(poll, []*domain.Vote{vote}))

	_, err = env.polls.GetPoll(ctx, poll.ID)
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
	_, err = env.results.Results(ctx, poll.ID)
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
	_, err = env.votes.GetVote(ctx, vote.ID)
	assert.ErrorIs(t, err, domain.ErrVoteNotFound)
	_, err = env.polls.GetOption(ctx, poll.ID, poll.Options[0].ID)
	assert.ErrorIs(t, err, domain.ErrOptionNotFound)

	votes, err := env.votes.ListUserVotes(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, votes)

	polls, err := env.polls.ListPolls(ctx)
	require.NoError(t, err)
	assert.Empty(t, polls)

	assert.ErrorIs(t, env.polls.DeletePoll(ctx, poll.ID), domain.ErrPollNotFound)
}

func TestListPollsSeesNewPolls(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t)
	alice := env.user(t, "alice")

	polls, err := env.polls.ListPolls(ctx)
	require.NoError(t, err)
	assert.Empty(t, polls)
	assert.True(t, env.layer.Cached(ctx, caching.AllPollsKey))

	env.poll(t, alice, "Java or Python?", "Java", "Python")

	polls, err = env.polls.ListPolls(ctx)
	require.NoError(t, err)
	assert.Len(t, polls, 1)
}

func TestClearCaches(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t)
	alice := env.user(t, "alice")
	poll := env.poll(t, alice, "Java or Python?", "Java", "Python")

	_, err := env.polls.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	_, err = env.polls.ListPolls(ctx)
	require.NoError(t, err)
	_, err = env.users.ListUsers(ctx)
	require.NoError(t, err)

	env.polls.ClearPollCache(ctx, poll.ID)
	assert.False(t, env.layer.Cached(ctx, caching.PollKey(poll.ID)))
	assert.True(t, env.layer.Cached(ctx, caching.AllPollsKey))

	env.polls.ClearGlobalCache(ctx)
	assert.False(t, env.layer.Cached(ctx, caching.AllPollsKey))
	assert.False(t, env.layer.Cached(ctx, caching.AllUsersKey))
}
