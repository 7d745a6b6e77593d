package caching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
)

func TestMutationKeySets(t *testing.T) {
	poll := uuid.New()
	creator := uuid.New()
	p := &domain.Poll{ID: poll, CreatedBy: creator}
	option := uuid.New()
	vote := uuid.New()
	user := uuid.New()

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"create user", UserCreatedKeys(user), []string{UserKey(user), AllUsersKey}},
		{"create poll", PollCreatedKeys(creator), []string{AllPollsKey, UserPollsKey(creator)}},
		{
			"update visibility",
			PollVisibilityChangedKeys(poll, creator),
			[]string{PollKey(poll), AllPollsKey, UserPollsKey(creator), PollResultsKey(poll)},
		},
		{
			"add option",
			OptionAddedKeys(p),
			[]string{PollKey(poll), PollResultsKey(poll), AllPollsKey, UserPollsKey(creator)},
		},
		{
			"delete option",
			OptionDeletedKeys(p, option, []*domain.Vote{{ID: vote}}),
			[]string{
				PollKey(poll), PollResultsKey(poll), AllPollsKey, UserPollsKey(creator),
				OptionKey(option), PollVotesKey(poll), VoteKey(vote),
			},
		},
		{"cast vote", VoteCastKeys(poll), []string{PollResultsKey(poll), PollVotesKey(poll), PollKey(poll)}},
		{
			"change vote",
			VoteChangedKeys(poll, vote),
			[]string{PollResultsKey(poll), PollVotesKey(poll), VoteKey(vote)},
		},
		{
			"remove vote",
			VoteRemovedKeys(poll, vote),
			[]string{PollResultsKey(poll), PollVotesKey(poll), VoteKey(vote)},
		},
		{"clear poll", PollCacheKeys(poll), []string{PollKey(poll), PollResultsKey(poll), PollVotesKey(poll)}},
		{"clear global", GlobalCacheKeys(), []string{AllPollsKey, AllUsersKey}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, tt.got)
		})
	}
}

func TestPollDeletedKeysIncludeOptionsAndVotes(t *testing.T) {
	p := &domain.Poll{
		ID:        uuid.New(),
		CreatedBy: uuid.New(),
		Options: []domain.VoteOption{
			{ID: uuid.New()},
			{ID: uuid.New()},
		},
	}

	votes := []*domain.Vote{{ID: uuid.New()}, {ID: uuid.New()}}

	keys := PollDeletedKeys(p, votes)

	assert.Subset(t, keys, []string{
		PollKey(p.ID),
		AllPollsKey,
		UserPollsKey(p.CreatedBy),
		PollResultsKey(p.ID),
		PollVotesKey(p.ID),
		OptionKey(p.Options[0].ID),
		OptionKey(p.Options[1].ID),
		VoteKey(votes[0].ID),
		VoteKey(votes[1].ID),
	})
}

func TestUserDeletedKeys(t *testing.T) {
	user := uuid.New()
	authored := &domain.Poll{ID: uuid.New(), CreatedBy: user}
	otherPoll := uuid.New()
	vote := &domain.Vote{ID: uuid.New(), PollID: otherPoll}

	keys := UserDeletedKeys(user, []*domain.Poll{authored}, []uuid.UUID{otherPoll, authored.ID}, []*domain.Vote{vote})

	assert.Subset(t, keys, []string{
		UserKey(user),
		AllUsersKey,
		UserPollsKey(user),
		AllPollsKey,
		PollKey(authored.ID),
		PollResultsKey(authored.ID),
		PollResultsKey(otherPoll),
		PollVotesKey(otherPoll),
		VoteKey(vote.ID),
	})

	seen := map[string]int{}
	for _, k := range keys {
		seen[k]++
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, "duplicate key %s", k)
	}
}
