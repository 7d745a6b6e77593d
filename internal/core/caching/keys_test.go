package caching

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyTTLs(t *testing.T) {
	id := uuid.MustParse("7f1c2a4e-0000-4000-8000-000000000001")

	tests := []struct {
		key string
		ttl time.Duration
	}{
		{PollKey(id), 10 * time.Minute},
		{PollResultsKey(id), 5 * time.Minute},
		{PollVotesKey(id), 5 * time.Minute},
		{UserKey(id), 30 * time.Minute},
		{VoteKey(id), 15 * time.Minute},
		{OptionKey(id), 20 * time.Minute},
		{UserPollsKey(id), 10 * time.Minute},
		{AllPollsKey, 5 * time.Minute},
		{AllUsersKey, 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.ttl, TTLFor(tt.key))
		})
	}
}

func TestKeyFormat(t *testing.T) {
	id := uuid.MustParse("7f1c2a4e-0000-4000-8000-000000000001")

	assert.Equal(t, "poll:7f1c2a4e-0000-4000-8000-000000000001", PollKey(id))
	assert.Equal(t, "poll_results:7f1c2a4e-0000-4000-8000-000000000001", PollResultsKey(id))
	assert.Equal(t, KindUserPolls, KindOf(UserPollsKey(id)))
	assert.Equal(t, KindAllPolls, KindOf(AllPollsKey))
	assert.Equal(t, defaultTTL, TTLFor("unknown:1"))
}
