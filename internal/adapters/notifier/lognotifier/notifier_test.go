package lognotifier

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNotifyLogsEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := New(zap.New(core))

	pollID := uuid.New()
	voteID := uuid.New()
	event := domain.NewEvent(domain.EventVoteCast).WithPoll(pollID).WithVote(voteID)

	require.NoError(t, n.Notify(context.Background(), event))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "vote.cast", fields["type"])
	assert.Equal(t, pollID.String(), fields["poll_id"])
	assert.Equal(t, voteID.String(), fields["vote_id"])
	assert.NotContains(t, fields, "user_id")
}
