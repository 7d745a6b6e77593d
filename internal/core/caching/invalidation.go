package caching

import (
	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
)

// The functions below return the keys each mutation makes stale. They are
// applied with Layer.Invalidate once the mutation is durable.

func UserCreatedKeys(userID uuid.UUID) []string {
	return []string{UserKey(userID), AllUsersKey}
}

// UserDeletedKeys covers the user, the polls they authored (which go away with
// them) and the polls whose tallies lose the user's votes. votes must hold
// every vote the cascade removes: the user's own and those cast by others in
// the authored polls.
func UserDeletedKeys(userID uuid.UUID, authored []*domain.Poll, votedPolls []uuid.UUID, votes []*domain.Vote) []string {
	keys := []string{UserKey(userID), AllUsersKey, UserPollsKey(userID)}
	for _, poll := range authored {
		keys = append(keys, PollDeletedKeys(poll, nil)...)
	}
	for _, pollID := range votedPolls {
		keys = append(keys, PollResultsKey(pollID), PollVotesKey(pollID))
	}
	for _, vote := range votes {
		keys = append(keys, VoteKey(vote.ID))
	}
	return dedupe(keys)
}

func PollCreatedKeys(creatorID uuid.UUID) []string {
	return []string{AllPollsKey, UserPollsKey(creatorID)}
}

func PollVisibilityChangedKeys(pollID, creatorID uuid.UUID) []string {
	return []string{PollKey(pollID), AllPollsKey, UserPollsKey(creatorID), PollResultsKey(pollID)}
}

// PollDeletedKeys takes the poll's votes as read before the delete. The cascade
// removes their rows but not their vote:<id> entries.
func PollDeletedKeys(poll *domain.Poll, votes []*domain.Vote) []string {
	keys := []string{
		PollKey(poll.ID),
		AllPollsKey,
		UserPollsKey(poll.CreatedBy),
		PollResultsKey(poll.ID),
		PollVotesKey(poll.ID),
	}
	for _, opt := range poll.Options {
		keys = append(keys, OptionKey(opt.ID))
	}
	for _, vote := range votes {
		keys = append(keys, VoteKey(vote.ID))
	}
	return keys
}

// Listings embed options, so option changes also stale all_polls and the
// creator's user_polls.
func OptionAddedKeys(poll *domain.Poll) []string {
	return []string{PollKey(poll.ID), PollResultsKey(poll.ID), AllPollsKey, UserPollsKey(poll.CreatedBy)}
}

func OptionDeletedKeys(poll *domain.Poll, optionID uuid.UUID, votes []*domain.Vote) []string {
	keys := []string{
		PollKey(poll.ID),
		PollResultsKey(poll.ID),
		AllPollsKey,
		UserPollsKey(poll.CreatedBy),
		OptionKey(optionID),
		PollVotesKey(poll.ID),
	}
	for _, vote := range votes {
		keys = append(keys, VoteKey(vote.ID))
	}
	return keys
}

func VoteCastKeys(pollID uuid.UUID) []string {
	return []string{PollResultsKey(pollID), PollVotesKey(pollID), PollKey(pollID)}
}

// VoteChangedKeys includes the vote itself since its cached copy still points
// at the previous option.
func VoteChangedKeys(pollID, voteID uuid.UUID) []string {
	return []string{PollResultsKey(pollID), PollVotesKey(pollID), VoteKey(voteID)}
}

func VoteRemovedKeys(pollID, voteID uuid.UUID) []string {
	return []string{PollResultsKey(pollID), PollVotesKey(pollID), VoteKey(voteID)}
}

func PollCacheKeys(pollID uuid.UUID) []string {
	return []string{PollKey(pollID), PollResultsKey(pollID), PollVotesKey(pollID)}
}

func GlobalCacheKeys() []string {
	return []string{AllPollsKey, AllUsersKey}
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
