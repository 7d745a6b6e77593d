package caching

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind groups cache entries that share a key prefix and a TTL.
type Kind string

const (
	KindPoll        Kind = "poll"
	KindPollResults Kind = "poll_results"
	KindPollVotes   Kind = "poll_votes"
	KindUser        Kind = "user"
	KindVote        Kind = "vote"
	KindOption      Kind = "option"
	KindUserPolls   Kind = "user_polls"
	KindAllPolls    Kind = "all_polls"
	KindAllUsers    Kind = "all_users"
)

// Global collections are stored under their kind name alone.
const (
	AllPollsKey = string(KindAllPolls)
	AllUsersKey = string(KindAllUsers)
)

const defaultTTL = 5 * time.Minute

var ttls = map[Kind]time.Duration{
	KindPoll:        10 * time.Minute,
	KindPollResults: 5 * time.Minute,
	KindPollVotes:   5 * time.Minute,
	KindUser:        30 * time.Minute,
	KindVote:        15 * time.Minute,
	KindOption:      20 * time.Minute,
	KindUserPolls:   10 * time.Minute,
	KindAllPolls:    5 * time.Minute,
	KindAllUsers:    10 * time.Minute,
}

func (k Kind) TTL() time.Duration {
	if ttl, ok := ttls[k]; ok {
		return ttl
	}
	return defaultTTL
}

func (k Kind) Key(id uuid.UUID) string {
	return string(k) + ":" + id.String()
}

// KindOf returns the kind encoded in a key built by this package.
func KindOf(key string) Kind {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return Kind(key[:i])
	}
	return Kind(key)
}

func TTLFor(key string) time.Duration {
	return KindOf(key).TTL()
}

func PollKey(id uuid.UUID) string        { return KindPoll.Key(id) }
func PollResultsKey(id uuid.UUID) string { return KindPollResults.Key(id) }
func PollVotesKey(id uuid.UUID) string   { return KindPollVotes.Key(id) }
func UserKey(id uuid.UUID) string        { return KindUser.Key(id) }
func VoteKey(id uuid.UUID) string        { return KindVote.Key(id) }
func OptionKey(id uuid.UUID) string      { return KindOption.Key(id) }
func UserPollsKey(id uuid.UUID) string   { return KindUserPolls.Key(id) }
