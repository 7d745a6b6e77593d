package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventUserCreated EventType = "user.created"
	EventPollCreated EventType = "poll.created"
	EventVoteCast    EventType = "vote.cast"
	EventVoteChanged EventType = "vote.changed"
	EventVoteRemoved EventType = "vote.removed"
)

type Event struct {
	Type       EventType  `json:"type"`
	OccurredAt time.Time  `json:"occurred_at"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	PollID     *uuid.UUID `json:"poll_id,omitempty"`
	OptionID   *uuid.UUID `json:"option_id,omitempty"`
	VoteID     *uuid.UUID `json:"vote_id,omitempty"`
}

func NewEvent(t EventType) Event {
	return Event{Type: t, OccurredAt: time.Now().UTC()}
}

func (e Event) WithUser(id uuid.UUID) Event {
	e.UserID = &id
	return e
}

func (e Event) WithPoll(id uuid.UUID) Event {
	e.PollID = &id
	return e
}

func (e Event) WithOption(id uuid.UUID) Event {
	e.OptionID = &id
	return e
}

func (e Event) WithVote(id uuid.UUID) Event {
	e.VoteID = &id
	return e
}
