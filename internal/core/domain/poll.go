package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultPollDuration is how long a poll stays valid when no end date is given.
const DefaultPollDuration = 7 * 24 * time.Hour

type Poll struct {
	ID          uuid.UUID    `json:"id"`
	Question    string       `json:"question"`
	PublishedAt time.Time    `json:"published_at"`
	ValidUntil  time.Time    `json:"valid_until"`
	IsPublic    bool         `json:"is_public"`
	CreatedBy   uuid.UUID    `json:"created_by"`
	Options     []VoteOption `json:"options"`
}

type VoteOption struct {
	ID                uuid.UUID `json:"id"`
	PollID            uuid.UUID `json:"poll_id"`
	Caption           string    `json:"caption"`
	PresentationOrder int       `json:"presentation_order"`
}

// HasOption reports whether optionID is one of the poll's loaded options.
func (p *Poll) HasOption(optionID uuid.UUID) bool {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

func (p *Poll) OptionIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Options))
	for _, opt := range p.Options {
		ids = append(ids, opt.ID)
	}
	return ids
}
