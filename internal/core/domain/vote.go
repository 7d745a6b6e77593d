package domain

import (
	"time"

	"github.com/google/uuid"
)

type Vote struct {
	ID          uuid.UUID  `json:"id"`
	PublishedAt time.Time  `json:"published_at"`
	VoterID     *uuid.UUID `json:"voter_id,omitempty"`
	OptionID    uuid.UUID  `json:"option_id"`
	PollID      uuid.UUID  `json:"poll_id"`
}

func (v *Vote) IsAnonymous() bool {
	return v.VoterID == nil
}
