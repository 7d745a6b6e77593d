package domain

import (
	"time"

	"github.com/google/uuid"
)

type OptionResult struct {
	OptionID          uuid.UUID `json:"option_id"`
	Caption           string    `json:"caption"`
	PresentationOrder int       `json:"presentation_order"`
	Votes             int64     `json:"votes"`
	Percentage        float64   `json:"percentage"`
}

type PollResults struct {
	PollID     uuid.UUID      `json:"poll_id"`
	Question   string         `json:"question"`
	Options    []OptionResult `json:"options"`
	Total      int64          `json:"total"`
	ComputedAt time.Time      `json:"computed_at"`
}

// NewPollResults builds the ordered result rows of a poll from per-option counts.
// Options missing from counts are reported with zero votes.
func NewPollResults(poll *Poll, counts map[uuid.UUID]int64) *PollResults {
	res := &PollResults{
		PollID:     poll.ID,
		Question:   poll.Question,
		Options:    make([]OptionResult, 0, len(poll.Options)),
		ComputedAt: time.Now().UTC(),
	}

	for _, opt := range poll.Options {
		res.Total += counts[opt.ID]
	}

	for _, opt := range poll.Options {
		n := counts[opt.ID]
		percentage := 0.0
		if res.Total > 0 {
			percentage = (float64(n) / float64(res.Total)) * 100
		}
		res.Options = append(res.Options, OptionResult{
			OptionID:          opt.ID,
			Caption:           opt.Caption,
			PresentationOrder: opt.PresentationOrder,
			Votes:             n,
			Percentage:        percentage,
		})
	}

	return res
}
