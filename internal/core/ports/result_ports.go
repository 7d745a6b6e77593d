package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
)

type ResultService interface {
	// CountVotes reads the counts from the store on every call.
	CountVotes(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error)
	Results(ctx context.Context, pollID uuid.UUID) (*domain.PollResults, error)
	WarmAll(ctx context.Context) error
}
