package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
)

type VoteRepository interface {
	// Save inserts the vote. A second vote of the same voter in the same poll
	// fails with domain.ErrAlreadyVoted.
	Save(ctx context.Context, vote *domain.Vote) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Vote, error)
	GetByVoter(ctx context.Context, pollID, voterID uuid.UUID) (*domain.Vote, error)
	Exists(ctx context.Context, pollID, voterID uuid.UUID) (bool, error)
	UpdateOption(ctx context.Context, id, optionID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context) ([]*domain.Vote, error)
	ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Vote, error)
	ListByOption(ctx context.Context, optionID uuid.UUID) ([]*domain.Vote, error)
	ListByVoter(ctx context.Context, voterID uuid.UUID) ([]*domain.Vote, error)

	CountByOption(ctx context.Context, optionID uuid.UUID) (int64, error)
	CountByPoll(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error)
}

type VoteInput struct {
	PollID   uuid.UUID
	OptionID uuid.UUID
	// VoterID is nil for anonymous votes.
	VoterID *uuid.UUID
}

type VoteService interface {
	Cast(ctx context.Context, input VoteInput) (*domain.Vote, error)
	ChangeVote(ctx context.Context, pollID, voterID, optionID uuid.UUID) (*domain.Vote, error)
	Remove(ctx context.Context, voteID uuid.UUID) error

	GetVote(ctx context.Context, id uuid.UUID) (*domain.Vote, error)
	GetVoterVote(ctx context.Context, pollID, voterID uuid.UUID) (*domain.Vote, error)
	ListVotes(ctx context.Context) ([]*domain.Vote, error)
	ListPollVotes(ctx context.Context, pollID uuid.UUID) ([]*domain.Vote, error)
	ListOptionVotes(ctx context.Context, optionID uuid.UUID) ([]*domain.Vote, error)
	ListUserVotes(ctx context.Context, userID uuid.UUID) ([]*domain.Vote, error)
}
