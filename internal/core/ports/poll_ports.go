package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
)

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	GetAll(ctx context.Context) ([]*domain.Poll, error)
	ListByVisibility(ctx context.Context, isPublic bool) ([]*domain.Poll, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.Poll, error)
	// ListVotedBy returns the ids of the polls the user has a vote in.
	ListVotedBy(ctx context.Context, voterID uuid.UUID) ([]uuid.UUID, error)
	UpdateVisibility(ctx context.Context, id uuid.UUID, isPublic bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type OptionRepository interface {
	// Append stores the option at the end of the poll's presentation order and
	// sets its PresentationOrder.
	Append(ctx context.Context, option *domain.VoteOption) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VoteOption, error)
	ListByPoll(ctx context.Context, pollID uuid.UUID) ([]domain.VoteOption, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreatePollInput struct {
	Question   string
	CreatedBy  uuid.UUID
	ValidUntil *time.Time
	IsPublic   *bool
	Options    []string
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	ListPolls(ctx context.Context) ([]*domain.Poll, error)
	ListPublicPolls(ctx context.Context) ([]*domain.Poll, error)
	ListPrivatePolls(ctx context.Context, userID uuid.UUID) ([]*domain.Poll, error)
	UpdateVisibility(ctx context.Context, pollID uuid.UUID, isPublic bool, userID uuid.UUID) (*domain.Poll, error)
	DeletePoll(ctx context.Context, id uuid.UUID) error

	AddOption(ctx context.Context, pollID uuid.UUID, caption string) (*domain.VoteOption, error)
	GetOption(ctx context.Context, pollID, optionID uuid.UUID) (*domain.VoteOption, error)
	ListOptions(ctx context.Context, pollID uuid.UUID) ([]domain.VoteOption, error)
	DeleteOption(ctx context.Context, pollID, optionID uuid.UUID) error

	ClearPollCache(ctx context.Context, pollID uuid.UUID)
	ClearGlobalCache(ctx context.Context)
}
