package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapp/internal/core/caching"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
	"go.uber.org/zap"
)

type pollService struct {
	polls   ports.PollRepository
	options ports.OptionRepository
	users   ports.UserRepository
	votes   ports.VoteRepository
	effects
}

func NewPollService(
	polls ports.PollRepository,
	options ports.OptionRepository,
	users ports.UserRepository,
	votes ports.VoteRepository,
	cache *caching.Layer,
	events ports.EventNotifier,
	l *zap.Logger,
) ports.PollService {
	return &pollService{
		polls:   polls,
		options: options,
		users:   users,
		votes:   votes,
		effects: effects{cache: cache, events: events, l: l},
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, domain.ErrQuestionRequired
	}
	if input.CreatedBy == uuid.Nil {
		return nil, domain.ErrCreatorRequired
	}
	if _, err := s.users.GetByID(ctx, input.CreatedBy); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCreatorRequired
		}
		return nil, err
	}

	pollID := uuid.New()
	now := time.Now().UTC()

	poll := &domain.Poll{
		ID:          pollID,
		Question:    question,
		PublishedAt: now,
		ValidUntil:  now.Add(domain.DefaultPollDuration),
		IsPublic:    true,
		CreatedBy:   input.CreatedBy,
		Options:     make([]domain.VoteOption, 0, len(input.Options)),
	}
	if input.ValidUntil != nil {
		if !input.ValidUntil.After(now) {
			return nil, domain.ErrInvalidValidity
		}
		poll.ValidUntil = input.ValidUntil.UTC()
	}
	if input.IsPublic != nil {
		poll.IsPublic = *input.IsPublic
	}

	for i, caption := range input.Options {
		caption = strings.TrimSpace(caption)
		if caption == "" {
			return nil, domain.ErrCaptionRequired
		}
		poll.Options = append(poll.Options, domain.VoteOption{
			ID:                uuid.New(),
			PollID:            pollID,
			Caption:           caption,
			PresentationOrder: i + 1,
		})
	}

	if err := s.polls.Save(ctx, poll); err != nil {
		return nil, err
	}

	s.committed(ctx, caching.PollCreatedKeys(poll.CreatedBy),
		domain.NewEvent(domain.EventPollCreated).WithPoll(poll.ID).WithUser(poll.CreatedBy))
	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	return caching.ReadThrough(ctx, s.cache, caching.PollKey(id), func(ctx context.Context) (*domain.Poll, error) {
		return s.polls.GetByID(ctx, id)
	})
}

func (s *pollService) ListPolls(ctx context.Context) ([]*domain.Poll, error) {
	return caching.ReadThrough(ctx, s.cache, caching.AllPollsKey, s.polls.GetAll)
}

func (s *pollService) ListPublicPolls(ctx context.Context) ([]*domain.Poll, error) {
	return s.polls.ListByVisibility(ctx, true)
}

// ListPrivatePolls returns the non-public polls created by the user.
func (s *pollService) ListPrivatePolls(ctx context.Context, userID uuid.UUID) ([]*domain.Poll, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	polls, err := s.polls.ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}

	private := make([]*domain.Poll, 0, len(polls))
	for _, p := range polls {
		if !p.IsPublic {
			private = append(private, p)
		}
	}
	return private, nil
}

func (s *pollService) UpdateVisibility(ctx context.Context, pollID uuid.UUID, isPublic bool, userID uuid.UUID) (*domain.Poll, error) {
	poll, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if poll.CreatedBy != userID {
		return nil, domain.ErrNotPollOwner
	}
	if poll.IsPublic == isPublic {
		return poll, nil
	}

	if err := s.polls.UpdateVisibility(ctx, pollID, isPublic); err != nil {
		return nil, err
	}
	poll.IsPublic = isPublic

	s.committed(ctx, caching.PollVisibilityChangedKeys(poll.ID, poll.CreatedBy))
	return poll, nil
}

func (s *pollService) DeletePoll(ctx context.Context, id uuid.UUID) error {
	poll, err := s.polls.GetByID(ctx, id)
	if err != nil {
		return err
	}
	votes, err := s.votes.ListByPoll(ctx, id)
	if err != nil {
		return err
	}

	if err := s.polls.Delete(ctx, id); err != nil {
		return err
	}

	s.committed(ctx, caching.PollDeletedKeys(poll, votes))
	return nil
}

func (s *pollService) AddOption(ctx context.Context, pollID uuid.UUID, caption string) (*domain.VoteOption, error) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return nil, domain.ErrCaptionRequired
	}
	poll, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	opt := &domain.VoteOption{
		ID:      uuid.New(),
		PollID:  pollID,
		Caption: caption,
	}
	if err := s.options.Append(ctx, opt); err != nil {
		return nil, err
	}

	s.committed(ctx, caching.OptionAddedKeys(poll))
	return opt, nil
}

func (s *pollService) GetOption(ctx context.Context, pollID, optionID uuid.UUID) (*domain.VoteOption, error) {
	opt, err := caching.ReadThrough(ctx, s.cache, caching.OptionKey(optionID), func(ctx context.Context) (*domain.VoteOption, error) {
		return s.options.GetByID(ctx, optionID)
	})
	if err != nil {
		return nil, err
	}
	if opt.PollID != pollID {
		return nil, domain.ErrInvalidOption
	}
	return opt, nil
}

func (s *pollService) ListOptions(ctx context.Context, pollID uuid.UUID) ([]domain.VoteOption, error) {
	poll, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	return poll.Options, nil
}

func (s *pollService) DeleteOption(ctx context.Context, pollID, optionID uuid.UUID) error {
	opt, err := s.options.GetByID(ctx, optionID)
	if err != nil {
		return err
	}
	if opt.PollID != pollID {
		return domain.ErrInvalidOption
	}
	poll, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return err
	}
	votes, err := s.votes.ListByOption(ctx, optionID)
	if err != nil {
		return err
	}

	if err := s.options.Delete(ctx, optionID); err != nil {
		return err
	}

	s.committed(ctx, caching.OptionDeletedKeys(poll, optionID, votes))
	return nil
}

func (s *pollService) ClearPollCache(ctx context.Context, pollID uuid.UUID) {
	s.cache.Invalidate(ctx, caching.PollCacheKeys(pollID)...)
}

func (s *pollService) ClearGlobalCache(ctx context.Context) {
	s.cache.Invalidate(ctx, caching.GlobalCacheKeys()...)
}
