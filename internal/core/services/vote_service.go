package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapp/internal/core/caching"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
	"go.uber.org/zap"
)

type voteService struct {
	polls   ports.PollRepository
	options ports.OptionRepository
	users   ports.UserRepository
	votes   ports.VoteRepository
	effects
}

func NewVoteService(
	polls ports.PollRepository,
	options ports.OptionRepository,
	users ports.UserRepository,
	votes ports.VoteRepository,
	cache *caching.Layer,
	events ports.EventNotifier,
	l *zap.Logger,
) ports.VoteService {
	return &voteService{
		polls:   polls,
		options: options,
		users:   users,
		votes:   votes,
		effects: effects{cache: cache, events: events, l: l},
	}
}

// Cast records a vote. A voter may hold at most one vote per poll; the
// store's unique constraint decides when two casts race past the check below.
func (s *voteService) Cast(ctx context.Context, input ports.VoteInput) (*domain.Vote, error) {
	if _, err := s.polls.GetByID(ctx, input.PollID); err != nil {
		return nil, err
	}
	if err := s.checkOption(ctx, input.PollID, input.OptionID); err != nil {
		return nil, err
	}

	if input.VoterID != nil {
		if _, err := s.users.GetByID(ctx, *input.VoterID); err != nil {
			return nil, err
		}
		hasVoted, err := s.votes.Exists(ctx, input.PollID, *input.VoterID)
		if err != nil {
			return nil, err
		}
		if hasVoted {
			return nil, domain.ErrAlreadyVoted
		}
	}

	vote := &domain.Vote{
		ID:          uuid.New(),
		PublishedAt: time.Now().UTC(),
		VoterID:     input.VoterID,
		OptionID:    input.OptionID,
		PollID:      input.PollID,
	}
	if err := s.votes.Save(ctx, vote); err != nil {
		return nil, err
	}

	event := domain.NewEvent(domain.EventVoteCast).WithPoll(vote.PollID).WithOption(vote.OptionID).WithVote(vote.ID)
	if vote.VoterID != nil {
		event = event.WithUser(*vote.VoterID)
	}
	s.committed(ctx, caching.VoteCastKeys(vote.PollID), event)
	return vote, nil
}

// ChangeVote moves the voter's vote in the poll to another option. Choosing
// the option already voted for changes nothing.
func (s *voteService) ChangeVote(ctx context.Context, pollID, voterID, optionID uuid.UUID) (*domain.Vote, error) {
	if _, err := s.polls.GetByID(ctx, pollID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, voterID); err != nil {
		return nil, err
	}
	if err := s.checkOption(ctx, pollID, optionID); err != nil {
		return nil, err
	}

	vote, err := s.votes.GetByVoter(ctx, pollID, voterID)
	if err != nil {
		return nil, err
	}
	if vote.OptionID == optionID {
		return vote, nil
	}

	if err := s.votes.UpdateOption(ctx, vote.ID, optionID); err != nil {
		return nil, err
	}
	previous := vote.OptionID
	vote.OptionID = optionID

	s.l.Debug("vote changed",
		zap.Stringer("vote_id", vote.ID),
		zap.Stringer("from", previous),
		zap.Stringer("to", optionID))
	s.committed(ctx, caching.VoteChangedKeys(pollID, vote.ID),
		domain.NewEvent(domain.EventVoteChanged).WithPoll(pollID).WithOption(optionID).WithVote(vote.ID).WithUser(voterID))
	return vote, nil
}

// Remove deletes a vote by id. It is the only way to retract an anonymous vote.
func (s *voteService) Remove(ctx context.Context, voteID uuid.UUID) error {
	vote, err := s.votes.GetByID(ctx, voteID)
	if err != nil {
		return err
	}

	if err := s.votes.Delete(ctx, voteID); err != nil {
		return err
	}

	event := domain.NewEvent(domain.EventVoteRemoved).WithPoll(vote.PollID).WithOption(vote.OptionID).WithVote(vote.ID)
	if vote.VoterID != nil {
		event = event.WithUser(*vote.VoterID)
	}
	s.committed(ctx, caching.VoteRemovedKeys(vote.PollID, vote.ID), event)
	return nil
}

func (s *voteService) GetVote(ctx context.Context, id uuid.UUID) (*domain.Vote, error) {
	return caching.ReadThrough(ctx, s.cache, caching.VoteKey(id), func(ctx context.Context) (*domain.Vote, error) {
		return s.votes.GetByID(ctx, id)
	})
}

func (s *voteService) GetVoterVote(ctx context.Context, pollID, voterID uuid.UUID) (*domain.Vote, error) {
	return s.votes.GetByVoter(ctx, pollID, voterID)
}

func (s *voteService) ListVotes(ctx context.Context) ([]*domain.Vote, error) {
	return s.votes.List(ctx)
}

func (s *voteService) ListPollVotes(ctx context.Context, pollID uuid.UUID) ([]*domain.Vote, error) {
	return caching.ReadThrough(ctx, s.cache, caching.PollVotesKey(pollID), func(ctx context.Context) ([]*domain.Vote, error) {
		if _, err := s.polls.GetByID(ctx, pollID); err != nil {
			return nil, err
		}
		return s.votes.ListByPoll(ctx, pollID)
	})
}

func (s *voteService) ListOptionVotes(ctx context.Context, optionID uuid.UUID) ([]*domain.Vote, error) {
	if _, err := s.options.GetByID(ctx, optionID); err != nil {
		return nil, err
	}
	return s.votes.ListByOption(ctx, optionID)
}

func (s *voteService) ListUserVotes(ctx context.Context, userID uuid.UUID) ([]*domain.Vote, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.votes.ListByVoter(ctx, userID)
}

func (s *voteService) checkOption(ctx context.Context, pollID, optionID uuid.UUID) error {
	opt, err := s.options.GetByID(ctx, optionID)
	if err != nil {
		return err
	}
	if opt.PollID != pollID {
		return domain.ErrInvalidOption
	}
	return nil
}
