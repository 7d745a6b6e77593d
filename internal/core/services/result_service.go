package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapp/internal/core/caching"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const warmConcurrency = 8

type resultService struct {
	polls ports.PollRepository
	votes ports.VoteRepository
	cache *caching.Layer
	l     *zap.Logger
}

func NewResultService(polls ports.PollRepository, votes ports.VoteRepository, cache *caching.Layer, l *zap.Logger) ports.ResultService {
	return &resultService{
		polls: polls,
		votes: votes,
		cache: cache,
		l:     l,
	}
}

func (s *resultService) CountVotes(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error) {
	poll, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	return s.count(ctx, poll)
}

func (s *resultService) Results(ctx context.Context, pollID uuid.UUID) (*domain.PollResults, error) {
	return caching.ReadThrough(ctx, s.cache, caching.PollResultsKey(pollID), func(ctx context.Context) (*domain.PollResults, error) {
		return s.compute(ctx, pollID)
	})
}

// WarmAll computes and caches the results of every poll whose results are not
// cached yet.
func (s *resultService) WarmAll(ctx context.Context) error {
	polls, err := s.polls.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch all polls: %w", err)
	}

	var warmed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)

	for _, poll := range polls {
		key := caching.PollResultsKey(poll.ID)
		if s.cache.Cached(gctx, key) {
			continue
		}
		g.Go(func() error {
			_, err := caching.Refresh(gctx, s.cache, key, func(ctx context.Context) (*domain.PollResults, error) {
				return s.compute(ctx, poll.ID)
			})
			if err != nil {
				return fmt.Errorf("failed to warm results of poll %s: %w", poll.ID, err)
			}
			warmed.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	s.l.Info("poll results warmed", zap.Int("polls", len(polls)), zap.Int64("computed", warmed.Load()))
	return nil
}

func (s *resultService) compute(ctx context.Context, pollID uuid.UUID) (*domain.PollResults, error) {
	poll, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	counts, err := s.count(ctx, poll)
	if err != nil {
		return nil, err
	}
	return domain.NewPollResults(poll, counts), nil
}

// count returns an entry for every option of the poll, with zero for options
// nobody voted for.
func (s *resultService) count(ctx context.Context, poll *domain.Poll) (map[uuid.UUID]int64, error) {
	stored, err := s.votes.CountByPoll(ctx, poll.ID)
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(poll.Options))
	for _, opt := range poll.Options {
		counts[opt.ID] = stored[opt.ID]
	}
	return counts, nil
}
