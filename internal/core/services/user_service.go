package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapp/internal/core/caching"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type userService struct {
	users    ports.UserRepository
	polls    ports.PollRepository
	votes    ports.VoteRepository
	hashCost int
	effects
}

func NewUserService(
	users ports.UserRepository,
	polls ports.PollRepository,
	votes ports.VoteRepository,
	cache *caching.Layer,
	events ports.EventNotifier,
	l *zap.Logger,
) ports.UserService {
	return &userService{
		users:    users,
		polls:    polls,
		votes:    votes,
		hashCost: bcrypt.DefaultCost,
		effects:  effects{cache: cache, events: events, l: l},
	}
}

func (s *userService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	switch {
	case username == "":
		return nil, domain.ErrUsernameRequired
	case email == "":
		return nil, domain.ErrEmailRequired
	case input.Password == "":
		return nil, domain.ErrPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.committed(ctx, caching.UserCreatedKeys(user.ID), domain.NewEvent(domain.EventUserCreated).WithUser(user.ID))
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return caching.ReadThrough(ctx, s.cache, caching.UserKey(id), func(ctx context.Context) (*domain.User, error) {
		return s.users.GetByID(ctx, id)
	})
}

func (s *userService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return caching.ReadThrough(ctx, s.cache, caching.AllUsersKey, s.users.List)
}

func (s *userService) ListUserPolls(ctx context.Context, id uuid.UUID) ([]*domain.Poll, error) {
	return caching.ReadThrough(ctx, s.cache, caching.UserPollsKey(id), func(ctx context.Context) ([]*domain.Poll, error) {
		if _, err := s.users.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return s.polls.ListByCreator(ctx, id)
	})
}

// DeleteUser removes the user along with the polls they created and every vote
// they cast. Affected entries are collected before the delete since the rows
// are gone afterwards.
func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}

	authored, err := s.polls.ListByCreator(ctx, id)
	if err != nil {
		return err
	}
	votedPolls, err := s.polls.ListVotedBy(ctx, id)
	if err != nil {
		return err
	}
	votes, err := s.votes.ListByVoter(ctx, id)
	if err != nil {
		return err
	}
	// Votes by others in the authored polls go with the cascade too.
	for _, poll := range authored {
		pollVotes, err := s.votes.ListByPoll(ctx, poll.ID)
		if err != nil {
			return err
		}
		for _, v := range pollVotes {
			if v.VoterID == nil || *v.VoterID != id {
				votes = append(votes, v)
			}
		}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.l.Info("user deleted",
		zap.Stringer("user_id", id),
		zap.Int("polls", len(authored)),
		zap.Int("votes", len(votes)))
	s.committed(ctx, caching.UserDeletedKeys(id, authored, votedPolls, votes))
	return nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}
