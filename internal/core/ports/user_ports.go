package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Delete removes the user together with every poll they created and every
	// vote they cast.
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	ListUserPolls(ctx context.Context, id uuid.UUID) ([]*domain.Poll, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}
