package ports

import (
	"context"

	"github.com/google/uuid"
)

type AuthService interface {
	// Login returns a signed access token for the given credentials.
	Login(ctx context.Context, email, password string) (string, error)
	ParseAccessToken(token string) (uuid.UUID, error)
}
