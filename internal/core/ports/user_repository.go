package ports

import (
	"context"

	"github.com/99minutos/jwt-auth/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no user has that email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindProfileByID projects id, names and email only; the password hash is
	// never read. Returns domain.ErrUserNotFound for unknown or malformed ids.
	FindProfileByID(ctx context.Context, id string) (*domain.Profile, error)
	// Create inserts user and returns it with ID and timestamps populated.
	// A storage-level uniqueness violation on email maps to domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
