package ports

import (
	"context"

	"github.com/99minutos/jwt-auth/internal/core/domain"
)

// RegisterInput carries an already shape-validated registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Resolve(ctx context.Context, subject string) (*domain.Profile, error)
}
