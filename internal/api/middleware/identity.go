package middleware

import (
	"context"

	"github.com/99minutos/jwt-auth/internal/core/domain"
)

// Identity is what the Auth gate attaches to a request. Subject is the
// verified token subject. Profile is nil when the subject no longer
// resolves to a stored user.
type Identity struct {
	Subject string
	Profile *domain.Profile
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by the Auth gate. ok is false
// when the request never went through the gate.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
