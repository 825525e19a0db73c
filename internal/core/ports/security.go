package ports

import "context"

// PasswordHasher performs one-way salted hashing.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash. Malformed hashes fail closed.
	Verify(password, hash string) bool
}

// TokenIssuer signs bearer tokens for a subject.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// TokenVerifier checks signature and expiry and returns the token subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RegistrationLock serialises concurrent registrations of the same email.
// ok is false when another registration currently holds the lock.
type RegistrationLock interface {
	Acquire(ctx context.Context, email string) (release func(context.Context), ok bool, err error)
}
