package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/jwt-auth/internal/core/domain"
)

// DefaultTokenTTL is the lifetime of issued tokens.
const DefaultTokenTTL = time.Hour

var errEmptySubject = errors.New("token has no subject")

// TokenManager issues and verifies HS256 bearer tokens carrying only the
// registered sub, iat and exp claims. Tokens are stateless: nothing is stored
// server side, so a token stays valid until exp even if its user changes or
// disappears. Rotating the secret invalidates every outstanding token.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption configures a TokenManager.
type TokenOption func(*TokenManager)

// WithTTL overrides DefaultTokenTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) TokenOption {
	return func(m *TokenManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewTokenManager(secret string, opts ...TokenOption) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token manager: empty signing secret")
	}

	m := &TokenManager{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	return m, nil
}

// TTL returns the lifetime applied to issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for subject expiring TTL from now.
func (m *TokenManager) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errEmptySubject
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its subject.
// Errors match domain.ErrUnauthenticated and the underlying jwt error
// (jwt.ErrTokenExpired, jwt.ErrTokenSignatureInvalid, jwt.ErrTokenMalformed, ...).
func (m *TokenManager) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := m.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if !parsed.Valid {
		return "", fmt.Errorf("%w: %w", domain.ErrUnauthenticated, jwt.ErrTokenInvalidClaims)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrUnauthenticated, errEmptySubject)
	}
	return claims.Subject, nil
}
