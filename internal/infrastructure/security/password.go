package security

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/jwt-auth/internal/pkg/metrics"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// BcryptHasher implements ports.PasswordHasher. Output strings are the
// self-describing "$2a$<cost>$<salt+digest>" form, so Verify needs no
// configuration of its own.
type BcryptHasher struct {
	cost int
}

// BcryptOption configures a BcryptHasher.
type BcryptOption func(*BcryptHasher)

// WithCost sets the bcrypt cost. Values outside bcrypt's range are ignored.
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{cost: DefaultBcryptCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash derives a salted hash with a fresh random salt.
func (h *BcryptHasher) Hash(password string) (string, error) {
	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify recomputes the hash with the salt and cost embedded in hash and
// compares in constant time. Any error, malformed hash included, is a mismatch.
func (h *BcryptHasher) Verify(password, hash string) bool {
	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	metrics.PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	return err == nil
}
