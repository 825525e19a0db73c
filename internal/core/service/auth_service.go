package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/jwt-auth/internal/core/domain"
	"github.com/99minutos/jwt-auth/internal/core/ports"
	"github.com/99minutos/jwt-auth/internal/pkg/metrics"
)

// AuthService implements registration, login, and token subject resolution.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	lock   ports.RegistrationLock
	log    zerolog.Logger

	decoyOnce sync.Once
	decoyHash string
}

// NewAuthService wires the flows. A nil lock disables registration locking;
// the storage unique constraint on email still applies.
func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	lock ports.RegistrationLock,
	log zerolog.Logger,
) *AuthService {
	if lock == nil {
		lock = noopLock{}
	}
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		lock:   lock,
		log:    log,
	}
}

// Register creates a user and returns a token for it. Input shape is
// validated by the caller.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	token, err := s.register(ctx, in)
	switch {
	case err == nil:
		metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	case errors.Is(err, domain.ErrEmailTaken):
		metrics.RegistrationsTotal.WithLabelValues("email_taken").Inc()
	default:
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
	}
	return token, err
}

func (s *AuthService) register(ctx context.Context, in ports.RegisterInput) (string, error) {
	// 1. Serialise concurrent registrations of the same email when a lock is
	//    available. A lock outage is not fatal; the unique index still holds.
	release, ok, err := s.lock.Acquire(ctx, in.Email)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Msg("registration lock unavailable, continuing without it")
	case !ok:
		return "", domain.ErrEmailTaken
	default:
		defer release(context.WithoutCancel(ctx))
	}

	// 2. Existing email → no insert.
	existing, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		return "", domain.ErrEmailTaken
	}

	// 3. Hash and insert.
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return "", domain.ErrEmailTaken
		}
		return "", fmt.Errorf("register: %w", err)
	}

	// 4. Issue.
	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return token, nil
}

// Login verifies credentials and returns a token. Unknown email and wrong
// password both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	token, err := s.login(ctx, email, password)
	switch {
	case err == nil:
		metrics.LoginsTotal.WithLabelValues("success").Inc()
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
	default:
		metrics.LoginsTotal.WithLabelValues("error").Inc()
	}
	return token, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Pay for a compare anyway so response time does not reveal
			// whether the email is registered.
			s.hasher.Verify(password, s.decoy())
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	s.log.Debug().Str("user_id", user.ID).Msg("user logged in")
	return token, nil
}

// Resolve loads the public profile of a verified token subject.
func (s *AuthService) Resolve(ctx context.Context, subject string) (*domain.Profile, error) {
	profile, err := s.repo.FindProfileByID(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("resolve subject: %w", err)
	}
	return profile, nil
}

// decoy returns a hash made with the configured hasher, computed on first use.
func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("decoy-password-never-matches")
		if err != nil {
			s.log.Warn().Err(err).Msg("decoy hash unavailable")
			return
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}

type noopLock struct{}

func (noopLock) Acquire(context.Context, string) (func(context.Context), bool, error) {
	return func(context.Context) {}, true, nil
}
