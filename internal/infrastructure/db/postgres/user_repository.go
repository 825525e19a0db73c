package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/99minutos/jwt-auth/internal/core/domain"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// DBTX is the subset of database/sql used by the repository.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (first_name, last_name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	var id int64
	created := *user
	err := r.db.QueryRowContext(ctx, query, user.FirstName, user.LastName, user.Email, user.PasswordHash).
		Scan(&id, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created.ID = strconv.FormatInt(id, 10)
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1`

	var (
		id   int64
		user domain.User
	)
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&id, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	user.ID = strconv.FormatInt(id, 10)
	return &user, nil
}

func (r *UserRepository) FindProfileByID(ctx context.Context, id string) (*domain.Profile, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	query := `
		SELECT first_name, last_name, email
		FROM users
		WHERE id = $1`

	profile := domain.Profile{ID: strconv.FormatInt(numericID, 10)}
	err = r.db.QueryRowContext(ctx, query, numericID).
		Scan(&profile.FirstName, &profile.LastName, &profile.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user profile: %w", err)
	}

	return &profile, nil
}
