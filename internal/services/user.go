package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/models"
)

// UserService handles user lookup and lazy provisioning. It is the
// identity directory the invitation workflow consumes.
type UserService struct {
	db *pgxpool.Pool
}

// NewUserService creates a new UserService
func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

const userColumns = "id, email, full_name, password_hash, role, created_at"

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByID retrieves a user by ID
func (s *UserService) UserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// UserByEmail retrieves a user by email
func (s *UserService) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", normalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// EnsureUserByEmail returns the account for the email, provisioning a
// lowest-privilege one when none exists. The insert is ON CONFLICT DO
// NOTHING so an existing account is never overwritten, even under a
// concurrent provision for the same address.
func (s *UserService) EnsureUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.InvalidState("email is required")
	}

	_, err := s.db.Exec(ctx,
		"INSERT INTO users (id, email, full_name, password_hash, role, created_at) VALUES ($1, $2, $3, '', $4, $5) ON CONFLICT (email) DO NOTHING",
		uuid.New().String(), email, email, models.RoleEmployee, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}
	return s.UserByEmail(ctx, email)
}

// List returns every user, for invitation pickers.
func (s *UserService) List(ctx context.Context) ([]*models.UserResponse, error) {
	rows, err := s.db.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY full_name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []*models.UserResponse
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, u.ToResponse())
	}
	return out, rows.Err()
}

// DisplayName resolves a possibly-nil user id to a display name.
// Returns "" when the id is nil or the user is gone.
func (s *UserService) DisplayName(ctx context.Context, id *string) string {
	if id == nil || *id == "" {
		return ""
	}
	u, err := s.UserByID(ctx, *id)
	if err != nil {
		return ""
	}
	return u.FullName
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
