// Package auth implements registration, login and DB-backed sessions.
package auth

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

// Service handles authentication against the users and sessions
// tables.
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new auth Service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// RegisterInput holds the signup fields.
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

// Register creates a user account. The first account defaults to
// FOUNDER when no role is given; everyone else is an EMPLOYEE.
func (s *Service) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var exists int
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE email = $1", email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists > 0 {
		return nil, apperrors.Conflict("email already registered")
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := strings.ToUpper(strings.TrimSpace(input.Role))
	if role != models.RoleFounder && role != models.RoleEmployee {
		role = models.RoleEmployee
	}

	u := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		FullName:     input.FullName,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = s.db.Exec(ctx,
		"INSERT INTO users (id, email, full_name, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		u.ID, u.Email, u.FullName, u.PasswordHash, u.Role, u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// Login verifies credentials and opens a session, returning the
// session token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		"SELECT id, email, full_name, password_hash, role, created_at FROM users WHERE email = $1",
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.Unauthorized("invalid email or password")
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	// Provisioned accounts have no password until they register.
	if u.PasswordHash == "" || !CheckPassword(password, u.PasswordHash) {
		return nil, "", apperrors.Unauthorized("invalid email or password")
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, "", err
	}
	_, err = s.db.Exec(ctx,
		"INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)",
		token, u.ID, time.Now().UTC(), CalculateExpiry(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}
	return &u, token, nil
}

// ValidateSession resolves a session token to its user. Expired
// sessions are treated as absent.
func (s *Service) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		"SELECT u.id, u.email, u.full_name, u.password_hash, u.role, u.created_at "+
			"FROM sessions s JOIN users u ON u.id = s.user_id "+
			"WHERE s.token = $1 AND s.expires_at > NOW()",
		token,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Unauthorized("invalid or expired session")
		}
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}
	return &u, nil
}

// Logout deletes a session. Deleting an unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE token = $1", token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired session rows and returns how
// many were deleted.
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= NOW()")
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
