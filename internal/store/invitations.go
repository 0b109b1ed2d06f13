package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/models"
)

// InvitationStore is the Postgres-backed store for invitations and the
// membership side effect of accepting one.
type InvitationStore struct {
	db *pgxpool.Pool
}

// NewInvitationStore creates an InvitationStore.
func NewInvitationStore(db *pgxpool.Pool) *InvitationStore {
	return &InvitationStore{db: db}
}

const invitationColumns = "id, project_id, invited_user_id, invited_by_id, status, created_at, responded_at"

func scanInvitation(row pgx.Row) (*models.ProjectInvitation, error) {
	var inv models.ProjectInvitation
	var status string
	err := row.Scan(&inv.ID, &inv.ProjectID, &inv.InvitedUserID, &inv.InvitedByID, &status, &inv.CreatedAt, &inv.RespondedAt)
	if err != nil {
		return nil, err
	}
	inv.Status = models.InvitationStatus(status)
	return &inv, nil
}

// GetInvitation retrieves an invitation by id.
func (s *InvitationStore) GetInvitation(ctx context.Context, id string) (*models.ProjectInvitation, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+invitationColumns+" FROM project_invitations WHERE id = $1", id)
	inv, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("invitation not found")
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// HasPending reports whether a PENDING invitation exists for the
// (project, invited user) pair.
func (s *InvitationStore) HasPending(ctx context.Context, projectID, invitedUserID string) (bool, error) {
	var n int
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM project_invitations WHERE project_id = $1 AND invited_user_id = $2 AND status = 'PENDING'",
		projectID, invitedUserID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check pending invitation: %w", err)
	}
	return n > 0, nil
}

// CreateInvitation inserts a new invitation row.
func (s *InvitationStore) CreateInvitation(ctx context.Context, inv *models.ProjectInvitation) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO project_invitations (id, project_id, invited_user_id, invited_by_id, status, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		inv.ID, inv.ProjectID, inv.InvitedUserID, inv.InvitedByID, string(inv.Status), inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// Respond transitions a PENDING invitation and, when membership is
// non-nil, creates the membership row in the same transaction. The
// status check and the transition are one atomic statement, so a
// concurrent double accept loses with InvalidState.
func (s *InvitationStore) Respond(ctx context.Context, id string, status models.InvitationStatus, respondedAt time.Time, membership *models.ProjectMember) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		"UPDATE project_invitations SET status = $2, responded_at = $3 WHERE id = $1 AND status = 'PENDING'",
		id, string(status), respondedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either missing or already resolved; the caller checked
		// existence first, so this is the lost race.
		return apperrors.InvalidState("invitation already responded to")
	}

	if membership != nil {
		_, err = tx.Exec(ctx,
			"INSERT INTO project_members (user_id, project_id, role, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (user_id, project_id) DO NOTHING",
			membership.UserID, membership.ProjectID, membership.Role, membership.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListPendingForUser lists PENDING invitations addressed to a user.
func (s *InvitationStore) ListPendingForUser(ctx context.Context, userID string) ([]*models.ProjectInvitation, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+invitationColumns+" FROM project_invitations WHERE invited_user_id = $1 AND status = 'PENDING' ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()
	return collectInvitations(rows)
}

// ListForProject lists every invitation for a project.
func (s *InvitationStore) ListForProject(ctx context.Context, projectID string) ([]*models.ProjectInvitation, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+invitationColumns+" FROM project_invitations WHERE project_id = $1 ORDER BY created_at DESC",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()
	return collectInvitations(rows)
}

func collectInvitations(rows pgx.Rows) ([]*models.ProjectInvitation, error) {
	var out []*models.ProjectInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
