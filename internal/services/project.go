package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/models"
)

// ProjectService handles project CRUD and membership queries.
type ProjectService struct {
	db *pgxpool.Pool
}

// NewProjectService creates a new ProjectService
func NewProjectService(db *pgxpool.Pool) *ProjectService {
	return &ProjectService{db: db}
}

const projectColumns = "id, name, description, priority, status, start_date, founder_id, created_at"

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Priority, &p.Status, &p.StartDate, &p.FounderID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProjectInput holds the fields accepted when creating a project.
type CreateProjectInput struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	Priority    string       `json:"priority"`
	StartDate   *models.Date `json:"startDate"`
}

// Create inserts a new project owned by founderID. The creator also
// gets a membership row so member-scoped listings include their own
// projects.
func (s *ProjectService) Create(ctx context.Context, founderID string, input *CreateProjectInput) (*models.Project, error) {
	p := &models.Project{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      models.ProjectPlanned,
		FounderID:   founderID,
		CreatedAt:   time.Now().UTC(),
	}
	if p.Priority == "" {
		p.Priority = models.PriorityMedium
	}
	if input.StartDate != nil {
		p.StartDate = *input.StartDate
	} else {
		p.StartDate = models.Today()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		"INSERT INTO projects (id, name, description, priority, status, start_date, founder_id, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		p.ID, p.Name, p.Description, p.Priority, p.Status, p.StartDate, p.FounderID, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO project_members (user_id, project_id, role, created_at) VALUES ($1, $2, $3, $4)",
		founderID, p.ID, models.MembershipRoleOwner, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create founder membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit project: %w", err)
	}
	return p, nil
}

// ProjectByID retrieves a project by ID
func (s *ProjectService) ProjectByID(ctx context.Context, id string) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRow(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("project not found")
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// ListForUser lists projects the user founded or was invited into.
func (s *ProjectService) ListForUser(ctx context.Context, userID string) ([]*models.Project, error) {
	rows, err := s.db.Query(ctx,
		"SELECT DISTINCT p.id, p.name, p.description, p.priority, p.status, p.start_date, p.founder_id, p.created_at "+
			"FROM projects p LEFT JOIN project_members m ON m.project_id = p.id "+
			"WHERE p.founder_id = $1 OR m.user_id = $1 ORDER BY p.created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProjectInput holds the mutable project fields.
type UpdateProjectInput struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Priority    *string      `json:"priority"`
	Status      *string      `json:"status"`
	StartDate   *models.Date `json:"startDate"`
}

// Update applies non-nil fields to an existing project.
func (s *ProjectService) Update(ctx context.Context, id string, input *UpdateProjectInput) (*models.Project, error) {
	p, err := s.ProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Priority != nil {
		p.Priority = *input.Priority
	}
	if input.Status != nil {
		p.Status = *input.Status
	}
	if input.StartDate != nil {
		p.StartDate = *input.StartDate
	}

	_, err = s.db.Exec(ctx,
		"UPDATE projects SET name = $2, description = $3, priority = $4, status = $5, start_date = $6 WHERE id = $1",
		p.ID, p.Name, p.Description, p.Priority, p.Status, p.StartDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return p, nil
}

// Delete removes a project. Child rows go with it via cascading
// foreign keys.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("project not found")
	}
	return nil
}

// IsMember reports whether the user founded the project or holds a
// membership row for it.
func (s *ProjectService) IsMember(ctx context.Context, userID, projectID string) (bool, error) {
	var n int
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM projects p LEFT JOIN project_members m ON m.project_id = p.id AND m.user_id = $1 "+
			"WHERE p.id = $2 AND (p.founder_id = $1 OR m.user_id = $1)",
		userID, projectID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return n > 0, nil
}

// Members lists a project's members with display names resolved.
func (s *ProjectService) Members(ctx context.Context, projectID string) ([]*models.ProjectMemberResponse, error) {
	rows, err := s.db.Query(ctx,
		"SELECT m.user_id, m.project_id, m.role, m.created_at, u.full_name, u.email "+
			"FROM project_members m JOIN users u ON u.id = m.user_id "+
			"WHERE m.project_id = $1 ORDER BY m.created_at ASC",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var out []*models.ProjectMemberResponse
	for rows.Next() {
		var r models.ProjectMemberResponse
		if err := rows.Scan(&r.UserID, &r.ProjectID, &r.Role, &r.CreatedAt, &r.FullName, &r.Email); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// RemoveMember drops a membership row. Founders cannot be removed from
// their own project.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, userID string) error {
	p, err := s.ProjectByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p.FounderID == userID {
		return apperrors.InvalidState("cannot remove the project founder")
	}
	tag, err := s.db.Exec(ctx,
		"DELETE FROM project_members WHERE project_id = $1 AND user_id = $2", projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("membership not found")
	}
	return nil
}
