package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/models"
	"github.com/intellimanage/platform/internal/schedule"
)

// SprintService handles sprint CRUD. Every write goes through the
// scheduler so sibling sprints in a project never overlap.
type SprintService struct {
	db       *pgxpool.Pool
	projects *ProjectService
}

// NewSprintService creates a new SprintService
func NewSprintService(db *pgxpool.Pool, projects *ProjectService) *SprintService {
	return &SprintService{db: db, projects: projects}
}

const sprintColumns = "id, name, goal, start_date, end_date, project_id"

func scanSprint(row pgx.Row) (*models.Sprint, error) {
	var sp models.Sprint
	err := row.Scan(&sp.ID, &sp.Name, &sp.Goal, &sp.StartDate, &sp.EndDate, &sp.ProjectID)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// SprintInput holds the fields accepted when creating or updating a
// sprint.
type SprintInput struct {
	Name      string       `json:"name" binding:"required"`
	Goal      string       `json:"goal"`
	StartDate *models.Date `json:"startDate"`
	EndDate   *models.Date `json:"endDate"`
}

// Create validates the candidate against the project window and every
// sibling sprint, then inserts it.
func (s *SprintService) Create(ctx context.Context, projectID string, input *SprintInput) (*models.Sprint, error) {
	project, err := s.projects.ProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	sp := &models.Sprint{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Goal:      input.Goal,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		ProjectID: projectID,
	}

	siblings, err := s.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := schedule.Validate(sp, project, siblings); err != nil {
		return nil, err
	}

	_, err = s.db.Exec(ctx,
		"INSERT INTO sprints (id, name, goal, start_date, end_date, project_id) VALUES ($1, $2, $3, $4, $5, $6)",
		sp.ID, sp.Name, sp.Goal, sp.StartDate, sp.EndDate, sp.ProjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sprint: %w", err)
	}
	return sp, nil
}

// SprintByID retrieves a sprint by ID
func (s *SprintService) SprintByID(ctx context.Context, id string) (*models.Sprint, error) {
	sp, err := scanSprint(s.db.QueryRow(ctx, "SELECT "+sprintColumns+" FROM sprints WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("sprint not found")
		}
		return nil, fmt.Errorf("failed to get sprint: %w", err)
	}
	return sp, nil
}

// ListByProject lists a project's sprints ordered by start date, with
// undated sprints last.
func (s *SprintService) ListByProject(ctx context.Context, projectID string) ([]*models.Sprint, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+sprintColumns+" FROM sprints WHERE project_id = $1 ORDER BY start_date ASC NULLS LAST, name ASC",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprints: %w", err)
	}
	defer rows.Close()

	var out []*models.Sprint
	for rows.Next() {
		sp, err := scanSprint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sprint: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// Update re-validates the sprint against its siblings (excluding
// itself) and saves it. The owning project never changes.
func (s *SprintService) Update(ctx context.Context, id string, input *SprintInput) (*models.Sprint, error) {
	sp, err := s.SprintByID(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.ProjectByID(ctx, sp.ProjectID)
	if err != nil {
		return nil, err
	}

	sp.Name = input.Name
	sp.Goal = input.Goal
	sp.StartDate = input.StartDate
	sp.EndDate = input.EndDate

	siblings, err := s.ListByProject(ctx, sp.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := schedule.Validate(sp, project, siblings); err != nil {
		return nil, err
	}

	_, err = s.db.Exec(ctx,
		"UPDATE sprints SET name = $2, goal = $3, start_date = $4, end_date = $5 WHERE id = $1",
		sp.ID, sp.Name, sp.Goal, sp.StartDate, sp.EndDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update sprint: %w", err)
	}
	return sp, nil
}

// Delete removes a sprint. Its tasks move back to the backlog rather
// than being deleted.
func (s *SprintService) Delete(ctx context.Context, id string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "UPDATE tasks SET sprint_id = NULL WHERE sprint_id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to detach sprint tasks: %w", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM sprints WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete sprint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("sprint not found")
	}
	return tx.Commit(ctx)
}

// ToResponse builds the API shape for a sprint: derived status plus a
// rollup over the sprint's tasks.
func (s *SprintService) ToResponse(ctx context.Context, sp *models.Sprint, tasks []*models.Task) *models.SprintResponse {
	resp := &models.SprintResponse{
		ID:        sp.ID,
		Name:      sp.Name,
		Goal:      sp.Goal,
		StartDate: sp.StartDate,
		EndDate:   sp.EndDate,
		Status:    schedule.Status(sp, models.Today()),
		ProjectID: sp.ProjectID,
		TaskCount: len(tasks),
	}
	if len(tasks) > 0 {
		done := 0
		for _, t := range tasks {
			if t.Status.Done() {
				done++
			}
		}
		resp.Progress = float64(done) / float64(len(tasks)) * 100
	}
	return resp
}
