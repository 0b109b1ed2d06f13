package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intellimanage/platform/internal/activity"
	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/models"
)

// TaskService handles task CRUD and feeds the activity recorder with
// the transitions each mutation produces.
type TaskService struct {
	db       *pgxpool.Pool
	users    *UserService
	recorder *activity.Recorder
}

// NewTaskService creates a new TaskService
func NewTaskService(db *pgxpool.Pool, users *UserService, recorder *activity.Recorder) *TaskService {
	return &TaskService{db: db, users: users, recorder: recorder}
}

const taskColumns = "t.id, t.title, t.description, t.status, t.priority, t.project_id, t.sprint_id, t.assignee_id, t.reporter_id, t.created_at"

// taskResponseQuery joins display names so list endpoints need one
// round trip.
const taskResponseQuery = "SELECT " + taskColumns + ", p.name, COALESCE(sp.name, ''), COALESCE(a.full_name, ''), COALESCE(r.full_name, '') " +
	"FROM tasks t " +
	"JOIN projects p ON p.id = t.project_id " +
	"LEFT JOIN sprints sp ON sp.id = t.sprint_id " +
	"LEFT JOIN users a ON a.id = t.assignee_id " +
	"LEFT JOIN users r ON r.id = t.reporter_id "

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	var status string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.Priority, &t.ProjectID, &t.SprintID, &t.AssigneeID, &t.ReporterID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	// Old rows may carry legacy tokens (COMPLETED, PLANNED).
	t.Status = models.ParseTaskStatus(status)
	return &t, nil
}

func scanTaskResponse(row pgx.Row) (*models.TaskResponse, error) {
	var r models.TaskResponse
	var status string
	err := row.Scan(&r.ID, &r.Title, &r.Description, &status, &r.Priority, &r.ProjectID, &r.SprintID, &r.AssigneeID, &r.ReporterID, &r.CreatedAt,
		&r.ProjectName, &r.SprintName, &r.AssigneeName, &r.ReporterName)
	if err != nil {
		return nil, err
	}
	r.Status = models.ParseTaskStatus(status)
	return &r, nil
}

// CreateTaskInput holds the fields accepted when creating a task.
type CreateTaskInput struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	SprintID    *string `json:"sprintId"`
	AssigneeID  *string `json:"assigneeId"`
}

// Create inserts a task reported by reporterID and records the
// creation in the audit trail.
func (s *TaskService) Create(ctx context.Context, projectID, reporterID string, input *CreateTaskInput) (*models.Task, error) {
	t := &models.Task{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Description: input.Description,
		Status:      models.ParseTaskStatus(input.Status),
		Priority:    input.Priority,
		ProjectID:   projectID,
		SprintID:    normalizeRef(input.SprintID),
		AssigneeID:  normalizeRef(input.AssigneeID),
		ReporterID:  reporterID,
		CreatedAt:   time.Now().UTC(),
	}
	if input.Status == "" {
		t.Status = models.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}

	_, err := s.db.Exec(ctx,
		"INSERT INTO tasks (id, title, description, status, priority, project_id, sprint_id, assignee_id, reporter_id, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
		t.ID, t.Title, t.Description, t.Status.String(), t.Priority, t.ProjectID, t.SprintID, t.AssigneeID, t.ReporterID, t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.recorder.Record(ctx, t.ID, &reporterID, models.ActionTaskCreated, "", t.Title); err != nil {
		return nil, fmt.Errorf("failed to record task creation: %w", err)
	}
	return t, nil
}

// TaskByID retrieves a task by ID
func (s *TaskService) TaskByID(ctx context.Context, id string) (*models.Task, error) {
	t, err := scanTask(s.db.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks t WHERE t.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("task not found")
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// ResponseByID retrieves a task with related names resolved.
func (s *TaskService) ResponseByID(ctx context.Context, id string) (*models.TaskResponse, error) {
	r, err := scanTaskResponse(s.db.QueryRow(ctx, taskResponseQuery+"WHERE t.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("task not found")
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return r, nil
}

// ListByProject lists a project's tasks with names resolved, newest
// first.
func (s *TaskService) ListByProject(ctx context.Context, projectID string) ([]*models.TaskResponse, error) {
	return s.listResponses(ctx, taskResponseQuery+"WHERE t.project_id = $1 ORDER BY t.created_at DESC", projectID)
}

// ListByProjectAndAssignee lists the tasks assigned to one user within
// a project.
func (s *TaskService) ListByProjectAndAssignee(ctx context.Context, projectID, assigneeID string) ([]*models.TaskResponse, error) {
	return s.listResponses(ctx,
		taskResponseQuery+"WHERE t.project_id = $1 AND t.assignee_id = $2 ORDER BY t.created_at DESC",
		projectID, assigneeID)
}

func (s *TaskService) listResponses(ctx context.Context, query string, args ...any) ([]*models.TaskResponse, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var out []*models.TaskResponse
	for rows.Next() {
		r, err := scanTaskResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ModelsByProject loads a project's raw task rows, for aggregation.
func (s *TaskService) ModelsByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	rows, err := s.db.Query(ctx, "SELECT "+taskColumns+" FROM tasks t WHERE t.project_id = $1", projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var out []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ModelsBySprint loads the raw task rows attached to a sprint.
func (s *TaskService) ModelsBySprint(ctx context.Context, sprintID string) ([]*models.Task, error) {
	rows, err := s.db.Query(ctx, "SELECT "+taskColumns+" FROM tasks t WHERE t.sprint_id = $1", sprintID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprint tasks: %w", err)
	}
	defer rows.Close()

	var out []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTaskInput holds the mutable task fields. Pointer fields are
// applied only when present, except SprintID and AssigneeID where an
// explicit empty string clears the reference.
type UpdateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	SprintID    *string `json:"sprintId"`
	AssigneeID  *string `json:"assigneeId"`
}

// Update applies the input to a task, saves it and records the status
// and assignee transitions it produced.
func (s *TaskService) Update(ctx context.Context, id string, actorID string, input *UpdateTaskInput) (*models.Task, error) {
	before, err := s.TaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	after := *before
	if input.Title != nil {
		after.Title = *input.Title
	}
	if input.Description != nil {
		after.Description = *input.Description
	}
	if input.Status != nil {
		after.Status = models.ParseTaskStatus(*input.Status)
	}
	if input.Priority != nil {
		after.Priority = *input.Priority
	}
	if input.SprintID != nil {
		after.SprintID = normalizeRef(input.SprintID)
	}
	if input.AssigneeID != nil {
		after.AssigneeID = normalizeRef(input.AssigneeID)
	}

	if err := s.save(ctx, &after); err != nil {
		return nil, err
	}
	if err := s.recordTransitions(ctx, before, &after, actorID); err != nil {
		return nil, err
	}
	return &after, nil
}

// UpdateStatus is the kanban drag: it changes only the status and
// records the transition.
func (s *TaskService) UpdateStatus(ctx context.Context, id string, actorID string, status string) (*models.Task, error) {
	before, err := s.TaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	after := *before
	after.Status = models.ParseTaskStatus(status)

	if err := s.save(ctx, &after); err != nil {
		return nil, err
	}
	if err := s.recordTransitions(ctx, before, &after, actorID); err != nil {
		return nil, err
	}
	return &after, nil
}

func (s *TaskService) save(ctx context.Context, t *models.Task) error {
	_, err := s.db.Exec(ctx,
		"UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5, sprint_id = $6, assignee_id = $7 WHERE id = $1",
		t.ID, t.Title, t.Description, t.Status.String(), t.Priority, t.SprintID, t.AssigneeID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (s *TaskService) recordTransitions(ctx context.Context, before, after *models.Task, actorID string) error {
	err := s.recorder.RecordDiff(ctx, before, after, &actorID, func(id *string) string {
		return s.users.DisplayName(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("failed to record task transitions: %w", err)
	}
	return nil
}

// Delete removes a task and its audit trail.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("task not found")
	}
	return nil
}

// normalizeRef turns an empty-string reference into nil so optional
// foreign keys are stored as NULL.
func normalizeRef(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}
