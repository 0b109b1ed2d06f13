package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intellimanage/platform/internal/models"
)

// ActivityStore is the Postgres-backed append-only store for task
// activities. There is deliberately no update or delete.
type ActivityStore struct {
	db *pgxpool.Pool
}

// NewActivityStore creates an ActivityStore.
func NewActivityStore(db *pgxpool.Pool) *ActivityStore {
	return &ActivityStore{db: db}
}

// Append inserts one audit row.
func (s *ActivityStore) Append(ctx context.Context, a *models.TaskActivity) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO task_activities (id, task_id, user_id, action, old_value, new_value, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		a.ID, a.TaskID, a.UserID, string(a.Action), a.OldValue, a.NewValue, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

// ListByTask lists a task's audit rows, newest first.
func (s *ActivityStore) ListByTask(ctx context.Context, taskID string) ([]*models.TaskActivity, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, task_id, user_id, action, old_value, new_value, created_at FROM task_activities WHERE task_id = $1 ORDER BY created_at DESC",
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var out []*models.TaskActivity
	for rows.Next() {
		var a models.TaskActivity
		var action string
		if err := rows.Scan(&a.ID, &a.TaskID, &a.UserID, &action, &a.OldValue, &a.NewValue, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Action = models.ActivityAction(action)
		out = append(out, &a)
	}
	return out, rows.Err()
}
