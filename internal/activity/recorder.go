// Package activity keeps the append-only audit trail of task field
// transitions.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/intellimanage/platform/internal/models"
)

// Unassigned is the display value recorded when a task has no
// assignee, so clearing an assignee produces a real transition.
const Unassigned = "Unassigned"

// Store is the persistence collaborator. Rows are appended and read,
// never updated or deleted.
type Store interface {
	Append(ctx context.Context, a *models.TaskActivity) error
	ListByTask(ctx context.Context, taskID string) ([]*models.TaskActivity, error)
}

// Recorder appends audit rows for task mutations.
type Recorder struct {
	store Store
}

// NewRecorder creates a Recorder.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record appends one audit row. A nil or empty actor means the change
// was system-triggered; it is silently skipped rather than
// misattributed.
func (r *Recorder) Record(ctx context.Context, taskID string, actorID *string, action models.ActivityAction, oldValue, newValue string) error {
	if actorID == nil || *actorID == "" {
		return nil
	}
	return r.store.Append(ctx, &models.TaskActivity{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		UserID:    *actorID,
		Action:    action,
		OldValue:  oldValue,
		NewValue:  newValue,
		CreatedAt: time.Now().UTC(),
	})
}

// Change is one recordable field transition between two task images.
type Change struct {
	Action   models.ActivityAction
	OldValue string
	NewValue string
}

// Diff compares the pre- and post-image of a task and returns the
// transitions worth recording. Assignees are compared by display name
// (via assigneeName), not by reference, so "no assignee" is a distinct
// value from any named assignee.
func Diff(before, after *models.Task, assigneeName func(id *string) string) []Change {
	var changes []Change
	if before.Status != after.Status {
		changes = append(changes, Change{
			Action:   models.ActionStatusChange,
			OldValue: before.Status.String(),
			NewValue: after.Status.String(),
		})
	}
	oldName := displayName(before.AssigneeID, assigneeName)
	newName := displayName(after.AssigneeID, assigneeName)
	if oldName != newName {
		changes = append(changes, Change{
			Action:   models.ActionAssigneeChange,
			OldValue: oldName,
			NewValue: newName,
		})
	}
	return changes
}

func displayName(id *string, resolve func(id *string) string) string {
	if id == nil || *id == "" {
		return Unassigned
	}
	if name := resolve(id); name != "" {
		return name
	}
	return *id
}

// RecordDiff records every transition Diff finds, attributed to actor.
func (r *Recorder) RecordDiff(ctx context.Context, before, after *models.Task, actorID *string, assigneeName func(id *string) string) error {
	for _, c := range Diff(before, after, assigneeName) {
		if err := r.Record(ctx, after.ID, actorID, c.Action, c.OldValue, c.NewValue); err != nil {
			return err
		}
	}
	return nil
}

// ForTask lists a task's audit rows, newest first (store order).
func (r *Recorder) ForTask(ctx context.Context, taskID string) ([]*models.TaskActivity, error) {
	return r.store.ListByTask(ctx, taskID)
}
