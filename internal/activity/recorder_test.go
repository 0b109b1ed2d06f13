package activity

import (
	"context"
	"sync"
	"testing"

	"github.com/intellimanage/platform/internal/models"
)

type memStore struct {
	mu   sync.Mutex
	rows []*models.TaskActivity
}

func (m *memStore) Append(_ context.Context, a *models.TaskActivity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, a)
	return nil
}

func (m *memStore) ListByTask(_ context.Context, taskID string) ([]*models.TaskActivity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.TaskActivity
	for _, r := range m.rows {
		if r.TaskID == taskID {
			out = append(out, r)
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func names(m map[string]string) func(id *string) string {
	return func(id *string) string {
		if id == nil {
			return ""
		}
		return m[*id]
	}
}

func TestRecord_AppendsRow(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store)

	err := r.Record(context.Background(), "t1", strPtr("u1"), models.ActionStatusChange, "TODO", "DONE")
	if err != nil {
		t.Fatalf("Record = %v", err)
	}
	if len(store.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(store.rows))
	}
	row := store.rows[0]
	if row.Action != models.ActionStatusChange || row.OldValue != "TODO" || row.NewValue != "DONE" {
		t.Errorf("row = %+v, want STATUS_CHANGE TODO->DONE", row)
	}
	if row.UserID != "u1" {
		t.Errorf("UserID = %s, want u1", row.UserID)
	}
}

func TestRecord_NilActorIsNoop(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store)

	if err := r.Record(context.Background(), "t1", nil, models.ActionStatusChange, "TODO", "DONE"); err != nil {
		t.Fatalf("Record = %v, want nil", err)
	}
	empty := ""
	if err := r.Record(context.Background(), "t1", &empty, models.ActionStatusChange, "TODO", "DONE"); err != nil {
		t.Fatalf("Record = %v, want nil", err)
	}
	if len(store.rows) != 0 {
		t.Errorf("rows = %d, want 0 (system-triggered changes are skipped)", len(store.rows))
	}
}

func TestDiff_StatusChange(t *testing.T) {
	before := &models.Task{ID: "t1", Status: models.TaskTodo}
	after := &models.Task{ID: "t1", Status: models.TaskDone}

	changes := Diff(before, after, names(nil))
	if len(changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(changes))
	}
	if changes[0].Action != models.ActionStatusChange || changes[0].OldValue != "TODO" || changes[0].NewValue != "DONE" {
		t.Errorf("change = %+v, want STATUS_CHANGE TODO->DONE", changes[0])
	}
}

func TestDiff_AssigneeByDisplayName(t *testing.T) {
	resolve := names(map[string]string{"u1": "Alice", "u2": "Bob"})

	cases := []struct {
		name          string
		before, after *string
		wantOld       string
		wantNew       string
		wantChange    bool
	}{
		{"assign", nil, strPtr("u1"), Unassigned, "Alice", true},
		{"reassign", strPtr("u1"), strPtr("u2"), "Alice", "Bob", true},
		{"unassign", strPtr("u2"), nil, "Bob", Unassigned, true},
		{"unchanged", strPtr("u1"), strPtr("u1"), "", "", false},
		{"still none", nil, nil, "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := &models.Task{ID: "t1", Status: models.TaskTodo, AssigneeID: tc.before}
			after := &models.Task{ID: "t1", Status: models.TaskTodo, AssigneeID: tc.after}
			changes := Diff(before, after, resolve)
			if !tc.wantChange {
				if len(changes) != 0 {
					t.Fatalf("changes = %+v, want none", changes)
				}
				return
			}
			if len(changes) != 1 {
				t.Fatalf("changes = %d, want 1", len(changes))
			}
			c := changes[0]
			if c.Action != models.ActionAssigneeChange || c.OldValue != tc.wantOld || c.NewValue != tc.wantNew {
				t.Errorf("change = %+v, want ASSIGNEE_CHANGE %s->%s", c, tc.wantOld, tc.wantNew)
			}
		})
	}
}

func TestRecordDiff_BothFieldsChanged(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store)
	resolve := names(map[string]string{"u1": "Alice"})

	before := &models.Task{ID: "t1", Status: models.TaskTodo}
	after := &models.Task{ID: "t1", Status: models.TaskInProgress, AssigneeID: strPtr("u1")}

	if err := r.RecordDiff(context.Background(), before, after, strPtr("actor"), resolve); err != nil {
		t.Fatalf("RecordDiff = %v", err)
	}
	if len(store.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(store.rows))
	}
}

func TestRecordDiff_NilActorRecordsNothing(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store)

	before := &models.Task{ID: "t1", Status: models.TaskTodo}
	after := &models.Task{ID: "t1", Status: models.TaskDone}

	if err := r.RecordDiff(context.Background(), before, after, nil, names(nil)); err != nil {
		t.Fatalf("RecordDiff = %v", err)
	}
	if len(store.rows) != 0 {
		t.Errorf("rows = %d, want 0", len(store.rows))
	}
}
