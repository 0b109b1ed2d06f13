package models

import "time"

// ActivityAction is the kind of task field transition being recorded.
type ActivityAction string

const (
	ActionTaskCreated    ActivityAction = "TASK_CREATED"
	ActionStatusChange   ActivityAction = "STATUS_CHANGE"
	ActionAssigneeChange ActivityAction = "ASSIGNEE_CHANGE"
)

// TaskActivity is one append-only audit row for a task. Rows are never
// updated or deleted.
type TaskActivity struct {
	ID        string         `json:"id"`
	TaskID    string         `json:"task_id"`
	UserID    string         `json:"user_id"`
	Action    ActivityAction `json:"action"`
	OldValue  string         `json:"old_value"`
	NewValue  string         `json:"new_value"`
	CreatedAt time.Time      `json:"created_at"`
}

// ToResponse converts a TaskActivity plus the actor's display name.
func (a *TaskActivity) ToResponse(userName string) *ActivityResponse {
	return &ActivityResponse{
		ID:        a.ID,
		TaskID:    a.TaskID,
		UserID:    a.UserID,
		UserName:  userName,
		Action:    a.Action,
		OldValue:  a.OldValue,
		NewValue:  a.NewValue,
		CreatedAt: a.CreatedAt,
	}
}

// ActivityResponse resolves the acting user to a display name.
type ActivityResponse struct {
	ID        string         `json:"id"`
	TaskID    string         `json:"task_id"`
	UserID    string         `json:"user_id"`
	UserName  string         `json:"user_name"`
	Action    ActivityAction `json:"action"`
	OldValue  string         `json:"old_value"`
	NewValue  string         `json:"new_value"`
	CreatedAt time.Time      `json:"created_at"`
}
