package models

import (
	"strings"
	"time"
)

// TaskStatus is the closed set of task states the backend reasons
// about. External input is free-form; ParseTaskStatus normalizes it at
// the boundary so internal comparisons never touch raw literals.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
	TaskBlocked    TaskStatus = "BLOCKED"
)

// ParseTaskStatus normalizes an external status string. Historical
// clients wrote COMPLETED for finished tasks and PLANNED for new ones;
// both fold into the canonical tokens. Unknown values are kept
// upper-cased so the dashboard distribution still counts them.
func ParseTaskStatus(s string) TaskStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TODO", "PLANNED":
		return TaskTodo
	case "IN_PROGRESS":
		return TaskInProgress
	case "DONE", "COMPLETED":
		return TaskDone
	case "BLOCKED":
		return TaskBlocked
	default:
		return TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	}
}

// Done reports whether the status denotes completion.
func (s TaskStatus) Done() bool { return s == TaskDone }

// Blocked reports whether the status denotes a blocked task.
func (s TaskStatus) Blocked() bool { return s == TaskBlocked }

func (s TaskStatus) String() string { return string(s) }

// Task priorities written by the backend.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Task represents a unit of work inside a project. SprintID is nil for
// backlog tasks; AssigneeID is nil for unassigned tasks.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    string     `json:"priority"`
	ProjectID   string     `json:"project_id"`
	SprintID    *string    `json:"sprint_id,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	ReporterID  string     `json:"reporter_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TaskResponse is the task data returned in API responses, with
// related entities resolved to display names.
type TaskResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       TaskStatus `json:"status"`
	Priority     string     `json:"priority"`
	ProjectID    string     `json:"project_id"`
	ProjectName  string     `json:"project_name,omitempty"`
	SprintID     *string    `json:"sprint_id,omitempty"`
	SprintName   string     `json:"sprint_name,omitempty"`
	AssigneeID   *string    `json:"assignee_id,omitempty"`
	AssigneeName string     `json:"assignee_name,omitempty"`
	ReporterID   string     `json:"reporter_id"`
	ReporterName string     `json:"reporter_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
