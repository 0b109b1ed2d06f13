package models

// SprintStatus is derived from the sprint's date range at read time;
// it is never stored.
type SprintStatus string

const (
	SprintPlanned   SprintStatus = "PLANNED"
	SprintActive    SprintStatus = "ACTIVE"
	SprintCompleted SprintStatus = "COMPLETED"
)

// Sprint represents a time-boxed iteration inside a project. Start and
// end dates are required before a sprint can be scheduled; ProjectID
// is immutable after creation.
type Sprint struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Goal      string `json:"goal"`
	StartDate *Date  `json:"start_date"`
	EndDate   *Date  `json:"end_date"`
	ProjectID string `json:"project_id"`
}

// SprintResponse is the sprint data returned in API responses,
// including the derived status and task rollup.
type SprintResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Goal        string         `json:"goal"`
	StartDate   *Date          `json:"start_date"`
	EndDate     *Date          `json:"end_date"`
	Status      SprintStatus   `json:"status"`
	ProjectID   string         `json:"project_id"`
	ProjectName string         `json:"project_name,omitempty"`
	TaskCount   int            `json:"task_count"`
	Progress    float64        `json:"progress"`
	Tasks       []TaskResponse `json:"tasks,omitempty"`
}
