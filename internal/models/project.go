package models

import "time"

// Project statuses are free-form in the API but these are the values
// the backend writes.
const (
	ProjectPlanned   = "PLANNED"
	ProjectActive    = "ACTIVE"
	ProjectCompleted = "COMPLETED"
)

// Membership roles. Accepting an invitation grants MEMBER; the
// founder's own row is OWNER.
const (
	MembershipRoleMember = "MEMBER"
	MembershipRoleOwner  = "OWNER"
)

// Project represents a project owned by a founder
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	StartDate   Date      `json:"start_date"`
	FounderID   string    `json:"founder_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProjectResponse is the project data returned in API responses,
// with the founder resolved to a display name.
type ProjectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	StartDate   Date      `json:"start_date"`
	FounderID   string    `json:"founder_id"`
	FounderName string    `json:"founder_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse converts a Project plus its founder's display name.
func (p *Project) ToResponse(founderName string) *ProjectResponse {
	return &ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Priority:    p.Priority,
		Status:      p.Status,
		StartDate:   p.StartDate,
		FounderID:   p.FounderID,
		FounderName: founderName,
		CreatedAt:   p.CreatedAt,
	}
}

// ProjectMember represents a (user, project) membership row. The pair
// is the identity; a user holds at most one membership per project.
type ProjectMember struct {
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectMemberResponse resolves the member to a display name.
type ProjectMemberResponse struct {
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
