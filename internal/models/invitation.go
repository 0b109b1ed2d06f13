package models

import "time"

// InvitationStatus is the closed set of invitation states. PENDING is
// the only non-terminal state.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRejected InvitationStatus = "REJECTED"
)

// Terminal reports whether no further transition is allowed.
func (s InvitationStatus) Terminal() bool { return s != InvitationPending }

// ProjectInvitation represents an invitation for a user to join a
// project. RespondedAt stays nil until the invitation is resolved.
type ProjectInvitation struct {
	ID            string           `json:"id"`
	ProjectID     string           `json:"project_id"`
	InvitedUserID string           `json:"invited_user_id"`
	InvitedByID   string           `json:"invited_by_id"`
	Status        InvitationStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	RespondedAt   *time.Time       `json:"responded_at,omitempty"`
}

// InvitationResponse is the invitation data returned in API responses,
// with project and user references resolved to display names.
type InvitationResponse struct {
	ID              string           `json:"id"`
	ProjectID       string           `json:"project_id"`
	ProjectName     string           `json:"project_name"`
	InvitedUserID   string           `json:"invited_user_id"`
	InvitedUserName string           `json:"invited_user_name"`
	InvitedByID     string           `json:"invited_by_id"`
	InvitedByName   string           `json:"invited_by_name"`
	Status          InvitationStatus `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	RespondedAt     *time.Time       `json:"responded_at,omitempty"`
}
