// Package workflow implements the project invitation process: a
// PENDING -> {ACCEPTED, REJECTED} state machine with membership
// creation as a side effect of acceptance.
package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/logger"
	"github.com/intellimanage/platform/internal/models"
)

// InvitationStore is the persistence collaborator for invitations and
// memberships. Respond must perform the PENDING-check-then-transition
// and the membership insert as one atomic unit.
type InvitationStore interface {
	GetInvitation(ctx context.Context, id string) (*models.ProjectInvitation, error)
	HasPending(ctx context.Context, projectID, invitedUserID string) (bool, error)
	CreateInvitation(ctx context.Context, inv *models.ProjectInvitation) error
	// Respond transitions the invitation out of PENDING. When
	// membership is non-nil it is created in the same transaction
	// unless one already exists for the (user, project) pair.
	// Returns InvalidState when the invitation is no longer PENDING.
	Respond(ctx context.Context, id string, status models.InvitationStatus, respondedAt time.Time, membership *models.ProjectMember) error
	ListPendingForUser(ctx context.Context, userID string) ([]*models.ProjectInvitation, error)
	ListForProject(ctx context.Context, projectID string) ([]*models.ProjectInvitation, error)
}

// Directory resolves and provisions user accounts.
type Directory interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// EnsureUserByEmail returns the user for the email, provisioning a
	// lowest-privilege account when none exists. An existing account is
	// never overwritten.
	EnsureUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// ProjectLookup resolves projects by id.
type ProjectLookup interface {
	ProjectByID(ctx context.Context, id string) (*models.Project, error)
}

// Notifier delivers a plain-text message. Best-effort: failures are
// logged by the implementation and never surfaced here.
type Notifier interface {
	Send(to, subject, body string)
}

// Service runs the invitation workflow.
type Service struct {
	store    InvitationStore
	users    Directory
	projects ProjectLookup
	notifier Notifier
}

// NewService creates an invitation workflow service.
func NewService(store InvitationStore, users Directory, projects ProjectLookup, notifier Notifier) *Service {
	return &Service{store: store, users: users, projects: projects, notifier: notifier}
}

// Send invites a user to a project. At most one PENDING invitation may
// exist per (project, invited user) pair.
func (s *Service) Send(ctx context.Context, projectID, invitedUserID, inviterID string) (*models.InvitationResponse, error) {
	project, err := s.projects.ProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	invited, err := s.users.UserByID(ctx, invitedUserID)
	if err != nil {
		return nil, err
	}
	inviter, err := s.users.UserByID(ctx, inviterID)
	if err != nil {
		return nil, err
	}

	pending, err := s.store.HasPending(ctx, projectID, invitedUserID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperrors.Conflict("invitation already sent")
	}

	inv := &models.ProjectInvitation{
		ID:            uuid.New().String(),
		ProjectID:     projectID,
		InvitedUserID: invitedUserID,
		InvitedByID:   inviterID,
		Status:        models.InvitationPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Send(invited.Email,
			"You have been invited to "+project.Name,
			inviter.FullName+" invited you to join the project \""+project.Name+"\". Log in to respond.")
	}

	return s.toResponse(inv, project, invited, inviter), nil
}

// SendByEmail resolves or lazily provisions an account for the email
// and then sends the invitation to it.
func (s *Service) SendByEmail(ctx context.Context, projectID, email, inviterID string) (*models.InvitationResponse, error) {
	invited, err := s.users.EnsureUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.Send(ctx, projectID, invited.ID, inviterID)
}

// Accept resolves a PENDING invitation in the actor's favor and grants
// membership. Accepting twice fails with InvalidState on the second
// call and never duplicates the membership row.
func (s *Service) Accept(ctx context.Context, invitationID, actorID string) (*models.InvitationResponse, error) {
	return s.respond(ctx, invitationID, actorID, models.InvitationAccepted)
}

// Reject resolves a PENDING invitation negatively. No membership side
// effect.
func (s *Service) Reject(ctx context.Context, invitationID, actorID string) (*models.InvitationResponse, error) {
	return s.respond(ctx, invitationID, actorID, models.InvitationRejected)
}

func (s *Service) respond(ctx context.Context, invitationID, actorID string, status models.InvitationStatus) (*models.InvitationResponse, error) {
	inv, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.InvitedUserID != actorID {
		return nil, apperrors.Unauthorized("invitation is addressed to another user")
	}
	if inv.Status.Terminal() {
		return nil, apperrors.InvalidState("invitation already responded to")
	}

	respondedAt := time.Now().UTC()
	var membership *models.ProjectMember
	if status == models.InvitationAccepted {
		membership = &models.ProjectMember{
			UserID:    actorID,
			ProjectID: inv.ProjectID,
			Role:      models.MembershipRoleMember,
			CreatedAt: respondedAt,
		}
	}
	// The store re-checks PENDING atomically; a concurrent double
	// accept loses here with InvalidState.
	if err := s.store.Respond(ctx, invitationID, status, respondedAt, membership); err != nil {
		return nil, err
	}

	inv.Status = status
	inv.RespondedAt = &respondedAt
	return s.resolve(ctx, inv)
}

// PendingForUser lists PENDING invitations addressed to a user.
func (s *Service) PendingForUser(ctx context.Context, userID string) ([]*models.InvitationResponse, error) {
	invs, err := s.store.ListPendingForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ctx, invs)
}

// ForProject lists every invitation for a project, any status.
func (s *Service) ForProject(ctx context.Context, projectID string) ([]*models.InvitationResponse, error) {
	invs, err := s.store.ListForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ctx, invs)
}

func (s *Service) resolveAll(ctx context.Context, invs []*models.ProjectInvitation) ([]*models.InvitationResponse, error) {
	out := make([]*models.InvitationResponse, 0, len(invs))
	for _, inv := range invs {
		resp, err := s.resolve(ctx, inv)
		if err != nil {
			// A dangling reference should not hide the whole list.
			logger.Warn("skipping unresolvable invitation", "invitation_id", inv.ID, "error", err)
			continue
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *Service) resolve(ctx context.Context, inv *models.ProjectInvitation) (*models.InvitationResponse, error) {
	project, err := s.projects.ProjectByID(ctx, inv.ProjectID)
	if err != nil {
		return nil, err
	}
	invited, err := s.users.UserByID(ctx, inv.InvitedUserID)
	if err != nil {
		return nil, err
	}
	inviter, err := s.users.UserByID(ctx, inv.InvitedByID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(inv, project, invited, inviter), nil
}

func (s *Service) toResponse(inv *models.ProjectInvitation, project *models.Project, invited, inviter *models.User) *models.InvitationResponse {
	return &models.InvitationResponse{
		ID:              inv.ID,
		ProjectID:       project.ID,
		ProjectName:     project.Name,
		InvitedUserID:   invited.ID,
		InvitedUserName: invited.FullName,
		InvitedByID:     inviter.ID,
		InvitedByName:   inviter.FullName,
		Status:          inv.Status,
		CreatedAt:       inv.CreatedAt,
		RespondedAt:     inv.RespondedAt,
	}
}
