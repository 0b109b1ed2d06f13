package workflow

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/models"
)

// fakeStore is an in-memory InvitationStore with the same atomicity
// contract as the Postgres implementation.
type fakeStore struct {
	mu          sync.Mutex
	invitations map[string]*models.ProjectInvitation
	memberships map[string]models.ProjectMember // key: userID|projectID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		invitations: make(map[string]*models.ProjectInvitation),
		memberships: make(map[string]models.ProjectMember),
	}
}

func memberKey(userID, projectID string) string { return userID + "|" + projectID }

func (f *fakeStore) GetInvitation(_ context.Context, id string) (*models.ProjectInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[id]
	if !ok {
		return nil, apperrors.NotFound("invitation not found")
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeStore) HasPending(_ context.Context, projectID, invitedUserID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invitations {
		if inv.ProjectID == projectID && inv.InvitedUserID == invitedUserID && inv.Status == models.InvitationPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateInvitation(_ context.Context, inv *models.ProjectInvitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *inv
	f.invitations[inv.ID] = &cp
	return nil
}

func (f *fakeStore) Respond(_ context.Context, id string, status models.InvitationStatus, respondedAt time.Time, membership *models.ProjectMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[id]
	if !ok {
		return apperrors.NotFound("invitation not found")
	}
	if inv.Status != models.InvitationPending {
		return apperrors.InvalidState("invitation already responded to")
	}
	inv.Status = status
	inv.RespondedAt = &respondedAt
	if membership != nil {
		key := memberKey(membership.UserID, membership.ProjectID)
		if _, exists := f.memberships[key]; !exists {
			f.memberships[key] = *membership
		}
	}
	return nil
}

func (f *fakeStore) ListPendingForUser(_ context.Context, userID string) ([]*models.ProjectInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ProjectInvitation
	for _, inv := range f.invitations {
		if inv.InvitedUserID == userID && inv.Status == models.InvitationPending {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) ListForProject(_ context.Context, projectID string) ([]*models.ProjectInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ProjectInvitation
	for _, inv := range f.invitations {
		if inv.ProjectID == projectID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	mu    sync.Mutex
	users map[string]*models.User // by ID
}

func (f *fakeDirectory) UserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return u, nil
}

func (f *fakeDirectory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeDirectory) EnsureUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	u := &models.User{ID: uuid.New().String(), Email: email, FullName: email, Role: models.RoleEmployee}
	f.users[u.ID] = u
	return u, nil
}

type fakeProjects struct{ projects map[string]*models.Project }

func (f *fakeProjects) ProjectByID(_ context.Context, id string) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, apperrors.NotFound("project not found")
	}
	return p, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *recordingNotifier) Send(to, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, to+": "+subject)
}

func newTestService() (*Service, *fakeStore, *fakeDirectory, *recordingNotifier) {
	store := newFakeStore()
	dir := &fakeDirectory{users: map[string]*models.User{
		"founder": {ID: "founder", Email: "founder@example.com", FullName: "Fran Founder", Role: models.RoleFounder},
		"emp":     {ID: "emp", Email: "emp@example.com", FullName: "Evan Employee", Role: models.RoleEmployee},
	}}
	projects := &fakeProjects{projects: map[string]*models.Project{
		"p1": {ID: "p1", Name: "Apollo", FounderID: "founder"},
	}}
	notifier := &recordingNotifier{}
	return NewService(store, dir, projects, notifier), store, dir, notifier
}

func TestSend_CreatesPendingAndNotifies(t *testing.T) {
	svc, store, _, notifier := newTestService()
	ctx := context.Background()

	resp, err := svc.Send(ctx, "p1", "emp", "founder")
	if err != nil {
		t.Fatalf("Send = %v, want nil", err)
	}
	if resp.Status != models.InvitationPending {
		t.Errorf("Status = %s, want PENDING", resp.Status)
	}
	if resp.RespondedAt != nil {
		t.Errorf("RespondedAt = %v, want nil", resp.RespondedAt)
	}
	if resp.ProjectName != "Apollo" || resp.InvitedUserName != "Evan Employee" {
		t.Errorf("resolved names = %q/%q", resp.ProjectName, resp.InvitedUserName)
	}
	if len(store.invitations) != 1 {
		t.Errorf("stored invitations = %d, want 1", len(store.invitations))
	}
	if len(notifier.sent) != 1 || !strings.HasPrefix(notifier.sent[0], "emp@example.com") {
		t.Errorf("notifications = %v, want one to emp@example.com", notifier.sent)
	}
}

func TestSend_DuplicatePendingConflicts(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Send(ctx, "p1", "emp", "founder"); err != nil {
		t.Fatalf("first Send = %v, want nil", err)
	}
	_, err := svc.Send(ctx, "p1", "emp", "founder")
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("second Send = %v, want Conflict", err)
	}
}

func TestSend_UnknownReferences(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Send(ctx, "missing", "emp", "founder"); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("Send with missing project = %v, want NotFound", err)
	}
	if _, err := svc.Send(ctx, "p1", "missing", "founder"); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("Send with missing user = %v, want NotFound", err)
	}
}

func TestSendByEmail_ProvisionsOnce(t *testing.T) {
	svc, _, dir, _ := newTestService()
	ctx := context.Background()

	resp, err := svc.SendByEmail(ctx, "p1", "new@example.com", "founder")
	if err != nil {
		t.Fatalf("SendByEmail = %v, want nil", err)
	}
	provisioned, err := dir.UserByEmail(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("provisioned user missing: %v", err)
	}
	if provisioned.Role != models.RoleEmployee {
		t.Errorf("provisioned role = %s, want EMPLOYEE", provisioned.Role)
	}
	if resp.InvitedUserID != provisioned.ID {
		t.Errorf("InvitedUserID = %s, want %s", resp.InvitedUserID, provisioned.ID)
	}

	// An existing account is reused, never overwritten.
	again, err := svc.SendByEmail(ctx, "p1", "emp@example.com", "founder")
	if err != nil {
		t.Fatalf("SendByEmail existing = %v, want nil", err)
	}
	if again.InvitedUserID != "emp" {
		t.Errorf("InvitedUserID = %s, want emp", again.InvitedUserID)
	}
}

func TestAccept_Lifecycle(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	sent, err := svc.Send(ctx, "p1", "emp", "founder")
	if err != nil {
		t.Fatalf("Send = %v", err)
	}

	resp, err := svc.Accept(ctx, sent.ID, "emp")
	if err != nil {
		t.Fatalf("Accept = %v, want nil", err)
	}
	if resp.Status != models.InvitationAccepted {
		t.Errorf("Status = %s, want ACCEPTED", resp.Status)
	}
	if resp.RespondedAt == nil {
		t.Error("RespondedAt = nil, want set")
	}
	m, ok := store.memberships[memberKey("emp", "p1")]
	if !ok {
		t.Fatal("membership not created on accept")
	}
	if m.Role != models.MembershipRoleMember {
		t.Errorf("membership role = %s, want MEMBER", m.Role)
	}

	// Second accept fails InvalidState and leaves one membership.
	if _, err := svc.Accept(ctx, sent.ID, "emp"); !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("second Accept = %v, want InvalidState", err)
	}
	if len(store.memberships) != 1 {
		t.Errorf("memberships = %d, want 1", len(store.memberships))
	}
}

func TestAccept_ExistingMembershipNotDuplicated(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	existing := models.ProjectMember{UserID: "emp", ProjectID: "p1", Role: "ADMIN"}
	store.memberships[memberKey("emp", "p1")] = existing

	sent, _ := svc.Send(ctx, "p1", "emp", "founder")
	if _, err := svc.Accept(ctx, sent.ID, "emp"); err != nil {
		t.Fatalf("Accept = %v, want nil", err)
	}
	if len(store.memberships) != 1 {
		t.Fatalf("memberships = %d, want 1", len(store.memberships))
	}
	if got := store.memberships[memberKey("emp", "p1")]; got.Role != "ADMIN" {
		t.Errorf("existing membership overwritten: role = %s, want ADMIN", got.Role)
	}
}

func TestAccept_WrongActorUnauthorized(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	sent, _ := svc.Send(ctx, "p1", "emp", "founder")
	if _, err := svc.Accept(ctx, sent.ID, "founder"); !apperrors.IsKind(err, apperrors.KindUnauthorized) {
		t.Fatalf("Accept by wrong actor = %v, want Unauthorized", err)
	}
}

func TestAccept_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	if _, err := svc.Accept(context.Background(), "missing", "emp"); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("Accept missing = %v, want NotFound", err)
	}
}

func TestReject_NoMembership(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	sent, _ := svc.Send(ctx, "p1", "emp", "founder")
	resp, err := svc.Reject(ctx, sent.ID, "emp")
	if err != nil {
		t.Fatalf("Reject = %v, want nil", err)
	}
	if resp.Status != models.InvitationRejected {
		t.Errorf("Status = %s, want REJECTED", resp.Status)
	}
	if len(store.memberships) != 0 {
		t.Errorf("memberships = %d, want 0", len(store.memberships))
	}
	// Terminal: accepting afterwards is InvalidState.
	if _, err := svc.Accept(ctx, sent.ID, "emp"); !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("Accept after Reject = %v, want InvalidState", err)
	}
}

func TestQueries(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	sent, _ := svc.Send(ctx, "p1", "emp", "founder")

	mine, err := svc.PendingForUser(ctx, "emp")
	if err != nil || len(mine) != 1 {
		t.Fatalf("PendingForUser = %v, %v; want 1 invitation", mine, err)
	}

	if _, err := svc.Accept(ctx, sent.ID, "emp"); err != nil {
		t.Fatalf("Accept = %v", err)
	}

	mine, _ = svc.PendingForUser(ctx, "emp")
	if len(mine) != 0 {
		t.Errorf("PendingForUser after accept = %d, want 0", len(mine))
	}

	all, err := svc.ForProject(ctx, "p1")
	if err != nil || len(all) != 1 {
		t.Fatalf("ForProject = %v, %v; want 1 invitation", all, err)
	}
	if all[0].Status != models.InvitationAccepted {
		t.Errorf("ForProject status = %s, want ACCEPTED", all[0].Status)
	}
}
