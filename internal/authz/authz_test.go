package authz

import (
	"testing"

	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/models"
)

func TestRoleCapabilities(t *testing.T) {
	az, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	founder := &models.User{ID: "u1", Role: models.RoleFounder}
	employee := &models.User{ID: "u2", Role: models.RoleEmployee}

	tests := []struct {
		name     string
		user     *models.User
		resource string
		action   string
		want     bool
	}{
		{"founder creates sprint", founder, "sprint", "create", true},
		{"founder sends invitation", founder, "invitation", "send", true},
		{"founder inherits task create", founder, "task", "create", true},
		{"founder inherits assistant use", founder, "assistant", "use", true},
		{"employee creates task", employee, "task", "create", true},
		{"employee responds to invitation", employee, "invitation", "respond", true},
		{"employee cannot create sprint", employee, "sprint", "create", false},
		{"employee cannot delete project", employee, "project", "delete", false},
		{"employee cannot send invitation", employee, "invitation", "send", false},
		{"employee cannot remove member", employee, "member", "remove", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := az.Can(tt.user, tt.resource, tt.action)
			if err != nil {
				t.Fatalf("Can returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Can(%s, %s, %s) = %v, want %v", tt.user.Role, tt.resource, tt.action, got, tt.want)
			}
		})
	}
}

func TestRequireDeniesWithUnauthorized(t *testing.T) {
	az, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	employee := &models.User{ID: "u2", Role: models.RoleEmployee}

	err = az.Require(employee, "sprint", "delete")
	if err == nil {
		t.Fatal("Require allowed an employee to delete a sprint")
	}
	if !apperrors.IsKind(err, apperrors.KindUnauthorized) {
		t.Errorf("Require error kind = %v, want Unauthorized", err)
	}

	if err := az.Require(employee, "task", "update"); err != nil {
		t.Errorf("Require denied an employee task update: %v", err)
	}
}
