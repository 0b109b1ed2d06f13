// Package authz answers capability questions with a casbin RBAC
// model. Platform roles (FOUNDER, EMPLOYEE) map to capabilities over
// resources; FOUNDER inherits everything EMPLOYEE can do.
package authz

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/casbin/casbin/v3"

	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/models"
)

//go:embed model.conf policy.csv
var policyFS embed.FS

// Authorizer wraps the casbin enforcer.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

// New builds the enforcer from the embedded model and policy. Casbin
// loads from file paths, so the embedded files are materialized into a
// temp directory first.
func New() (*Authorizer, error) {
	dir, err := os.MkdirTemp("", "intellimanage-authz-")
	if err != nil {
		return nil, fmt.Errorf("failed to create authz temp dir: %w", err)
	}

	modelPath, err := writeEmbedded(dir, "model.conf")
	if err != nil {
		return nil, err
	}
	policyPath, err := writeEmbedded(dir, "policy.csv")
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(modelPath, policyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	return &Authorizer{enforcer: enforcer}, nil
}

func writeEmbedded(dir, name string) (string, error) {
	data, err := policyFS.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read embedded %s: %w", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// Can reports whether the user's platform role grants the action on
// the resource.
func (a *Authorizer) Can(user *models.User, resource, action string) (bool, error) {
	ok, err := a.enforcer.Enforce(user.Role, resource, action)
	if err != nil {
		return false, fmt.Errorf("failed to enforce policy: %w", err)
	}
	return ok, nil
}

// Require returns Unauthorized unless the user's role grants the
// action on the resource.
func (a *Authorizer) Require(user *models.User, resource, action string) error {
	ok, err := a.Can(user, resource, action)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Unauthorized("you do not have permission to %s this %s", action, resource)
	}
	return nil
}
