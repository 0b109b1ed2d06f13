package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/authz"
	"github.com/intellimanage/platform/internal/middleware"
	"github.com/intellimanage/platform/internal/models"
	"github.com/intellimanage/platform/internal/services"
)

// ProjectHandler handles project CRUD and membership endpoints.
type ProjectHandler struct {
	projects *services.ProjectService
	users    *services.UserService
	authz    *authz.Authorizer
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projects *services.ProjectService, users *services.UserService, az *authz.Authorizer) *ProjectHandler {
	return &ProjectHandler{projects: projects, users: users, authz: az}
}

// requireProjectAccess loads the project and verifies the user can see
// it.
func (h *ProjectHandler) requireProjectAccess(c *gin.Context, user *models.User, projectID string) (*models.Project, bool) {
	project, err := h.projects.ProjectByID(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	member, err := h.projects.IsMember(c.Request.Context(), user.ID, projectID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !member {
		respondError(c, apperrors.Unauthorized("you are not a member of this project"))
		return nil, false
	}
	return project, true
}

// requireProjectOwner additionally verifies the user founded the
// project.
func (h *ProjectHandler) requireProjectOwner(c *gin.Context, user *models.User, projectID string) (*models.Project, bool) {
	project, ok := h.requireProjectAccess(c, user, projectID)
	if !ok {
		return nil, false
	}
	if project.FounderID != user.ID {
		respondError(c, apperrors.Unauthorized("only the project founder can do this"))
		return nil, false
	}
	return project, true
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "project", "create"); err != nil {
		respondError(c, err)
		return
	}

	var input services.CreateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.Create(c.Request.Context(), user.ID, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project.ToResponse(user.FullName))
}

// List handles GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}

	projects, err := h.projects.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]*models.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ToResponse(h.users.DisplayName(c.Request.Context(), &p.FounderID)))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	project, ok := h.requireProjectAccess(c, user, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, project.ToResponse(h.users.DisplayName(c.Request.Context(), &project.FounderID)))
}

// Update handles PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "project", "update"); err != nil {
		respondError(c, err)
		return
	}
	if _, ok := h.requireProjectOwner(c, user, c.Param("id")); !ok {
		return
	}

	var input services.UpdateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project.ToResponse(h.users.DisplayName(c.Request.Context(), &project.FounderID)))
}

// Delete handles DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "project", "delete"); err != nil {
		respondError(c, err)
		return
	}
	if _, ok := h.requireProjectOwner(c, user, c.Param("id")); !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}

// Members handles GET /api/projects/:id/members
func (h *ProjectHandler) Members(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if _, ok := h.requireProjectAccess(c, user, c.Param("id")); !ok {
		return
	}

	members, err := h.projects.Members(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// RemoveMember handles DELETE /api/projects/:id/members/:userId
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "member", "remove"); err != nil {
		respondError(c, err)
		return
	}
	if _, ok := h.requireProjectOwner(c, user, c.Param("id")); !ok {
		return
	}

	if err := h.projects.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}
