package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intellimanage/platform/internal/authz"
	"github.com/intellimanage/platform/internal/middleware"
	"github.com/intellimanage/platform/internal/models"
	"github.com/intellimanage/platform/internal/services"
)

// SprintHandler handles sprint endpoints.
type SprintHandler struct {
	sprints  *services.SprintService
	tasks    *services.TaskService
	projects *ProjectHandler
	authz    *authz.Authorizer
}

// NewSprintHandler creates a new SprintHandler
func NewSprintHandler(sprints *services.SprintService, tasks *services.TaskService, projects *ProjectHandler, az *authz.Authorizer) *SprintHandler {
	return &SprintHandler{sprints: sprints, tasks: tasks, projects: projects, authz: az}
}

// Create handles POST /api/projects/:id/sprints
func (h *SprintHandler) Create(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "sprint", "create"); err != nil {
		respondError(c, err)
		return
	}
	if _, ok := h.projects.requireProjectOwner(c, user, c.Param("id")); !ok {
		return
	}

	var input services.SprintInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sprint, err := h.sprints.Create(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toResponse(c, sprint))
}

// List handles GET /api/projects/:id/sprints
func (h *SprintHandler) List(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if _, ok := h.projects.requireProjectAccess(c, user, c.Param("id")); !ok {
		return
	}

	sprints, err := h.sprints.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]*models.SprintResponse, 0, len(sprints))
	for _, sp := range sprints {
		out = append(out, h.toResponse(c, sp))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /api/sprints/:id
func (h *SprintHandler) Get(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	sprint, err := h.sprints.SprintByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if _, ok := h.projects.requireProjectAccess(c, user, sprint.ProjectID); !ok {
		return
	}
	c.JSON(http.StatusOK, h.toResponse(c, sprint))
}

// Update handles PUT /api/sprints/:id
func (h *SprintHandler) Update(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "sprint", "update"); err != nil {
		respondError(c, err)
		return
	}
	existing, err := h.sprints.SprintByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if _, ok := h.projects.requireProjectOwner(c, user, existing.ProjectID); !ok {
		return
	}

	var input services.SprintInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sprint, err := h.sprints.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(c, sprint))
}

// Delete handles DELETE /api/sprints/:id
func (h *SprintHandler) Delete(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "sprint", "delete"); err != nil {
		respondError(c, err)
		return
	}
	existing, err := h.sprints.SprintByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if _, ok := h.projects.requireProjectOwner(c, user, existing.ProjectID); !ok {
		return
	}

	if err := h.sprints.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sprint deleted"})
}

func (h *SprintHandler) toResponse(c *gin.Context, sprint *models.Sprint) *models.SprintResponse {
	tasks, err := h.tasks.ModelsBySprint(c.Request.Context(), sprint.ID)
	if err != nil {
		tasks = nil
	}
	return h.sprints.ToResponse(c.Request.Context(), sprint, tasks)
}
