package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intellimanage/platform/internal/activity"
	"github.com/intellimanage/platform/internal/authz"
	"github.com/intellimanage/platform/internal/middleware"
	"github.com/intellimanage/platform/internal/models"
	"github.com/intellimanage/platform/internal/services"
)

// TaskHandler handles task endpoints, including the kanban status
// patch and the per-task activity feed.
type TaskHandler struct {
	tasks    *services.TaskService
	users    *services.UserService
	projects *ProjectHandler
	recorder *activity.Recorder
	authz    *authz.Authorizer
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks *services.TaskService, users *services.UserService, projects *ProjectHandler, recorder *activity.Recorder, az *authz.Authorizer) *TaskHandler {
	return &TaskHandler{tasks: tasks, users: users, projects: projects, recorder: recorder, authz: az}
}

// Create handles POST /api/projects/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "task", "create"); err != nil {
		respondError(c, err)
		return
	}
	if _, ok := h.projects.requireProjectAccess(c, user, c.Param("id")); !ok {
		return
	}

	var input services.CreateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), c.Param("id"), user.ID, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ListByProject handles GET /api/projects/:id/tasks
func (h *TaskHandler) ListByProject(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if _, ok := h.projects.requireProjectAccess(c, user, c.Param("id")); !ok {
		return
	}

	tasks, err := h.tasks.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// ListMine handles GET /api/projects/:id/tasks/me
func (h *TaskHandler) ListMine(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if _, ok := h.projects.requireProjectAccess(c, user, c.Param("id")); !ok {
		return
	}

	tasks, err := h.tasks.ListByProjectAndAssignee(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// requireTaskAccess loads the task and verifies project membership.
func (h *TaskHandler) requireTaskAccess(c *gin.Context, user *models.User, taskID string) (*models.Task, bool) {
	task, err := h.tasks.TaskByID(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if _, ok := h.projects.requireProjectAccess(c, user, task.ProjectID); !ok {
		return nil, false
	}
	return task, true
}

// Get handles GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if _, ok := h.requireTaskAccess(c, user, c.Param("id")); !ok {
		return
	}

	resp, err := h.tasks.ResponseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update handles PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "task", "update"); err != nil {
		respondError(c, err)
		return
	}
	if _, ok := h.requireTaskAccess(c, user, c.Param("id")); !ok {
		return
	}

	var input services.UpdateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), c.Param("id"), user.ID, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateStatus handles PATCH /api/tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "task", "update"); err != nil {
		respondError(c, err)
		return
	}
	if _, ok := h.requireTaskAccess(c, user, c.Param("id")); !ok {
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.UpdateStatus(c.Request.Context(), c.Param("id"), user.ID, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "task", "delete"); err != nil {
		respondError(c, err)
		return
	}
	if _, ok := h.requireTaskAccess(c, user, c.Param("id")); !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

// Activities handles GET /api/tasks/:id/activities
func (h *TaskHandler) Activities(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if _, ok := h.requireTaskAccess(c, user, c.Param("id")); !ok {
		return
	}

	rows, err := h.recorder.ForTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]*models.ActivityResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, a.ToResponse(h.users.DisplayName(c.Request.Context(), &a.UserID)))
	}
	c.JSON(http.StatusOK, out)
}
