package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/authz"
	"github.com/intellimanage/platform/internal/middleware"
	"github.com/intellimanage/platform/internal/models"
	"github.com/intellimanage/platform/internal/services"
	"github.com/intellimanage/platform/internal/store"
)

// CommentHandler handles task comments.
type CommentHandler struct {
	comments *store.CommentStore
	tasks    *services.TaskService
	users    *services.UserService
	projects *ProjectHandler
	authz    *authz.Authorizer
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *store.CommentStore, tasks *services.TaskService, users *services.UserService, projects *ProjectHandler, az *authz.Authorizer) *CommentHandler {
	return &CommentHandler{comments: comments, tasks: tasks, users: users, projects: projects, authz: az}
}

func (h *CommentHandler) requireTask(c *gin.Context, taskID string) (*models.User, *models.Task, bool) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return nil, nil, false
	}
	task, err := h.tasks.TaskByID(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	if _, ok := h.projects.requireProjectAccess(c, user, task.ProjectID); !ok {
		return nil, nil, false
	}
	return user, task, true
}

// Create handles POST /api/tasks/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	user, task, ok := h.requireTask(c, c.Param("id"))
	if !ok {
		return
	}
	if err := h.authz.Require(user, "comment", "create"); err != nil {
		respondError(c, err)
		return
	}

	var input struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		TaskID:    task.ID,
		AuthorID:  user.ID,
		Body:      input.Body,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.comments.Create(c.Request.Context(), comment); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// List handles GET /api/tasks/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	_, task, ok := h.requireTask(c, c.Param("id"))
	if !ok {
		return
	}

	comments, err := h.comments.ListByTask(c.Request.Context(), task.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]*models.CommentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, &models.CommentResponse{
			ID:         cm.ID,
			TaskID:     cm.TaskID,
			AuthorID:   cm.AuthorID,
			AuthorName: h.users.DisplayName(c.Request.Context(), &cm.AuthorID),
			Body:       cm.Body,
			CreatedAt:  cm.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "comment", "delete"); err != nil {
		respondError(c, err)
		return
	}

	comment, err := h.comments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if comment.AuthorID != user.ID {
		respondError(c, apperrors.Unauthorized("only the author can delete a comment"))
		return
	}

	if err := h.comments.Delete(c.Request.Context(), comment.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
