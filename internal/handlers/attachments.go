package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/intellimanage/platform/internal/authz"
	"github.com/intellimanage/platform/internal/middleware"
	"github.com/intellimanage/platform/internal/models"
	"github.com/intellimanage/platform/internal/services"
	"github.com/intellimanage/platform/internal/store"
	"github.com/intellimanage/platform/internal/storage"
)

// AttachmentHandler handles task attachment upload and download. The
// bytes go to object storage keyed by task and attachment id; the
// metadata row goes to Postgres.
type AttachmentHandler struct {
	attachments *store.AttachmentStore
	tasks       *services.TaskService
	projects    *ProjectHandler
	objects     *storage.Client
	authz       *authz.Authorizer
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachments *store.AttachmentStore, tasks *services.TaskService, projects *ProjectHandler, objects *storage.Client, az *authz.Authorizer) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments, tasks: tasks, projects: projects, objects: objects, authz: az}
}

func (h *AttachmentHandler) requireTask(c *gin.Context, taskID string) (*models.Task, bool) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return nil, false
	}
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

// Upload handles POST /api/tasks/:id/attachments
func (h *AttachmentHandler) Upload(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "attachment", "upload"); err != nil {
		respondError(c, err)
		return
	}
	task, ok := h.requireTask(c, c.Param("id"))
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	a := &models.Attachment{
		ID:          uuid.New().String(),
		TaskID:      task.ID,
		UploaderID:  user.ID,
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		CreatedAt:   time.Now().UTC(),
	}
	a.ObjectKey = "tasks/" + task.ID + "/" + a.ID

	err = h.objects.PutObject(c.Request.Context(), task.ProjectID, a.ObjectKey, file, a.Size, a.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage is not configured"})
			return
		}
		respondError(c, err)
		return
	}

	if err := h.attachments.Create(c.Request.Context(), a); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// List handles GET /api/tasks/:id/attachments
func (h *AttachmentHandler) List(c *gin.Context) {
	task, ok := h.requireTask(c, c.Param("id"))
	if !ok {
		return
	}

	out, err := h.attachments.ListByTask(c.Request.Context(), task.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Download handles GET /api/attachments/:id
func (h *AttachmentHandler) Download(c *gin.Context) {
	a, err := h.attachments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	task, ok := h.requireTask(c, a.TaskID)
	if !ok {
		return
	}

	obj, err := h.objects.GetObject(c.Request.Context(), task.ProjectID, a.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage is not configured"})
			return
		}
		respondError(c, err)
		return
	}
	defer obj.Reader.Close()

	c.Header("Content-Disposition", "attachment; filename=\""+a.FileName+"\"")
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Reader, nil)
}

// Delete handles DELETE /api/attachments/:id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "attachment", "delete"); err != nil {
		respondError(c, err)
		return
	}

	a, err := h.attachments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	task, ok := h.requireTask(c, a.TaskID)
	if !ok {
		return
	}

	// Object removal is best effort; the metadata row is the record.
	_ = h.objects.DeleteObject(c.Request.Context(), task.ProjectID, a.ObjectKey)

	if err := h.attachments.Delete(c.Request.Context(), a.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "attachment deleted"})
}
