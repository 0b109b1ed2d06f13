package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intellimanage/platform/internal/authz"
	"github.com/intellimanage/platform/internal/middleware"
	"github.com/intellimanage/platform/internal/workflow"
)

// InvitationHandler handles the invitation workflow endpoints.
type InvitationHandler struct {
	workflow *workflow.Service
	projects *ProjectHandler
	authz    *authz.Authorizer
}

// NewInvitationHandler creates a new InvitationHandler
func NewInvitationHandler(wf *workflow.Service, projects *ProjectHandler, az *authz.Authorizer) *InvitationHandler {
	return &InvitationHandler{workflow: wf, projects: projects, authz: az}
}

// Send handles POST /api/projects/:id/invitations
func (h *InvitationHandler) Send(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "invitation", "send"); err != nil {
		respondError(c, err)
		return
	}
	if _, ok := h.projects.requireProjectOwner(c, user, c.Param("id")); !ok {
		return
	}

	var input struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.UserID == "" && input.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId or email is required"})
		return
	}

	var err error
	var resp any
	if input.UserID != "" {
		resp, err = h.workflow.Send(c.Request.Context(), c.Param("id"), input.UserID, user.ID)
	} else {
		resp, err = h.workflow.SendByEmail(c.Request.Context(), c.Param("id"), input.Email, user.ID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListForProject handles GET /api/projects/:id/invitations
func (h *InvitationHandler) ListForProject(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if _, ok := h.projects.requireProjectOwner(c, user, c.Param("id")); !ok {
		return
	}

	invs, err := h.workflow.ForProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invs)
}

// ListMine handles GET /api/invitations/me
func (h *InvitationHandler) ListMine(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}

	invs, err := h.workflow.PendingForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invs)
}

// Accept handles POST /api/invitations/:id/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "invitation", "respond"); err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.workflow.Accept(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reject handles POST /api/invitations/:id/reject
func (h *InvitationHandler) Reject(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "invitation", "respond"); err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.workflow.Reject(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
