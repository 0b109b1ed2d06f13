package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intellimanage/platform/internal/middleware"
	"github.com/intellimanage/platform/internal/services"
)

// DashboardHandler serves the per-project dashboard snapshot.
type DashboardHandler struct {
	dashboards *services.DashboardService
	projects   *ProjectHandler
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboards *services.DashboardService, projects *ProjectHandler) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, projects: projects}
}

// Get handles GET /api/projects/:id/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if _, ok := h.projects.requireProjectAccess(c, user, c.Param("id")); !ok {
		return
	}

	snap, err := h.dashboards.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
