package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intellimanage/platform/internal/ai"
	"github.com/intellimanage/platform/internal/authz"
	"github.com/intellimanage/platform/internal/middleware"
)

// AssistantHandler proxies prompts to the hosted model. The per-user
// rate guard runs as middleware in front of this handler.
type AssistantHandler struct {
	client *ai.Client
	authz  *authz.Authorizer
}

// NewAssistantHandler creates a new AssistantHandler
func NewAssistantHandler(client *ai.Client, az *authz.Authorizer) *AssistantHandler {
	return &AssistantHandler{client: client, authz: az}
}

// Generate handles POST /api/assistant
func (h *AssistantHandler) Generate(c *gin.Context) {
	user, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	if err := h.authz.Require(user, "assistant", "use"); err != nil {
		respondError(c, err)
		return
	}

	var input struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text, err := h.client.Generate(c.Request.Context(), input.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}
