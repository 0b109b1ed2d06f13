// Package handlers wires the HTTP surface to the services.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/logger"
)

// respondError writes the error as JSON with the right status code.
// Application errors carry their own message; anything else becomes an
// opaque 500 so internals never leak.
func respondError(c *gin.Context, err error) {
	status := apperrors.Status(err)

	var appErr *apperrors.Error
	if errors.As(err, &appErr) && status != http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": appErr.Message})
		return
	}

	logger.Error("request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
