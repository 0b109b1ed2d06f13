package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/intellimanage/platform/internal/auth"
	"github.com/intellimanage/platform/internal/models"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "session_token"

const (
	userContextKey  = "user"
	tokenContextKey = "session_token"
)

// SessionToken extracts the session token from the cookie or the
// Authorization bearer header.
func SessionToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// AuthMiddleware resolves the session token to a user and stores both
// in the request context. Requests without a valid session proceed
// anonymously; RequireAuth guards the endpoints that need a user.
func AuthMiddleware(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token != "" {
			if user, err := authService.ValidateSession(c.Request.Context(), token); err == nil {
				c.Set(userContextKey, user)
				c.Set(tokenContextKey, token)
			}
		}
		c.Next()
	}
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// TokenFromContext returns the validated session token, if any.
func TokenFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(tokenContextKey)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}

// RequireAuth returns the authenticated user or aborts with 401.
func RequireAuth(c *gin.Context) (*models.User, bool) {
	user, ok := UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		c.Abort()
		return nil, false
	}
	return user, true
}
