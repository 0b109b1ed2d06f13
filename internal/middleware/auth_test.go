package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/intellimanage/platform/internal/models"
)

func TestSessionTokenFromCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})

	if got := SessionToken(c); got != "cookie-token" {
		t.Errorf("SessionToken = %q, want %q", got, "cookie-token")
	}
}

func TestSessionTokenFromBearerHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer header-token")

	if got := SessionToken(c); got != "header-token" {
		t.Errorf("SessionToken = %q, want %q", got, "header-token")
	}
}

func TestSessionTokenCookieWinsOverHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	c.Request.Header.Set("Authorization", "Bearer header-token")

	if got := SessionToken(c); got != "cookie-token" {
		t.Errorf("SessionToken = %q, want %q", got, "cookie-token")
	}
}

func TestRequireAuthWithoutUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	user, ok := RequireAuth(c)
	if ok || user != nil {
		t.Errorf("RequireAuth = (%v, %v), want (nil, false)", user, ok)
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if !c.IsAborted() {
		t.Error("RequireAuth did not abort the request")
	}
}

func TestRequireAuthWithUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	want := &models.User{ID: "u1", Role: models.RoleFounder}
	c.Set("user", want)

	got, ok := RequireAuth(c)
	if !ok || got != want {
		t.Errorf("RequireAuth = (%v, %v), want the stored user", got, ok)
	}
}
