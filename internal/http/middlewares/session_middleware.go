package middlewares

import (
	"net/http"

	"github.com/geocoder89/careercounsel/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	flashLoginRequired = "Please log in first."
	flashUnauthorized  = "Unauthorized Access"
)

// Sessions decodes the session cookie once per request and exposes the
// username for logging.
func Sessions(m *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := m.Load(c)
		if s.Authenticated() {
			c.Set(CtxUsername, s.Username)
		}
		c.Next()
	}
}

func RequireLogin(m *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.Load(c).Authenticated() {
			redirectToLogin(c, m, "error", flashLoginRequired)
			return
		}
		c.Next()
	}
}

func RequireAdmin(m *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := m.Load(c)
		if !s.Authenticated() || !s.IsAdmin {
			redirectToLogin(c, m, "danger", flashUnauthorized)
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context, m *auth.Manager, category, message string) {
	_ = m.AddFlash(c, category, message)
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
}
