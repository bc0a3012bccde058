package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dashboard-gateway/internal/session"
	"dashboard-gateway/internal/shared/server/respond"
)

const (
	sessionIDKey = "sessionId"
	userNameKey  = "userName"
	userEmailKey = "userEmail"
)

// SessionGate guards protected routes. The expiry check is local and runs on
// every request; it is never cached across navigations. Page requests are
// redirected to the login view, API requests get a 401.
func SessionGate(store *session.Store, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		id, err := c.Cookie(cookieName)
		if err != nil || !store.Valid(id) {
			if isAPIRequest(c) {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
				return
			}
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		sess, _ := store.Get(id)
		c.Set(sessionIDKey, id)
		if sess.Claims.Name != "" {
			c.Set(userNameKey, sess.Claims.Name)
		}
		if sess.Claims.Email != "" {
			c.Set(userEmailKey, sess.Claims.Email)
		}
		c.Next()
	}
}

func isAPIRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

// SessionIDFromContext fetches the session id set by the gate.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(sessionIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserNameFromContext fetches the display name set by the gate.
func UserNameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userNameKey)
	if name, ok := val.(string); ok {
		return name
	}
	return ""
}

// UserEmailFromContext fetches the email set by the gate.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}
