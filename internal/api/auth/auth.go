// Package auth carries the request identity through the gin context. The
// service sits behind a gateway that authenticates callers and forwards
// their identity in headers; nothing here verifies credentials.
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Identity headers set by the upstream gateway
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Known roles
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

const (
	ctxUserID   = "auth.user_id"
	ctxUserRole = "auth.user_role"
)

// Identity extracts the caller's identity headers and aborts with 401 when
// the user id is missing
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		role := c.GetHeader(HeaderUserRole)
		if role == "" {
			role = RoleViewer
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxUserRole, role)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the caller holds one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// UserID returns the authenticated caller's id
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// Role returns the caller's role, defaulting to viewer
func Role(c *gin.Context) string {
	if role := c.GetString(ctxUserRole); role != "" {
		return role
	}
	return RoleViewer
}

// IsAdmin reports whether the caller holds the admin role
func IsAdmin(c *gin.Context) bool {
	return Role(c) == RoleAdmin
}
