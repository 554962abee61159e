package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"venuehouse/internal/pkg/response"
)

// RequireRole ensures the authenticated staff user carries the role.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		if role.(string) != requiredRole {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// ManagerOnly guards the endpoints that change money or staff accounts.
func ManagerOnly() gin.HandlerFunc {
	return RequireRole("manager")
}
