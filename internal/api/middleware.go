package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calmora/wellness-booking-backend/internal/auth"
	"github.com/calmora/wellness-booking-backend/internal/user"
)

// RequireAdmin ensures the authenticated principal holds the admin role.
// The role travels in the JWT claims, so no database lookup is needed here.
// It MUST be used after auth.AuthRequired middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.GetUserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if auth.GetUserRole(c) != string(user.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: admin access required"})
			return
		}

		c.Next()
	}
}
