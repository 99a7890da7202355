package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/utils"
)

// RequireRole lets the request through only when the authenticated role is one
// of roles. It must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextRole)
		if !exists {
			utils.AbortWithError(c, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}

		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}

		utils.InfoLogger.Printf("Role %v denied on %s %s", userRole, c.Request.Method, c.FullPath())
		utils.AbortWithError(c, http.StatusForbidden, "You do not have permission", nil)
	}
}
