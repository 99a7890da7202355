package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/metrics"
	"github.com/yeremiapane/restaurant-tables/utils"
)

// WebSocketAuthMiddleware reads the token from ?token=, since browsers cannot
// set headers on a websocket handshake.
func WebSocketAuthMiddleware(tm *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			metrics.AuthFailuresTotal.Inc()
			utils.AbortWithError(c, http.StatusUnauthorized, "Token missing", nil)
			return
		}

		authenticate(c, tm, token)
	}
}
