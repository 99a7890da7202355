package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/metrics"
	"github.com/yeremiapane/restaurant-tables/utils"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID      = "user_id"
	ContextRole        = "role"
	ContextToken       = "token"
	ContextTokenExpiry = "token_expiry"
)

// AuthMiddleware requires a valid `Authorization: Bearer <token>` header.
func AuthMiddleware(tm *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			metrics.AuthFailuresTotal.Inc()
			utils.AbortWithError(c, http.StatusUnauthorized, "Authorization header missing", nil)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			metrics.AuthFailuresTotal.Inc()
			utils.AbortWithError(c, http.StatusUnauthorized, "Invalid authorization format", nil)
			return
		}

		authenticate(c, tm, strings.TrimPrefix(authHeader, "Bearer "))
	}
}

// authenticate validates tokenString and stores its claims on the context.
func authenticate(c *gin.Context, tm *utils.TokenManager, tokenString string) {
	claims, err := tm.ParseToken(tokenString)
	if err != nil {
		metrics.AuthFailuresTotal.Inc()
		msg := "Invalid or expired token"
		if errors.Is(err, utils.ErrRevokedToken) {
			msg = "Token has been revoked"
		}
		utils.AbortWithError(c, http.StatusUnauthorized, msg, nil)
		return
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
	c.Set(ContextToken, tokenString)
	if claims.ExpiresAt != nil {
		c.Set(ContextTokenExpiry, claims.ExpiresAt.Time)
	}
	c.Next()
}
