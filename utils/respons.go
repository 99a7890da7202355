package utils

import (
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// RespondJSON writes payload as-is.
func RespondJSON(c *gin.Context, code int, payload interface{}) {
	c.JSON(code, payload)
}

// RespondMessage writes {message, ...extra}.
func RespondMessage(c *gin.Context, code int, message string, extra gin.H) {
	body := gin.H{"message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(code, body)
}

// RespondError writes {message, error?}. err may be nil.
func RespondError(c *gin.Context, code int, message string, err error) {
	resp := ErrorResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(code, resp)
}

// AbortWithError is RespondError for middlewares.
func AbortWithError(c *gin.Context, code int, message string, err error) {
	RespondError(c, code, message, err)
	c.Abort()
}
