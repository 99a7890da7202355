package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindDuplicateKey, services.KindInvalidState, services.KindCapacityExceeded,
		services.KindConflict, services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondServiceError renders a service failure as {message, error?, ...details}.
// Only internal failures expose their cause.
func respondServiceError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		utils.ErrorLogger.Printf("Unexpected error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	code := statusForKind(svcErr.Kind)
	if code == http.StatusInternalServerError {
		utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, svcErr)
		utils.RespondError(c, code, svcErr.Message, svcErr.Err)
		return
	}

	if len(svcErr.Details) > 0 {
		utils.RespondMessage(c, code, svcErr.Message, svcErr.Details)
		return
	}
	utils.RespondError(c, code, svcErr.Message, nil)
}

// parseID reads a positive numeric path parameter. A malformed id answers with
// notFoundMsg, as no record can have it.
func parseID(c *gin.Context, param, notFoundMsg string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusNotFound, notFoundMsg, nil)
		return 0, false
	}
	return uint(id), true
}

// bindJSON binds the request body, answering 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}
