package handlers

import (
	"net/http"

	"slotbook/middleware"
	"slotbook/services/apperr"
	"slotbook/services/command"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

// StatusFor maps a failure kind to its HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func writeError(c *gin.Context, err error) {
	code, message := apperr.Public(err)
	utils.JSONError(c, StatusFor(err), code, message)
}

func badRequest(c *gin.Context, message string) {
	utils.JSONError(c, http.StatusBadRequest, apperr.ErrInvalidInput.Code, message)
}

// pathID reads a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := command.ParseID(c.Param(name))
	if err != nil {
		writeError(c, err)
		return 0, false
	}
	return id, true
}

func actor(c *gin.Context) string {
	return middleware.ActorID(c)
}
