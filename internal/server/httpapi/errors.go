package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/gin-gonic/gin"
)

const (
	msgNotBoolean   = "The 'accepted' field must be a boolean."
	msgUserNotFound = "User not found."
)

func errorResponse(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// handleServiceError maps error kinds to statuses. Anything unrecognised is
// logged and answered with the route's fixed message.
func (s *HTTPServer) handleServiceError(c *gin.Context, err error, internalMessage string) {
	switch {
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorDuplicateEmail):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorInvalidInput):
		errorResponse(c, http.StatusBadRequest, msgNotBoolean)
	case errors.Is(err, common.ErrorNotFound):
		errorResponse(c, http.StatusNotFound, msgUserNotFound)
	default:
		_ = c.Error(err)
		s.logger.Error(c.Request.Context(), "Unhandled internal error", "request_id", c.GetString(requestIDKey), "error", err.Error())
		errorResponse(c, http.StatusInternalServerError, internalMessage)
	}
}
