package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
)

// ErrorHandler converts errors collected via c.Error into the standard
// error response. Handlers report failures through c.Error and return;
// this middleware picks the status code from the error's mark.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			log.Errorw("request failed",
				"path", c.Request.URL.Path,
				"status", status,
				"error", err,
			)
		}

		c.AbortWithStatusJSON(status, ierr.NewErrorResponse(err))
	}
}

func statusFromError(err error) int {
	switch {
	case ierr.IsValidation(err):
		return http.StatusBadRequest
	case ierr.IsNotFound(err) || ierr.IsPriceNotFound(err):
		return http.StatusNotFound
	case ierr.IsAlreadyExists(err):
		return http.StatusConflict
	case ierr.IsPermissionDenied(err):
		return http.StatusForbidden
	case ierr.IsPaymentFailed(err):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
