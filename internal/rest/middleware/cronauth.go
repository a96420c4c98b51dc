package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tiffinly/tiffinly/internal/config"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// CronAuthMiddleware guards the /jobs routes with the shared cron
// secret: the scheduler sends Authorization: Bearer <secret>. A missing
// server-side secret is a deployment fault, not a client error.
func CronAuthMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := cfg.Cron.Secret
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, ierr.NewErrorResponse(
				ierr.NewError("cron secret is not configured").
					WithHint("Set cron.secret in the server configuration").
					Mark(ierr.ErrInternal)))
			return
		}

		token := strings.TrimPrefix(c.GetHeader(types.HeaderAuthorization), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ierr.NewErrorResponse(
				ierr.NewError("invalid cron credentials").
					WithHint("Provide the cron bearer secret").
					Mark(ierr.ErrPermissionDenied)))
			return
		}

		c.Next()
	}
}
