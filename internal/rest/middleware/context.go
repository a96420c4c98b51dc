package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tiffinly/tiffinly/internal/types"
)

// RequestIDMiddleware attaches a request id to the request context so
// downstream logs and audit columns can be correlated. An incoming
// X-Request-ID header wins over a generated one.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	ctx = types.SetUserID(ctx, types.DefaultUserID)
	c.Request = c.Request.WithContext(ctx)

	c.Writer.Header().Set(types.HeaderRequestID, requestID)
	c.Next()
}
