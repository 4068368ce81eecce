package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextKeyRequestID is the key for the request ID in gin context
	ContextKeyRequestID = "request_id"

	requestIDHeader = "X-Request-ID"
)

// RequestID assigns each request an ID, honoring one supplied by the
// client, and echoes it in the response header
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
