package middleware

import (
	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/google/uuid"   // Request id generation
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "requestID"

// RequestID reuses the caller's X-Request-ID or generates one, and echoes it
// back on the response
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader) // Incoming id, if any
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString() // Generate a fresh id
		}
		c.Set(RequestIDKey, reqID)       // Store for handlers and logs
		c.Header(RequestIDHeader, reqID) // Echo to the client
		c.Next()                         // Proceed to the next handler
	}
}

// GetRequestID returns the request id stored by RequestID, or ""
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
