package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "requestID"

// requestID reuses an incoming X-Request-ID or issues a new one and echoes it.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(common.RequestIDHeaderName, id)
		c.Next()
	}
}

func (s *HTTPServer) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error(c.Request.Context(), "Server error", args...)
		case status >= http.StatusBadRequest:
			s.logger.Warn(c.Request.Context(), "Client error", args...)
		default:
			s.logger.Info(c.Request.Context(), "Request handled", args...)
		}
	}
}

func (s *HTTPServer) recovered(c *gin.Context, rec any) {
	s.logger.Error(c.Request.Context(), "Panic recovered", "request_id", c.GetString(requestIDKey), "panic", rec)
	errorResponse(c, http.StatusInternalServerError, "An internal server error occurred.")
}

// cors allows any origin and answers preflight requests directly.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, HEAD, PUT, PATCH, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, "+common.RequestIDHeaderName)
		h.Set("Access-Control-Expose-Headers", common.RequestIDHeaderName)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
