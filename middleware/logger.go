package middleware

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"homepro-server/metrics"
)

// RequestIDHeader carries the request correlation id
const RequestIDHeader = "X-Request-ID"

const contextRequestIDKey = "request_id"

// RequestID reuses the caller's X-Request-ID or generates one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(contextRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// AuditLogMiddleware logs every request once it has been served
func AuditLogMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event.
			Str("request_id", c.GetString(contextRequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("🔍 AUDIT")
	}
}

// Recovery turns a panic into a 500 envelope and logs the stack
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.Error().
			Str("request_id", c.GetString(contextRequestIDKey)).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Stack().
			Msg("💥 Panic recovered")
		abort(c, http.StatusInternalServerError, "Internal server error")
	})
}

// MetricsMiddleware records request count and latency per route template
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
