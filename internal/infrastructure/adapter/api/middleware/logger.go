package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
)

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-ID"

// Logger attaches a request-scoped logger to the request context and logs every response
func Logger(logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		reqLogger := logger.With(map[string]any{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(coreport.ContextWithLogger(c.Request.Context(), reqLogger))

		c.Next()

		statusCode := c.Writer.Status()
		fields := map[string]any{
			"status":      statusCode,
			"latency_ms":  time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
			"status_text": statusText(statusCode),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.Errors()
		}

		// the session middleware may have enriched the logger with the user id
		final := coreport.LoggerFromContext(c.Request.Context(), reqLogger)
		switch {
		case statusCode >= 500:
			final.Error("Request processed", fields)
		case statusCode >= 400:
			final.Warn("Request processed", fields)
		default:
			final.Info("Request processed", fields)
		}
	}
}

// statusText returns the text for the HTTP status code
func statusText(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "Informational"
	case code >= 200 && code < 300:
		return "Success"
	case code >= 300 && code < 400:
		return "Redirect"
	case code >= 400 && code < 500:
		return "Client Error"
	default:
		return "Server Error"
	}
}
