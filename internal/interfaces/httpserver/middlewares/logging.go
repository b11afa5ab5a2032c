package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/simplesocial/social-server/internal/infrastructure/logger"
)

// LoggingMiddleware logs HTTP requests with OpenTelemetry trace context.
// Client addresses and query strings pass through pii first.
func LoggingMiddleware(log zerolog.Logger, pii *logger.Sanitizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		logEvent := log.Info()
		if statusCode >= 500 {
			logEvent = log.Error()
		} else if statusCode >= 400 {
			logEvent = log.Warn()
		}

		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			logEvent = logEvent.
				Str("trace_id", span.SpanContext().TraceID().String()).
				Str("span_id", span.SpanContext().SpanID().String())
		}

		if requestID := RequestIDFromContext(c); requestID != "" {
			logEvent = logEvent.Str("request_id", requestID)
		}
		if u, ok := UserFromContext(c); ok {
			logEvent = logEvent.Str("user_id", u.ID)
		}

		logEvent.
			Str("client_ip", pii.Sanitize(c.ClientIP())).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", pii.Sanitize(raw)).
			Int("status", statusCode).
			Dur("latency", latency).
			Str("user_agent", c.Request.UserAgent()).
			Msg(errorMessage)
	}
}
