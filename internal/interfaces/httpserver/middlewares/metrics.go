package middlewares

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simplesocial/social-server/internal/infrastructure/metrics"
)

// MetricsMiddleware records HTTP request metrics. Static and docs routes are
// collapsed to their prefix and statuses to their class, so the series count
// stays bounded by the route table.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		caller := "anonymous"
		if _, ok := UserFromContext(c); ok {
			caller = "authenticated"
		}
		metrics.RecordRequest(
			c.Request.Method,
			endpointLabel(c.FullPath()),
			statusClass(c.Writer.Status()),
			caller,
			time.Since(start).Seconds(),
		)
	}
}

func endpointLabel(route string) string {
	switch {
	case route == "":
		return "unmatched"
	case strings.HasPrefix(route, "/media/"):
		return "/media"
	case strings.HasPrefix(route, "/swagger/"):
		return "/swagger"
	default:
		return route
	}
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return strconv.Itoa(status)
	}
	return strconv.Itoa(status/100) + "xx"
}
