package middleware

import (
	"net/http"

	"shipshape/internal/infrastructure/monitoring"

	"github.com/gin-gonic/gin"
)

// RequestMetrics feeds the request outcome counters.
func RequestMetrics(collector *monitoring.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := c.Writer.Status()
		var outcome string
		switch {
		case status == http.StatusTooManyRequests:
			outcome = "rate_limited"
			collector.RateLimited()
		case status == http.StatusUnauthorized:
			outcome = "unauthenticated"
			collector.AuthDenied("unauthenticated")
		case status == http.StatusForbidden:
			outcome = "denied"
			collector.AuthDenied("subscription")
		case status >= 500:
			outcome = "error"
		case status >= 400:
			outcome = "client_error"
		default:
			outcome = "ok"
		}

		collector.RequestObserved(route, outcome)
	}
}
