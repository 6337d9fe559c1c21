package monitoring

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports process health plus realtime connection pressure.
// It stays public and unauthenticated; load balancers probe it.
func HealthHandler(storeCheck func() error, sessionCount func() int) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		var storeErr string

		if storeCheck != nil {
			if err := storeCheck(); err != nil {
				status = "degraded"
				storeErr = err.Error()
			}
		}

		body := gin.H{
			"status":    status,
			"timestamp": time.Now().Unix(),
			"sessions":  sessionCount(),
		}
		if storeErr != "" {
			body["store_error"] = storeErr
		}
		c.JSON(code, body)
	}
}
