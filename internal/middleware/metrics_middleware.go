package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestRecorder receives one observation per finished request.
type RequestRecorder interface {
	RecordHTTPRequest(method, route string, status int, d time.Duration)
}

// MetricsMiddleware records request counts and latency by route template.
func MetricsMiddleware(recorder RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			// 매칭되지 않은 경로는 하나로 묶는다
			route = "unmatched"
		}
		recorder.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
