package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"legacy-migrator/config"
)

const HeaderRequestID = "X-Request-Id"

// RequestLogging 은 요청마다 Request ID 를 보장하고, 응답까지 걸린 시간을 로깅한다.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set(HeaderRequestID, requestID)

		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		config.InfoWithFields("api_request", config.Fields{
			"request_id":  requestID,
			"method":      method,
			"path":        path,
			"query":       c.Request.URL.RawQuery,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}
