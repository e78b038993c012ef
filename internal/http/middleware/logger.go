package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"fleetbook/internal/pkg/logger"
)

// AccessLog writes one structured line per request.
func AccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request",
			logger.String("requestId", c.GetString(RequestIDKey)),
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("elapsed", time.Since(start)),
			logger.String("clientIp", c.ClientIP()),
		)
	}
}
