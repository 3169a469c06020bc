package middleware

import (
	"fmt"
	"time"

	"extmedia/internal/logger"

	"github.com/gin-gonic/gin"
)

// Logger writes one access line per request. Health and metrics scrapes are not logged.
func Logger(logger *logger.Logger) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			line := fmt.Sprintf("[%s] %s %s %d %s %s",
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.StatusCode,
				param.Latency,
				param.ClientIP,
			)
			if param.ErrorMessage != "" {
				line += " " + param.ErrorMessage
			}
			return line + "\n"
		},
		SkipPaths: []string{"/health", "/metrics"},
	})
}
