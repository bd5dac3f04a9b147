package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"medbill-amounts/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		documentKey, _ := c.Get("documentKey")
		mimeType, _ := c.Get("documentMimeType")
		outcome, _ := c.Get("extractionOutcome")

		telemetry.Info("request.complete", map[string]any{
			"request_id":   RequestIDFromContext(c),
			"method":       c.Request.Method,
			"path":         c.Request.URL.Path,
			"status":       c.Writer.Status(),
			"duration_ms":  float64(latency.Microseconds()) / 1000.0,
			"document_key": documentKey,
			"mime_type":    mimeType,
			"outcome":      outcome,
			"client_ip":    c.ClientIP(),
			"user_agent":   c.Request.UserAgent(),
		})
	}
}
