package respond

import (
	"github.com/gin-gonic/gin"

	"medbill-amounts/internal/shared/telemetry"
)

// StatusError is the status value carried by every failure body.
const StatusError = "error"

// ErrorResponse is the uniform failure envelope.
type ErrorResponse struct {
	Status         string  `json:"status"`
	Reason         string  `json:"reason"`
	RawModelOutput *string `json:"raw_model_output,omitempty"`
}

// Error sends the failure envelope and aborts the chain.
func Error(c *gin.Context, status int, reason string) {
	write(c, status, ErrorResponse{Status: StatusError, Reason: reason})
}

// ErrorWithRaw sends the failure envelope including the model's raw output.
// raw is always present in the body, even when empty.
func ErrorWithRaw(c *gin.Context, status int, reason, raw string) {
	write(c, status, ErrorResponse{Status: StatusError, Reason: reason, RawModelOutput: &raw})
}

func write(c *gin.Context, status int, body ErrorResponse) {
	fields := map[string]any{
		"status":     status,
		"reason":     body.Reason,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if body.RawModelOutput != nil {
		fields["raw_model_output_bytes"] = len(*body.RawModelOutput)
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, body)
}
