package amounts

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medbill-amounts/internal/shared/metrics"
	"medbill-amounts/internal/shared/server/respond"
)

const (
	formField = "document"

	DefaultMaxUploadBytes = 20 << 20

	reasonNoDocument   = "No document file uploaded."
	reasonTooLarge     = "Document exceeds the upload size limit."
	reasonEmptyOutput  = "Model returned an empty response."
	reasonInvalidJSON  = "Invalid JSON returned by model."
	reasonInternalFail = "Internal processing error: "
)

// Handler exposes the extraction endpoint.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler. A non-positive limit uses DefaultMaxUploadBytes.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches the extraction route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/detect-amounts", h.detect)
}

func (h *Handler) detect(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile(formField)
	if err != nil {
		if isTooLarge(err) {
			fail(c, metrics.OutcomeTooLarge, http.StatusRequestEntityTooLarge, reasonTooLarge)
			return
		}
		fail(c, metrics.OutcomeMissingDocument, http.StatusBadRequest, reasonNoDocument)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		fail(c, metrics.OutcomeInternalError, http.StatusInternalServerError, reasonInternalFail+err.Error())
		return
	}

	ctx := c.Request.Context()
	doc, err := h.Svc.Stage(ctx, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	_ = file.Close()
	if err != nil {
		fail(c, metrics.OutcomeInternalError, http.StatusInternalServerError, reasonInternalFail+err.Error())
		return
	}
	defer func() {
		_ = h.Svc.Discard(ctx, doc)
	}()

	c.Set("documentKey", doc.Key)
	c.Set("documentMimeType", doc.MIMEType)

	result, err := h.Svc.Detect(ctx, doc)
	if err != nil {
		var invalid *InvalidJSONError
		switch {
		case errors.Is(err, ErrNoDocument):
			fail(c, metrics.OutcomeMissingDocument, http.StatusBadRequest, reasonNoDocument)
		case errors.Is(err, ErrEmptyResponse):
			fail(c, metrics.OutcomeEmptyResponse, http.StatusInternalServerError, reasonEmptyOutput)
		case errors.As(err, &invalid):
			setOutcome(c, metrics.OutcomeInvalidJSON)
			respond.ErrorWithRaw(c, http.StatusInternalServerError, reasonInvalidJSON, invalid.Raw)
		default:
			fail(c, metrics.OutcomeInternalError, http.StatusInternalServerError, reasonInternalFail+err.Error())
		}
		return
	}

	setOutcome(c, metrics.OutcomeOK)
	respond.RawJSON(c, http.StatusOK, result)
}

func fail(c *gin.Context, outcome string, status int, reason string) {
	setOutcome(c, outcome)
	respond.Error(c, status, reason)
}

func setOutcome(c *gin.Context, outcome string) {
	c.Set("extractionOutcome", outcome)
	metrics.IncExtraction(outcome)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
