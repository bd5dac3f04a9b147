package amounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"medbill-amounts/internal/extract"
	"medbill-amounts/internal/llm"
	"medbill-amounts/internal/shared/metrics"
	"medbill-amounts/internal/shared/storage/object"
	"medbill-amounts/internal/shared/telemetry"
	"medbill-amounts/internal/shared/util"
)

// DefaultMIMEType is assumed when an upload does not declare a content type.
const DefaultMIMEType = "image/jpeg"

const fallbackFileName = "document"

// Document is a staged upload. It lives only for the duration of one request.
type Document struct {
	Key         string
	FileName    string
	MIMEType    string
	SniffedMIME string
	SizeBytes   int64
}

// Service stages uploads and runs the extraction round trip.
type Service struct {
	LLM         llm.Client
	Store       object.ObjectStore
	Temperature float32
}

// Stage writes the upload to the staging store. The caller owns the returned
// document and must Discard it.
func (s *Service) Stage(ctx context.Context, fileName, declaredMIME string, r io.Reader) (Document, error) {
	if _, err := util.SanitizeFileName(fileName); err != nil {
		fileName = fallbackFileName
	}
	key, size, sniffed, err := s.Store.Save(ctx, fileName, r)
	if err != nil {
		return Document{}, fmt.Errorf("stage upload: %w", err)
	}
	return Document{
		Key:         key,
		FileName:    fileName,
		MIMEType:    resolveMIME(declaredMIME, sniffed),
		SniffedMIME: sniffed,
		SizeBytes:   size,
	}, nil
}

// Discard deletes a staged document. It ignores cancellation of ctx so that
// cleanup still runs after the client has gone away.
func (s *Service) Discard(ctx context.Context, doc Document) error {
	if doc.Key == "" {
		return nil
	}
	if err := s.Store.Delete(context.WithoutCancel(ctx), doc.Key); err != nil {
		metrics.IncCleanupFailure()
		telemetry.Warn("amounts.cleanup_failed", map[string]any{
			"document_key": doc.Key,
			"error":        err.Error(),
		})
		return fmt.Errorf("discard %s: %w", doc.Key, err)
	}
	return nil
}

// Detect sends the staged document to the model and returns its JSON reply
// unchanged. Failures are ErrEmptyResponse, *InvalidJSONError or a wrapped
// internal error.
func (s *Service) Detect(ctx context.Context, doc Document) (json.RawMessage, error) {
	if s.LLM == nil {
		return nil, errors.New("llm client not configured")
	}

	data, err := s.read(ctx, doc.Key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoDocument
	}

	req := llm.Request{
		Instruction: Instruction(),
		Document:    llm.Blob{MIMEType: doc.MIMEType, Data: data},
		Schema:      ExtractionSchema(),
		Temperature: s.Temperature,
	}
	if hint := pdfHint(ctx, doc, data); hint != "" {
		req.Hints = append(req.Hints, hint)
	}

	start := time.Now()
	resp, err := s.LLM.Generate(ctx, req)
	metrics.ObserveExtractionDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	telemetry.Info("amounts.model_reply", map[string]any{
		"document_key":  doc.Key,
		"digest":        util.Digest(data),
		"model":         resp.Model,
		"finish_reason": resp.FinishReason,
		"duration_ms":   time.Since(start).Milliseconds(),
	})

	result, err := ParseModelText(resp.Text)
	if err != nil {
		return nil, err
	}

	if err := CheckConformance(result); err != nil {
		metrics.IncSchemaDrift()
		telemetry.Warn("amounts.schema_drift", map[string]any{
			"document_key": doc.Key,
			"error":        err.Error(),
		})
	}
	return result, nil
}

// ParseModelText turns provider text into the response payload.
func ParseModelText(text string) (json.RawMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}
	cleaned := StripFences(text)
	if !json.Valid([]byte(cleaned)) {
		return nil, &InvalidJSONError{Raw: cleaned}
	}
	return json.RawMessage(cleaned), nil
}

func (s *Service) read(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open staged document: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read staged document: %w", err)
	}
	return data, nil
}

func pdfHint(ctx context.Context, doc Document, data []byte) string {
	if doc.MIMEType != extract.MIMEPDF && doc.SniffedMIME != extract.MIMEPDF {
		return ""
	}
	text, err := extract.PDFText(ctx, data)
	if err != nil {
		telemetry.Info("amounts.pdf_text_skipped", map[string]any{
			"document_key": doc.Key,
			"error":        err.Error(),
		})
		return ""
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return "Embedded text layer of the document, for reference:\n" + text
}

// resolveMIME prefers the declared type. A missing or generic declaration
// falls back to the sniffed type when it is an image or PDF, and to
// DefaultMIMEType otherwise.
func resolveMIME(declared, sniffed string) string {
	clean := baseMIME(declared)
	if clean != "" && clean != "application/octet-stream" {
		return clean
	}
	if s := baseMIME(sniffed); strings.HasPrefix(s, "image/") || s == extract.MIMEPDF {
		return s
	}
	return DefaultMIMEType
}

func baseMIME(raw string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(raw, ";")[0]))
}
