package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"medbill-amounts/internal/llm"
)

// DefaultBaseURL is the public Gemini REST endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// RESTClient implements llm.Client with direct JSON calls to the
// generateContent endpoint. It is also what the connectivity probe uses.
type RESTClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewRESTClient constructs a REST client. A zero timeout disables the
// client-side deadline.
func NewRESTClient(apiKey, model, baseURL string, timeout time.Duration) (*RESTClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &RESTClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini api error: %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini api error: %d", e.StatusCode)
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type restPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type generationConfig struct {
	Temperature      *float32    `json:"temperature,omitempty"`
	ResponseMIMEType string      `json:"responseMimeType,omitempty"`
	ResponseSchema   *llm.Schema `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []restContent     `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      *restContent `json:"content"`
		FinishReason string       `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends one structured-output request and normalizes the reply.
func (c *RESTClient) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	parts := make([]restPart, 0, 2+len(req.Hints))
	if len(req.Document.Data) > 0 {
		parts = append(parts, restPart{InlineData: &inlineData{
			MIMEType: req.Document.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(req.Document.Data),
		}})
	}
	parts = append(parts, restPart{Text: req.Instruction})
	for _, h := range req.Hints {
		if strings.TrimSpace(h) != "" {
			parts = append(parts, restPart{Text: h})
		}
	}

	temp := req.Temperature
	body := generateRequest{
		Contents: []restContent{{Role: "user", Parts: parts}},
		GenerationConfig: &generationConfig{
			Temperature:      &temp,
			ResponseMIMEType: jsonMIMEType,
			ResponseSchema:   req.Schema,
		},
	}

	raw, err := c.post(ctx, body)
	if err != nil {
		return llm.Response{}, err
	}

	out, err := parseGenerateResponse(c.model, raw)
	if err != nil {
		return llm.Response{}, err
	}
	logUsage(out)
	return out, nil
}

// Probe sends a plain text prompt and returns the raw response body.
func (c *RESTClient) Probe(ctx context.Context, prompt string) ([]byte, error) {
	body := generateRequest{
		Contents: []restContent{{Parts: []restPart{{Text: prompt}}}},
	}
	return c.post(ctx, body)
}

func (c *RESTClient) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
}

func (c *RESTClient) post(ctx context.Context, body generateRequest) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("gemini request timeout: %w", err)
		}
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gemini response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: raw}
		var env errorEnvelope
		if json.Unmarshal(raw, &env) == nil && env.Error != nil {
			apiErr.Status = env.Error.Status
			apiErr.Message = env.Error.Message
		}
		return nil, apiErr
	}
	return raw, nil
}

func parseGenerateResponse(model string, raw []byte) (llm.Response, error) {
	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return llm.Response{}, fmt.Errorf("gemini response parse: %w", err)
	}

	out := llm.Response{Model: model}
	if parsed.ModelVersion != "" {
		out.Model = parsed.ModelVersion
	}
	if len(parsed.Candidates) > 0 {
		cand := parsed.Candidates[0]
		out.FinishReason = cand.FinishReason
		if cand.Content != nil {
			var b strings.Builder
			for _, p := range cand.Content.Parts {
				b.WriteString(p.Text)
			}
			out.Text = b.String()
		}
	}
	if meta := parsed.UsageMetadata; meta != nil {
		out.Usage = &llm.Usage{
			PromptTokens:    meta.PromptTokenCount,
			CandidateTokens: meta.CandidatesTokenCount,
			TotalTokens:     meta.TotalTokenCount,
		}
	}
	return out, nil
}

var _ llm.Client = (*RESTClient)(nil)
