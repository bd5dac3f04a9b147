package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"medbill-amounts/internal/llm"
)

const jsonMIMEType = "application/json"

// Client implements llm.Client using the Gemini Go SDK.
type Client struct {
	genai   *genai.Client
	model   string
	timeout time.Duration
}

// NewClient constructs an SDK-backed client. A zero timeout leaves the call
// bounded only by the caller's context.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{genai: gc, model: model, timeout: timeout}, nil
}

// Close releases the underlying SDK connection.
func (c *Client) Close() error {
	return c.genai.Close()
}

// Generate sends one multimodal request. The model handle is built per call
// so concurrent requests never share generation settings.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := c.genai.GenerativeModel(c.model)
	model.SetTemperature(req.Temperature)
	model.ResponseMIMEType = jsonMIMEType
	model.ResponseSchema = toGenaiSchema(req.Schema)

	resp, err := model.GenerateContent(ctx, toGenaiParts(req)...)
	if err != nil {
		return llm.Response{}, fmt.Errorf("gemini generate: %w", err)
	}

	out := fromGenaiResponse(c.model, resp)
	logUsage(out)
	return out, nil
}

func toGenaiParts(req llm.Request) []genai.Part {
	parts := make([]genai.Part, 0, 2+len(req.Hints))
	if len(req.Document.Data) > 0 {
		parts = append(parts, genai.Blob{
			MIMEType: req.Document.MIMEType,
			Data:     req.Document.Data,
		})
	}
	parts = append(parts, genai.Text(req.Instruction))
	for _, h := range req.Hints {
		if strings.TrimSpace(h) != "" {
			parts = append(parts, genai.Text(h))
		}
	}
	return parts
}

func fromGenaiResponse(model string, resp *genai.GenerateContentResponse) llm.Response {
	out := llm.Response{Model: model}
	if resp == nil {
		return out
	}
	if len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		out.FinishReason = fmt.Sprint(cand.FinishReason)
		if cand.Content != nil {
			var b strings.Builder
			for _, p := range cand.Content.Parts {
				if text, ok := p.(genai.Text); ok {
					b.WriteString(string(text))
				}
			}
			out.Text = b.String()
		}
	}
	if meta := resp.UsageMetadata; meta != nil {
		out.Usage = &llm.Usage{
			PromptTokens:    int(meta.PromptTokenCount),
			CandidateTokens: int(meta.CandidatesTokenCount),
			TotalTokens:     int(meta.TotalTokenCount),
		}
	}
	return out
}

func toGenaiSchema(s *llm.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
		Format:      s.Format,
		Nullable:    s.Nullable,
		Enum:        append([]string(nil), s.Enum...),
		Required:    append([]string(nil), s.Required...),
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func toGenaiType(t string) genai.Type {
	switch t {
	case llm.TypeString:
		return genai.TypeString
	case llm.TypeNumber:
		return genai.TypeNumber
	case llm.TypeInteger:
		return genai.TypeInteger
	case llm.TypeBoolean:
		return genai.TypeBoolean
	case llm.TypeArray:
		return genai.TypeArray
	case llm.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

var _ llm.Client = (*Client)(nil)
