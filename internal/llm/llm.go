package llm

import "context"

// Client abstracts multimodal model providers. Implementations make exactly
// one round trip per call and never retry.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Blob is inline binary content sent alongside the instruction.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Request is a single user-role message with structured-output settings.
type Request struct {
	Instruction string
	Document    Blob
	// Hints are extra text parts appended after the instruction.
	Hints       []string
	Schema      *Schema
	Temperature float32
}

// Usage reports provider token accounting when available.
type Usage struct {
	PromptTokens    int
	CandidateTokens int
	TotalTokens     int
}

// Response is the provider reply normalized to plain text, whatever shape
// the transport returned it in.
type Response struct {
	Text         string
	Model        string
	FinishReason string
	Usage        *Usage
}
