package gemini

import (
	"medbill-amounts/internal/llm"
	"medbill-amounts/internal/shared/metrics"
	"medbill-amounts/internal/shared/telemetry"
)

func logUsage(resp llm.Response) {
	fields := map[string]any{
		"model":         resp.Model,
		"finish_reason": resp.FinishReason,
		"text_bytes":    len(resp.Text),
	}
	if u := resp.Usage; u != nil {
		fields["prompt_tokens"] = u.PromptTokens
		fields["candidate_tokens"] = u.CandidateTokens
		fields["total_tokens"] = u.TotalTokens
		metrics.AddTokens(u.PromptTokens, u.CandidateTokens)
	}
	telemetry.Info("llm.response", fields)
}
