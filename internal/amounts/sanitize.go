package amounts

import "strings"

// StripFences removes a leading ```json (or bare ```) fence and a trailing
// ``` fence, trimming whitespace, until nothing changes. StripFences is
// idempotent.
func StripFences(text string) string {
	out := strings.TrimSpace(text)
	for {
		next := stripOnce(out)
		if next == out {
			return out
		}
		out = next
	}
}

func stripOnce(s string) string {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}
	return strings.TrimSpace(s)
}
