package llm

import (
	"strings"

	"github.com/tidwall/gjson"
)

const (
	maxErrorBodyChars = 200

	// strategyRawBody marks content taken verbatim from an undecodable body
	strategyRawBody = "raw_body"
)

// extractionStrategy names one place a provider may put a value
type extractionStrategy struct {
	Name string
	Path string
}

// Tried in order; the first non-empty match wins.
var contentStrategies = []extractionStrategy{
	{Name: "message", Path: "choices.0.message.content"},
	{Name: "delta", Path: "choices.0.delta.content"},
	{Name: "wrapped_message", Path: "data.choices.0.message.content"},
	{Name: "output_text", Path: "output_text"},
}

var errorMessageStrategies = []extractionStrategy{
	{Name: "error_object", Path: "error.message"},
	{Name: "message", Path: "message"},
	{Name: "msg", Path: "msg"},
	{Name: "error_string", Path: "error"},
}

// extractContent locates the assistant text in a raw completion body.
// A non-string content value is returned as its JSON text; an array of
// content parts is joined from the parts' "text" fields.
func extractContent(body []byte) (string, string) {
	if !gjson.ValidBytes(body) {
		return "", ""
	}
	for _, s := range contentStrategies {
		r := gjson.GetBytes(body, s.Path)
		if !r.Exists() || r.Type == gjson.Null {
			continue
		}
		var content string
		switch {
		case r.Type == gjson.String:
			content = r.String()
		case r.IsArray():
			var parts []string
			for _, part := range r.Get("#.text").Array() {
				parts = append(parts, part.String())
			}
			content = strings.Join(parts, "")
			if strings.TrimSpace(content) == "" {
				content = r.Raw
			}
		default:
			content = r.Raw
		}
		if strings.TrimSpace(content) != "" {
			return content, s.Name
		}
	}
	return "", ""
}

// extractUsage reads OpenAI-style token counts; missing fields are zero
func extractUsage(body []byte) Usage {
	usage := gjson.GetBytes(body, "usage")
	if !usage.Exists() {
		return Usage{}
	}
	return Usage{
		PromptTokens:     int(usage.Get("prompt_tokens").Int()),
		CompletionTokens: int(usage.Get("completion_tokens").Int()),
		TotalTokens:      int(usage.Get("total_tokens").Int()),
	}
}

// upstreamMessage returns the provider's own error message, or a
// truncated prefix of the raw body when it has none.
func upstreamMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, s := range errorMessageStrategies {
			r := gjson.GetBytes(body, s.Path)
			if r.Type == gjson.String && strings.TrimSpace(r.String()) != "" {
				return strings.TrimSpace(r.String())
			}
		}
	}
	return truncateString(strings.TrimSpace(string(body)), maxErrorBodyChars)
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
