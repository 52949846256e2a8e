package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

const snippetLimit = 160

// ExtractJSON recovers the JSON object from model text that may be wrapped
// in prose or code fences. It parses the span from the first '{' to the last
// '}' and falls back to the whole text.
//
// The slice is a heuristic: a string value containing '}' followed by
// trailing prose containing '{' can still defeat it.
func ExtractJSON(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if obj, err := decodeObject(text[start : end+1]); err == nil {
			return obj, nil
		}
	}

	obj, err := decodeObject(text)
	if err != nil {
		return nil, &ParseError{
			Snippet: summarizePayloadSnippet(text),
			Content: text,
			Cause:   err,
		}
	}
	return obj, nil
}

func decodeObject(s string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level JSON value is %s, not an object", jsonKind(v))
	}
	return obj, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func summarizePayloadSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	runes := []rune(clean)
	if len(runes) > snippetLimit {
		clean = string(runes[:snippetLimit]) + "..."
	}
	return clean
}
