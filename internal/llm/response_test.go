package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractContent(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantContent  string
		wantStrategy string
	}{
		{
			name:         "message",
			body:         `{"choices":[{"message":{"content":"hello"}}]}`,
			wantContent:  "hello",
			wantStrategy: "message",
		},
		{
			name:         "delta",
			body:         `{"choices":[{"delta":{"content":"partial"}}]}`,
			wantContent:  "partial",
			wantStrategy: "delta",
		},
		{
			name:         "wrapped",
			body:         `{"data":{"choices":[{"message":{"content":"inner"}}]}}`,
			wantContent:  "inner",
			wantStrategy: "wrapped_message",
		},
		{
			name:         "output_text",
			body:         `{"output_text":"flat"}`,
			wantContent:  "flat",
			wantStrategy: "output_text",
		},
		{
			name:         "content parts",
			body:         `{"choices":[{"message":{"content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}}]}`,
			wantContent:  "ab",
			wantStrategy: "message",
		},
		{
			name:         "object content returned as JSON",
			body:         `{"choices":[{"message":{"content":{"poster":{}}}}]}`,
			wantContent:  `{"poster":{}}`,
			wantStrategy: "message",
		},
		{
			name:         "empty message falls through",
			body:         `{"choices":[{"message":{"content":""}}],"output_text":"later"}`,
			wantContent:  "later",
			wantStrategy: "output_text",
		},
		{
			name: "nothing",
			body: `{"choices":[]}`,
		},
		{
			name: "invalid json",
			body: `not json`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, strategy := extractContent([]byte(tt.body))
			assert.Equal(t, tt.wantContent, content)
			assert.Equal(t, tt.wantStrategy, strategy)
		})
	}
}

func TestExtractUsage(t *testing.T) {
	u := extractUsage([]byte(`{"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`))
	assert.Equal(t, Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}, u)
	assert.Equal(t, Usage{}, extractUsage([]byte(`{}`)))
}

func TestUpstreamMessage(t *testing.T) {
	assert.Equal(t, "bad key", upstreamMessage([]byte(`{"error":{"message":"bad key"}}`)))
	assert.Equal(t, "quota", upstreamMessage([]byte(`{"msg":"quota"}`)))
	assert.Equal(t, "plain", upstreamMessage([]byte(`{"error":"plain"}`)))
	assert.Equal(t, "<html>down</html>", upstreamMessage([]byte(`<html>down</html>`)))

	long := strings.Repeat("x", 500)
	assert.Len(t, upstreamMessage([]byte(long)), maxErrorBodyChars+3)
}
