package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]any
		wantErr bool
	}{
		{name: "plain object", input: `{"a":1}`, want: map[string]any{"a": float64(1)}},
		{name: "code fence", input: "```json\n{\"a\":\"b\"}\n```", want: map[string]any{"a": "b"}},
		{name: "noise and trailing text", input: `noise {"a":1} trailing`, want: map[string]any{"a": float64(1)}},
		{name: "prose around", input: `Sure! {"cards":[]} Enjoy.`, want: map[string]any{"cards": []any{}}},
		{name: "nested braces", input: `x {"a":{"b":{}}} y`, want: map[string]any{"a": map[string]any{"b": map[string]any{}}}},
		{name: "no braces", input: "nothing here", wantErr: true},
		{name: "array top level", input: `[1,2]`, wantErr: true},
		{name: "broken object", input: `{"a":`, wantErr: true},
		{name: "trailing prose with brace", input: `{"a":1} then {oops}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr), "got %v", err)
				assert.Equal(t, tt.input, parseErr.Content)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_ReextractingMarshalledResultIsStable(t *testing.T) {
	first, err := ExtractJSON(`{"cards":[{"title":"X"}]}`)
	require.NoError(t, err)

	raw, err := json.Marshal(first)
	require.NoError(t, err)

	second, err := ExtractJSON(string(raw))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, map[string]any{"cards": []any{map[string]any{"title": "X"}}}, second)
}

func TestSummarizePayloadSnippet(t *testing.T) {
	assert.Equal(t, "<empty>", summarizePayloadSnippet("   "))
	assert.Equal(t, "a b c", summarizePayloadSnippet(" a\n b\t c "))

	long := strings.Repeat("字", 200)
	snippet := summarizePayloadSnippet(long)
	assert.Equal(t, snippetLimit+3, len([]rune(snippet)))
	assert.True(t, strings.HasSuffix(snippet, "..."))
}
