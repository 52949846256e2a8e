package llm

import (
	"context"

	"github.com/Conceptual-Machines/poster-api/internal/models"
)

// Provider defines the interface for upstream chat-completion providers.
// Providers return the assistant text; JSON extraction happens in Caller.
type Provider interface {
	// Complete issues one non-streaming completion
	Complete(ctx context.Context, request *CompletionRequest) (*Completion, error)

	// Stream issues one streaming completion, calling onDelta for every text chunk
	Stream(ctx context.Context, request *CompletionRequest, onDelta DeltaCallback) (*Completion, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// CompletionRequest contains everything needed for one upstream call
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	// Mode lets providers with native structured output pick a response schema
	Mode models.Mode
}

// Completion is the assistant text of one upstream call
type Completion struct {
	Content  string
	Usage    Usage
	Strategy string // which content extraction strategy matched
}

// Usage holds token counts reported by the provider
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Map returns the usage as log/trace fields
func (u Usage) Map() map[string]int {
	return map[string]int{
		"input_tokens":  u.PromptTokens,
		"output_tokens": u.CompletionTokens,
		"total_tokens":  u.TotalTokens,
	}
}

// DeltaCallback is called for each streamed text chunk
type DeltaCallback func(delta string) error
