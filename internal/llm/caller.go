package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Conceptual-Machines/poster-api/internal/models"
)

// CallRequest is one time-bounded upstream attempt
type CallRequest struct {
	Model   string
	System  string
	User    string
	Mode    models.Mode
	Timeout time.Duration
}

// CallResult is the parsed outcome of one attempt
type CallResult struct {
	Parsed   map[string]any
	Content  string
	Usage    Usage
	Strategy string
}

// Caller runs single attempts against a provider and turns the assistant
// text into a JSON object
type Caller struct {
	provider Provider
}

// NewCaller creates a caller for the given provider
func NewCaller(provider Provider) *Caller {
	return &Caller{provider: provider}
}

// ProviderName returns the name of the wrapped provider
func (c *Caller) ProviderName() string {
	return c.provider.Name()
}

// Call performs one attempt bounded by req.Timeout. Errors are one of
// *UpstreamError, *TimeoutError, *EmptyContentError, *ParseError, or the
// parent context's error when the caller went away.
func (c *Caller) Call(ctx context.Context, req CallRequest) (*CallResult, error) {
	return c.run(ctx, req, func(attemptCtx context.Context, cr *CompletionRequest) (*Completion, error) {
		return c.provider.Complete(attemptCtx, cr)
	})
}

// Stream is Call with incremental text forwarded to onDelta
func (c *Caller) Stream(ctx context.Context, req CallRequest, onDelta DeltaCallback) (*CallResult, error) {
	return c.run(ctx, req, func(attemptCtx context.Context, cr *CompletionRequest) (*Completion, error) {
		return c.provider.Stream(attemptCtx, cr, onDelta)
	})
}

func (c *Caller) run(
	ctx context.Context,
	req CallRequest,
	do func(context.Context, *CompletionRequest) (*Completion, error),
) (*CallResult, error) {
	attemptCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	completion, err := do(attemptCtx, &CompletionRequest{
		Model:        req.Model,
		SystemPrompt: req.System,
		UserPrompt:   req.User,
		Mode:         req.Mode,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Model: req.Model, Timeout: req.Timeout}
		}
		return nil, err
	}

	if completion == nil || strings.TrimSpace(completion.Content) == "" {
		return nil, &EmptyContentError{Model: req.Model}
	}

	parsed, err := ExtractJSON(completion.Content)
	if err != nil {
		return nil, err
	}

	return &CallResult{
		Parsed:   parsed,
		Content:  completion.Content,
		Usage:    completion.Usage,
		Strategy: completion.Strategy,
	}, nil
}
