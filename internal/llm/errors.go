package llm

import (
	"fmt"
	"time"
)

// UpstreamError is a non-success HTTP status from the provider
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %d: %s", e.StatusCode, e.Message)
}

// TimeoutError means an attempt was aborted after its time slice ran out
type TimeoutError struct {
	Model   string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream timeout: %s did not answer within %s", e.Model, e.Timeout)
}

// EmptyContentError means the provider answered without any assistant text
type EmptyContentError struct {
	Model string
}

func (e *EmptyContentError) Error() string {
	return fmt.Sprintf("upstream %s returned empty content", e.Model)
}

// ParseError means no JSON object could be recovered from the model text.
// Content keeps the full text for callers that can still use it.
type ParseError struct {
	Snippet string
	Content string
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model output is not a JSON object: %v (payload snippet: %s)", e.Cause, e.Snippet)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
