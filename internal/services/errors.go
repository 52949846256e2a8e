package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/poster-api/internal/llm"
	"github.com/Conceptual-Machines/poster-api/internal/models"
)

// ConfigError means the service cannot call upstream at all, e.g. the API
// key is missing. No network call is made.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Message
}

// ValidationError is a bad request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ShapeError means the parsed object does not look like the requested mode
type ShapeError struct {
	Mode   models.Mode
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("model output is not a %s: %s", e.Mode, e.Reason)
}

// ErrorKind names an error for logs, metrics and traces
func ErrorKind(err error) string {
	var (
		configErr     *ConfigError
		validationErr *ValidationError
		shapeErr      *ShapeError
		upstreamErr   *llm.UpstreamError
		timeoutErr    *llm.TimeoutError
		emptyErr      *llm.EmptyContentError
		parseErr      *llm.ParseError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &configErr):
		return "config"
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &upstreamErr):
		return "upstream"
	case errors.As(err, &emptyErr):
		return "empty_content"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &shapeErr):
		return "shape"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline"
	default:
		return "unknown"
	}
}
