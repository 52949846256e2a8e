package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics records request and generation metrics as Sentry spans
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // spans are dropped by the SDK when Sentry is not initialised
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordAttempt records one upstream attempt, primary or fallback
func (m *SentryMetrics) RecordAttempt(ctx context.Context, attempt Attempt) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "llm.attempt")
	defer span.Finish()

	span.SetTag("model", attempt.Model)
	span.SetTag("fallback", fmt.Sprintf("%t", attempt.Fallback))
	span.SetTag("outcome", attempt.Outcome)

	span.SetData("duration_ms", attempt.Duration.Milliseconds())
	span.SetData("timeout_ms", attempt.Timeout.Milliseconds())
	span.SetData("input_tokens", attempt.InputTokens)
	span.SetData("output_tokens", attempt.OutputTokens)
	span.SetData("total_tokens", attempt.TotalTokens)

	if attempt.Outcome == OutcomeSuccess {
		span.Status = sentry.SpanStatusOK
	} else if attempt.Outcome == OutcomeTimeout {
		span.Status = sentry.SpanStatusDeadlineExceeded
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("Attempt: %s", attempt.Model)
}

// RecordGenerationDuration records the duration of a whole generation request
func (m *SentryMetrics) RecordGenerationDuration(ctx context.Context, mode string, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "generation.request")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetTag("mode", mode)
	span.SetData("duration_ms", duration.Milliseconds())

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("Generation Request: %s", mode)
}
