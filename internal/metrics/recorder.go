package metrics

import (
	"context"
	"sync/atomic"
	"time"
)

// Attempt outcomes
const (
	OutcomeSuccess = "success"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
)

// Attempt describes one upstream call made by the orchestrator
type Attempt struct {
	Model        string
	Fallback     bool
	Outcome      string
	Duration     time.Duration
	Timeout      time.Duration
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Recorder fans attempt and generation metrics out to Sentry, CloudWatch
// and in-process counters
type Recorder struct {
	sentry     *SentryMetrics
	cloudwatch *Client
	counters   counters
}

type counters struct {
	generations atomic.Int64
	failures    atomic.Int64
	attempts    atomic.Int64
	fallbacks   atomic.Int64
	timeouts    atomic.Int64
}

// Snapshot is a point-in-time copy of the in-process counters
type Snapshot struct {
	Generations int64 `json:"generations"`
	Failures    int64 `json:"failures"`
	Attempts    int64 `json:"attempts"`
	Fallbacks   int64 `json:"fallbacks"`
	Timeouts    int64 `json:"timeouts"`
}

// NewRecorder creates a recorder. Either backend may be nil.
func NewRecorder(sentryMetrics *SentryMetrics, cloudwatchClient *Client) *Recorder {
	return &Recorder{sentry: sentryMetrics, cloudwatch: cloudwatchClient}
}

// RecordAttempt records one upstream attempt
func (r *Recorder) RecordAttempt(ctx context.Context, attempt Attempt) {
	r.counters.attempts.Add(1)
	if attempt.Fallback {
		r.counters.fallbacks.Add(1)
	}
	if attempt.Outcome == OutcomeTimeout {
		r.counters.timeouts.Add(1)
	}

	if r.sentry != nil {
		r.sentry.RecordAttempt(ctx, attempt)
	}
	if r.cloudwatch != nil {
		r.cloudwatch.RecordAttempt(attempt)
	}
}

// RecordGeneration records a finished generation request
func (r *Recorder) RecordGeneration(ctx context.Context, mode string, duration time.Duration, success bool) {
	r.counters.generations.Add(1)
	if !success {
		r.counters.failures.Add(1)
	}

	if r.sentry != nil {
		r.sentry.RecordGenerationDuration(ctx, mode, duration, success)
	}
	if r.cloudwatch != nil {
		r.cloudwatch.RecordGenerationDuration(mode, duration, success)
	}
}

// RecordAPIRequest records one HTTP request
func (r *Recorder) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if r.sentry != nil {
		r.sentry.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	}
	if r.cloudwatch != nil {
		r.cloudwatch.RecordAPIRequest(endpoint, statusCode, duration)
	}
}

// Snapshot returns the current counter values
func (r *Recorder) Snapshot() Snapshot {
	return Snapshot{
		Generations: r.counters.generations.Load(),
		Failures:    r.counters.failures.Load(),
		Attempts:    r.counters.attempts.Load(),
		Fallbacks:   r.counters.fallbacks.Load(),
		Timeouts:    r.counters.timeouts.Load(),
	}
}
