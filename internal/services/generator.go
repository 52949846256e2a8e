package services

import (
	"context"
	"errors"
	"time"

	"github.com/Conceptual-Machines/poster-api/internal/config"
	"github.com/Conceptual-Machines/poster-api/internal/llm"
	"github.com/Conceptual-Machines/poster-api/internal/logger"
	"github.com/Conceptual-Machines/poster-api/internal/metrics"
	"github.com/Conceptual-Machines/poster-api/internal/models"
	"github.com/Conceptual-Machines/poster-api/internal/observability"
	"github.com/Conceptual-Machines/poster-api/internal/prompt"
)

const (
	rawFallbackHeroIcon  = "🧩"
	rawFallbackEmptyBody = "（內容生成失敗）"
	rawFallbackGridTitle = "提示"
	rawFallbackGridText  = "模型未輸出標準 JSON，已顯示純文本摘要。"
	rawFallbackBodyRunes = 500
)

// Caller performs single upstream attempts. *llm.Caller implements it.
type Caller interface {
	Call(ctx context.Context, req llm.CallRequest) (*llm.CallResult, error)
	Stream(ctx context.Context, req llm.CallRequest, onDelta llm.DeltaCallback) (*llm.CallResult, error)
}

// Recorder receives attempt and request metrics. *metrics.Recorder implements it.
type Recorder interface {
	RecordAttempt(ctx context.Context, attempt metrics.Attempt)
	RecordGeneration(ctx context.Context, mode string, duration time.Duration, success bool)
}

// Options configures a Generator
type Options struct {
	Budget        config.BudgetConfig
	PrimaryModel  string
	FallbackModel string

	// Caller is nil when the upstream is not configured; ConfigReason then
	// says why and every request fails with *ConfigError.
	Caller       Caller
	ConfigReason string

	Prompts  *prompt.Builder
	Recorder Recorder
	Tracer   *observability.LangfuseClient
	Now      func() time.Time

	// RawFallbackPoster turns a final parse failure in poster mode into a
	// minimal poster showing the raw model text.
	RawFallbackPoster bool
}

// Generator turns a topic into a poster or card list using a primary model
// and, when time allows, one fallback model.
type Generator struct {
	opts Options
}

// NewGenerator creates a generator, filling unset options with defaults
func NewGenerator(opts Options) *Generator {
	if opts.Prompts == nil {
		opts.Prompts = prompt.NewPromptBuilder()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NewRecorder(nil, nil)
	}
	if opts.ConfigReason == "" {
		opts.ConfigReason = "upstream API key is not set"
	}
	return &Generator{opts: opts}
}

// PrimaryModel returns the primary model id
func (g *Generator) PrimaryModel() string { return g.opts.PrimaryModel }

// FallbackModel returns the fallback model id
func (g *Generator) FallbackModel() string { return g.opts.FallbackModel }

// Configured reports whether requests can reach the upstream
func (g *Generator) Configured() bool { return g.opts.Caller != nil }

// Generate runs the primary attempt and, if it fails with enough of the
// overall budget left, one fallback attempt. Cancellation of ctx stops
// everything and returns the context error.
func (g *Generator) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	if req.Topic == "" {
		return nil, &ValidationError{Field: "topic", Message: "is required"}
	}
	if g.opts.Caller == nil {
		return nil, &ConfigError{Message: g.opts.ConfigReason}
	}

	start := g.opts.Now()
	deadline := start.Add(g.opts.Budget.Overall)
	pair := g.opts.Prompts.Build(req.Mode, req.Topic, req.Tone, req.Count)

	trace := g.opts.Tracer.StartTrace("poster.generate", req, map[string]interface{}{
		"mode":           string(req.Mode),
		"primary_model":  g.opts.PrimaryModel,
		"fallback_model": g.opts.FallbackModel,
	})

	result, err := g.run(ctx, req, pair, start, deadline, trace)

	duration := g.opts.Now().Sub(start)
	g.opts.Recorder.RecordGeneration(ctx, string(req.Mode), duration, err == nil)
	if err != nil {
		trace.End(map[string]any{"error": err.Error(), "error_type": ErrorKind(err)})
		return nil, err
	}
	trace.End(result)
	return result, nil
}

func (g *Generator) run(
	ctx context.Context,
	req models.GenerationRequest,
	pair prompt.Pair,
	start, deadline time.Time,
	trace *observability.Trace,
) (*models.GenerationResult, error) {
	slice := primarySlice(g.opts.Budget, g.opts.Now().Sub(start))
	result, primaryErr := g.attempt(ctx, trace, StagePrimary, g.opts.PrimaryModel, slice, req, pair)
	if primaryErr == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	remaining := deadline.Sub(g.opts.Now())
	fbSlice, ok := fallbackSlice(g.opts.Budget, remaining)
	if !ok {
		logger.Warn("Skipping fallback, budget exhausted", logger.Fields{
			"remaining_ms": remaining.Milliseconds(),
			"min_ms":       g.opts.Budget.MinFallback.Milliseconds(),
			"error_type":   ErrorKind(primaryErr),
		})
		return g.rawFallback(req, primaryErr)
	}

	result, fallbackErr := g.attempt(ctx, trace, StageFallback, g.opts.FallbackModel, fbSlice, req, pair)
	if fallbackErr == nil {
		result.Model = g.opts.FallbackModel
		return result, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return g.rawFallback(req, fallbackErr)
}

// attempt makes one call and normalizes its result; a ShapeError counts as
// a failed attempt
func (g *Generator) attempt(
	ctx context.Context,
	trace *observability.Trace,
	stage AttemptStage,
	model string,
	slice time.Duration,
	req models.GenerationRequest,
	pair prompt.Pair,
) (*models.GenerationResult, error) {
	gen := trace.Generation(string(stage), model, pair, map[string]interface{}{
		"timeout_ms": slice.Milliseconds(),
	})

	start := g.opts.Now()
	callResult, err := g.opts.Caller.Call(ctx, llm.CallRequest{
		Model:   model,
		System:  pair.System,
		User:    pair.User,
		Mode:    req.Mode,
		Timeout: slice,
	})

	var result *models.GenerationResult
	if err == nil {
		gen.Output(callResult.Content)
		gen.Usage(callResult.Usage.Map())
		result, err = Normalize(req.Mode, callResult.Parsed)
	}
	duration := g.opts.Now().Sub(start)

	attempt := metrics.Attempt{
		Model:    model,
		Fallback: stage == StageFallback,
		Outcome:  outcome(err),
		Duration: duration,
		Timeout:  slice,
	}
	if callResult != nil {
		attempt.InputTokens = callResult.Usage.PromptTokens
		attempt.OutputTokens = callResult.Usage.CompletionTokens
		attempt.TotalTokens = callResult.Usage.TotalTokens
	}
	g.opts.Recorder.RecordAttempt(ctx, attempt)

	gen.Fail(err)
	gen.Finish()

	fields := logger.Fields{
		"stage":      string(stage),
		"mode":       string(req.Mode),
		"timeout_ms": slice.Milliseconds(),
	}
	if err != nil {
		fields["model"] = model
		fields["duration_ms"] = duration.Milliseconds()
		fields["error"] = err.Error()
		fields["error_type"] = ErrorKind(err)
		logger.Warn("Upstream attempt failed", fields)
		return nil, err
	}
	logger.LogGenerationRequest(ctx, model, duration, callResult.Usage.Map(), fields)
	return result, nil
}

// rawFallback applies the raw-text poster when enabled and possible,
// otherwise returns err unchanged
func (g *Generator) rawFallback(req models.GenerationRequest, err error) (*models.GenerationResult, error) {
	if !g.opts.RawFallbackPoster || req.Mode != models.ModePoster {
		return nil, err
	}
	var parseErr *llm.ParseError
	if !errors.As(err, &parseErr) {
		return nil, err
	}

	logger.Warn("Returning raw text poster", logger.Fields{"content_length": len(parseErr.Content)})
	return &models.GenerationResult{
		Mode:   models.ModePoster,
		Poster: RawTextPoster(req.Topic, parseErr.Content),
	}, nil
}

// RawTextPoster builds a minimal renderable poster from unstructured text
func RawTextPoster(topic, content string) *models.Poster {
	body := content
	if runes := []rune(body); len(runes) > rawFallbackBodyRunes {
		body = string(runes[:rawFallbackBodyRunes])
	}
	if body == "" {
		body = rawFallbackEmptyBody
	}
	return &models.Poster{
		Title:    topic,
		HeroIcon: rawFallbackHeroIcon,
		Sections: []models.Section{{Icon: DefaultSectionIcon, Heading: DefaultSectionHeading, Body: body}},
		Grid:     []models.GridItem{{Icon: DefaultGridIcon, Title: rawFallbackGridTitle, Text: rawFallbackGridText}},
	}
}

func outcome(err error) string {
	var timeoutErr *llm.TimeoutError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &timeoutErr):
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeError
	}
}
