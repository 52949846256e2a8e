package services

import (
	"context"

	"github.com/Conceptual-Machines/poster-api/internal/llm"
	"github.com/Conceptual-Machines/poster-api/internal/logger"
	"github.com/Conceptual-Machines/poster-api/internal/metrics"
	"github.com/Conceptual-Machines/poster-api/internal/models"
)

// StreamCards generates a card list with the primary model only, passing
// raw text chunks to onDelta as they arrive. The whole call is bounded by
// the overall budget; there is no fallback.
func (g *Generator) StreamCards(ctx context.Context, req models.GenerationRequest, onDelta llm.DeltaCallback) (*models.GenerationResult, error) {
	if req.Topic == "" {
		return nil, &ValidationError{Field: "topic", Message: "is required"}
	}
	if g.opts.Caller == nil {
		return nil, &ConfigError{Message: g.opts.ConfigReason}
	}

	req.Mode = models.ModeList
	pair := g.opts.Prompts.Build(req.Mode, req.Topic, req.Tone, req.Count)

	start := g.opts.Now()
	callResult, err := g.opts.Caller.Stream(ctx, llm.CallRequest{
		Model:   g.opts.PrimaryModel,
		System:  pair.System,
		User:    pair.User,
		Mode:    req.Mode,
		Timeout: g.opts.Budget.Overall,
	}, onDelta)

	var result *models.GenerationResult
	if err == nil {
		result, err = Normalize(req.Mode, callResult.Parsed)
	}
	duration := g.opts.Now().Sub(start)

	g.opts.Recorder.RecordAttempt(ctx, metrics.Attempt{
		Model:    g.opts.PrimaryModel,
		Outcome:  outcome(err),
		Duration: duration,
		Timeout:  g.opts.Budget.Overall,
	})
	g.opts.Recorder.RecordGeneration(ctx, string(req.Mode), duration, err == nil)

	if err != nil {
		logger.Warn("Card stream failed", logger.Fields{
			"model":      g.opts.PrimaryModel,
			"error":      err.Error(),
			"error_type": ErrorKind(err),
		})
		return nil, err
	}
	logger.LogGenerationRequest(ctx, g.opts.PrimaryModel, duration, callResult.Usage.Map(), logger.Fields{
		"mode":      string(req.Mode),
		"streaming": true,
	})
	return result, nil
}
