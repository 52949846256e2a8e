// Package app wires configuration into a ready-to-use Generator. The HTTP
// server and the CLI share it.
package app

import (
	"context"
	"fmt"

	"github.com/Conceptual-Machines/poster-api/internal/config"
	"github.com/Conceptual-Machines/poster-api/internal/llm"
	"github.com/Conceptual-Machines/poster-api/internal/logger"
	"github.com/Conceptual-Machines/poster-api/internal/metrics"
	"github.com/Conceptual-Machines/poster-api/internal/observability"
	"github.com/Conceptual-Machines/poster-api/internal/prompt"
	"github.com/Conceptual-Machines/poster-api/internal/services"
)

// NewGenerator builds the orchestrator for cfg. A missing API key does not
// fail startup: the generator reports *services.ConfigError per request.
func NewGenerator(
	ctx context.Context,
	cfg *config.Config,
	recorder *metrics.Recorder,
	tracer *observability.LangfuseClient,
) *services.Generator {
	opts := services.Options{
		Budget:            cfg.Budget,
		PrimaryModel:      cfg.Upstream.Model,
		FallbackModel:     cfg.Upstream.FallbackModel,
		Prompts:           prompt.NewPromptBuilder(),
		Tracer:            tracer,
		RawFallbackPoster: cfg.Server.RawFallbackPoster,
	}
	if recorder != nil {
		opts.Recorder = recorder
	}

	caller, err := NewCaller(ctx, cfg)
	if err != nil {
		logger.Warn("Upstream not configured, generation requests will fail", logger.Fields{
			"provider": cfg.Upstream.Provider,
			"error":    err.Error(),
		})
		opts.ConfigReason = err.Error()
	} else {
		opts.Caller = caller
	}

	return services.NewGenerator(opts)
}

// NewCaller creates the upstream caller for the configured provider
func NewCaller(ctx context.Context, cfg *config.Config) (*llm.Caller, error) {
	if cfg.ActiveAPIKey() == "" {
		return nil, fmt.Errorf("missing API key for provider %s (set %s)", cfg.Upstream.Provider, keyVariable(cfg.Upstream.Provider))
	}

	factory := llm.NewProviderFactory(
		cfg.Upstream.APIKey,
		cfg.Upstream.GeminiAPIKey,
		cfg.Upstream.BaseURL,
		cfg.Upstream.Temperature,
	)
	provider, err := factory.GetProvider(ctx, cfg.Upstream.Provider)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	return llm.NewCaller(provider), nil
}

func keyVariable(provider string) string {
	if provider == config.ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "ZHIPU_API_KEY"
}
