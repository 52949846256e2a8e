package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Conceptual-Machines/poster-api/internal/config"
	"github.com/Conceptual-Machines/poster-api/internal/models"
	"github.com/Conceptual-Machines/poster-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Upstream: config.UpstreamConfig{
			Provider:      config.ProviderOpenAI,
			BaseURL:       "http://127.0.0.1:1/",
			Model:         "glm-4",
			FallbackModel: config.FallbackModel,
		},
		Budget: config.BudgetConfig{Overall: time.Second, Slice: time.Second},
	}
}

func TestNewCaller_MissingKey(t *testing.T) {
	_, err := NewCaller(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZHIPU_API_KEY")

	cfg := testConfig()
	cfg.Upstream.Provider = config.ProviderGemini
	_, err = NewCaller(context.Background(), cfg)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestNewCaller_OpenAI(t *testing.T) {
	cfg := testConfig()
	cfg.Upstream.APIKey = "key"

	caller, err := NewCaller(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", caller.ProviderName())
}

func TestNewGenerator_Unconfigured(t *testing.T) {
	g := NewGenerator(context.Background(), testConfig(), nil, nil)
	assert.False(t, g.Configured())
	assert.Equal(t, "glm-4", g.PrimaryModel())
	assert.Equal(t, config.FallbackModel, g.FallbackModel())

	_, err := g.Generate(context.Background(), models.GenerationRequest{Topic: "海洋", Mode: models.ModePoster})
	var configErr *services.ConfigError
	require.True(t, errors.As(err, &configErr))
	assert.Contains(t, configErr.Message, "ZHIPU_API_KEY")
}
