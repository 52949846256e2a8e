package llm

import (
	"context"
	"fmt"
	"strings"
)

// ProviderFactory creates the configured upstream provider
type ProviderFactory struct {
	apiKey       string
	geminiAPIKey string
	baseURL      string
	temperature  float64
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(apiKey, geminiAPIKey, baseURL string, temperature float64) *ProviderFactory {
	return &ProviderFactory{
		apiKey:       apiKey,
		geminiAPIKey: geminiAPIKey,
		baseURL:      baseURL,
		temperature:  temperature,
	}
}

// GetProvider returns the provider for an explicit provider name
func (f *ProviderFactory) GetProvider(ctx context.Context, providerName string) (Provider, error) {
	switch strings.ToLower(providerName) {
	case providerNameOpenAI, "":
		if f.apiKey == "" {
			return nil, fmt.Errorf("openai-compatible API key not configured")
		}
		return NewOpenAIProvider(f.apiKey, f.baseURL, f.temperature), nil

	case providerNameGemini:
		if f.geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini API key not configured")
		}
		return NewGeminiProvider(ctx, f.geminiAPIKey, f.temperature)

	default:
		return nil, fmt.Errorf("unknown provider: %s (allowed: openai, gemini)", providerName)
	}
}
