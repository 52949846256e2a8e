package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/poster-api/internal/logger"
	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	mimeTypeJSON       = "application/json"
	geminiUserRole     = "user"
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client      *genai.Client
	temperature float32
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string, temperature float64) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if temperature <= 0 {
		temperature = defaultTemperature
	}
	return &GeminiProvider{
		client:      client,
		temperature: float32(temperature),
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Complete implements non-streaming generation using Gemini's API
func (p *GeminiProvider) Complete(ctx context.Context, request *CompletionRequest) (*Completion, error) {
	transaction := sentry.StartTransaction(ctx, "gemini.generate")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)

	startTime := time.Now()
	result, err := p.client.Models.GenerateContent(ctx, request.Model, p.buildContents(request), p.buildConfig(request))
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, p.wrapError(ctx, err)
	}

	completion := p.processResponse(result)
	logger.Debug("Gemini completion received", logger.Fields{
		"model":          request.Model,
		"duration_ms":    time.Since(startTime).Milliseconds(),
		"content_length": len(completion.Content),
	})

	transaction.SetTag("success", "true")
	return completion, nil
}

// Stream implements streaming generation for Gemini
func (p *GeminiProvider) Stream(ctx context.Context, request *CompletionRequest, onDelta DeltaCallback) (*Completion, error) {
	transaction := sentry.StartTransaction(ctx, "gemini.generate_stream")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("streaming", "true")

	var accumulated strings.Builder
	var usage Usage

	for chunk, err := range p.client.Models.GenerateContentStream(ctx, request.Model, p.buildContents(request), p.buildConfig(request)) {
		if err != nil {
			transaction.SetTag("success", "false")
			return nil, p.wrapError(ctx, err)
		}
		if chunk.UsageMetadata != nil {
			usage = usageFromGemini(chunk.UsageMetadata)
		}
		text := firstCandidateText(chunk)
		if text == "" {
			continue
		}
		accumulated.WriteString(text)
		if err := onDelta(text); err != nil {
			return nil, fmt.Errorf("stream callback: %w", err)
		}
	}

	transaction.SetTag("success", "true")
	return &Completion{Content: accumulated.String(), Usage: usage, Strategy: "stream"}, nil
}

// buildContents sends the user prompt as the only turn; the system prompt
// travels as SystemInstruction
func (p *GeminiProvider) buildContents(request *CompletionRequest) []*genai.Content {
	return []*genai.Content{{
		Role:  geminiUserRole,
		Parts: []*genai.Part{{Text: request.UserPrompt}},
	}}
}

func (p *GeminiProvider) buildConfig(request *CompletionRequest) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		},
		Temperature:      genai.Ptr(p.temperature),
		ResponseMIMEType: mimeTypeJSON,
		ResponseSchema:   OutputSchema(request.Mode),
	}
}

func (p *GeminiProvider) processResponse(result *genai.GenerateContentResponse) *Completion {
	completion := &Completion{
		Content:  firstCandidateText(result),
		Strategy: "candidate",
	}
	if result != nil && result.UsageMetadata != nil {
		completion.Usage = usageFromGemini(result.UsageMetadata)
	}
	return completion
}

// wrapError reports API failures as UpstreamError, keeping the status and
// message the API sent. Other failures are reported as 502. Context errors
// pass through so the caller can tell a timeout from a provider failure.
func (p *GeminiProvider) wrapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Code
		if status == 0 {
			status = http.StatusBadGateway
		}
		message := strings.TrimSpace(apiErr.Message)
		if message == "" {
			message = http.StatusText(status)
		}
		return &UpstreamError{StatusCode: status, Message: truncateString(message, maxErrorBodyChars)}
	}

	return &UpstreamError{StatusCode: http.StatusBadGateway, Message: truncateString(err.Error(), maxErrorBodyChars)}
}

func firstCandidateText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	candidate := result.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func usageFromGemini(meta *genai.GenerateContentResponseUsageMetadata) Usage {
	return Usage{
		PromptTokens:     int(meta.PromptTokenCount),
		CompletionTokens: int(meta.CandidatesTokenCount),
		TotalTokens:      int(meta.TotalTokenCount),
	}
}
