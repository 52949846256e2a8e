package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/poster-api/internal/logger"
	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"
)

const (
	providerNameOpenAI = "openai"
	defaultTemperature = 0.7
)

// OpenAIProvider talks to any OpenAI-compatible chat-completions endpoint
// (Zhipu GLM by default) through the openai-go SDK.
type OpenAIProvider struct {
	client      *openai.Client
	temperature float64
}

// NewOpenAIProvider creates a provider for the given key and base URL.
// SDK retries are disabled: the orchestrator owns retry and fallback.
func NewOpenAIProvider(apiKey, baseURL string, temperature float64, opts ...option.RequestOption) *OpenAIProvider {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)

	if temperature <= 0 {
		temperature = defaultTemperature
	}

	client := openai.NewClient(reqOpts...)
	return &OpenAIProvider{
		client:      &client,
		temperature: temperature,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Complete sends one non-streaming chat completion and returns the
// assistant text found in the raw response body.
func (p *OpenAIProvider) Complete(ctx context.Context, request *CompletionRequest) (*Completion, error) {
	transaction := sentry.StartTransaction(ctx, "openai.chat_completion")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)

	params := p.buildRequestParams(request)

	var body []byte
	startTime := time.Now()
	_, err := p.client.Chat.Completions.New(ctx, params,
		option.WithJSONSet("stream", false),
		option.WithMiddleware(captureBody(&body)),
	)
	duration := time.Since(startTime)

	if err != nil {
		completion, recoverErr := recoverUndecodedBody(ctx, err, body)
		if recoverErr != nil {
			transaction.SetTag("success", "false")
			return nil, recoverErr
		}
		logger.Warn("Upstream body could not be decoded as a completion", logger.Fields{
			"model":       request.Model,
			"duration_ms": duration.Milliseconds(),
			"strategy":    completion.Strategy,
			"decode_err":  err.Error(),
		})
		transaction.SetTag("success", "true")
		return completion, nil
	}

	content, strategy := extractContent(body)
	usage := extractUsage(body)

	logger.Debug("Upstream completion received", logger.Fields{
		"model":          request.Model,
		"duration_ms":    duration.Milliseconds(),
		"content_length": len(content),
		"strategy":       strategy,
	})

	transaction.SetTag("success", "true")
	return &Completion{
		Content:  content,
		Usage:    usage,
		Strategy: strategy,
	}, nil
}

// Stream sends one streaming chat completion and forwards each delta
func (p *OpenAIProvider) Stream(ctx context.Context, request *CompletionRequest, onDelta DeltaCallback) (*Completion, error) {
	transaction := sentry.StartTransaction(ctx, "openai.chat_completion_stream")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("streaming", "true")

	params := p.buildRequestParams(request)

	var body []byte
	stream := p.client.Chat.Completions.NewStreaming(ctx, params, option.WithMiddleware(captureErrorBody(&body)))
	defer func() {
		_ = stream.Close()
	}()

	var accumulated strings.Builder
	var usage Usage
	for stream.Next() {
		chunk := stream.Current()
		if chunk.Usage.TotalTokens > 0 {
			usage = Usage{
				PromptTokens:     int(chunk.Usage.PromptTokens),
				CompletionTokens: int(chunk.Usage.CompletionTokens),
				TotalTokens:      int(chunk.Usage.TotalTokens),
			}
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		accumulated.WriteString(delta)
		if err := onDelta(delta); err != nil {
			return nil, fmt.Errorf("stream callback: %w", err)
		}
	}
	if err := stream.Err(); err != nil {
		transaction.SetTag("success", "false")
		return nil, classifyOpenAIError(err, body)
	}

	transaction.SetTag("success", "true")
	return &Completion{
		Content:  accumulated.String(),
		Usage:    usage,
		Strategy: "stream",
	}, nil
}

func (p *OpenAIProvider) buildRequestParams(request *CompletionRequest) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(request.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(request.SystemPrompt),
			openai.UserMessage(request.UserPrompt),
		},
		Temperature: openai.Float(p.temperature),
	}
}

// classifyOpenAIError turns SDK status errors into UpstreamError, reading
// the message from the captured body. Transport errors pass through.
func classifyOpenAIError(err error, body []byte) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		message := upstreamMessage(body)
		if message == "" {
			message = apiErr.Message
		}
		if message == "" {
			message = http.StatusText(apiErr.StatusCode)
		}
		return &UpstreamError{StatusCode: apiErr.StatusCode, Message: message}
	}
	return err
}

// recoverUndecodedBody handles a success body the SDK failed to decode,
// such as a gateway HTML page. Non-JSON text is handed on as model content
// so the extractor reports it; JSON without assistant text is an
// UpstreamError. Status errors and transport failures are classified as usual.
func recoverUndecodedBody(ctx context.Context, err error, body []byte) (*Completion, error) {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) || ctx.Err() != nil || len(bytes.TrimSpace(body)) == 0 {
		return nil, classifyOpenAIError(err, body)
	}
	if !gjson.ValidBytes(body) {
		return &Completion{Content: string(body), Strategy: strategyRawBody}, nil
	}
	if content, strategy := extractContent(body); content != "" {
		return &Completion{Content: content, Usage: extractUsage(body), Strategy: strategy}, nil
	}
	return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Message: upstreamMessage(body)}
}

// captureBody copies the response body into dst and hands the SDK an
// identical reader, so the raw JSON stays available after decoding.
func captureBody(dst *[]byte) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		resp, err := next(req)
		if err != nil || resp == nil || resp.Body == nil {
			return resp, err
		}
		data, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read upstream body: %w", readErr)
		}
		*dst = data
		resp.Body = io.NopCloser(bytes.NewReader(data))
		return resp, nil
	}
}

// captureErrorBody is captureBody for streams: only non-2xx bodies are
// buffered so that successful event streams are not held in memory.
func captureErrorBody(dst *[]byte) option.Middleware {
	capture := captureBody(dst)
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		resp, err := next(req)
		if err != nil || resp == nil || resp.StatusCode < http.StatusMultipleChoices {
			return resp, err
		}
		return capture(req, func(*http.Request) (*http.Response, error) { return resp, nil })
	}
}
