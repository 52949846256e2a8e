package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/Conceptual-Machines/poster-api/internal/llm"
	"github.com/Conceptual-Machines/poster-api/internal/logger"
	"github.com/Conceptual-Machines/poster-api/internal/models"
	"github.com/Conceptual-Machines/poster-api/internal/services"
	"github.com/gin-gonic/gin"
)

// Generator is the orchestrator used by the chat handlers.
// *services.Generator implements it.
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
	StreamCards(ctx context.Context, req models.GenerationRequest, onDelta llm.DeltaCallback) (*models.GenerationResult, error)
}

// ChatHandler serves poster and card list generation
type ChatHandler struct {
	generator Generator
}

// NewChatHandler creates a new chat handler
func NewChatHandler(generator Generator) *ChatHandler {
	return &ChatHandler{generator: generator}
}

// ChatRequest is the POST /api/chat body. Fields are decoded loosely:
// scalar topic, tone and layout values are coerced to text, and a count
// that is not a JSON number selects the default.
type ChatRequest struct {
	Topic  any `json:"topic"`
	Count  any `json:"count"`
	Tone   any `json:"tone"`
	Layout any `json:"layout"`
}

func (r ChatRequest) toGenerationRequest() (models.GenerationRequest, error) {
	count := 0
	if c, ok := r.Count.(float64); ok && !math.IsNaN(c) && !math.IsInf(c, 0) {
		count = int(math.Max(0, math.Min(c, float64(models.MaxCount+1))))
	}
	return services.NewGenerationRequest(
		services.CoerceText(r.Topic),
		services.CoerceText(r.Tone),
		services.CoerceText(r.Layout),
		count,
	)
}

// Chat generates a poster or a card list for a topic
func (h *ChatHandler) Chat(c *gin.Context) {
	var body ChatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidJSONBody})
		return
	}

	req, err := body.toGenerationRequest()
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Options answers CORS preflight requests
func (h *ChatHandler) Options(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// statusFor maps generation errors to HTTP status codes
func statusFor(err error) int {
	var (
		configErr     *services.ConfigError
		validationErr *services.ValidationError
		shapeErr      *services.ShapeError
		upstreamErr   *llm.UpstreamError
		timeoutErr    *llm.TimeoutError
		emptyErr      *llm.EmptyContentError
		parseErr      *llm.ParseError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &configErr):
		return http.StatusInternalServerError
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &emptyErr), errors.As(err, &parseErr), errors.As(err, &shapeErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-facing error text
func messageFor(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return errRequestCanceled
	case services.ErrorKind(err) == "unknown":
		return errInternal
	default:
		return err.Error()
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	fields := logger.WithContext(c)
	fields["status_code"] = status
	fields["error_type"] = services.ErrorKind(err)

	if status >= http.StatusInternalServerError && !errors.Is(err, context.Canceled) {
		logger.Error("Generation failed", err, fields)
	} else {
		fields["error"] = err.Error()
		logger.Warn("Generation rejected", fields)
	}

	c.JSON(status, gin.H{
		"error":      messageFor(err),
		"request_id": c.GetString("request_id"),
	})
}
