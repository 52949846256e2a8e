package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/poster-api/internal/llm"
	"github.com/Conceptual-Machines/poster-api/internal/models"
	"github.com/Conceptual-Machines/poster-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	requests     []models.GenerationRequest
	generateFunc func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
	streamFunc   func(ctx context.Context, req models.GenerationRequest, onDelta llm.DeltaCallback) (*models.GenerationResult, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	f.requests = append(f.requests, req)
	return f.generateFunc(ctx, req)
}

func (f *fakeGenerator) StreamCards(ctx context.Context, req models.GenerationRequest, onDelta llm.DeltaCallback) (*models.GenerationResult, error) {
	f.requests = append(f.requests, req)
	return f.streamFunc(ctx, req, onDelta)
}

func setupChatRouter(gen Generator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewChatHandler(gen)
	router.POST("/api/chat", h.Chat)
	router.OPTIONS("/api/chat", h.Options)
	router.POST("/api/chat/stream", h.ChatStream)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func samplePoster() *models.Poster {
	return &models.Poster{
		Title:    "海洋",
		HeroIcon: "🌊",
		Sections: []models.Section{{Icon: "📌", Heading: "重點", Body: "水"}},
		Grid:     []models.GridItem{},
	}
}

func TestChat_PosterSuccess(t *testing.T) {
	gen := &fakeGenerator{generateFunc: func(context.Context, models.GenerationRequest) (*models.GenerationResult, error) {
		return &models.GenerationResult{Mode: models.ModePoster, Poster: samplePoster()}, nil
	}}

	w := postJSON(setupChatRouter(gen), "/api/chat", `{"topic":"  海洋 "}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	poster, ok := body["poster"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "海洋", poster["title"])
	assert.NotContains(t, body, "_model")

	require.Len(t, gen.requests, 1)
	assert.Equal(t, models.GenerationRequest{Topic: "海洋", Count: 6, Tone: "兒童友好", Mode: models.ModePoster}, gen.requests[0])
}

func TestChat_FallbackModelReported(t *testing.T) {
	gen := &fakeGenerator{generateFunc: func(context.Context, models.GenerationRequest) (*models.GenerationResult, error) {
		return &models.GenerationResult{Mode: models.ModeList, Cards: []models.Card{{Title: "魚", Tags: []string{}}}, Model: "glm-4-flash"}, nil
	}}

	w := postJSON(setupChatRouter(gen), "/api/chat", `{"topic":"海洋","layout":"list","count":5,"tone":"幽默"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "glm-4-flash", body["_model"])
	assert.Len(t, body["cards"], 1)
	assert.Equal(t, models.ModeList, gen.requests[0].Mode)
	assert.Equal(t, 5, gen.requests[0].Count)
	assert.Equal(t, "幽默", gen.requests[0].Tone)
}

func TestChat_ScalarFieldsAreCoerced(t *testing.T) {
	gen := &fakeGenerator{generateFunc: func(context.Context, models.GenerationRequest) (*models.GenerationResult, error) {
		return &models.GenerationResult{Mode: models.ModePoster, Poster: samplePoster()}, nil
	}}
	w := postJSON(setupChatRouter(gen), "/api/chat", `{"topic":123,"tone":true}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "123", gen.requests[0].Topic)
	assert.Equal(t, "true", gen.requests[0].Tone)
}

func TestChat_NonScalarTopicIsValidationError(t *testing.T) {
	gen := &fakeGenerator{}
	w := postJSON(setupChatRouter(gen), "/api/chat", `{"topic":{"x":1}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "topic is required")
	assert.Empty(t, gen.requests)
}

func TestChat_CountConversion(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{body: `{"topic":"t","count":7.9}`, want: 7},
		{body: `{"topic":"t","count":-3}`, want: 6},
		{body: `{"topic":"t","count":1e9}`, want: 20},
		{body: `{"topic":"t","count":null}`, want: 6},
		{body: `{"topic":"t","count":"8"}`, want: 6},
		{body: `{"topic":"t","count":true}`, want: 6},
		{body: `{"topic":"t","layout":"list","count":"3"}`, want: 8},
	}

	for _, tt := range tests {
		gen := &fakeGenerator{generateFunc: func(context.Context, models.GenerationRequest) (*models.GenerationResult, error) {
			return &models.GenerationResult{Mode: models.ModePoster, Poster: samplePoster()}, nil
		}}
		w := postJSON(setupChatRouter(gen), "/api/chat", tt.body)
		require.Equal(t, http.StatusOK, w.Code, tt.body)
		assert.Equal(t, tt.want, gen.requests[0].Count, tt.body)
	}
}

func TestChat_BadInputMakesNoCall(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "malformed json", body: `{"topic":`, wantErr: "Invalid JSON body"},
		{name: "missing topic", body: `{}`, wantErr: "topic is required"},
		{name: "blank topic", body: `{"topic":"   "}`, wantErr: "topic is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			w := postJSON(setupChatRouter(gen), "/api/chat", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantErr)
			assert.Empty(t, gen.requests)
		})
	}
}

func TestChat_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "config", err: &services.ConfigError{Message: "ZHIPU_API_KEY is not set"}, status: http.StatusInternalServerError},
		{name: "upstream", err: &llm.UpstreamError{StatusCode: 429, Message: "rate limited"}, status: http.StatusBadGateway},
		{name: "timeout", err: &llm.TimeoutError{Model: "glm-4"}, status: http.StatusGatewayTimeout},
		{name: "empty", err: &llm.EmptyContentError{Model: "glm-4"}, status: http.StatusUnprocessableEntity},
		{name: "parse", err: &llm.ParseError{Cause: errors.New("bad")}, status: http.StatusUnprocessableEntity},
		{name: "shape", err: &services.ShapeError{Mode: models.ModePoster}, status: http.StatusUnprocessableEntity},
		{name: "canceled", err: context.Canceled, status: http.StatusGatewayTimeout},
		{name: "unknown", err: errors.New("surprise"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{generateFunc: func(context.Context, models.GenerationRequest) (*models.GenerationResult, error) {
				return nil, tt.err
			}}
			w := postJSON(setupChatRouter(gen), "/api/chat", `{"topic":"海洋"}`)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestChat_UnknownErrorIsNotLeaked(t *testing.T) {
	gen := &fakeGenerator{generateFunc: func(context.Context, models.GenerationRequest) (*models.GenerationResult, error) {
		return nil, errors.New("dial tcp 10.0.0.1:443: secret detail")
	}}
	w := postJSON(setupChatRouter(gen), "/api/chat", `{"topic":"海洋"}`)
	assert.NotContains(t, w.Body.String(), "secret detail")
}

func TestChat_Options(t *testing.T) {
	w := httptest.NewRecorder()
	setupChatRouter(&fakeGenerator{}).ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/chat", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func parseEvents(t *testing.T, body string) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, chunk := range strings.Split(body, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		require.True(t, strings.HasPrefix(chunk, "data: "), chunk)
		var ev map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(chunk, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}

func TestChatStream_Success(t *testing.T) {
	gen := &fakeGenerator{streamFunc: func(_ context.Context, _ models.GenerationRequest, onDelta llm.DeltaCallback) (*models.GenerationResult, error) {
		_ = onDelta(`{"cards":[`)
		_ = onDelta(`]}`)
		return &models.GenerationResult{Mode: models.ModeList, Cards: nil}, nil
	}}

	w := postJSON(setupChatRouter(gen), "/api/chat/stream", `{"topic":"海洋"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	events := parseEvents(t, w.Body.String())
	require.Len(t, events, 4)
	assert.Equal(t, "delta", events[0]["type"])
	assert.Equal(t, `{"cards":[`, events[0]["content"])
	assert.Equal(t, "result", events[2]["type"])
	assert.Equal(t, []any{}, events[2]["cards"])
	assert.Equal(t, "done", events[3]["type"])

	assert.Equal(t, models.ModeList, gen.requests[0].Mode)
	assert.Equal(t, 8, gen.requests[0].Count)
}

func TestChatStream_Error(t *testing.T) {
	gen := &fakeGenerator{streamFunc: func(context.Context, models.GenerationRequest, llm.DeltaCallback) (*models.GenerationResult, error) {
		return nil, &llm.UpstreamError{StatusCode: 500, Message: "down"}
	}}

	w := postJSON(setupChatRouter(gen), "/api/chat/stream", `{"topic":"海洋"}`)
	events := parseEvents(t, w.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, "error", events[0]["type"])
	assert.Contains(t, events[0]["message"], "down")
	assert.Equal(t, "done", events[1]["type"])
}

func TestChatStream_ValidationBeforeStreaming(t *testing.T) {
	w := postJSON(setupChatRouter(&fakeGenerator{}), "/api/chat/stream", `{"topic":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}
