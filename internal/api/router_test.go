package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Conceptual-Machines/poster-api/internal/config"
	"github.com/Conceptual-Machines/poster-api/internal/llm"
	"github.com/Conceptual-Machines/poster-api/internal/metrics"
	"github.com/Conceptual-Machines/poster-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCaller struct {
	calls  int
	result map[string]any
}

func (s *stubCaller) Call(context.Context, llm.CallRequest) (*llm.CallResult, error) {
	s.calls++
	return &llm.CallResult{Parsed: s.result, Content: "{}"}, nil
}

func (s *stubCaller) Stream(ctx context.Context, req llm.CallRequest, _ llm.DeltaCallback) (*llm.CallResult, error) {
	return s.Call(ctx, req)
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{CORSAllowOrigin: "*", Region: "test-1"},
		Upstream: config.UpstreamConfig{Provider: config.ProviderOpenAI, Model: "glm-4", FallbackModel: config.FallbackModel},
		Budget: config.BudgetConfig{
			Overall:         55 * time.Second,
			Slice:           30 * time.Second,
			MinPrimarySlice: 8 * time.Second,
			FallbackReserve: 12 * time.Second,
			MinFallback:     7 * time.Second,
			FallbackMargin:  2 * time.Second,
		},
	}
}

func setup(caller services.Caller) (*gin.Engine, *metrics.Recorder) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	recorder := metrics.NewRecorder(nil, nil)
	generator := services.NewGenerator(services.Options{
		Budget:        cfg.Budget,
		PrimaryModel:  cfg.Upstream.Model,
		FallbackModel: cfg.Upstream.FallbackModel,
		Caller:        caller,
		Recorder:      recorder,
	})
	return SetupRouter(cfg, generator, recorder, "test"), recorder
}

func TestRouter_ChatEndToEnd(t *testing.T) {
	caller := &stubCaller{result: map[string]any{
		"poster": map[string]any{"title": "海洋", "sections": []any{}},
	}}
	router, recorder := setup(caller)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"topic":"海洋"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "海洋", body["poster"].(map[string]any)["title"])
	assert.Equal(t, 1, caller.calls)
	assert.EqualValues(t, 1, recorder.Snapshot().Generations)
}

func TestRouter_MissingKeyIsConfigError(t *testing.T) {
	router, _ := setup(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"topic":"海洋"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "configuration error")
}

func TestRouter_NonJSONUpstreamBodyIsUnprocessable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>gateway page</html>"))
	}))
	t.Cleanup(upstream.Close)

	router, _ := setup(llm.NewCaller(llm.NewOpenAIProvider("k", upstream.URL+"/", 0)))

	for _, body := range []string{`{"topic":"海洋"}`, `{"topic":"海洋","layout":"list"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "%s -> %s", body, w.Body.String())
		assert.NotContains(t, w.Body.String(), "Internal server error")
	}
}

func TestRouter_Preflight(t *testing.T) {
	router, _ := setup(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/chat", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "OPTIONS")
}

func TestRouter_InfoRoutes(t *testing.T) {
	router, _ := setup(nil)

	for _, path := range []string{"/health", "/api/whoami", "/api/metrics"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
