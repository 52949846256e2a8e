package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UpstreamStatus describes the configured upstream for health checks
type UpstreamStatus struct {
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	FallbackModel string `json:"fallback_model"`
	Configured    bool   `json:"configured"`
}

// HealthHandler reports liveness and upstream configuration
type HealthHandler struct {
	upstream UpstreamStatus
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(upstream UpstreamStatus) *HealthHandler {
	return &HealthHandler{upstream: upstream}
}

// HealthCheck returns the health status of the API. A missing API key is
// reported but does not make the process unhealthy.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"upstream": h.upstream,
	})
}
