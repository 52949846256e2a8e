package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// WhoAmIHandler reports where and on what the service runs
type WhoAmIHandler struct {
	version string
	region  string
	now     func() time.Time
}

// NewWhoAmIHandler creates a new whoami handler
func NewWhoAmIHandler(version, region string) *WhoAmIHandler {
	return &WhoAmIHandler{version: version, region: region, now: time.Now}
}

// WhoAmI returns runtime, region and server time in epoch milliseconds
func (h *WhoAmIHandler) WhoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"runtime":    "go",
		"go_version": runtime.Version(),
		"version":    h.version,
		"region":     h.region,
		"now":        h.now().UnixMilli(),
	})
}
