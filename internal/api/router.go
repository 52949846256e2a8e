package api

import (
	"github.com/Conceptual-Machines/poster-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/poster-api/internal/api/middleware"
	"github.com/Conceptual-Machines/poster-api/internal/config"
	"github.com/Conceptual-Machines/poster-api/internal/metrics"
	"github.com/Conceptual-Machines/poster-api/internal/services"
	"github.com/gin-gonic/gin"
)

func SetupRouter(cfg *config.Config, generator *services.Generator, recorder *metrics.Recorder, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(recorder))

	router.Use(apimiddleware.CORS(cfg.Server.CORSAllowOrigin))

	healthHandler := handlers.NewHealthHandler(handlers.UpstreamStatus{
		Provider:      cfg.Upstream.Provider,
		Model:         generator.PrimaryModel(),
		FallbackModel: generator.FallbackModel(),
		Configured:    generator.Configured(),
	})
	router.GET("/health", healthHandler.HealthCheck)

	metricsHandler := handlers.NewMetricsHandler(version, recorder.Snapshot)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	whoamiHandler := handlers.NewWhoAmIHandler(version, cfg.Server.Region)
	router.GET("/api/whoami", whoamiHandler.WhoAmI)

	chatHandler := handlers.NewChatHandler(generator)
	router.POST("/api/chat", chatHandler.Chat)
	router.OPTIONS("/api/chat", chatHandler.Options)
	router.POST("/api/chat/stream", chatHandler.ChatStream)
	router.OPTIONS("/api/chat/stream", chatHandler.Options)

	return router
}
