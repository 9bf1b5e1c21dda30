package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pricecompare/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, limiter *IPRateLimiter, logger zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.NoRoute(handler.NotFound)

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(limiter))
	{
		api.GET("/health", handler.HealthCheck)
		api.GET("/search", handler.Search)
		api.GET("/:source/search", handler.SearchSource)
	}

	return router
}
