package router

import (
	"github.com/gin-gonic/gin"

	"reviewd/internal/config"
	"reviewd/internal/handler"
	"reviewd/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	reviewH *handler.ReviewHandler,
	reportH *handler.ReportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(&cfg.JWT))

	reviews := protected.Group("/reviews")
	reviews.POST("", reviewH.Create)
	reviews.GET("", reviewH.List)
	reviews.GET("/:id", reviewH.GetByID)
	reviews.POST("/:id/retry", reviewH.Retry)
	reviews.DELETE("/:id", reviewH.Delete)
	reviews.GET("/:id/report", reportH.GetReport)
	reviews.GET("/:id/export", reportH.Export)

	return r
}
