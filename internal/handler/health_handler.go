package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"reviewd/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db      *sqlx.DB
	reviews service.ReviewService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB, reviews service.ReviewService) *HealthHandler {
	return &HealthHandler{db: db, reviews: reviews}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. Besides the database ping it reports how
// many review jobs currently have a live poll loop, which operators watch
// during drains.
func (h *HealthHandler) Readiness(c *gin.Context) {
	activePolls := h.reviews.ActivePolls()
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":       "unavailable",
			"error":        "database not reachable",
			"active_polls": activePolls,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "active_polls": activePolls})
}
