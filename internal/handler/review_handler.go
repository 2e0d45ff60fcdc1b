package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reviewd/internal/middleware"
	"reviewd/internal/service"
)

// ReviewHandler handles review job endpoints.
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Create handles POST /api/v1/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req struct {
		ExternalJobID string `json:"external_job_id" binding:"required"`
		Name          string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "external_job_id is required")
		return
	}

	job, err := h.reviewService.Register(c.Request.Context(), &service.RegisterReviewInput{
		ExternalJobID: req.ExternalJobID,
		Name:          req.Name,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	log.Printf("reviewHandler: job %s registered for backend job %q by user %s",
		job.ID, job.ExternalJobID, middleware.GetUserID(c))
	RespondCreated(c, job)
}

// GetByID handles GET /api/v1/reviews/:id
func (h *ReviewHandler) GetByID(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid review job ID")
		return
	}

	snap, err := h.reviewService.Get(c.Request.Context(), jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, snap)
}

// List handles GET /api/v1/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	jobs, total, err := h.reviewService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, jobs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Retry handles POST /api/v1/reviews/:id/retry
func (h *ReviewHandler) Retry(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid review job ID")
		return
	}

	job, err := h.reviewService.Retry(c.Request.Context(), jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// Delete handles DELETE /api/v1/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid review job ID")
		return
	}

	if err := h.reviewService.Teardown(c.Request.Context(), jobID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "review job deleted"})
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
