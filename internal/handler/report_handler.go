package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reviewd/internal/domain"
	"reviewd/internal/export"
	"reviewd/internal/service"
)

// ReportHandler handles report download and CSV export endpoints.
type ReportHandler struct {
	reviewService service.ReviewService
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reviewService service.ReviewService, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reviewService: reviewService, reportService: reportService}
}

// GetReport handles GET /api/v1/reviews/:id/report?format=pdf|html
// It fetches the rendered report from the backend, archives it in object
// storage, and returns a presigned download URL alongside the upstream URL.
func (h *ReportHandler) GetReport(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid review job ID")
		return
	}

	format := domain.ReportFormat(c.DefaultQuery("format", string(domain.ReportFormatPDF)))
	if !domain.ValidReportFormat(format) {
		HandleError(c, domain.ErrInvalidReportFormat)
		return
	}

	snap, err := h.reviewService.Get(c.Request.Context(), jobID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if !snap.Job.State.Terminal() {
		HandleError(c, domain.ErrJobNotTerminal)
		return
	}
	if snap.Job.State == domain.JobFailed {
		HandleError(c, domain.ErrJobFailed)
		return
	}

	archivedURL, err := h.reportService.Archive(c.Request.Context(), jobID, snap.Job.ExternalJobID, format)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"format":       format,
		"download_url": archivedURL,
		"source_url":   h.reportService.DownloadURL(snap.Job.ExternalJobID, format),
	})
}

// Export handles GET /api/v1/reviews/:id/export
// Streams the canonical materials of a completed job as CSV.
func (h *ReportHandler) Export(c *gin.Context) {
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

	result := snap.Result
	if result == nil && len(snap.Job.Result) > 0 {
		var parsed domain.ReviewResult
		if err := json.Unmarshal(snap.Job.Result, &parsed); err == nil {
			result = &parsed
		}
	}
	if result == nil {
		HandleError(c, domain.ErrResultNotReady)
		return
	}

	name := snap.Job.Name
	if name == "" {
		name = snap.Job.ExternalJobID
	}
	filename := export.BuildFilename(name)

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(export.BOM); err != nil {
		return
	}
	w := export.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteMaterials(result.Materials); err != nil {
		return
	}
	w.Flush()
}
