package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"reviewd/internal/domain"
	"reviewd/internal/handler"
	"reviewd/internal/service"
	"reviewd/mocks"
)

func TestReportHandler_Export_StreamsCSV(t *testing.T) {
	mockSvc := new(mocks.MockReviewService)
	h := handler.NewReportHandler(mockSvc, nil)

	jobID := uuid.New()
	snap := &service.ReviewSnapshot{
		Job: domain.ReviewJob{ID: jobID, Name: "Q3 audit", State: domain.JobCompleted},
		Result: &domain.ReviewResult{
			Materials: []domain.Material{
				{ID: "m1", Name: "License", Status: domain.StatusPassed,
					Items: []domain.Item{{ID: "i1", Name: "Front", Status: domain.StatusPassed}}},
			},
		},
	}
	mockSvc.On("Get", mock.Anything, jobID).Return(snap, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reviews/"+jobID.String()+"/export", nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Q3_audit_")

	body := w.Body.String()
	assert.True(t, strings.Contains(body, "Material ID"))
	assert.True(t, strings.Contains(body, "m1"))
	assert.True(t, strings.Contains(body, "i1"))
}

func TestReportHandler_Export_NoResult(t *testing.T) {
	mockSvc := new(mocks.MockReviewService)
	h := handler.NewReportHandler(mockSvc, nil)

	jobID := uuid.New()
	snap := &service.ReviewSnapshot{
		Job: domain.ReviewJob{ID: jobID, State: domain.JobProcessing},
	}
	mockSvc.On("Get", mock.Anything, jobID).Return(snap, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reviews/"+jobID.String()+"/export", nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.Export(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReportHandler_GetReport_InvalidFormat(t *testing.T) {
	mockSvc := new(mocks.MockReviewService)
	h := handler.NewReportHandler(mockSvc, nil)

	jobID := uuid.New()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reviews/"+jobID.String()+"/report?format=docx", nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.GetReport(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_GetReport_JobNotTerminal(t *testing.T) {
	mockSvc := new(mocks.MockReviewService)
	h := handler.NewReportHandler(mockSvc, nil)

	jobID := uuid.New()
	snap := &service.ReviewSnapshot{
		Job: domain.ReviewJob{ID: jobID, State: domain.JobProcessing},
	}
	mockSvc.On("Get", mock.Anything, jobID).Return(snap, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reviews/"+jobID.String()+"/report?format=pdf", nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.GetReport(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}
