package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

func init() {
	gin.SetMode(gin.TestMode)
}

func newReviewHandler() (*handler.ReviewHandler, *mocks.MockReviewService) {
	mockSvc := new(mocks.MockReviewService)
	h := handler.NewReviewHandler(mockSvc)
	return h, mockSvc
}

// --- Create ---

func TestReviewHandler_Create_Success(t *testing.T) {
	h, mockSvc := newReviewHandler()

	expected := &domain.ReviewJob{
		ID:            uuid.New(),
		ExternalJobID: "ext-42",
		Name:          "Q3 vendor audit",
		State:         domain.JobProcessing,
		OverallStatus: domain.StatusLoading,
	}

	mockSvc.On("Register", mock.Anything, mock.MatchedBy(func(input *service.RegisterReviewInput) bool {
		return input.ExternalJobID == "ext-42" && input.Name == "Q3 vendor audit"
	})).Return(expected, nil)

	body, _ := json.Marshal(map[string]string{
		"external_job_id": "ext-42",
		"name":            "Q3 vendor audit",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp handler.APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	mockSvc.AssertExpectations(t)
}

func TestReviewHandler_Create_MissingExternalJobID(t *testing.T) {
	h, _ := newReviewHandler()

	body, _ := json.Marshal(map[string]string{"name": "no job id"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewHandler_Create_DuplicateJob(t *testing.T) {
	h, mockSvc := newReviewHandler()

	mockSvc.On("Register", mock.Anything, mock.Anything).
		Return(nil, domain.ErrDuplicateJob)

	body, _ := json.Marshal(map[string]string{"external_job_id": "ext-42"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp handler.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "DUPLICATE_JOB", resp.Error.Code)
}

// --- GetByID ---

func TestReviewHandler_GetByID_Success(t *testing.T) {
	h, mockSvc := newReviewHandler()

	jobID := uuid.New()
	snap := &service.ReviewSnapshot{
		Job: domain.ReviewJob{ID: jobID, ExternalJobID: "ext-42", State: domain.JobCompleted},
	}
	mockSvc.On("Get", mock.Anything, jobID).Return(snap, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reviews/"+jobID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestReviewHandler_GetByID_InvalidID(t *testing.T) {
	h, _ := newReviewHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reviews/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewHandler_GetByID_NotFound(t *testing.T) {
	h, mockSvc := newReviewHandler()

	jobID := uuid.New()
	mockSvc.On("Get", mock.Anything, jobID).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reviews/"+jobID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- List ---

func TestReviewHandler_List_Paginates(t *testing.T) {
	h, mockSvc := newReviewHandler()

	jobs := []domain.ReviewJob{{ID: uuid.New()}, {ID: uuid.New()}}
	mockSvc.On("List", mock.Anything, 0, 20).Return(jobs, 7, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reviews", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, 7, resp.Meta.Total)
	assert.Equal(t, 20, resp.Meta.Limit)
}

// --- Retry ---

func TestReviewHandler_Retry_Success(t *testing.T) {
	h, mockSvc := newReviewHandler()

	jobID := uuid.New()
	job := &domain.ReviewJob{ID: jobID, State: domain.JobProcessing}
	mockSvc.On("Retry", mock.Anything, jobID).Return(job, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/reviews/"+jobID.String()+"/retry", nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.Retry(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestReviewHandler_Retry_NotTerminal(t *testing.T) {
	h, mockSvc := newReviewHandler()

	jobID := uuid.New()
	mockSvc.On("Retry", mock.Anything, jobID).Return(nil, domain.ErrJobNotTerminal)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/reviews/"+jobID.String()+"/retry", nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.Retry(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

// --- Delete ---

func TestReviewHandler_Delete_Success(t *testing.T) {
	h, mockSvc := newReviewHandler()

	jobID := uuid.New()
	mockSvc.On("Teardown", mock.Anything, jobID).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/reviews/"+jobID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}
