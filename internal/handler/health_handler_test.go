package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"

	"reviewd/internal/handler"
	"reviewd/mocks"
)

func TestHealthHandler_Liveness(t *testing.T) {
	mockSvc := new(mocks.MockReviewService)
	h := handler.NewHealthHandler(nil, mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/healthz", nil)

	h.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_ReadinessReportsActivePolls(t *testing.T) {
	mockSvc := new(mocks.MockReviewService)
	mockSvc.On("ActivePolls").Return(3)

	// sqlx opens lazily, the ping against an unroutable address fails.
	db, err := sqlx.Open("pgx", "postgres://reviewd@127.0.0.1:1/reviewd?sslmode=disable")
	require.NoError(t, err)
	defer db.Close()

	h := handler.NewHealthHandler(db, mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/readyz", nil)

	h.Readiness(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body["status"])
	assert.Equal(t, float64(3), body["active_polls"])
	mockSvc.AssertExpectations(t)
}
