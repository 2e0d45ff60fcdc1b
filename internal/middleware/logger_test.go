package middleware_test

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"reviewd/internal/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

func TestLogger_LogsRoutePatternNotRawPath(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger())
	r.GET("/api/v1/reviews/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews/3f1c2d88", nil)
	r.ServeHTTP(w, req)

	assert.Contains(t, buf.String(), "/api/v1/reviews/:id")
	assert.NotContains(t, buf.String(), "3f1c2d88")
	assert.Contains(t, buf.String(), "status=200")
}

func TestLogger_FallsBackToRawPathForUnmatchedRoute(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	r.ServeHTTP(w, req)

	assert.Contains(t, buf.String(), "/nowhere")
	assert.Contains(t, buf.String(), "status=404")
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-7")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-7", w.Header().Get("X-Request-ID"))
}
