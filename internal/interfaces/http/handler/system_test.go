package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping() error { return p.err }

func newSystemRouter(p Pinger) *gin.Engine {
	r := gin.New()
	api := r.Group("/api/v1")
	NewSystemHandler(p, "1.0.0").RegisterRoutes(api)
	return r
}

func TestHealth_OK(t *testing.T) {
	r := newSystemRouter(stubPinger{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"version":"1.0.0"`)
}

func TestHealth_DegradedOnPingFailure(t *testing.T) {
	r := newSystemRouter(stubPinger{err: errors.New("connection refused")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}
