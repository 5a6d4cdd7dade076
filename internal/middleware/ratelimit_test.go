package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/smallsteps/backend/internal/apierror"
)

func TestRateLimiter_Middleware(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute, "auth")
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	r := gin.New()
	r.Use(limiter.Middleware())
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := do()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do().Code)

	now = now.Add(20 * time.Second)
	limited := do()
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "40", limited.Header().Get("Retry-After"))
	assert.Equal(t, apierror.ContentTypeProblemJSON, limited.Header().Get("Content-Type"))
	assert.Contains(t, limited.Body.String(), apierror.TypeRateLimit)

	now = now.Add(41 * time.Second)
	assert.Equal(t, http.StatusOK, do().Code)
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	limiter := NewRateLimiter(5, time.Second, "test")
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.allow("10.0.0.1")
	limiter.allow("10.0.0.2")
	now = now.Add(3 * time.Second)
	limiter.allow("10.0.0.3")

	assert.Equal(t, 2, limiter.evictIdle())
	assert.Len(t, limiter.requests, 1)
}
