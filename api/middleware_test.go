package api

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newMiddlewareEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(mw...)
	e.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	e.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return e
}

func TestRequestIDMiddleware(t *testing.T) {
	e := newMiddlewareEngine(RequestIDMiddleware())

	t.Run("Should assign a uuid when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
		_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
	})
	t.Run("Should keep a caller supplied id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set(RequestIDHeader, "abc-123")
		e.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("Should echo an allowed origin with credentials", func(t *testing.T) {
		e := newMiddlewareEngine(CORSMiddleware([]string{"http://localhost:3000"}))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set("Origin", "http://localhost:3000")
		e.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})
	t.Run("Should not allow an unknown origin", func(t *testing.T) {
		e := newMiddlewareEngine(CORSMiddleware([]string{"http://localhost:3000"}))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set("Origin", "http://evil.example")
		e.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
	t.Run("Should drop credentials for a lone wildcard", func(t *testing.T) {
		e := newMiddlewareEngine(CORSMiddleware([]string{"*"}))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/ping", http.NoBody)
		req.Header.Set("Origin", "http://anything.example")
		e.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	e := newMiddlewareEngine(RateLimitMiddleware(2))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.RemoteAddr = "192.0.2.10:4000"
		e.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
	req.RemoteAddr = "192.0.2.11:4000"
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "limits are per client")
}

func TestLimiterSet_SharesBucketAcrossConcurrentFirstRequests(t *testing.T) {
	set := newLimiterSet(1)

	const workers = 16
	got := make([]*rate.Limiter, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = set.get("192.0.2.20")
		}()
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		require.Same(t, got[0], got[i])
	}

	allowed := 0
	for _, lim := range got {
		if lim.Allow() {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	e := newMiddlewareEngine(RateLimitMiddleware(0))
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
