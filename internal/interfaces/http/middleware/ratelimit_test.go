package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hotelagreement/backend/internal/infrastructure/cache"
	"github.com/hotelagreement/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore always fails
type brokenStore struct{}

func (brokenStore) Allow(context.Context, string, int, time.Duration) (cache.RateLimitResult, error) {
	return cache.RateLimitResult{}, errors.New("connection refused")
}

func (brokenStore) Close() error { return nil }

func newRateLimitRouter(t *testing.T, cfg RateLimitConfig) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(RequestID(), RateLimit(cfg))
	router.POST("/generate-pdf", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func post(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/generate-pdf", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	t.Run("allows up to the limit then rejects", func(t *testing.T) {
		store := cache.NewInMemoryRateLimitStore()
		t.Cleanup(func() { _ = store.Close() })
		router := newRateLimitRouter(t, RateLimitConfig{Store: store, Limit: 2, Window: time.Minute})

		w := post(router, "10.0.0.1:1234")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))

		w = post(router, "10.0.0.1:1234")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

		w = post(router, "10.0.0.1:1234")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeRateLimited, resp.Code)
		assert.NotEmpty(t, resp.RequestID)
	})

	t.Run("counts clients separately", func(t *testing.T) {
		store := cache.NewInMemoryRateLimitStore()
		t.Cleanup(func() { _ = store.Close() })
		router := newRateLimitRouter(t, RateLimitConfig{Store: store, Limit: 1, Window: time.Minute})

		assert.Equal(t, http.StatusOK, post(router, "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusOK, post(router, "10.0.0.2:1234").Code)
		assert.Equal(t, http.StatusTooManyRequests, post(router, "10.0.0.1:1234").Code)
	})

	t.Run("custom key", func(t *testing.T) {
		store := cache.NewInMemoryRateLimitStore()
		t.Cleanup(func() { _ = store.Close() })
		router := newRateLimitRouter(t, RateLimitConfig{
			Store:   store,
			Limit:   1,
			Window:  time.Minute,
			KeyFunc: func(*gin.Context) string { return "everyone" },
		})

		assert.Equal(t, http.StatusOK, post(router, "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusTooManyRequests, post(router, "10.0.0.2:1234").Code)
	})

	t.Run("fails open when the store errors", func(t *testing.T) {
		router := newRateLimitRouter(t, RateLimitConfig{Store: brokenStore{}, Limit: 1, Window: time.Minute})

		for i := 0; i < 3; i++ {
			w := post(router, "10.0.0.1:1234")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
		}
	})

	t.Run("disabled without a store", func(t *testing.T) {
		router := newRateLimitRouter(t, RateLimitConfig{Limit: 1, Window: time.Minute})

		assert.Equal(t, http.StatusOK, post(router, "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusOK, post(router, "10.0.0.1:1234").Code)
	})
}
