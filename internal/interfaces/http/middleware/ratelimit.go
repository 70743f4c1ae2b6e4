package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hotelagreement/backend/internal/infrastructure/cache"
	"github.com/hotelagreement/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RateLimitConfig configures the rate limiting middleware
type RateLimitConfig struct {
	// Store counts requests; shared across instances when backed by Redis
	Store cache.RateLimitStore
	// Limit is the number of requests allowed per Window
	Limit  int
	Window time.Duration
	// KeyFunc derives the counter key; defaults to the client IP
	KeyFunc func(*gin.Context) string
	Logger  *zap.Logger
}

// RateLimit returns a rate limiting middleware.
// When the store fails the request is let through and the failure logged.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Store == nil || cfg.Limit <= 0 || cfg.Window <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		result, err := cfg.Store.Allow(c.Request.Context(), keyFunc(c), cfg.Limit, cfg.Window)
		if err != nil {
			logger.Warn("rate limit store unavailable, allowing request",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(math.Ceil(time.Until(result.ResetAt).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
			return
		}

		c.Next()
	}
}
