// Package cache provides the shared counters behind request rate limiting.
// A Redis store is used when several server instances sit behind one address;
// the in-memory store serves single-instance deployments and tests.
package cache

import (
	"context"
	"time"
)

// RateLimitResult is the outcome of counting one request
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimitStore counts requests per key in fixed windows
type RateLimitStore interface {
	// Allow counts one request for key and reports whether it fits in the current window
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)
	Close() error
}

// resultFor builds a result from the post-increment count
func resultFor(count int64, limit int, resetAt time.Time) RateLimitResult {
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
