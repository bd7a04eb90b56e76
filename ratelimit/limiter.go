// Package ratelimit counts requests per client over a sliding window.
package ratelimit

import (
	"context"
	"time"
)

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	// Allow records one request for key and reports whether it fits in the window.
	Allow(ctx context.Context, key string) (Result, error)
}

func newResult(limit, count int, retryAfter time.Duration) Result {

	result := Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(limit-count, 0),
	}

	if !result.Allowed {
		result.RetryAfter = max(retryAfter, time.Second)
	}

	return result
}
