// Package ratelimit provides per-key request limiting, in process with a
// token bucket or shared across instances through redis.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one limiter check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// RetryAfter is how long a rejected caller should wait.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.Reset.Before(now) {
		return 0
	}
	return d.Reset.Sub(now)
}

// Limiter counts one request for key and reports whether it may proceed.
type Limiter interface {
	Take(ctx context.Context, key string) (Decision, error)
}
