package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window counter shared by every instance using the same
// redis database.
type Redis struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedis(client *redis.Client, limit int, window time.Duration, keyPrefix string) *Redis {
	return &Redis{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: keyPrefix,
	}
}

// Take increments the counter for key in the current window.
func (r *Redis) Take(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	windowStart := now.Truncate(r.window)
	redisKey := fmt.Sprintf("%s:%s:%d", r.keyPrefix, key, windowStart.Unix())

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit check: %w", err)
	}

	count := int(incr.Val())
	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= r.limit,
		Limit:     r.limit,
		Remaining: remaining,
		Reset:     windowStart.Add(r.window),
	}, nil
}
