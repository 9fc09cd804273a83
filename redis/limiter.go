package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window request counter shared across instances.
// Each key gets one counter per window; the counter expires with the window.
type Limiter struct {
	client *Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewLimiter allows limit requests per key in each window.
func NewLimiter(client *Client, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: int64(limit), window: window, now: time.Now}
}

// Allow increments the counter for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := l.now().UnixNano() / int64(l.window)
	k := l.client.Key(fmt.Sprintf("ratelimit:%s:%d", key, slot))

	var incr *goredis.IntCmd
	_, err := l.client.Unwrap().TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.PExpire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis rate limit: %w", err)
	}
	return incr.Val() <= l.limit, nil
}
