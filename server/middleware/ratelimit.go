package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/authgate/errors"
	"github.com/kbukum/authgate/logger"
)

// Limiter decides whether one more request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Limiter counts requests. Required.
	Limiter Limiter
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*gin.Context) string
	// Log receives limiter backend failures.
	Log *logger.Logger
}

// RateLimit rejects requests over the limit with RATE_LIMITED (429).
// A limiter backend error lets the request through and is logged.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	log := cfg.Log.WithComponent("ratelimit")

	return func(c *gin.Context) {
		key := c.FullPath() + "|" + cfg.KeyFunc(c)
		ok, err := cfg.Limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.WithContext(c.Request.Context()).Warn("Rate limiter unavailable, allowing request", logger.Fields(
				logger.FieldError, err.Error(),
			))
			c.Next()
			return
		}
		if !ok {
			abortWithError(c, apperrors.RateLimited())
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// MemoryLimiter is an in-process sliding-window limiter.
type MemoryLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryLimiter allows limit requests per key in any window-long interval.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	if now.Sub(l.lastSweep) > 5*l.window {
		l.sweep(cutoff)
		l.lastSweep = now
	}

	valid := filterByTime(l.requests[key], cutoff)
	if len(valid) >= l.limit {
		l.requests[key] = valid
		return false, nil
	}
	l.requests[key] = append(valid, now)
	return true, nil
}

// sweep drops keys with no requests inside the window. Caller holds mu.
func (l *MemoryLimiter) sweep(cutoff time.Time) {
	for key, times := range l.requests {
		valid := filterByTime(times, cutoff)
		if len(valid) == 0 {
			delete(l.requests, key)
		} else {
			l.requests[key] = valid
		}
	}
}

func filterByTime(times []time.Time, cutoff time.Time) []time.Time {
	result := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}
