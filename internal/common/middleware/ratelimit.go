package middleware

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds per-caller rate limit settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `envconfig:"RATE_LIMIT_RPS" default:"15"`
	Burst             int     `envconfig:"RATE_LIMIT_BURST" default:"30"`
}

// TokenBucket is an in-process RateLimiter with one bucket per key.
type TokenBucket struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*rate.Limiter
}

// NewTokenBucket creates a limiter from cfg.
func NewTokenBucket(cfg RateLimitConfig) *TokenBucket {
	return &TokenBucket{
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Allow consumes one token from key's bucket.
func (t *TokenBucket) Allow(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	l, ok := t.buckets[key]
	if !ok {
		l = rate.NewLimiter(t.limit, t.burst)
		t.buckets[key] = l
	}
	t.mu.Unlock()

	return l.Allow(), nil
}
