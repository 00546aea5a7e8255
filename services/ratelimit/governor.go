// Package ratelimit holds the per-identity admission guard in front of the
// dialogue endpoint.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrRateLimitExceeded signals the caller to back off. Session state is
// never touched when this fires.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// CounterStore is the governor's storage seam: a process-local map today, a
// shared Redis counter tomorrow, without touching session logic.
type CounterStore interface {
	// Incr bumps the identity's counter for a window bucket and returns the
	// new value. ttl bounds how long dead buckets linger.
	Incr(ctx context.Context, identity string, bucket int64, ttl time.Duration) (int64, error)
	// Get reads a bucket's counter without mutating it.
	Get(ctx context.Context, identity string, bucket int64) (int64, error)
}

// Governor admits at most limit requests per identity per rolling window,
// using the weighted two-bucket sliding-window approximation.
type Governor struct {
	store  CounterStore
	limit  int
	window time.Duration
	logger *zap.Logger
}

func NewGovernor(store CounterStore, limit int, window time.Duration, logger *zap.Logger) *Governor {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Governor{store: store, limit: limit, window: window, logger: logger}
}

// Allow reports whether one more request from identity fits in the rolling
// window ending at now. The governor is advisory: on storage failure it
// fails open rather than blocking the dialogue path.
func (g *Governor) Allow(ctx context.Context, identity string, now time.Time) bool {
	windowSec := int64(g.window / time.Second)
	bucket := now.Unix() / windowSec

	current, err := g.store.Incr(ctx, identity, bucket, 2*g.window)
	if err != nil {
		g.logger.Warn("rate counter unavailable, admitting", zap.String("identity", identity), zap.Error(err))
		return true
	}
	previous, err := g.store.Get(ctx, identity, bucket-1)
	if err != nil {
		previous = 0
	}

	elapsed := float64(now.Unix()-bucket*windowSec) / float64(windowSec)
	weighted := float64(previous)*(1-elapsed) + float64(current)
	if weighted > float64(g.limit) {
		g.logger.Warn("rate limit exceeded", zap.String("identity", identity))
		return false
	}
	return true
}
