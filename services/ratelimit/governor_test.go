package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// Minute-aligned so the sliding-window weight of the previous bucket is zero.
var windowStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestGovernorDeniesAboveLimit(t *testing.T) {
	g := NewGovernor(NewMemoryCounterStore(), 60, time.Minute, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		assert.True(t, g.Allow(ctx, "alice", windowStart), "request %d should be admitted", i+1)
	}
	assert.False(t, g.Allow(ctx, "alice", windowStart), "61st request should be denied")
}

func TestGovernorTracksIdentitiesIndependently(t *testing.T) {
	g := NewGovernor(NewMemoryCounterStore(), 2, time.Minute, zap.NewNop())
	ctx := context.Background()

	assert.True(t, g.Allow(ctx, "alice", windowStart))
	assert.True(t, g.Allow(ctx, "alice", windowStart))
	assert.False(t, g.Allow(ctx, "alice", windowStart))

	assert.True(t, g.Allow(ctx, "bob", windowStart))
}

func TestGovernorSlidingWindowWeighsPreviousBucket(t *testing.T) {
	g := NewGovernor(NewMemoryCounterStore(), 60, time.Minute, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		assert.True(t, g.Allow(ctx, "alice", windowStart))
	}

	// Halfway into the next bucket the previous one still counts at 50%,
	// so only 30 more requests fit.
	halfway := windowStart.Add(90 * time.Second)
	for i := 0; i < 30; i++ {
		assert.True(t, g.Allow(ctx, "alice", halfway), "request %d in new bucket should be admitted", i+1)
	}
	assert.False(t, g.Allow(ctx, "alice", halfway))
}

func TestGovernorWindowFullyRolls(t *testing.T) {
	g := NewGovernor(NewMemoryCounterStore(), 2, time.Minute, zap.NewNop())
	ctx := context.Background()

	assert.True(t, g.Allow(ctx, "alice", windowStart))
	assert.True(t, g.Allow(ctx, "alice", windowStart))
	assert.False(t, g.Allow(ctx, "alice", windowStart))

	// Two full windows later nothing lingers.
	later := windowStart.Add(2 * time.Minute)
	assert.True(t, g.Allow(ctx, "alice", later))
}

type brokenStore struct{}

func (brokenStore) Incr(context.Context, string, int64, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func (brokenStore) Get(context.Context, string, int64) (int64, error) {
	return 0, errors.New("store down")
}

func TestGovernorFailsOpenOnStoreError(t *testing.T) {
	g := NewGovernor(brokenStore{}, 1, time.Minute, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.True(t, g.Allow(ctx, "alice", windowStart))
	}
}

func TestMemoryCounterStorePrunesOldBuckets(t *testing.T) {
	s := NewMemoryCounterStore()
	ctx := context.Background()

	_, err := s.Incr(ctx, "alice", 100, time.Minute)
	assert.NoError(t, err)
	_, err = s.Incr(ctx, "alice", 102, time.Minute)
	assert.NoError(t, err)

	old, err := s.Get(ctx, "alice", 100)
	assert.NoError(t, err)
	assert.Zero(t, old)

	current, err := s.Get(ctx, "alice", 102)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, current)
}
