package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryCounterStore keeps window counters in a process-local map. Counters
// do not survive restarts; that is acceptable for an advisory guard.
type MemoryCounterStore struct {
	mu      sync.Mutex
	buckets map[string]map[int64]int64
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{buckets: make(map[string]map[int64]int64)}
}

func (s *MemoryCounterStore) Incr(_ context.Context, identity string, bucket int64, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counters, ok := s.buckets[identity]
	if !ok {
		counters = make(map[int64]int64)
		s.buckets[identity] = counters
	}
	counters[bucket]++
	// Only the current and previous buckets matter; drop the rest.
	for b := range counters {
		if b < bucket-1 {
			delete(counters, b)
		}
	}
	return counters[bucket], nil
}

func (s *MemoryCounterStore) Get(_ context.Context, identity string, bucket int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buckets[identity][bucket], nil
}
