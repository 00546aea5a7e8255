package calendar

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"voicecal/models"
)

// MemoryCalendar is the in-process calendar backend, used in standalone mode
// and in tests.
type MemoryCalendar struct {
	mu     sync.RWMutex
	events map[string][]models.Event // identity -> events
}

func NewMemoryCalendar() *MemoryCalendar {
	return &MemoryCalendar{events: make(map[string][]models.Event)}
}

// Seed inserts an event directly, bypassing commit semantics.
func (c *MemoryCalendar) Seed(identity string, event models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	c.events[identity] = append(c.events[identity], event)
}

func (c *MemoryCalendar) FetchEvents(_ context.Context, identity string, window models.TimeInterval) ([]models.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var snapshot []models.Event
	for _, e := range c.events[identity] {
		if e.Interval.Overlaps(window) {
			snapshot = append(snapshot, e)
		}
	}
	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].Interval.Start.Before(snapshot[j].Interval.Start)
	})
	return snapshot, nil
}

func (c *MemoryCalendar) CommitEvent(_ context.Context, identity string, interval models.TimeInterval, title string, attendees []string) (string, error) {
	if !interval.Valid() {
		return "", ErrCommitFailed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	id := uuid.New().String()
	c.events[identity] = append(c.events[identity], models.Event{
		ID:        id,
		Interval:  interval,
		Title:     title,
		Attendees: attendees,
		Priority:  models.PriorityNormal,
	})
	return id, nil
}
