package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicecal/models"
)

var day = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestMemoryCalendarCommitAndFetch(t *testing.T) {
	ctx := context.Background()
	cal := NewMemoryCalendar()

	id, err := cal.CommitEvent(ctx, "alice",
		models.TimeInterval{Start: at(10, 0), End: at(10, 30)}, "standup", []string{"John"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	events, err := cal.FetchEvents(ctx, "alice",
		models.TimeInterval{Start: at(9, 0), End: at(17, 0)})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "standup", events[0].Title)
	assert.Equal(t, []string{"John"}, events[0].Attendees)

	// Identities do not see each other's events.
	events, err = cal.FetchEvents(ctx, "bob",
		models.TimeInterval{Start: at(9, 0), End: at(17, 0)})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMemoryCalendarFetchFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	cal := NewMemoryCalendar()
	cal.Seed("alice", models.Event{Title: "late", Interval: models.TimeInterval{Start: at(14, 0), End: at(15, 0)}})
	cal.Seed("alice", models.Event{Title: "early", Interval: models.TimeInterval{Start: at(9, 0), End: at(9, 30)}})
	cal.Seed("alice", models.Event{Title: "outside", Interval: models.TimeInterval{Start: at(20, 0), End: at(21, 0)}})

	events, err := cal.FetchEvents(ctx, "alice",
		models.TimeInterval{Start: at(8, 0), End: at(17, 0)})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "early", events[0].Title)
	assert.Equal(t, "late", events[1].Title)
}

func TestMemoryCalendarRejectsInvalidInterval(t *testing.T) {
	cal := NewMemoryCalendar()
	_, err := cal.CommitEvent(context.Background(), "alice",
		models.TimeInterval{Start: at(10, 0), End: at(10, 0)}, "broken", nil)
	assert.ErrorIs(t, err, ErrCommitFailed)
}
