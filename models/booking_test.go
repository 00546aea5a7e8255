package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMissingFieldsOrder(t *testing.T) {
	b := NewPartialBooking()
	assert.Equal(t, []string{FieldTitle, FieldDate, FieldTime}, b.MissingFields())
	assert.False(t, b.Complete())

	b.TitleState = FieldPresent
	assert.Equal(t, []string{FieldDate, FieldTime}, b.MissingFields())

	// A cleared field counts as missing again.
	b.DateState = FieldPresent
	b.TimeState = FieldPresent
	assert.True(t, b.Complete())
	b.TimeState = FieldCleared
	assert.Equal(t, []string{FieldTime}, b.MissingFields())
}

func TestBookingInterval(t *testing.T) {
	b := NewPartialBooking()
	b.Date = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	b.TimeOfDayMin = 600

	got := b.Interval(30)
	assert.Equal(t, time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), got.Start)
	assert.Equal(t, time.Date(2026, 3, 3, 10, 30, 0, 0, time.UTC), got.End)

	b.DurationMinutes = 45
	b.DurationState = FieldPresent
	got = b.Interval(30)
	assert.Equal(t, 45*time.Minute, got.Duration())
}

func TestIntervalOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	mk := func(startMin, endMin int) TimeInterval {
		return TimeInterval{
			Start: base.Add(time.Duration(startMin) * time.Minute),
			End:   base.Add(time.Duration(endMin) * time.Minute),
		}
	}

	assert.True(t, mk(0, 30).Overlaps(mk(15, 45)))
	assert.True(t, mk(0, 60).Overlaps(mk(15, 30)))
	assert.False(t, mk(0, 30).Overlaps(mk(30, 60)), "touching boundaries do not overlap")
	assert.False(t, mk(0, 30).Overlaps(mk(45, 60)))

	assert.True(t, mk(0, 30).Valid())
	assert.False(t, mk(30, 30).Valid())
	assert.False(t, mk(30, 0).Valid())
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := &DialogueSession{LastActivityAt: now.Add(-90 * time.Second)}

	assert.False(t, s.Expired(now, 2*time.Minute))
	assert.True(t, s.Expired(now, time.Minute))
}
