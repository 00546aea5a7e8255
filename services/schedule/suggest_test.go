package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicecal/models"
)

var businessHours = WorkHours{StartMin: 540, EndMin: 1020} // 9:00-17:00

func TestSuggestNextSlotAfterBusyOne(t *testing.T) {
	existing := []models.Event{ev("dentist", iv(1, 10, 0, 10, 30))}
	candidate := iv(1, 10, 0, 10, 30)

	slots := Suggest(candidate, existing, 30, 7, businessHours, 30, 3)
	require.Len(t, slots, 3)
	assert.Equal(t, at(1, 10, 30), slots[0].Start)
	assert.Equal(t, at(1, 11, 0), slots[0].End)
}

func TestSuggestSlotsNeverConflictAndAreOrdered(t *testing.T) {
	existing := []models.Event{
		ev("a", iv(1, 9, 0, 12, 0)),
		ev("b", iv(1, 13, 0, 16, 30)),
	}
	candidate := iv(1, 9, 0, 10, 0)

	slots := Suggest(candidate, existing, 60, 7, businessHours, 30, 3)
	require.NotEmpty(t, slots)
	for i, slot := range slots {
		report, err := Detect(slot, existing)
		require.NoError(t, err)
		assert.False(t, report.HasConflicts(), "slot %d conflicts", i)
		if i > 0 {
			assert.True(t, slots[i-1].Start.Before(slot.Start), "slots out of order")
		}
	}
	// First hour free after "a" is noon.
	assert.Equal(t, at(1, 12, 0), slots[0].Start)
}

func TestSuggestScanStartsAtCandidateThenRollsToNextDay(t *testing.T) {
	candidate := iv(0, 16, 0, 16, 30)

	slots := Suggest(candidate, nil, 30, 7, businessHours, 30, 3)
	require.Len(t, slots, 3)
	assert.Equal(t, at(0, 16, 0), slots[0].Start)
	assert.Equal(t, at(0, 16, 30), slots[1].Start)
	assert.Equal(t, at(1, 9, 0), slots[2].Start)
}

func TestSuggestEmptyWhenHorizonFullyBooked(t *testing.T) {
	// A 30-minute daily window, booked solid on both days in the horizon.
	narrow := WorkHours{StartMin: 540, EndMin: 570}
	existing := []models.Event{
		ev("d0", iv(0, 9, 0, 9, 30)),
		ev("d1", iv(1, 9, 0, 9, 30)),
	}

	slots := Suggest(iv(0, 9, 0, 9, 30), existing, 30, 2, narrow, 30, 3)
	assert.Empty(t, slots)
}

func TestSuggestSkipsDaysTooShortForDuration(t *testing.T) {
	narrow := WorkHours{StartMin: 540, EndMin: 570}

	slots := Suggest(iv(0, 9, 0, 10, 0), nil, 60, 3, narrow, 30, 3)
	assert.Empty(t, slots)
}

func TestSuggestGuardsDegenerateInputs(t *testing.T) {
	assert.Nil(t, Suggest(iv(0, 10, 0, 10, 30), nil, 0, 7, businessHours, 30, 3))
	assert.Nil(t, Suggest(iv(0, 10, 0, 10, 30), nil, 30, 0, businessHours, 30, 3))
	assert.Nil(t, Suggest(iv(0, 10, 0, 10, 30), nil, 30, 7, businessHours, 30, 0))
}
