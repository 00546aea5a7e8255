package schedule

import (
	"time"

	"voicecal/models"
)

// WorkHours is the daily time-of-day range eligible for alternative slots,
// in minutes from midnight (e.g. 540-1020 for 9:00-17:00).
type WorkHours struct {
	StartMin int
	EndMin   int
}

// windowFor instantiates the work-hours window on a concrete day.
func (w WorkHours) windowFor(dayMidnight time.Time) (time.Time, time.Time) {
	return dayMidnight.Add(time.Duration(w.StartMin) * time.Minute),
		dayMidnight.Add(time.Duration(w.EndMin) * time.Minute)
}

// Suggest scans forward from candidate.Start in fixed stepMin increments
// within each day's work-hours window, for up to searchDays days, and
// collects the first maxSlots conflict-free durationMin intervals,
// earliest-first. Days whose window cannot hold the duration are skipped.
// An empty result means no availability inside the horizon; that is not an
// error and callers must handle it explicitly.
//
// This is a greedy exhaustive scan, not an optimizer: it trades packing
// quality for sub-second interactive latency.
func Suggest(candidate models.TimeInterval, existing []models.Event, durationMin, searchDays int, hours WorkHours, stepMin, maxSlots int) []models.TimeInterval {
	if durationMin <= 0 || searchDays <= 0 || maxSlots <= 0 {
		return nil
	}
	if stepMin <= 0 {
		stepMin = 30
	}
	duration := time.Duration(durationMin) * time.Minute
	step := time.Duration(stepMin) * time.Minute

	start := candidate.Start
	dayZero := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	var slots []models.TimeInterval
	for dayOffset := 0; dayOffset < searchDays; dayOffset++ {
		winStart, winEnd := hours.windowFor(dayZero.AddDate(0, 0, dayOffset))
		if !winStart.Add(duration).Before(winEnd) && !winStart.Add(duration).Equal(winEnd) {
			// Window too small (or inverted) for this duration.
			continue
		}

		cursor := winStart
		if dayOffset == 0 && start.After(winStart) {
			cursor = start
		}

		for !cursor.Add(duration).After(winEnd) {
			slot := models.TimeInterval{Start: cursor, End: cursor.Add(duration)}
			report, err := Detect(slot, existing)
			if err != nil {
				return slots
			}
			if !report.HasConflicts() {
				slots = append(slots, slot)
				if len(slots) >= maxSlots {
					return slots
				}
			}
			cursor = cursor.Add(step)
		}
	}
	return slots
}
