package schedule

import (
	"sort"

	"voicecal/models"
)

// Detect checks a candidate interval against a read-only snapshot of existing
// events. Two intervals conflict iff candidate.Start < e.End && e.Start <
// candidate.End, so touching boundaries are fine. Conflicting events come
// back ordered by start time ascending, ties keeping input order, which keeps
// alternative generation deterministic.
func Detect(candidate models.TimeInterval, existing []models.Event) (models.ConflictReport, error) {
	if !candidate.Valid() {
		return models.ConflictReport{}, ErrInvalidInterval
	}

	var conflicts []models.Event
	for _, e := range existing {
		if candidate.Overlaps(e.Interval) {
			conflicts = append(conflicts, e)
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].Interval.Start.Before(conflicts[j].Interval.Start)
	})

	return models.ConflictReport{ConflictingEvents: conflicts}, nil
}
