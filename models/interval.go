package models

import "time"

// TimeInterval is a half-open [Start, End) interval. Invariant: Start < End.
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether the interval satisfies Start < End.
func (i TimeInterval) Valid() bool {
	return i.Start.Before(i.End)
}

// Overlaps reports whether the two intervals share any time.
// Touching boundaries (i.End == o.Start) do not overlap.
func (i TimeInterval) Overlaps(o TimeInterval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Duration returns the interval length.
func (i TimeInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Label renders the interval for prompts, e.g. "Mon Jan 2 10:00 - 10:30".
func (i TimeInterval) Label() string {
	return i.Start.Format("Mon Jan 2 15:04") + " - " + i.End.Format("15:04")
}
