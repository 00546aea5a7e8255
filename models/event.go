package models

// EventPriority classifies how movable an event is.
type EventPriority string

const (
	PriorityLow    EventPriority = "low"
	PriorityNormal EventPriority = "normal"
	PriorityHigh   EventPriority = "high"
)

// Event is a committed calendar entry. Events are owned by the calendar
// collaborator; the core only ever sees them as a read-only snapshot.
type Event struct {
	ID        string        `json:"id,omitempty"`
	Interval  TimeInterval  `json:"interval"`
	Title     string        `json:"title"`
	Attendees []string      `json:"attendees,omitempty"`
	Priority  EventPriority `json:"priority,omitempty"`
}

// ConflictReport is the outcome of one conflict check. Ephemeral, never stored.
type ConflictReport struct {
	ConflictingEvents     []Event        `json:"conflictingEvents"`
	SuggestedAlternatives []TimeInterval `json:"suggestedAlternatives,omitempty"`
}

// HasConflicts reports whether the candidate collided with anything.
func (r ConflictReport) HasConflicts() bool {
	return len(r.ConflictingEvents) > 0
}
