package models

import "time"

// SessionState is the dialogue state machine position.
type SessionState string

const (
	StateIdle                SessionState = "IDLE"
	StateTriggerDetected     SessionState = "TRIGGER_DETECTED" // transient
	StateCapturing           SessionState = "CAPTURING"
	StateProcessing          SessionState = "PROCESSING" // transient
	StateAwaitingField       SessionState = "AWAITING_FIELD"
	StateAwaitingConflictRes SessionState = "AWAITING_CONFLICT_RESOLUTION"
	StateResponding          SessionState = "RESPONDING"
)

// DialogueSession holds one identity's in-progress dialogue. At most one
// session exists per identity; a new trigger resets it rather than forking.
type DialogueSession struct {
	SessionID string       `json:"sessionId"`
	Identity  string       `json:"identity"`
	State     SessionState `json:"state"`

	Booking      PartialBooking `json:"booking"`
	AwaitedField string         `json:"awaitedField,omitempty"`

	// Pending conflict context while in AWAITING_CONFLICT_RESOLUTION.
	PendingConflicts    []Event        `json:"pendingConflicts,omitempty"`
	PendingAlternatives []TimeInterval `json:"pendingAlternatives,omitempty"`

	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	TurnCount      int       `json:"turnCount"` // diagnostic only
}

// Expired reports whether the session idled past the timeout.
func (s *DialogueSession) Expired(now time.Time, idleTimeout time.Duration) bool {
	return now.Sub(s.LastActivityAt) > idleTimeout
}
