package models

// StartSessionRequest is the payload for POST /api/dialogue/session.
type StartSessionRequest struct {
	Identity string `json:"identity" binding:"required"`
}

// UtteranceRequest is the payload for submitting one dialogue turn.
type UtteranceRequest struct {
	Text string `json:"text" binding:"required"`
}

// TurnResult is what one dialogue turn returns to the caller.
type TurnResult struct {
	SessionID      string         `json:"sessionId"`
	State          SessionState   `json:"state"`
	Prompt         string         `json:"prompt,omitempty"`
	Alternatives   []TimeInterval `json:"alternatives,omitempty"`
	CommittedEvent *Event         `json:"committedEvent,omitempty"`
}

// SessionStateResult describes a session to the caller (start/end endpoints).
type SessionStateResult struct {
	SessionID       string       `json:"sessionId"`
	Identity        string       `json:"identity"`
	State           SessionState `json:"state"`
	SilenceWindowMS int          `json:"silenceWindowMs"` // auto-submit hint for the voice layer
}

// ReminderPayload is the asynq task body for a spoken booking reminder.
type ReminderPayload struct {
	Identity string `json:"identity"`
	EventID  string `json:"eventId"`
	Title    string `json:"title"`
	StartISO string `json:"startIso"`
}
