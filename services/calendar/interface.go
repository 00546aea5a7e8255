// Package calendar is the boundary to the external calendar collaborator.
// The dialogue core only ever reads event snapshots and hands over committed
// intervals; write-conflict handling belongs to the collaborator.
package calendar

import (
	"context"
	"errors"

	"voicecal/models"
)

// ErrCommitFailed wraps any external write failure. The core never retries a
// failed commit; the session resets and the user is told.
var ErrCommitFailed = errors.New("calendar commit failed")

// CalendarService is the narrow collaborator interface consumed by the core.
type CalendarService interface {
	// FetchEvents returns a read-only snapshot of the identity's events
	// overlapping the window.
	FetchEvents(ctx context.Context, identity string, window models.TimeInterval) ([]models.Event, error)
	// CommitEvent writes a booking and returns the new event's ID.
	CommitEvent(ctx context.Context, identity string, interval models.TimeInterval, title string, attendees []string) (string, error)
}
