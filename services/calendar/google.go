package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"voicecal/models"
)

// GoogleCalendar implements CalendarService against the Google Calendar API.
type GoogleCalendar struct {
	service    *calendar.Service
	calendarID string
}

// NewGoogleCalendar builds a client from a service account credentials file.
// defaultCalendarID is used when an identity is not itself a calendar ID.
func NewGoogleCalendar(ctx context.Context, credentialsFile, defaultCalendarID string) (*GoogleCalendar, error) {
	service, err := calendar.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if defaultCalendarID == "" {
		defaultCalendarID = "primary"
	}
	return &GoogleCalendar{service: service, calendarID: defaultCalendarID}, nil
}

// calendarFor maps an identity onto a calendar. Email-shaped identities are
// their own calendar; everything else shares the configured default.
func (c *GoogleCalendar) calendarFor(identity string) string {
	if strings.Contains(identity, "@") {
		return identity
	}
	return c.calendarID
}

func (c *GoogleCalendar) FetchEvents(ctx context.Context, identity string, window models.TimeInterval) ([]models.Event, error) {
	list, err := c.service.Events.List(c.calendarFor(identity)).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(window.Start.Format(time.RFC3339)).
		TimeMax(window.End.Format(time.RFC3339)).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}

	var events []models.Event
	for _, item := range list.Items {
		// All-day events carry no concrete time; they cannot conflict with a
		// timed candidate here.
		if item.Start == nil || item.Start.DateTime == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			continue
		}
		var attendees []string
		for _, a := range item.Attendees {
			attendees = append(attendees, a.Email)
		}
		events = append(events, models.Event{
			ID:        item.Id,
			Interval:  models.TimeInterval{Start: start, End: end},
			Title:     item.Summary,
			Attendees: attendees,
			Priority:  models.PriorityNormal,
		})
	}
	return events, nil
}

func (c *GoogleCalendar) CommitEvent(ctx context.Context, identity string, interval models.TimeInterval, title string, attendees []string) (string, error) {
	event := &calendar.Event{
		Summary: title,
		Start:   &calendar.EventDateTime{DateTime: interval.Start.Format(time.RFC3339)},
		End:     &calendar.EventDateTime{DateTime: interval.End.Format(time.RFC3339)},
	}
	for _, a := range attendees {
		if strings.Contains(a, "@") {
			event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: a})
		}
	}
	// Spoken attendee names rarely arrive as addresses; keep them visible.
	if len(attendees) > 0 {
		event.Description = "With: " + strings.Join(attendees, ", ")
	}

	created, err := c.service.Events.Insert(c.calendarFor(identity), event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	return created.Id, nil
}
