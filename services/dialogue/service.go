// Package dialogue sequences trigger detection, slot filling, conflict
// resolution and commit for one booking conversation per identity.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"voicecal/models"
	"voicecal/services/calendar"
	"voicecal/services/nlp"
	"voicecal/services/ratelimit"
	"voicecal/services/schedule"
)

// ErrSessionExpired is returned when a turn arrives for a session that no
// longer exists; the caller should start a fresh session.
var ErrSessionExpired = errors.New("dialogue session expired")

// Config carries the engine tunables; every value has a viper default.
type Config struct {
	TriggerPhrase          string
	TriggerThreshold       float64
	SilenceWindowMS        int
	IdleTimeout            time.Duration
	WorkHours              schedule.WorkHours
	SlotStepMinutes        int
	SearchDays             int
	MaxAlternatives        int
	DefaultDurationMinutes int
	ReminderLeadMinutes    int
}

// DialogueService is the surface exposed to the web/CLI/voice layer.
type DialogueService interface {
	StartSession(ctx context.Context, identity string) (*models.SessionStateResult, error)
	SubmitUtterance(ctx context.Context, sessionID, text string) (*models.TurnResult, error)
	EndSession(ctx context.Context, sessionID string) error
	SweepExpired(ctx context.Context) (int, error)
}

// ReminderScheduler queues a spoken reminder for a committed booking.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error
}

// DefaultDialogueService implements DialogueService.
type DefaultDialogueService struct {
	Store     SessionStore
	Calendar  calendar.CalendarService
	Governor  *ratelimit.Governor
	Reminders ReminderScheduler // nil disables reminders
	Cfg       Config
	Logger    *zap.Logger

	// Clock is injectable so timeout logic is testable without real clocks.
	Clock func() time.Time

	trigger *TriggerMatcher
	// One mutex per live session serializes turns FIFO, so concurrent
	// utterances never interleave mutation of the same partial booking.
	turnLocks sync.Map
}

func NewDialogueService(store SessionStore, cal calendar.CalendarService, governor *ratelimit.Governor, reminders ReminderScheduler, cfg Config, logger *zap.Logger) *DefaultDialogueService {
	return &DefaultDialogueService{
		Store:     store,
		Calendar:  cal,
		Governor:  governor,
		Reminders: reminders,
		Cfg:       cfg,
		Logger:    logger,
		Clock:     time.Now,
		trigger:   NewTriggerMatcher(cfg.TriggerPhrase, cfg.TriggerThreshold),
	}
}

// StartSession is idempotent: an existing unexpired session for the identity
// is returned as-is, otherwise a fresh idle one is created.
func (s *DefaultDialogueService) StartSession(ctx context.Context, identity string) (*models.SessionStateResult, error) {
	now := s.Clock()
	if existing, err := s.Store.GetByIdentity(ctx, identity); err == nil {
		if !existing.Expired(now, s.Cfg.IdleTimeout) {
			return s.stateResult(existing), nil
		}
		if err := s.Store.Delete(ctx, existing.SessionID); err != nil {
			return nil, err
		}
	}

	session := &models.DialogueSession{
		SessionID:      uuid.New().String(),
		Identity:       identity,
		State:          models.StateIdle,
		Booking:        models.NewPartialBooking(),
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if err := s.Store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create dialogue session: %w", err)
	}
	s.Logger.Info("session started", zap.String("sessionID", session.SessionID), zap.String("identity", identity))
	return s.stateResult(session), nil
}

func (s *DefaultDialogueService) stateResult(session *models.DialogueSession) *models.SessionStateResult {
	return &models.SessionStateResult{
		SessionID:       session.SessionID,
		Identity:        session.Identity,
		State:           session.State,
		SilenceWindowMS: s.Cfg.SilenceWindowMS,
	}
}

// EndSession terminates a session explicitly, discarding any partial booking.
func (s *DefaultDialogueService) EndSession(ctx context.Context, sessionID string) error {
	if err := s.Store.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.turnLocks.Delete(sessionID)
	return nil
}

// SweepExpired drops sessions idle past the timeout. Expiry is also checked
// lazily on each turn, so the sweep only bounds resource usage.
func (s *DefaultDialogueService) SweepExpired(ctx context.Context) (int, error) {
	removed, err := s.Store.SweepExpired(ctx, s.Clock().Add(-s.Cfg.IdleTimeout))
	if err != nil {
		return removed, err
	}
	// Release turn locks for sessions that are gone, however they went:
	// swept here, expired by a store TTL, or deleted elsewhere.
	s.turnLocks.Range(func(key, _ any) bool {
		if _, getErr := s.Store.Get(ctx, key.(string)); errors.Is(getErr, ErrSessionNotFound) {
			s.turnLocks.Delete(key)
		}
		return true
	})
	return removed, nil
}

func (s *DefaultDialogueService) lockFor(sessionID string) *sync.Mutex {
	lock, _ := s.turnLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// SubmitUtterance runs one dialogue turn. Turns for the same session are
// serialized FIFO; turns for distinct identities run in parallel.
func (s *DefaultDialogueService) SubmitUtterance(ctx context.Context, sessionID, text string) (*models.TurnResult, error) {
	session, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	// Admission check before any session mutation.
	now := s.Clock()
	if !s.Governor.Allow(ctx, session.Identity, now) {
		return nil, ratelimit.ErrRateLimitExceeded
	}

	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; a queued turn may have advanced the state.
	session, err = s.Store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			s.turnLocks.Delete(sessionID)
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	now = s.Clock()
	if session.Expired(now, s.Cfg.IdleTimeout) {
		// A timed-out turn behaves like a fresh start: same identity, clean
		// idle state, the stale booking is discarded silently.
		s.resetToIdle(session)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return s.turnResult(session, promptFor(session)), nil
	}
	// Every non-empty utterance resets the inactivity timer.
	session.LastActivityAt = now
	session.TurnCount++ // diagnostic only

	result, err := s.advance(ctx, session, text, now)
	if err != nil {
		return nil, err
	}
	if session.State == models.StateResponding {
		// RESPONDING auto-transitions to IDLE: the booking is done and the
		// session is destroyed.
		if err := s.Store.Delete(ctx, session.SessionID); err != nil {
			s.Logger.Warn("failed to drop committed session", zap.Error(err))
		}
		s.turnLocks.Delete(session.SessionID)
		return result, nil
	}
	if err := s.Store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save dialogue session: %w", err)
	}
	return result, nil
}

var cancelRe = regexp.MustCompile(`(?i)\b(cancel|never\s?mind|forget it|abort)\b`)

// advance applies one utterance to the state machine.
func (s *DefaultDialogueService) advance(ctx context.Context, session *models.DialogueSession, text string, now time.Time) (*models.TurnResult, error) {
	// An explicit cancel phrase exits from any state.
	if session.State != models.StateIdle && cancelRe.MatchString(text) {
		s.resetToIdle(session)
		session.LastActivityAt = now
		return s.turnResult(session, "Okay, I've cancelled that booking."), nil
	}

	// A new trigger while active resets the session rather than forking it.
	if s.trigger.Match(text) {
		session.State = models.StateTriggerDetected
		session.Booking = models.NewPartialBooking()
		session.AwaitedField = ""
		session.PendingConflicts = nil
		session.PendingAlternatives = nil
		// TRIGGER_DETECTED is transient; capture begins immediately.
		session.State = models.StateCapturing

		remainder := s.trigger.Strip(text)
		if strings.TrimSpace(remainder) == "" {
			return s.turnResult(session, "I'm listening. What would you like to schedule?"), nil
		}
		return s.process(ctx, session, remainder, now)
	}

	switch session.State {
	case models.StateIdle:
		// No trigger, nothing to do.
		return s.turnResult(session, ""), nil
	case models.StateCapturing, models.StateAwaitingField:
		return s.process(ctx, session, text, now)
	case models.StateAwaitingConflictRes:
		return s.resolveConflict(ctx, session, text, now)
	default:
		return s.process(ctx, session, text, now)
	}
}

// process runs the extractor and either reprompts for the next missing field
// or validates the completed booking against the calendar.
func (s *DefaultDialogueService) process(ctx context.Context, session *models.DialogueSession, text string, now time.Time) (*models.TurnResult, error) {
	session.State = models.StateProcessing
	session.Booking = nlp.Extract(text, session.Booking, now)

	if missing := session.Booking.MissingFields(); len(missing) > 0 {
		session.State = models.StateAwaitingField
		session.AwaitedField = missing[0]
		return s.turnResult(session, fieldPrompt(missing[0])), nil
	}
	session.AwaitedField = ""
	return s.validate(ctx, session, false)
}

// validate checks the candidate interval for conflicts and commits when
// clear. force skips the conflict check (user chose to double-book).
func (s *DefaultDialogueService) validate(ctx context.Context, session *models.DialogueSession, force bool) (*models.TurnResult, error) {
	candidate := session.Booking.Interval(s.Cfg.DefaultDurationMinutes)

	if force {
		return s.commit(ctx, session, candidate)
	}

	window := models.TimeInterval{
		Start: candidate.Start.AddDate(0, 0, -1),
		End:   candidate.Start.AddDate(0, 0, s.Cfg.SearchDays+1),
	}
	snapshot, err := s.Calendar.FetchEvents(ctx, session.Identity, window)
	if err != nil {
		// Partial state cannot be trusted after an external failure of
		// unknown effect; reset and surface.
		s.resetToIdle(session)
		return nil, fmt.Errorf("failed to fetch calendar snapshot: %w", err)
	}

	report, err := schedule.Detect(candidate, snapshot)
	if err != nil {
		// Malformed interval: send the turn back to the offending field.
		session.State = models.StateAwaitingField
		session.AwaitedField = models.FieldTime
		session.Booking.TimeState = models.FieldMissing
		return s.turnResult(session, "That time didn't work out. What time should it start?"), nil
	}

	if report.HasConflicts() {
		duration := int(candidate.Duration() / time.Minute)
		report.SuggestedAlternatives = schedule.Suggest(candidate, snapshot, duration,
			s.Cfg.SearchDays, s.Cfg.WorkHours, s.Cfg.SlotStepMinutes, s.Cfg.MaxAlternatives)

		session.State = models.StateAwaitingConflictRes
		session.PendingConflicts = report.ConflictingEvents
		session.PendingAlternatives = report.SuggestedAlternatives

		result := s.turnResult(session, conflictPrompt(report))
		result.Alternatives = report.SuggestedAlternatives
		return result, nil
	}

	return s.commit(ctx, session, candidate)
}

var optionRe = regexp.MustCompile(`\b(\d+)\b`)

var ordinalWords = map[string]int{"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5}

// resolveConflict interprets the user's choice: an alternative by number, an
// explicit overwrite, or a correction that re-enters processing.
func (s *DefaultDialogueService) resolveConflict(ctx context.Context, session *models.DialogueSession, text string, now time.Time) (*models.TurnResult, error) {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "anyway") || strings.Contains(lower, "overwrite") || strings.Contains(lower, "double") {
		return s.validate(ctx, session, true)
	}

	choice := 0
	if m := optionRe.FindString(lower); m != "" {
		choice, _ = strconv.Atoi(m)
	}
	for word, n := range ordinalWords {
		if strings.Contains(lower, word) {
			choice = n
		}
	}
	if choice >= 1 && choice <= len(session.PendingAlternatives) {
		alt := session.PendingAlternatives[choice-1]
		session.Booking.Date = time.Date(alt.Start.Year(), alt.Start.Month(), alt.Start.Day(), 0, 0, 0, 0, alt.Start.Location())
		session.Booking.DateState = models.FieldPresent
		session.Booking.TimeOfDayMin = alt.Start.Hour()*60 + alt.Start.Minute()
		session.Booking.TimeState = models.FieldPresent
		session.PendingConflicts = nil
		session.PendingAlternatives = nil
		// Re-validate: the calendar may have moved underneath us.
		session.State = models.StateProcessing
		return s.validate(ctx, session, false)
	}

	// Maybe the user answered with a new date/time instead of a choice.
	updated := nlp.Extract(text, session.Booking, now)
	if updated.Date != session.Booking.Date || updated.TimeOfDayMin != session.Booking.TimeOfDayMin {
		session.Booking = updated
		session.PendingConflicts = nil
		session.PendingAlternatives = nil
		session.State = models.StateProcessing
		return s.validate(ctx, session, false)
	}

	result := s.turnResult(session, "Please pick one of the numbered slots, say \"book anyway\", or \"cancel\".")
	result.Alternatives = session.PendingAlternatives
	return result, nil
}

// commit hands the interval to the calendar collaborator. Failures reset the
// session to idle and surface; the core never silently retries.
func (s *DefaultDialogueService) commit(ctx context.Context, session *models.DialogueSession, interval models.TimeInterval) (*models.TurnResult, error) {
	title := session.Booking.Title
	attendees := append([]string{}, session.Booking.Attendees...)

	eventID, err := s.Calendar.CommitEvent(ctx, session.Identity, interval, title, attendees)
	if err != nil {
		s.Logger.Error("commit failed",
			zap.String("sessionID", session.SessionID), zap.Error(err))
		s.resetToIdle(session)
		if putErr := s.Store.Put(ctx, session); putErr != nil {
			s.Logger.Warn("failed to save reset session", zap.Error(putErr))
		}
		return nil, fmt.Errorf("%w: %v", calendar.ErrCommitFailed, err)
	}

	event := models.Event{
		ID:        eventID,
		Interval:  interval,
		Title:     title,
		Attendees: attendees,
		Priority:  models.PriorityNormal,
	}
	s.scheduleReminder(ctx, session.Identity, event)

	session.State = models.StateResponding
	result := s.turnResult(session, fmt.Sprintf("Booked %q for %s.", title, interval.Label()))
	result.CommittedEvent = &event
	s.Logger.Info("booking committed",
		zap.String("sessionID", session.SessionID),
		zap.String("eventID", eventID),
		zap.String("title", title))
	return result, nil
}

func (s *DefaultDialogueService) scheduleReminder(ctx context.Context, identity string, event models.Event) {
	if s.Reminders == nil || s.Cfg.ReminderLeadMinutes <= 0 {
		return
	}
	fireAt := event.Interval.Start.Add(-time.Duration(s.Cfg.ReminderLeadMinutes) * time.Minute)
	if !fireAt.After(s.Clock()) {
		return
	}
	payload := models.ReminderPayload{
		Identity: identity,
		EventID:  event.ID,
		Title:    event.Title,
		StartISO: event.Interval.Start.Format(time.RFC3339),
	}
	if err := s.Reminders.ScheduleReminder(ctx, payload, fireAt); err != nil {
		s.Logger.Warn("failed to schedule reminder", zap.String("eventID", event.ID), zap.Error(err))
	}
}

func (s *DefaultDialogueService) resetToIdle(session *models.DialogueSession) {
	session.State = models.StateIdle
	session.Booking = models.NewPartialBooking()
	session.AwaitedField = ""
	session.PendingConflicts = nil
	session.PendingAlternatives = nil
}

func (s *DefaultDialogueService) turnResult(session *models.DialogueSession, prompt string) *models.TurnResult {
	return &models.TurnResult{
		SessionID: session.SessionID,
		State:     session.State,
		Prompt:    prompt,
	}
}
