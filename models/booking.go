package models

import "time"

// FieldState distinguishes a field that was never supplied from one that is
// present, and from one the user explicitly cleared ("forget the time").
type FieldState string

const (
	FieldMissing FieldState = "missing"
	FieldPresent FieldState = "present"
	FieldCleared FieldState = "cleared"
)

// Booking field names, also used as reprompt keys. Title, date and time are
// required; duration and attendees are optional.
const (
	FieldTitle    = "title"
	FieldDate     = "date"
	FieldTime     = "time"
	FieldDuration = "duration"
)

// PartialBooking accumulates slot-filled fields across dialogue turns.
// Times of day are minutes from midnight (e.g. 600 for 10:00 AM).
type PartialBooking struct {
	Title      string     `json:"title,omitempty"`
	TitleState FieldState `json:"titleState"`

	Date      time.Time  `json:"date,omitzero"` // midnight, local
	DateState FieldState `json:"dateState"`

	TimeOfDayMin int        `json:"timeOfDayMin,omitempty"`
	TimeState    FieldState `json:"timeState"`

	DurationMinutes int        `json:"durationMinutes,omitempty"`
	DurationState   FieldState `json:"durationState"`

	Attendees []string `json:"attendees,omitempty"`
}

// NewPartialBooking returns an empty booking with every field missing.
func NewPartialBooking() PartialBooking {
	return PartialBooking{
		TitleState:    FieldMissing,
		DateState:     FieldMissing,
		TimeState:     FieldMissing,
		DurationState: FieldMissing,
	}
}

// MissingFields recomputes the required fields still unknown, in the fixed
// prompt order title, date, time.
func (b PartialBooking) MissingFields() []string {
	var missing []string
	if b.TitleState != FieldPresent {
		missing = append(missing, FieldTitle)
	}
	if b.DateState != FieldPresent {
		missing = append(missing, FieldDate)
	}
	if b.TimeState != FieldPresent {
		missing = append(missing, FieldTime)
	}
	return missing
}

// Complete reports whether every required field is known.
func (b PartialBooking) Complete() bool {
	return len(b.MissingFields()) == 0
}

// Interval builds the candidate interval once date and time are known.
// defaultDurationMin applies when the user never stated a duration.
func (b PartialBooking) Interval(defaultDurationMin int) TimeInterval {
	duration := b.DurationMinutes
	if b.DurationState != FieldPresent || duration <= 0 {
		duration = defaultDurationMin
	}
	start := b.Date.Add(time.Duration(b.TimeOfDayMin) * time.Minute)
	return TimeInterval{
		Start: start,
		End:   start.Add(time.Duration(duration) * time.Minute),
	}
}
