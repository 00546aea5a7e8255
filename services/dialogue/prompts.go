package dialogue

import (
	"fmt"
	"strings"

	"voicecal/models"
)

// fieldPrompt asks for the next missing field, in the fixed order the
// missing set is computed in (title, date, time).
func fieldPrompt(field string) string {
	switch field {
	case models.FieldTitle:
		return "What should I call this event?"
	case models.FieldDate:
		return "What day would you like it?"
	case models.FieldTime:
		return "What time should it start?"
	default:
		return "Could you tell me more about the booking?"
	}
}

// conflictPrompt describes what collided and offers the alternatives.
// Conflicts are always surfaced as a user choice, never auto-resolved.
func conflictPrompt(report models.ConflictReport) string {
	var b strings.Builder
	b.WriteString("That time overlaps ")
	for i, e := range report.ConflictingEvents {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q (%s)", e.Title, e.Interval.Label())
	}
	b.WriteString(". ")

	if len(report.SuggestedAlternatives) == 0 {
		b.WriteString("I found no free slot nearby; say \"book anyway\" or \"cancel\".")
		return b.String()
	}
	b.WriteString("I could do ")
	for i, alt := range report.SuggestedAlternatives {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d) %s", i+1, alt.Label())
	}
	b.WriteString(". Pick a number, say \"book anyway\", or \"cancel\".")
	return b.String()
}

// promptFor restates the current ask for an empty turn.
func promptFor(session *models.DialogueSession) string {
	switch session.State {
	case models.StateAwaitingField:
		return fieldPrompt(session.AwaitedField)
	case models.StateAwaitingConflictRes:
		return "Please pick one of the offered slots, say \"book anyway\", or \"cancel\"."
	case models.StateCapturing:
		return "I'm listening. What would you like to schedule?"
	default:
		return ""
	}
}
