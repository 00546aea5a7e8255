// Package nlp turns transcribed utterances into partial booking fields.
// Recognition is a flat, ordered table of independent rules evaluated
// non-exclusively: several fields are routinely pulled from one utterance.
package nlp

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"voicecal/models"
)

// span marks a byte range of the utterance consumed by a recognizer, so the
// title rule only sees leftover words.
type span struct {
	start, end int
}

type parseContext struct {
	text  string
	lower string
	now   time.Time
	spans []span

	correction bool

	// Recognized candidates for this utterance.
	title       string
	hasTitle    bool
	date        time.Time
	hasDate     bool
	datePos     int
	timeMin     int
	hasTime     bool
	timePos     int
	durationMin int
	hasDuration bool
	attendees   []string
	cleared     []string
}

func (c *parseContext) mark(start, end int) {
	c.spans = append(c.spans, span{start, end})
}

func (c *parseContext) marked(start, end int) bool {
	for _, s := range c.spans {
		if start < s.end && s.start < end {
			return true
		}
	}
	return false
}

type rule struct {
	name  string
	apply func(*parseContext)
}

// Order matters only for span ownership (numbers belong to the earliest rule
// that claims them); every rule always runs.
var rules = []rule{
	{"clear", extractCleared},
	{"duration", extractDuration},
	{"date", extractDate},
	{"time", extractTime},
	{"attendees", extractAttendees},
	{"title", extractTitle},
}

var (
	correctionRe = regexp.MustCompile(`(?i)^\s*no[,.]?\s+|\bactually\b|\bi meant\b|\bmake (?:it|that)\b|\bchange (?:it|that|the \w+) to\b|\brather\b`)
	negationRe   = regexp.MustCompile(`(?i)\s+not\s+`)
	clearedRe    = regexp.MustCompile(`(?i)\b(?:forget|clear|scrap|drop)\s+(?:the\s+)?(title|date|time|duration)\b`)
)

// Extract merges newly recognized fields from one utterance into the booking.
// It is a pure transform: known fields are only overwritten when the
// utterance is an explicit correction; otherwise recognition adds. When one
// utterance carries two date or time candidates, the later-mentioned one wins
// (spoken self-correction). now anchors relative dates.
func Extract(utterance string, booking models.PartialBooking, now time.Time) models.PartialBooking {
	ctx := &parseContext{text: utterance, now: now}

	if correctionRe.MatchString(utterance) {
		ctx.correction = true
	}
	// "2:30 not 2:00": the value after "not" is the rejected one. Cut it off
	// so it never parses, and treat the turn as a correction.
	if loc := negationRe.FindStringIndex(utterance); loc != nil {
		ctx.correction = true
		ctx.text = utterance[:loc[0]]
	}
	ctx.lower = strings.ToLower(ctx.text)

	for _, r := range rules {
		r.apply(ctx)
	}

	return merge(booking, ctx)
}

func merge(b models.PartialBooking, ctx *parseContext) models.PartialBooking {
	for _, field := range ctx.cleared {
		switch field {
		case models.FieldTitle:
			b.Title, b.TitleState = "", models.FieldCleared
		case models.FieldDate:
			b.Date, b.DateState = time.Time{}, models.FieldCleared
		case models.FieldTime:
			b.TimeOfDayMin, b.TimeState = 0, models.FieldCleared
		case models.FieldDuration:
			b.DurationMinutes, b.DurationState = 0, models.FieldCleared
		}
	}

	if ctx.hasTitle && (ctx.correction || b.TitleState != models.FieldPresent) {
		b.Title = ctx.title
		b.TitleState = models.FieldPresent
	}
	if ctx.hasDate && (ctx.correction || b.DateState != models.FieldPresent) {
		b.Date = ctx.date
		b.DateState = models.FieldPresent
	}
	if ctx.hasTime && (ctx.correction || b.TimeState != models.FieldPresent) {
		b.TimeOfDayMin = ctx.timeMin
		b.TimeState = models.FieldPresent
	}
	if ctx.hasDuration && (ctx.correction || b.DurationState != models.FieldPresent) {
		b.DurationMinutes = ctx.durationMin
		b.DurationState = models.FieldPresent
	}

	for _, name := range ctx.attendees {
		known := false
		for _, existing := range b.Attendees {
			if strings.EqualFold(existing, name) {
				known = true
				break
			}
		}
		if !known {
			b.Attendees = append(b.Attendees, name)
		}
	}
	return b
}

func extractCleared(ctx *parseContext) {
	for _, m := range clearedRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		ctx.cleared = append(ctx.cleared, strings.ToLower(ctx.text[m[2]:m[3]]))
		ctx.mark(m[0], m[1])
	}
}

// token is a word with its byte offsets in the utterance.
type token struct {
	word       string
	start, end int
}

func tokenize(text string) []token {
	var tokens []token
	start := -1
	for i, r := range text {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-'
		if isWord && start < 0 {
			start = i
		}
		if !isWord && start >= 0 {
			tokens = append(tokens, token{text[start:i], start, i})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text[start:], start, len(text)})
	}
	return tokens
}

// connectorWords introduce an attendee list. "and" also continues one, so a
// marked "and" inside a "with" list never opens a second scan.
var connectorWords = map[string]bool{"with": true, "and": true}

// attendeeStop ends an attendee list: anything the other rules already
// claimed, plus scheduling vocabulary a name can never be.
var attendeeStop = map[string]bool{
	"at": true, "on": true, "for": true, "in": true, "next": true,
	"today": true, "tomorrow": true, "yesterday": true,
	"noon": true, "midnight": true, "am": true, "pm": true,
	"about": true, "regarding": true,
}

func extractAttendees(ctx *parseContext) {
	tokens := tokenize(ctx.text)
	for i := 0; i < len(tokens); i++ {
		if !connectorWords[strings.ToLower(tokens[i].word)] || ctx.marked(tokens[i].start, tokens[i].end) {
			continue
		}
		ctx.mark(tokens[i].start, tokens[i].end)
		for j := i + 1; j < len(tokens); j++ {
			t := tokens[j]
			lower := strings.ToLower(t.word)
			if lower == "and" || lower == "," {
				ctx.mark(t.start, t.end)
				continue
			}
			if ctx.marked(t.start, t.end) || attendeeStop[lower] || isWeekday(lower) || isMonth(lower) || hasDigit(t.word) {
				break
			}
			ctx.attendees = append(ctx.attendees, capitalize(t.word))
			ctx.mark(t.start, t.end)
		}
	}
}

// fillerWords never contribute to a title.
var fillerWords = map[string]bool{
	"book": true, "schedule": true, "set": true, "setup": true, "plan": true,
	"create": true, "add": true, "make": true, "arrange": true,
	"a": true, "an": true, "the": true, "my": true, "me": true, "please": true,
	"hey": true, "ok": true, "okay": true, "yes": true, "no": true,
	"at": true, "on": true, "in": true, "for": true, "to": true, "up": true,
	"new": true, "and": true, "it": true, "that": true, "actually": true,
	"i": true, "meant": true, "change": true, "rather": true,
}

func extractTitle(ctx *parseContext) {
	var words []string
	for _, t := range tokenize(ctx.text) {
		if ctx.marked(t.start, t.end) || fillerWords[strings.ToLower(t.word)] || hasDigit(t.word) {
			continue
		}
		words = append(words, strings.ToLower(t.word))
	}
	if len(words) > 0 {
		ctx.title = strings.Join(words, " ")
		ctx.hasTitle = true
	}
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
