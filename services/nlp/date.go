package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

func isWeekday(word string) bool {
	_, ok := weekdays[strings.ToLower(word)]
	return ok
}

func isMonth(word string) bool {
	for name := range months {
		if strings.HasPrefix(name, strings.ToLower(word)) && len(word) >= 3 {
			return true
		}
	}
	return false
}

var (
	relWordRe     = regexp.MustCompile(`(?i)\b(today|tomorrow|yesterday)\b`)
	inDaysRe      = regexp.MustCompile(`(?i)\bin\s+(\d+)\s+days?\b`)
	inWeeksRe     = regexp.MustCompile(`(?i)\bin\s+(\d+)\s+weeks?\b`)
	nextWeekdayRe = regexp.MustCompile(`(?i)\bnext\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	weekdayRe     = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	isoDateRe     = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDateRe   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	monthDayRe    = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	dayMonthRe    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
)

type dateCandidate struct {
	value time.Time
	pos   int
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// extractDate collects every date mention in the utterance, marks all of
// their spans, and keeps the latest-mentioned value (spoken self-correction:
// "tomorrow... no wait, Friday").
func extractDate(ctx *parseContext) {
	today := midnight(ctx.now)
	var candidates []dateCandidate

	add := func(start, end int, value time.Time) {
		if ctx.marked(start, end) {
			return
		}
		ctx.mark(start, end)
		candidates = append(candidates, dateCandidate{value: value, pos: start})
	}

	for _, m := range relWordRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		var value time.Time
		switch strings.ToLower(ctx.text[m[2]:m[3]]) {
		case "today":
			value = today
		case "tomorrow":
			value = today.AddDate(0, 0, 1)
		case "yesterday":
			value = today.AddDate(0, 0, -1)
		}
		add(m[0], m[1], value)
	}

	for _, m := range inDaysRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		n, _ := strconv.Atoi(ctx.text[m[2]:m[3]])
		add(m[0], m[1], today.AddDate(0, 0, n))
	}
	for _, m := range inWeeksRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		n, _ := strconv.Atoi(ctx.text[m[2]:m[3]])
		add(m[0], m[1], today.AddDate(0, 0, 7*n))
	}

	for _, m := range nextWeekdayRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		target := weekdays[strings.ToLower(ctx.text[m[2]:m[3]])]
		ahead := (int(target) - int(today.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7 // "next Friday" said on a Friday means a week out
		}
		add(m[0], m[1], today.AddDate(0, 0, ahead))
	}

	// Bare weekday means the upcoming occurrence, including today.
	for _, m := range weekdayRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		target := weekdays[strings.ToLower(ctx.text[m[2]:m[3]])]
		ahead := (int(target) - int(today.Weekday()) + 7) % 7
		add(m[0], m[1], today.AddDate(0, 0, ahead))
	}

	for _, m := range isoDateRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		year, _ := strconv.Atoi(ctx.text[m[2]:m[3]])
		month, _ := strconv.Atoi(ctx.text[m[4]:m[5]])
		day, _ := strconv.Atoi(ctx.text[m[6]:m[7]])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			add(m[0], m[1], time.Date(year, time.Month(month), day, 0, 0, 0, 0, ctx.now.Location()))
		}
	}

	// M/D or M/D/YYYY.
	for _, m := range slashDateRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		month, _ := strconv.Atoi(ctx.text[m[2]:m[3]])
		day, _ := strconv.Atoi(ctx.text[m[4]:m[5]])
		year := today.Year()
		if m[6] >= 0 {
			year, _ = strconv.Atoi(ctx.text[m[6]:m[7]])
			if year < 100 {
				year += 2000
			}
		}
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			add(m[0], m[1], time.Date(year, time.Month(month), day, 0, 0, 0, 0, ctx.now.Location()))
		}
	}

	for _, m := range monthDayRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		month := monthByName(ctx.text[m[2]:m[3]])
		day, _ := strconv.Atoi(ctx.text[m[4]:m[5]])
		if month != 0 && day >= 1 && day <= 31 {
			add(m[0], m[1], time.Date(today.Year(), month, day, 0, 0, 0, 0, ctx.now.Location()))
		}
	}
	for _, m := range dayMonthRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		day, _ := strconv.Atoi(ctx.text[m[2]:m[3]])
		month := monthByName(ctx.text[m[4]:m[5]])
		if month != 0 && day >= 1 && day <= 31 {
			add(m[0], m[1], time.Date(today.Year(), month, day, 0, 0, 0, 0, ctx.now.Location()))
		}
	}

	for _, cand := range candidates {
		if !ctx.hasDate || cand.pos >= ctx.datePos {
			ctx.date = cand.value
			ctx.datePos = cand.pos
			ctx.hasDate = true
		}
	}
}

func monthByName(name string) time.Month {
	lower := strings.ToLower(strings.TrimSuffix(name, "."))
	for full, month := range months {
		if strings.HasPrefix(full, lower) {
			return month
		}
	}
	return 0
}
