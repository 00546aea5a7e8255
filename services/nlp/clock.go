package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	clockRe        = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(a\.?m\.?|p\.?m\.?)?`)
	hourMeridiemRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(a\.?m\.?|p\.?m\.?)`)
	noonRe         = regexp.MustCompile(`(?i)\b(noon|midday)\b`)
	midnightRe     = regexp.MustCompile(`(?i)\bmidnight\b`)

	durMinutesRe = regexp.MustCompile(`(?i)\b(\d+)\s*(?:minutes?|mins?)\b`)
	durHoursRe   = regexp.MustCompile(`(?i)\b(\d+(?:\.5)?)\s*(?:hours?|hrs?)\b`)
	halfHourRe   = regexp.MustCompile(`(?i)\bhalf\s+an\s+hour\b`)
	anHourRe     = regexp.MustCompile(`(?i)\ban\s+hour\b`)
)

// extractDuration runs before the time rule so "45 minutes" is never read as
// a clock time. Later-mention wins when a turn restates the duration.
func extractDuration(ctx *parseContext) {
	set := func(start, end, minutes int) {
		if ctx.marked(start, end) || minutes <= 0 {
			return
		}
		ctx.mark(start, end)
		ctx.durationMin = minutes
		ctx.hasDuration = true
	}

	for _, m := range durMinutesRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		n, _ := strconv.Atoi(ctx.text[m[2]:m[3]])
		set(m[0], m[1], n)
	}
	for _, m := range durHoursRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		h, _ := strconv.ParseFloat(ctx.text[m[2]:m[3]], 64)
		set(m[0], m[1], int(h*60))
	}
	for _, m := range halfHourRe.FindAllStringIndex(ctx.text, -1) {
		set(m[0], m[1], 30)
	}
	for _, m := range anHourRe.FindAllStringIndex(ctx.text, -1) {
		set(m[0], m[1], 60)
	}
}

type timeCandidate struct {
	minutes int
	pos     int
}

// extractTime recognizes 12h and 24h clock times plus noon/midnight. All
// mentions are marked; the latest-mentioned wins.
func extractTime(ctx *parseContext) {
	var candidates []timeCandidate

	add := func(start, end, minutes int) {
		if ctx.marked(start, end) || minutes < 0 || minutes >= 24*60 {
			return
		}
		ctx.mark(start, end)
		candidates = append(candidates, timeCandidate{minutes: minutes, pos: start})
	}

	for _, m := range clockRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		hour, _ := strconv.Atoi(ctx.text[m[2]:m[3]])
		minute, _ := strconv.Atoi(ctx.text[m[4]:m[5]])
		if hour > 23 || minute > 59 {
			continue
		}
		meridiem := ""
		if m[6] >= 0 {
			meridiem = ctx.text[m[6]:m[7]]
		}
		add(m[0], m[1], toMinutes(hour, minute, meridiem))
	}

	for _, m := range hourMeridiemRe.FindAllStringSubmatchIndex(ctx.text, -1) {
		hour, _ := strconv.Atoi(ctx.text[m[2]:m[3]])
		if hour > 12 {
			continue
		}
		add(m[0], m[1], toMinutes(hour, 0, ctx.text[m[4]:m[5]]))
	}

	for _, m := range noonRe.FindAllStringIndex(ctx.text, -1) {
		add(m[0], m[1], 12*60)
	}
	for _, m := range midnightRe.FindAllStringIndex(ctx.text, -1) {
		add(m[0], m[1], 0)
	}

	for _, cand := range candidates {
		if !ctx.hasTime || cand.pos >= ctx.timePos {
			ctx.timeMin = cand.minutes
			ctx.timePos = cand.pos
			ctx.hasTime = true
		}
	}
}

// toMinutes converts a clock reading to minutes from midnight. Without a
// meridiem, hours 1-7 are taken as afternoon: spoken bookings land in
// business hours far more often than before dawn.
func toMinutes(hour, minute int, meridiem string) int {
	m := strings.ToLower(strings.ReplaceAll(meridiem, ".", ""))
	switch m {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	default:
		if hour >= 1 && hour <= 7 {
			hour += 12
		}
	}
	if hour > 23 {
		return -1
	}
	return hour*60 + minute
}
