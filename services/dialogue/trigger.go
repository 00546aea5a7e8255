package dialogue

import (
	"strings"
	"unicode"

	"github.com/xrash/smetrics"
)

// TriggerMatcher decides whether an utterance contains the wake phrase.
// Input is transcribed speech, so matching is fuzzy: a normalized
// edit-distance ratio against the phrase, never exact equality.
type TriggerMatcher struct {
	phrase    string
	words     int
	threshold float64
}

func NewTriggerMatcher(phrase string, threshold float64) *TriggerMatcher {
	normalized := normalizeSpeech(phrase)
	return &TriggerMatcher{
		phrase:    normalized,
		words:     len(strings.Fields(normalized)),
		threshold: threshold,
	}
}

// Match slides a window of the phrase's word count across the utterance and
// reports whether any window clears the similarity threshold.
func (m *TriggerMatcher) Match(utterance string) bool {
	if m.phrase == "" {
		return false
	}
	words := strings.Fields(normalizeSpeech(utterance))
	if len(words) == 0 {
		return false
	}
	n := m.words
	if n < 1 {
		n = 1
	}
	for i := 0; i+n <= len(words); i++ {
		window := strings.Join(words[i:i+n], " ")
		if similarity(window, m.phrase) >= m.threshold {
			return true
		}
	}
	return false
}

// Strip removes the best-matching trigger window from the utterance, leaving
// any trailing command content ("EL25 book standup" -> "book standup").
func (m *TriggerMatcher) Strip(utterance string) string {
	words := strings.Fields(normalizeSpeech(utterance))
	n := m.words
	if n < 1 {
		n = 1
	}
	bestScore := -1.0
	bestAt := -1
	for i := 0; i+n <= len(words); i++ {
		window := strings.Join(words[i:i+n], " ")
		if score := similarity(window, m.phrase); score >= m.threshold && score > bestScore {
			bestScore = score
			bestAt = i
		}
	}
	if bestAt < 0 {
		return utterance
	}
	remainder := append(append([]string{}, words[:bestAt]...), words[bestAt+n:]...)
	return strings.Join(remainder, " ")
}

// similarity is 1 - levenshtein/maxlen, in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 1)
	return 1 - float64(dist)/float64(longest)
}

func normalizeSpeech(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
