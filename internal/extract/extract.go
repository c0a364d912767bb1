// Package extract implements the free-text location and day-reference
// heuristics for user messages. The rules are ordered and overlapping; the
// first strategy that yields a validated candidate wins. Precedence and
// stop-word policy live in package-level data so they can be tested in
// isolation.
package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/stormstream/storm-assistant/internal/weather"
)

// citySlang maps common nicknames to the canonical city name used for
// geocoding. Checked before every other strategy so "weather in philly"
// resolves through "Philadelphia" rather than the literal token. Kept as an
// ordered slice for deterministic precedence.
var citySlang = []struct {
	Token string
	City  string
}{
	{"nyc", "New York"},
	{"philly", "Philadelphia"},
	{"vegas", "Las Vegas"},
	{"nola", "New Orleans"},
	{"chi-town", "Chicago"},
	{"frisco", "San Francisco"},
}

// stopWords are tokens never accepted as a location candidate on their own.
var stopWords = map[string]bool{
	"weather":     true,
	"climate":     true,
	"forecast":    true,
	"temperature": true,
	"conditions":  true,
	"rain":        true,
	"snow":        true,
	"hot":         true,
	"cold":        true,
	"is":          true,
	"it":          true,
	"what":        true,
	"how":         true,
	"the":         true,
	"today":       true,
	"tomorrow":    true,
	"now":         true,
	"like":        true,
	"please":      true,
}

var (
	zipPattern = regexp.MustCompile(`\b(\d{5})\b`)

	// directPatterns are tried in order; each captures one location
	// candidate which then passes through validateCandidate.
	directPatterns = []*regexp.Regexp{
		// "weather in X", "forecast for X", ...
		regexp.MustCompile(`(?i)(?:weather|forecast|climate|conditions?|temperature)\s+(?:in|for|at|near|of)\s+([A-Za-z][A-Za-z\s,.-]+?)(?:\s*[?.]?\s*$|\s+(?:weather|forecast|climate|today|tomorrow|now|is|please))`),
		// "in X weather", "X weather"
		regexp.MustCompile(`(?i)(?:^|\s)(?:in\s+)?([A-Za-z][A-Za-z\s,.-]+?)\s+(?:weather|forecast|climate|conditions?|temperature)`),
		// "How's X", "What's the weather in X"
		regexp.MustCompile(`(?i)(?:how'?s|what'?s)\s+(?:the\s+)?(?:weather\s+)?(?:in\s+|for\s+|at\s+)?([A-Za-z][A-Za-z\s,.-]+?)(?:\s*[?.]?\s*$|\s+(?:like|today|now))`),
		// Catch-all: the whole message as a location. Guarded by a word
		// count limit in Location so "tell me a joke" stays unmatched.
		regexp.MustCompile(`(?i)^([A-Za-z][A-Za-z\s,.-]+?)\s*[?.]?\s*$`),
	}

	properNounPattern = regexp.MustCompile(`(?:in|for|at|near)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]*)*)`)

	candidateCharset = regexp.MustCompile(`^[A-Za-z][A-Za-z\s.-]*$`)
	tokenCharset     = regexp.MustCompile(`^[A-Za-z][A-Za-z.-]*$`)
)

// catchAllMaxWords bounds the final whole-message pattern; longer messages
// are questions or commands, not bare place names.
const catchAllMaxWords = 3

// Location extracts the best-guess location string from a free-text message.
// It returns "" when no strategy yields a validated candidate; callers treat
// that as "no location in this turn", never as an error.
func Location(message string) string {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)

	// Strategy 0: slang and nicknames resolve before everything else.
	for _, s := range citySlang {
		if strings.Contains(lower, s.Token) {
			return s.City
		}
	}

	// Strategy 1: a 5-digit run is a US ZIP code, returned verbatim.
	if m := zipPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}

	// Strategy 2: prepositional direct patterns.
	words := strings.Fields(trimmed)
	for i, pattern := range directPatterns {
		if i == len(directPatterns)-1 && len(words) > catchAllMaxWords {
			break
		}
		m := pattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		if candidate := validateCandidate(m[1]); candidate != "" {
			return candidate
		}
	}

	// Strategy 3: capitalized word sequences after a location preposition.
	for _, m := range properNounPattern.FindAllStringSubmatch(trimmed, -1) {
		candidate := strings.TrimSpace(m[1])
		if len(candidate) > 2 && !stopWords[strings.ToLower(candidate)] {
			return candidate
		}
	}

	// Strategy 4: short messages are likely a bare place name.
	if len(words) <= 3 {
		for _, w := range words {
			if len(w) >= 2 && tokenCharset.MatchString(w) && !stopWords[strings.ToLower(w)] {
				return w
			}
		}
	}

	return ""
}

// validateCandidate trims, strips punctuation and a leading "the", splits
// off anything after the first comma ("Paris, France" -> "Paris") and
// rejects candidates that are too short, stop words, or contain characters
// outside the letters/spaces/hyphen/period class.
func validateCandidate(raw string) string {
	candidate := strings.TrimSpace(raw)
	candidate = strings.TrimRight(candidate, ",.?! ")

	lower := strings.ToLower(candidate)
	if strings.HasPrefix(lower, "the ") {
		candidate = strings.TrimSpace(candidate[4:])
	}

	if idx := strings.Index(candidate, ","); idx >= 0 {
		candidate = strings.TrimSpace(candidate[:idx])
	}

	if len(candidate) < 2 {
		return ""
	}
	if stopWords[strings.ToLower(candidate)] {
		return ""
	}
	if !candidateCharset.MatchString(candidate) {
		return ""
	}
	return candidate
}

// relativeDays maps relative phrases to an offset from today's index.
// "day after tomorrow" precedes "tomorrow" so the longer phrase wins.
var relativeDays = []struct {
	Phrase string
	Offset int
}{
	{"day after tomorrow", 2},
	{"tomorrow", 1},
	{"next week", 7},
}

var weekdayNames = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// ForecastDayIndex maps day-name keywords and relative phrases in message to
// an index into days. The default is the index of the day whose date equals
// the current local date, or 0 when today is absent from the forecast
// window. The first matching keyword in the fixed iteration order wins.
func ForecastDayIndex(message string, days []weather.ForecastDay, now time.Time) int {
	todayIdx := 0
	today := now.Format("2006-01-02")
	for i, d := range days {
		if d.Date == today {
			todayIdx = i
			break
		}
	}

	lower := strings.ToLower(message)

	for _, rel := range relativeDays {
		if !strings.Contains(lower, rel.Phrase) {
			continue
		}
		if idx := todayIdx + rel.Offset; idx >= 0 && idx < len(days) {
			return idx
		}
		return todayIdx
	}

	for _, name := range weekdayNames {
		if !strings.Contains(lower, name) {
			continue
		}
		// Next occurrence of that weekday inside the forecast window.
		for i := todayIdx; i < len(days); i++ {
			d, err := time.Parse("2006-01-02", days[i].Date)
			if err != nil {
				continue
			}
			if strings.ToLower(d.Weekday().String()) == name {
				return i
			}
		}
		return todayIdx
	}

	return todayIdx
}
