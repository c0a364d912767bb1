package chat

import (
	"fmt"
	"math"
	"strings"

	"github.com/stormstream/storm-assistant/internal/weather"
)

// systemPrompt assembles the assistant persona plus, when a snapshot is
// available, the real-time weather context block.
func systemPrompt(snapshot *weather.Snapshot) string {
	var b strings.Builder
	b.WriteString("You are Storm, a helpful and friendly weather assistant. ")
	if snapshot != nil {
		b.WriteString("You have been provided with REAL-TIME weather data. Use this accurate current data in your response. ")
	} else {
		b.WriteString("Provide helpful weather information based on typical climate patterns. ")
	}
	b.WriteString("Be conversational, accurate, and engaging. If you have real-time data, reference it specifically.")
	if snapshot != nil {
		b.WriteString("\n")
		b.WriteString(weatherContext(snapshot))
	}
	return b.String()
}

// weatherContext serializes the compact summary embedded in the system
// prompt. Current and feels-like temperatures are rounded for display; the
// stored snapshot keeps the raw values.
func weatherContext(s *weather.Snapshot) string {
	loc := s.Location
	cur := s.Current
	return fmt.Sprintf(`
[REAL-TIME WEATHER DATA for %s, %s %s]
Current: %.0f°C (%.0f°F), %s
Humidity: %.0f%%
Wind: %.0f kph
Feels like: %.0f°C
`,
		loc.Name, loc.Region, loc.Country,
		math.Round(cur.TempC), cur.TempF, cur.Condition.Text,
		cur.Humidity,
		math.Round(cur.WindKph),
		math.Round(cur.FeelslikeC),
	)
}
