// Package schedule detects schedule-shaped assistant replies (day plans with
// clock times) and splits them into structured rows so the client can render
// an editable table instead of plain text.
package schedule

import (
	"regexp"
	"strings"

	"github.com/stormstream/storm-assistant/internal/common"
)

// Item is one row of a parsed schedule.
type Item struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
	Weather  string `json:"weather,omitempty"`
	Outfit   string `json:"outfit,omitempty"`
}

// Schedule is a parsed day plan.
type Schedule struct {
	Title string `json:"title,omitempty"`
	Items []Item `json:"items"`
}

var timePattern = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*(?:AM|PM)|\d{1,2}\s*(?:AM|PM))`)

// Parse extracts schedule items from an assistant reply. It returns nil when
// the reply does not look like a schedule; callers then fall back to plain
// rendering.
func Parse(content string) *Schedule {
	lowerContent := strings.ToLower(content)
	if !common.HasAny(lowerContent, "schedule", "plan") && !timePattern.MatchString(content) {
		return nil
	}

	var (
		items []Item
		title string
	)

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if loc := timePattern.FindStringIndex(trimmed); loc != nil {
			t := trimmed[loc[0]:loc[1]]
			activity := strings.TrimFunc(
				trimmed[:loc[0]]+trimmed[loc[1]:],
				func(r rune) bool {
					return r == ' ' || r == '-' || r == '•' || r == ':' || r == '*'
				},
			)
			if activity != "" {
				items = append(items, Item{Time: t, Activity: activity})
			}
			continue
		}

		if strings.Contains(trimmed, "**") || strings.Contains(trimmed, "Schedule") || strings.Contains(trimmed, "Plan") {
			title = strings.ReplaceAll(trimmed, "**", "")
			continue
		}

		// Trailing detail lines annotate the item above them.
		if len(items) == 0 {
			continue
		}
		last := &items[len(items)-1]
		lower := strings.ToLower(trimmed)
		switch {
		case common.HasAny(lower, "wear", "outfit", "clothing"):
			last.Outfit = trimmed
		case common.HasAny(lower, "weather", "temperature", "°"):
			last.Weather = trimmed
		default:
			last.Activity += " - " + trimmed
		}
	}

	if len(items) == 0 {
		return nil
	}
	return &Schedule{Title: title, Items: items}
}
