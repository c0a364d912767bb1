package weather

import "math"

// Condition pairs a human-readable condition text with a display icon.
type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

// Location is a geocoded place. Immutable once resolved; every new query
// re-resolves from scratch.
type Location struct {
	Name      string  `json:"name"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentConditions holds the normalized current weather reading.
type CurrentConditions struct {
	TempC      float64   `json:"temp_c"`
	TempF      float64   `json:"temp_f"`
	Humidity   float64   `json:"humidity"`
	WindKph    float64   `json:"wind_kph"`
	FeelslikeC float64   `json:"feelslike_c"`
	Condition  Condition `json:"condition"`
}

// HourPoint is a single hourly forecast entry. Entries are ordered ascending
// by time but not guaranteed contiguous.
type HourPoint struct {
	Time      string    `json:"time"`
	TempC     float64   `json:"temp_c"`
	Condition Condition `json:"condition"`
}

// DaySummary aggregates a single forecast day.
type DaySummary struct {
	MaxTempC  float64   `json:"maxtemp_c"`
	MinTempC  float64   `json:"mintemp_c"`
	Condition Condition `json:"condition"`
}

// ForecastDay groups a day summary with the hourly entries whose time falls
// on that calendar date (provider-local timezone). A day with zero hourly
// points is valid-but-sparse, not an error.
type ForecastDay struct {
	Date string      `json:"date"`
	Day  DaySummary  `json:"day"`
	Hour []HourPoint `json:"hour"`
}

// Forecast wraps the per-day forecast list.
type Forecast struct {
	ForecastDay []ForecastDay `json:"forecastday"`
}

// Snapshot is the canonical normalized weather shape every consumer depends
// on, regardless of which provider produced it. Constructed fresh per
// successful fetch and never mutated afterwards.
type Snapshot struct {
	Location Location          `json:"location"`
	Current  CurrentConditions `json:"current"`
	Forecast Forecast          `json:"forecast"`
}

// CelsiusToFahrenheit converts without rounding; callers round per field.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// RoundedFahrenheit is the conversion used for current-condition readings.
func RoundedFahrenheit(c float64) float64 {
	return math.Round(CelsiusToFahrenheit(c))
}
