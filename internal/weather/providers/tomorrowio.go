package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/stormstream/storm-assistant/internal/weather"
)

// mphToKph converts Tomorrow.io wind speeds (mph in imperial deployments).
const mphToKph = 1.60934

// tomorrowConditions maps Tomorrow.io condition codes to text and icon.
var tomorrowConditions = map[int]weather.Condition{
	0: {Text: "Clear", Icon: "☀️"},
	1: {Text: "Cloudy", Icon: "☁️"},
	2: {Text: "Mostly Cloudy", Icon: "🌤️"},
	3: {Text: "Partly Cloudy", Icon: "⛅"},
	4: {Text: "Overcast", Icon: "☁️"},
	5: {Text: "Drizzle", Icon: "🌦️"},
	6: {Text: "Rain", Icon: "🌧️"},
	7: {Text: "Snow", Icon: "❄️"},
	8: {Text: "Freezing Rain", Icon: "🧊"},
	9: {Text: "Thunderstorm", Icon: "⛈️"},
}

func tomorrowCondition(code int) weather.Condition {
	if c, ok := tomorrowConditions[code]; ok {
		return c
	}
	return weather.Condition{Text: "Unknown", Icon: "🌍"}
}

// TomorrowIOProvider normalizes the Tomorrow.io timelines shape: minutely,
// hourly, and daily interval arrays of {time, values}.
type TomorrowIOProvider struct {
	name    string
	apiKey  string
	baseURL string
	http    *resilientClient
}

func NewTomorrowIOProvider(client *http.Client, apiKey string) *TomorrowIOProvider {
	return &TomorrowIOProvider{
		name:    "tomorrowio",
		apiKey:  apiKey,
		baseURL: "https://api.tomorrow.io/v4/weather/forecast",
		http:    newResilientClient(client, "tomorrowio"),
	}
}

func (p *TomorrowIOProvider) Name() string {
	return p.name
}

type tomorrowInterval struct {
	Time   string `json:"time"`
	Values struct {
		Temperature         float64 `json:"temperature"`
		TemperatureApparent float64 `json:"temperatureApparent"`
		TemperatureMax      float64 `json:"temperatureMax"`
		TemperatureMin      float64 `json:"temperatureMin"`
		Humidity            float64 `json:"humidity"`
		WindSpeed           float64 `json:"windSpeed"`
		WeatherCode         int     `json:"weatherCode"`
	} `json:"values"`
}

type tomorrowResponse struct {
	Timelines struct {
		Minutely []tomorrowInterval `json:"minutely"`
		Hourly   []tomorrowInterval `json:"hourly"`
		Daily    []tomorrowInterval `json:"daily"`
	} `json:"timelines"`
}

func (p *TomorrowIOProvider) Forecast(ctx context.Context, loc weather.Location, days int) (*weather.Snapshot, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("tomorrowio: api key is not configured")
	}

	values := url.Values{}
	values.Set("location", fmt.Sprintf("%f,%f", loc.Latitude, loc.Longitude))
	values.Set("apikey", p.apiKey)

	resp, err := p.http.get(ctx, p.baseURL+"?"+values.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload tomorrowResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("tomorrowio: decode response: %w", err)
	}

	if len(payload.Timelines.Minutely) == 0 || len(payload.Timelines.Daily) == 0 {
		return nil, fmt.Errorf("tomorrowio: response missing minutely or daily timelines")
	}

	return normalizeTomorrowIO(loc, &payload, days), nil
}

func normalizeTomorrowIO(loc weather.Location, payload *tomorrowResponse, days int) *weather.Snapshot {
	now := payload.Timelines.Minutely[0].Values

	current := weather.CurrentConditions{
		TempC: now.Temperature,
		// This shape keeps the unrounded conversion; downstream display
		// code rounds where it needs to.
		TempF:      weather.CelsiusToFahrenheit(now.Temperature),
		Humidity:   now.Humidity,
		WindKph:    now.WindSpeed * mphToKph,
		FeelslikeC: now.TemperatureApparent,
		Condition:  tomorrowCondition(now.WeatherCode),
	}

	daily := payload.Timelines.Daily
	if days > 0 && len(daily) > days {
		daily = daily[:days]
	}

	forecastDays := make([]weather.ForecastDay, 0, len(daily))
	for _, d := range daily {
		date := hourDate(d.Time)

		var hours []weather.HourPoint
		for _, h := range payload.Timelines.Hourly {
			if hourDate(h.Time) != date {
				continue
			}
			hours = append(hours, weather.HourPoint{
				Time:      h.Time,
				TempC:     h.Values.Temperature,
				Condition: tomorrowCondition(h.Values.WeatherCode),
			})
		}

		forecastDays = append(forecastDays, weather.ForecastDay{
			Date: date,
			Day: weather.DaySummary{
				MaxTempC:  d.Values.TemperatureMax,
				MinTempC:  d.Values.TemperatureMin,
				Condition: tomorrowCondition(d.Values.WeatherCode),
			},
			Hour: hours,
		})
	}

	return &weather.Snapshot{
		Location: loc,
		Current:  current,
		Forecast: weather.Forecast{ForecastDay: forecastDays},
	}
}
