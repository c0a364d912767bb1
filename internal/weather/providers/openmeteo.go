package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/stormstream/storm-assistant/internal/weather"
)

// genericIcon is served for conditions the provider does not supply an icon
// for; the frontend swaps it per condition text.
const genericIcon = "//cdn.weatherapi.com/weather/128x128/day/302.png"

// wmoConditions translates WMO weather codes to condition text. Codes
// missing from the table render as "Unknown"; an unmapped code is never an
// error.
var wmoConditions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

func wmoCondition(code int) weather.Condition {
	text, ok := wmoConditions[code]
	if !ok {
		text = "Unknown"
	}
	return weather.Condition{Text: text, Icon: genericIcon}
}

// OpenMeteoProvider normalizes the Open-Meteo forecast shape: flat hourly
// and daily parallel arrays keyed by matching-length time arrays.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	http    *resilientClient
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		http:    newResilientClient(client, "openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoResponse struct {
	Current struct {
		Temperature2m      float64 `json:"temperature_2m"`
		RelativeHumidity2m float64 `json:"relative_humidity_2m"`
		WeatherCode        int     `json:"weather_code"`
		WindSpeed10m       float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Hourly struct {
		Time               []string  `json:"time"`
		Temperature2m      []float64 `json:"temperature_2m"`
		WeatherCode        []int     `json:"weather_code"`
		RelativeHumidity2m []float64 `json:"relative_humidity_2m"`
		WindSpeed10m       []float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
	Daily struct {
		Time             []string  `json:"time"`
		WeatherCode      []int     `json:"weather_code"`
		Temperature2mMax []float64 `json:"temperature_2m_max"`
		Temperature2mMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) Forecast(ctx context.Context, loc weather.Location, days int) (*weather.Snapshot, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", loc.Latitude))
	values.Set("longitude", fmt.Sprintf("%f", loc.Longitude))
	values.Set("current", "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m")
	values.Set("hourly", "temperature_2m,weather_code,relative_humidity_2m,wind_speed_10m")
	values.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min")
	values.Set("forecast_days", fmt.Sprintf("%d", days))
	values.Set("timezone", "auto")
	values.Set("timeformat", "iso8601")

	resp, err := p.http.get(ctx, p.baseURL+"?"+values.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("openmeteo: decode response: %w", err)
	}

	if len(payload.Hourly.Time) == 0 || len(payload.Daily.Time) == 0 {
		return nil, fmt.Errorf("openmeteo: response missing hourly or daily series")
	}

	return normalizeOpenMeteo(loc, &payload), nil
}

// normalizeOpenMeteo reconstructs per-day groupings from the flat hourly
// array by filtering on the ISO date prefix of each hourly time. O(days x
// hours), which is fine for forecast horizons of at most 10 days.
func normalizeOpenMeteo(loc weather.Location, payload *openMeteoResponse) *weather.Snapshot {
	current := weather.CurrentConditions{
		TempC:    payload.Current.Temperature2m,
		TempF:    weather.RoundedFahrenheit(payload.Current.Temperature2m),
		Humidity: payload.Current.RelativeHumidity2m,
		WindKph:  payload.Current.WindSpeed10m,
		// Open-Meteo has no apparent-temperature field in this field set.
		FeelslikeC: payload.Current.Temperature2m - 1,
		Condition:  wmoCondition(payload.Current.WeatherCode),
	}

	forecastDays := make([]weather.ForecastDay, 0, len(payload.Daily.Time))
	for i, date := range payload.Daily.Time {
		var hours []weather.HourPoint
		for j, t := range payload.Hourly.Time {
			if hourDate(t) != date {
				continue
			}
			point := weather.HourPoint{Time: t}
			if j < len(payload.Hourly.Temperature2m) {
				point.TempC = payload.Hourly.Temperature2m[j]
			}
			if j < len(payload.Hourly.WeatherCode) {
				point.Condition = wmoCondition(payload.Hourly.WeatherCode[j])
			} else {
				point.Condition = wmoCondition(-1)
			}
			hours = append(hours, point)
		}

		day := weather.DaySummary{Condition: wmoCondition(-1)}
		if i < len(payload.Daily.Temperature2mMax) {
			day.MaxTempC = payload.Daily.Temperature2mMax[i]
		}
		if i < len(payload.Daily.Temperature2mMin) {
			day.MinTempC = payload.Daily.Temperature2mMin[i]
		}
		if i < len(payload.Daily.WeatherCode) {
			day.Condition = wmoCondition(payload.Daily.WeatherCode[i])
		}

		forecastDays = append(forecastDays, weather.ForecastDay{
			Date: date,
			Day:  day,
			Hour: hours,
		})
	}

	return &weather.Snapshot{
		Location: loc,
		Current:  current,
		Forecast: weather.Forecast{ForecastDay: forecastDays},
	}
}

// hourDate extracts the YYYY-MM-DD prefix of an ISO-8601 datetime.
func hourDate(t string) string {
	if idx := strings.IndexByte(t, 'T'); idx >= 0 {
		return t[:idx]
	}
	return t
}
