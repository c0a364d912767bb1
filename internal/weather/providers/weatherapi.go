package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/stormstream/storm-assistant/internal/weather"
)

// WeatherAPIProvider normalizes the WeatherAPI.com forecast shape, which is
// already grouped by day; normalization here is field renaming plus filling
// the few canonical fields the provider leaves implicit.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	http    *resilientClient
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		http:    newResilientClient(client, "weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type weatherAPIResponse struct {
	Location struct {
		Name    string  `json:"name"`
		Region  string  `json:"region"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	} `json:"location"`
	Current struct {
		TempC      float64             `json:"temp_c"`
		TempF      float64             `json:"temp_f"`
		Humidity   float64             `json:"humidity"`
		WindKph    float64             `json:"wind_kph"`
		FeelslikeC float64             `json:"feelslike_c"`
		Condition  weatherAPICondition `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC  float64             `json:"maxtemp_c"`
				MinTempC  float64             `json:"mintemp_c"`
				Condition weatherAPICondition `json:"condition"`
			} `json:"day"`
			Hour []struct {
				Time      string              `json:"time"`
				TempC     float64             `json:"temp_c"`
				Condition weatherAPICondition `json:"condition"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) Forecast(ctx context.Context, loc weather.Location, days int) (*weather.Snapshot, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi: api key is not configured")
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// Coordinates are already resolved; "lat,lon" is the most precise form
	// of the q parameter.
	values.Set("q", fmt.Sprintf("%f,%f", loc.Latitude, loc.Longitude))
	values.Set("days", fmt.Sprintf("%d", days))
	values.Set("aqi", "no")
	values.Set("alerts", "no")

	resp, err := p.http.get(ctx, p.baseURL+"?"+values.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("weatherapi: decode response: %w", err)
	}

	if len(payload.Forecast.ForecastDay) == 0 {
		return nil, fmt.Errorf("weatherapi: response has no forecast days")
	}

	return normalizeWeatherAPI(loc, &payload), nil
}

func normalizeWeatherAPI(loc weather.Location, payload *weatherAPIResponse) *weather.Snapshot {
	if payload.Location.Name != "" {
		loc = weather.Location{
			Name:      payload.Location.Name,
			Region:    payload.Location.Region,
			Country:   payload.Location.Country,
			Latitude:  payload.Location.Lat,
			Longitude: payload.Location.Lon,
		}
	}

	// The provider supplies its own temp_f; it may diverge slightly from the
	// local conversion and is passed through unchanged.
	tempF := payload.Current.TempF
	if tempF == 0 && payload.Current.TempC != 0 {
		tempF = weather.RoundedFahrenheit(payload.Current.TempC)
	}

	current := weather.CurrentConditions{
		TempC:      payload.Current.TempC,
		TempF:      tempF,
		Humidity:   payload.Current.Humidity,
		WindKph:    payload.Current.WindKph,
		FeelslikeC: payload.Current.FeelslikeC,
		Condition:  conditionFromWeatherAPI(payload.Current.Condition),
	}

	forecastDays := make([]weather.ForecastDay, 0, len(payload.Forecast.ForecastDay))
	for _, fd := range payload.Forecast.ForecastDay {
		hours := make([]weather.HourPoint, 0, len(fd.Hour))
		for _, h := range fd.Hour {
			// Cross-day entries should not occur in this shape, but the
			// canonical invariant is enforced anyway.
			if hourDate(h.Time) != fd.Date && !sameDatePrefix(h.Time, fd.Date) {
				continue
			}
			hours = append(hours, weather.HourPoint{
				Time:      h.Time,
				TempC:     h.TempC,
				Condition: conditionFromWeatherAPI(h.Condition),
			})
		}
		forecastDays = append(forecastDays, weather.ForecastDay{
			Date: fd.Date,
			Day: weather.DaySummary{
				MaxTempC:  fd.Day.MaxTempC,
				MinTempC:  fd.Day.MinTempC,
				Condition: conditionFromWeatherAPI(fd.Day.Condition),
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

func conditionFromWeatherAPI(c weatherAPICondition) weather.Condition {
	text := c.Text
	if text == "" {
		text = "Unknown"
	}
	icon := c.Icon
	if icon == "" {
		icon = genericIcon
	}
	return weather.Condition{Text: text, Icon: icon}
}

// sameDatePrefix handles the "2006-01-02 15:04" time format WeatherAPI uses,
// where the separator is a space rather than a T.
func sameDatePrefix(t, date string) bool {
	return len(t) >= len(date) && t[:len(date)] == date
}
