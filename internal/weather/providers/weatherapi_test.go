package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormstream/storm-assistant/internal/weather"
)

const weatherAPIFixture = `{
	"location": {"name": "Paris", "region": "Ile-de-France", "country": "France", "lat": 48.87, "lon": 2.33},
	"current": {
		"temp_c": 18.3,
		"temp_f": 64.9,
		"humidity": 71,
		"wind_kph": 15.1,
		"feelslike_c": 17.8,
		"condition": {"text": "Light rain", "icon": "//cdn.weatherapi.com/weather/64x64/day/296.png"}
	},
	"forecast": {
		"forecastday": [
			{
				"date": "2026-08-27",
				"day": {"maxtemp_c": 21.0, "mintemp_c": 13.4, "condition": {"text": "Patchy rain", "icon": "//x/296.png"}},
				"hour": [
					{"time": "2026-08-27 00:00", "temp_c": 14.0, "condition": {"text": "Clear", "icon": "//x/113.png"}},
					{"time": "2026-08-27 13:00", "temp_c": 20.1, "condition": {"text": "", "icon": ""}}
				]
			}
		]
	}
}`

func newWeatherAPITestProvider(t *testing.T, key string, handler http.HandlerFunc) *WeatherAPIProvider {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	p := NewWeatherAPIProvider(ts.Client(), key)
	p.baseURL = ts.URL
	return p
}

func TestWeatherAPIForecast(t *testing.T) {
	var gotQuery string
	p := newWeatherAPITestProvider(t, "k", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(weatherAPIFixture))
	})

	snap, err := p.Forecast(context.Background(), weather.Location{Name: "paris", Latitude: 48.85, Longitude: 2.35}, 1)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "key=k")
	assert.Contains(t, gotQuery, "days=1")

	// The provider's own location block wins over the geocoded query.
	assert.Equal(t, "Paris", snap.Location.Name)
	assert.Equal(t, "France", snap.Location.Country)

	// temp_f is the provider's figure, passed through unchanged.
	assert.Equal(t, 64.9, snap.Current.TempF)
	assert.Equal(t, 18.3, snap.Current.TempC)
	assert.Equal(t, "Light rain", snap.Current.Condition.Text)
	assert.Equal(t, "//cdn.weatherapi.com/weather/64x64/day/296.png", snap.Current.Condition.Icon)

	require.Len(t, snap.Forecast.ForecastDay, 1)
	day := snap.Forecast.ForecastDay[0]
	assert.Equal(t, "2026-08-27", day.Date)
	assert.Equal(t, "Patchy rain", day.Day.Condition.Text)
	require.Len(t, day.Hour, 2)

	// Blank condition fields fall back to the canonical placeholders.
	assert.Equal(t, "Unknown", day.Hour[1].Condition.Text)
	assert.Equal(t, genericIcon, day.Hour[1].Condition.Icon)
}

func TestWeatherAPIComputesTempFWhenMissing(t *testing.T) {
	var payload weatherAPIResponse
	raw := `{"current":{"temp_c":10.0},"forecast":{"forecastday":[{"date":"2026-08-27"}]}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	snap := normalizeWeatherAPI(weather.Location{Name: "Oslo"}, &payload)
	assert.Equal(t, float64(50), snap.Current.TempF)
	assert.Equal(t, "Oslo", snap.Location.Name)
}

func TestWeatherAPIRequiresKey(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "")
	_, err := p.Forecast(context.Background(), weather.Location{}, 1)
	assert.Error(t, err)
}

func TestWeatherAPIEmptyForecastIsAnError(t *testing.T) {
	p := newWeatherAPITestProvider(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"location":{"name":"Nowhere"},"current":{},"forecast":{"forecastday":[]}}`))
	})

	_, err := p.Forecast(context.Background(), weather.Location{}, 1)
	assert.Error(t, err)
}
