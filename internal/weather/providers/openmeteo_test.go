package providers

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormstream/storm-assistant/internal/weather"
)

const openMeteoFixture = `{
	"current": {
		"temperature_2m": 20.4,
		"relative_humidity_2m": 55,
		"weather_code": 2,
		"wind_speed_10m": 12.3
	},
	"hourly": {
		"time": ["2026-08-27T00:00", "2026-08-27T01:00", "2026-08-28T00:00"],
		"temperature_2m": [18.1, 17.6, 19.2],
		"weather_code": [0, 1, 61],
		"relative_humidity_2m": [60, 62, 70],
		"wind_speed_10m": [8.0, 7.5, 10.1]
	},
	"daily": {
		"time": ["2026-08-27", "2026-08-28"],
		"weather_code": [2, 61],
		"temperature_2m_max": [24.0, 21.5],
		"temperature_2m_min": [15.2, 14.8]
	}
}`

func newOpenMeteoTestProvider(t *testing.T, handler http.HandlerFunc) *OpenMeteoProvider {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	p := NewOpenMeteoProvider(ts.Client())
	p.baseURL = ts.URL
	return p
}

func TestOpenMeteoForecast(t *testing.T) {
	var gotQuery string
	p := newOpenMeteoTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(openMeteoFixture))
	})

	loc := weather.Location{Name: "Berlin", Country: "Germany", Latitude: 52.52, Longitude: 13.41}
	snap, err := p.Forecast(context.Background(), loc, 2)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "forecast_days=2")
	assert.Contains(t, gotQuery, "timezone=auto")

	assert.Equal(t, loc, snap.Location)
	assert.Equal(t, 20.4, snap.Current.TempC)
	assert.Equal(t, float64(69), snap.Current.TempF)
	assert.InDelta(t, 19.4, snap.Current.FeelslikeC, 1e-9)
	assert.Equal(t, "Partly cloudy", snap.Current.Condition.Text)
	assert.Equal(t, genericIcon, snap.Current.Condition.Icon)

	require.Len(t, snap.Forecast.ForecastDay, 2)
	first := snap.Forecast.ForecastDay[0]
	assert.Equal(t, "2026-08-27", first.Date)
	assert.Equal(t, 24.0, first.Day.MaxTempC)
	assert.Equal(t, "Partly cloudy", first.Day.Condition.Text)
	require.Len(t, first.Hour, 2)
	assert.Equal(t, "Clear sky", first.Hour[0].Condition.Text)

	second := snap.Forecast.ForecastDay[1]
	require.Len(t, second.Hour, 1)
	assert.Equal(t, "2026-08-28T00:00", second.Hour[0].Time)
	assert.Equal(t, "Slight rain", second.Hour[0].Condition.Text)
}

// Every hour point must carry the ISO date of its parent day.
func TestOpenMeteoHoursStayWithinTheirDay(t *testing.T) {
	p := newOpenMeteoTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(openMeteoFixture))
	})

	snap, err := p.Forecast(context.Background(), weather.Location{}, 2)
	require.NoError(t, err)

	for _, day := range snap.Forecast.ForecastDay {
		for _, h := range day.Hour {
			assert.Equal(t, day.Date, hourDate(h.Time))
		}
	}
}

func TestOpenMeteoTempFConsistentWithTempC(t *testing.T) {
	p := newOpenMeteoTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(openMeteoFixture))
	})

	snap, err := p.Forecast(context.Background(), weather.Location{}, 2)
	require.NoError(t, err)

	diff := math.Abs(snap.Current.TempF - weather.CelsiusToFahrenheit(snap.Current.TempC))
	assert.LessOrEqual(t, diff, 0.5)
}

func TestOpenMeteoUnknownCode(t *testing.T) {
	c := wmoCondition(42)
	assert.Equal(t, "Unknown", c.Text)
	assert.Equal(t, genericIcon, c.Icon)
}

func TestOpenMeteoEmptySeriesIsAnError(t *testing.T) {
	p := newOpenMeteoTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current":{},"hourly":{"time":[]},"daily":{"time":[]}}`))
	})

	_, err := p.Forecast(context.Background(), weather.Location{}, 2)
	assert.Error(t, err)
}
