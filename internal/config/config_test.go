package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormstream/storm-assistant/internal/weather"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, weather.ProviderOpenMeteo, cfg.WeatherProvider)
	assert.Equal(t, 7, cfg.ForecastDays)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, 200, cfg.SessionMaxTurns)
	assert.Equal(t, 30*time.Minute, cfg.SessionMaxIdle)
	assert.Equal(t, 5*time.Minute, cfg.JanitorInterval)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadRequiresOpenAIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadProviderKeyValidation(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	t.Setenv("WEATHER_PROVIDER", "weatherapi")
	t.Setenv("WEATHERAPI_API_KEY", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("WEATHERAPI_API_KEY", "wk")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, weather.ProviderWeatherAPI, cfg.WeatherProvider)

	t.Setenv("WEATHER_PROVIDER", "tomorrowio")
	t.Setenv("TOMORROWIO_API_KEY", "")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("WEATHER_PROVIDER", "smoke-signals")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadForecastDays(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FORECAST_DAYS", "11")

	_, err := Load()
	assert.Error(t, err)
}
