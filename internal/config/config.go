package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/stormstream/storm-assistant/internal/weather"
)

// AppConfig holds every runtime knob, sourced from the environment.
type AppConfig struct {
	// LLM endpoint.
	OpenAIAPIKey  string
	OpenAIBaseURL string // empty = api.openai.com
	OpenAIModel   string
	Temperature   float64
	MaxTokens     int

	// Weather pipeline.
	WeatherProvider      weather.ProviderKind
	WeatherAPIKey        string // weatherapi.com
	TomorrowIOAPIKey     string
	GoogleGeocoderAPIKey string
	ForecastDays         int

	// Conversation handling.
	HistoryLimit    int // turns replayed to the LLM per request
	SessionMaxTurns int // turns retained per session
	SessionMaxIdle  time.Duration
	JanitorInterval time.Duration

	HTTPTimeout time.Duration
	Port        string
}

// Load reads configuration from the environment with sensible defaults.
// Missing required API keys fail fast here, before any network call.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required; add it to the environment or .env")
	}
	cfg.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	cfg.OpenAIModel = getenvDefault("OPENAI_MODEL", "gpt-4o-mini")

	temp, err := getenvFloat("OPENAI_TEMPERATURE", 0.7)
	if err != nil {
		return nil, fmt.Errorf("invalid OPENAI_TEMPERATURE: %w", err)
	}
	cfg.Temperature = temp
	cfg.MaxTokens = getenvInt("OPENAI_MAX_TOKENS", 500)

	cfg.WeatherProvider = weather.ProviderKind(getenvDefault("WEATHER_PROVIDER", string(weather.ProviderOpenMeteo)))
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.TomorrowIOAPIKey = os.Getenv("TOMORROWIO_API_KEY")
	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	switch cfg.WeatherProvider {
	case weather.ProviderOpenMeteo:
		// No key required.
	case weather.ProviderWeatherAPI:
		if cfg.WeatherAPIKey == "" {
			return nil, fmt.Errorf("WEATHERAPI_API_KEY is required when WEATHER_PROVIDER=weatherapi")
		}
	case weather.ProviderTomorrowIO:
		if cfg.TomorrowIOAPIKey == "" {
			return nil, fmt.Errorf("TOMORROWIO_API_KEY is required when WEATHER_PROVIDER=tomorrowio")
		}
	default:
		return nil, fmt.Errorf("unknown WEATHER_PROVIDER %q", cfg.WeatherProvider)
	}

	cfg.ForecastDays = getenvInt("FORECAST_DAYS", 7)
	if cfg.ForecastDays < 1 || cfg.ForecastDays > 10 {
		return nil, fmt.Errorf("FORECAST_DAYS must be between 1 and 10")
	}

	cfg.HistoryLimit = getenvInt("CHAT_HISTORY_LIMIT", 20)
	cfg.SessionMaxTurns = getenvInt("SESSION_MAX_TURNS", 200)

	maxIdle, err := getenvDuration("SESSION_MAX_IDLE", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_IDLE: %w", err)
	}
	cfg.SessionMaxIdle = maxIdle

	janitor, err := getenvDuration("JANITOR_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid JANITOR_INTERVAL: %w", err)
	}
	cfg.JanitorInterval = janitor

	timeout, err := getenvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}
