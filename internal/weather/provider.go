package weather

import "context"

// ProviderKind selects which upstream weather service a deployment runs
// against. Exactly one provider is active at a time; each provider owns the
// normalization of its own response shape into a Snapshot.
type ProviderKind string

const (
	ProviderOpenMeteo  ProviderKind = "openmeteo"
	ProviderWeatherAPI ProviderKind = "weatherapi"
	ProviderTomorrowIO ProviderKind = "tomorrowio"
)

// ForecastProvider abstracts a weather data source (Open-Meteo,
// WeatherAPI.com, Tomorrow.io). Implementations must return a fully
// normalized snapshot and never panic on unmapped condition codes.
type ForecastProvider interface {
	Name() string
	Forecast(ctx context.Context, loc Location, days int) (*Snapshot, error)
}
