package weather

import (
	"context"
	"errors"
	"fmt"

	"github.com/stormstream/storm-assistant/internal/geocode"
	"go.uber.org/zap"
)

// ErrLocationNotFound is returned when geocoding resolves no coordinates for
// the requested location text. It aborts the weather pipeline before any
// provider fetch is attempted.
var ErrLocationNotFound = errors.New("weather: location not found")

// Geocoder resolves free-text place names to coordinates.
type Geocoder interface {
	Lookup(ctx context.Context, query string) (*geocode.Place, error)
}

// Service runs the weather pipeline for one deployment: geocode the location
// text, fetch from the configured provider, hand back the canonical
// snapshot.
type Service struct {
	geocoder Geocoder
	provider ForecastProvider
	days     int
	log      *zap.Logger
}

func NewService(geocoder Geocoder, provider ForecastProvider, days int, log *zap.Logger) *Service {
	return &Service{
		geocoder: geocoder,
		provider: provider,
		days:     days,
		log:      log,
	}
}

// SnapshotFor geocodes locationText and fetches a normalized forecast. A
// geocoding miss returns ErrLocationNotFound; other errors wrap the failing
// step.
func (s *Service) SnapshotFor(ctx context.Context, locationText string, days int) (*Snapshot, error) {
	if days <= 0 {
		days = s.days
	}

	place, err := s.geocoder.Lookup(ctx, locationText)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			s.log.Info("no geocoding results", zap.String("query", locationText))
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("geocode %q: %w", locationText, err)
	}

	loc := Location{
		Name:      place.Name,
		Region:    place.Region,
		Country:   place.Country,
		Latitude:  place.Latitude,
		Longitude: place.Longitude,
	}

	snapshot, err := s.provider.Forecast(ctx, loc, days)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", s.provider.Name(), err)
	}

	s.log.Debug("fetched weather snapshot",
		zap.String("provider", s.provider.Name()),
		zap.String("location", loc.Name),
		zap.Int("forecast_days", len(snapshot.Forecast.ForecastDay)),
	)
	return snapshot, nil
}
