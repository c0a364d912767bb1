package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/kelvins/geocoder"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no coordinates could be resolved for a query.
// Callers treat this as "no location", not as a failure.
var ErrNotFound = errors.New("geocode: location not found")

const defaultBaseURL = "https://geocoding-api.open-meteo.com/v1/search"

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// Place is a resolved location with coordinates.
type Place struct {
	Name      string
	Region    string
	Country   string
	Latitude  float64
	Longitude float64
}

// Client resolves free-text place names and US ZIP codes to coordinates.
// The primary backend is the Open-Meteo geocoding API (free, no key). When a
// Google geocoder key is configured, it is consulted as a fallback on
// primary misses.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	googleAPIKey string
	log          *zap.Logger
}

func NewClient(httpClient *http.Client, googleAPIKey string, log *zap.Logger) *Client {
	return &Client{
		httpClient:   httpClient,
		baseURL:      defaultBaseURL,
		googleAPIKey: googleAPIKey,
		log:          log,
	}
}

// Lookup resolves query to a Place. It returns ErrNotFound when every
// configured backend yields zero results.
func (c *Client) Lookup(ctx context.Context, query string) (*Place, error) {
	place, err := c.lookupOpenMeteo(ctx, query)
	if err == nil {
		return place, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if c.googleAPIKey != "" {
		if place, gerr := c.lookupGoogle(query); gerr == nil {
			return place, nil
		} else if !errors.Is(gerr, ErrNotFound) {
			c.log.Warn("google geocoder fallback failed", zap.String("query", query), zap.Error(gerr))
		}
	}

	return nil, ErrNotFound
}

func (c *Client) lookupOpenMeteo(ctx context.Context, query string) (*Place, error) {
	values := url.Values{}
	values.Set("name", query)
	values.Set("count", "1")
	values.Set("language", "en")
	values.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Name      string  `json:"name"`
			Country   string  `json:"country"`
			Admin1    string  `json:"admin1"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("geocode: decode response: %w", err)
	}

	// Empty or missing results means location-not-found, not an error.
	if len(payload.Results) == 0 {
		return nil, ErrNotFound
	}

	r := payload.Results[0]
	return &Place{
		Name:      r.Name,
		Region:    r.Admin1,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}, nil
}

func (c *Client) lookupGoogle(query string) (*Place, error) {
	geocoder.ApiKey = c.googleAPIKey

	addr := geocoder.Address{City: query}
	if zipPattern.MatchString(query) {
		addr = geocoder.Address{PostalCode: query}
	}

	loc, err := geocoder.Geocoding(addr)
	if err != nil {
		return nil, fmt.Errorf("google geocoding: %w", err)
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return nil, ErrNotFound
	}

	return &Place{
		Name:      query,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}, nil
}
