package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"
)

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Geocoder resolves a free-text location to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (Coordinates, error)
}

// GeocoderFunc adapts a function to the Geocoder interface.
type GeocoderFunc func(ctx context.Context, location string) (Coordinates, error)

func (f GeocoderFunc) Geocode(ctx context.Context, location string) (Coordinates, error) {
	return f(ctx, location)
}

// googleGeocoderMu guards the package-level API key of kelvins/geocoder.
var googleGeocoderMu sync.Mutex

// GoogleGeocoder resolves locations with the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
}

// NewGoogleGeocoder creates a GoogleGeocoder using apiKey.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey}
}

// Geocode treats the whole location string as a city name. The underlying
// client takes no context, so ctx is only checked before the call.
func (g *GoogleGeocoder) Geocode(ctx context.Context, location string) (Coordinates, error) {
	if g.apiKey == "" {
		return Coordinates{}, ErrMissingAPIKey
	}
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}

	googleGeocoderMu.Lock()
	defer googleGeocoderMu.Unlock()

	geocoder.ApiKey = g.apiKey
	loc, err := geocoder.Geocoding(geocoder.Address{City: location})
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode %q: %w", location, err)
	}
	return Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}, nil
}
