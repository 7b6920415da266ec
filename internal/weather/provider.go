package weather

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's normalized reading
// that can be aggregated into an Entry.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC float64
	Description  string
	Icon         string
	Condition    Condition
}

// Provider abstracts a weather data source (e.g. WeatherAPI, OpenWeatherMap, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, location string) (ProviderReading, error)
}

// Lookup is the opaque weather capability the cache depends on.
type Lookup func(ctx context.Context, location string) (Entry, error)
