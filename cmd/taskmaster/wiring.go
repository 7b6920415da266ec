package main

import (
	"log"
	"net/http"

	"github.com/i474232898/taskmaster/internal/config"
	"github.com/i474232898/taskmaster/internal/store"
	"github.com/i474232898/taskmaster/internal/weather"
	"github.com/i474232898/taskmaster/internal/weather/providers"
)

// newAggregator builds the provider chain from configured credentials.
// WeatherAPI comes first so its description and icon are preferred.
func newAggregator(cfg *config.AppConfig) *weather.Aggregator {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var provs []weather.Provider
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	// Open-Meteo does not require an API key, but geocoding requires a Google API key.
	if cfg.GeocoderAPIKey != "" {
		provs = append(provs, providers.NewOpenMeteoProvider(httpClient, providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)))
	}

	agg := weather.NewAggregator(provs)
	if len(provs) == 0 {
		log.Println("WARN: no weather provider credentials configured; every location will be unavailable")
	} else {
		log.Printf("INFO: weather providers: %v", agg.Providers())
	}
	return agg
}

func openStorage(cfg *config.AppConfig) (store.KV, error) {
	kv, err := store.Open(cfg.StorageDriver, cfg.StoragePath)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: storage: %s at %s", cfg.StorageDriver, cfg.StoragePath)
	return kv, nil
}
