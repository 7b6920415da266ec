package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	WeatherAPIKey     string
	OpenWeatherAPIKey string
	GeocoderAPIKey    string

	// HTTPTimeout bounds each outbound provider request.
	HTTPTimeout time.Duration

	// WeatherFetchTimeout bounds a whole lookup across providers.
	WeatherFetchTimeout time.Duration

	// WeatherRefreshInterval re-fetches visible locations periodically.
	// Zero disables the refresh job.
	WeatherRefreshInterval time.Duration

	// LoginDelay simulates the credential check round trip.
	LoginDelay time.Duration

	// Persistence backend: memory, file or sqlite.
	StorageDriver string
	StoragePath   string

	Port string
}

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.WeatherFetchTimeout, err = getenvDuration("WEATHER_FETCH_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.WeatherRefreshInterval, err = getenvDuration("WEATHER_REFRESH_INTERVAL", "0"); err != nil {
		return nil, err
	}
	if cfg.LoginDelay, err = getenvDuration("LOGIN_DELAY", "800ms"); err != nil {
		return nil, err
	}

	cfg.StorageDriver = getenvDefault("STORAGE_DRIVER", "file")
	switch cfg.StorageDriver {
	case "memory", "file", "sqlite":
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: want memory, file or sqlite", cfg.StorageDriver)
	}
	cfg.StoragePath = getenvDefault("STORAGE_PATH", defaultStoragePath(cfg.StorageDriver))

	cfg.Port = getenvDefault("PORT", "8080")
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	return cfg, nil
}

func defaultStoragePath(driver string) string {
	if driver == "sqlite" {
		return "data/taskmaster.db"
	}
	return "data"
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
