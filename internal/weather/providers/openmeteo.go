package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/taskmaster/internal/weather"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo needs coordinates, so free-text locations go through a Geocoder.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	geocoder Geocoder
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, geocoder Geocoder) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		geocoder: geocoder,
		httpCfg:  defaultHTTPConfig(client),
		circuit:  newCircuit("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, location string) (weather.ProviderReading, error) {
	if p.geocoder == nil {
		return weather.ProviderReading{}, fmt.Errorf("openmeteo requires a geocoder")
	}

	coords, err := p.geocoder.Geocode(ctx, location)
	if err != nil {
		return weather.ProviderReading{}, err
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coords.Lat))
		values.Set("longitude", fmt.Sprintf("%f", coords.Lon))
		values.Set("current_weather", "true")
		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.ProviderReading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			Time        string  `json:"time"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.ProviderReading{}, err
	}

	// Open-Meteo reports "2006-01-02T15:04" in GMT without a zone.
	ts, err := time.Parse("2006-01-02T15:04", payload.CurrentWeather.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	cond, desc := mapOpenMeteoCode(payload.CurrentWeather.WeatherCode)

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts.UTC(),
		TemperatureC: payload.CurrentWeather.Temperature,
		Description:  desc,
		Condition:    cond,
	}, nil
}

// mapOpenMeteoCode maps WMO weather codes (simplified) to a condition and a
// human-readable description.
func mapOpenMeteoCode(code int) (weather.Condition, string) {
	switch {
	case code == 0:
		return weather.ConditionClear, "Clear sky"
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy, "Partly cloudy"
	case code == 45 || code == 48:
		return weather.ConditionMist, "Fog"
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain, "Rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow, "Snow"
	case code >= 95:
		return weather.ConditionStorm, "Thunderstorm"
	default:
		return weather.ConditionUnknown, "Unknown"
	}
}
