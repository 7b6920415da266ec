package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/taskmaster/internal/common"
	"github.com/i474232898/taskmaster/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuit("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, location string) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, ErrMissingAPIKey
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", location)
		values.Set("aqi", "no")
		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.ProviderReading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Location struct {
			LocaltimeEpoch int64 `json:"localtime_epoch"`
		} `json:"location"`
		Current struct {
			LastUpdatedEpoch int64   `json:"last_updated_epoch"`
			TempC            float64 `json:"temp_c"`
			Condition        struct {
				Text string `json:"text"`
				Icon string `json:"icon"`
			} `json:"condition"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts := time.Now().UTC()
	if epoch := payload.Current.LastUpdatedEpoch; epoch > 0 {
		ts = time.Unix(epoch, 0).UTC()
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: payload.Current.TempC,
		Description:  payload.Current.Condition.Text,
		Icon:         absoluteIcon(payload.Current.Condition.Icon),
		Condition:    mapWeatherAPICondition(payload.Current.Condition.Text),
	}, nil
}

// absoluteIcon turns WeatherAPI's protocol-relative icon paths into URLs.
func absoluteIcon(icon string) string {
	if strings.HasPrefix(icon, "//") {
		return "https:" + icon
	}
	return icon
}

func mapWeatherAPICondition(text string) weather.Condition {
	switch {
	case text == "":
		return weather.ConditionUnknown
	case common.HasAnyFold(text, "thunder", "storm"):
		return weather.ConditionStorm
	case common.HasAnyFold(text, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case common.HasAnyFold(text, "snow", "sleet", "blizzard"):
		return weather.ConditionSnow
	case common.HasAnyFold(text, "mist", "fog"):
		return weather.ConditionMist
	case common.HasAnyFold(text, "cloud", "overcast"):
		return weather.ConditionCloudy
	case common.HasAnyFold(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
