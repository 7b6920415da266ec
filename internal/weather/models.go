package weather

import (
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Entry is the last known weather for a location. Location is the raw
// string the lookup was requested with and is used as the cache key as-is.
type Entry struct {
	Location    string    `json:"location"`
	Temperature float64   `json:"temperature"` // °C
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Condition   Condition `json:"condition"`
	FetchedAt   time.Time `json:"fetchedAt"` // always UTC

	// Providers contributing to this entry.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}

// Status is what a task card shows for its location.
type Status string

const (
	StatusNone        Status = "none"        // task has no location
	StatusLoading     Status = "loading"     // no entry yet, a fetch is in flight
	StatusReady       Status = "ready"       // an entry is cached
	StatusUnavailable Status = "unavailable" // no entry and nothing in flight
)

// State is the cache-wide loading and error status.
type State struct {
	IsLoading bool   `json:"isLoading"`
	Error     string `json:"error,omitempty"`
}
