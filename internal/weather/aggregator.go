package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrNoProviders is returned by a lookup with nothing configured.
var ErrNoProviders = errors.New("no weather providers configured")

// Aggregator fans a lookup out to every provider and merges the readings.
type Aggregator struct {
	providers []Provider
}

// NewAggregator creates an Aggregator. Provider order is the preference
// order for description and icon.
func NewAggregator(providers []Provider) *Aggregator {
	return &Aggregator{providers: providers}
}

// Providers returns the configured provider names.
func (a *Aggregator) Providers() []string {
	names := make([]string, len(a.providers))
	for i, p := range a.providers {
		names[i] = p.Name()
	}
	return names
}

// Lookup fetches from all providers concurrently and aggregates successful
// readings. It fails only when every provider fails.
func (a *Aggregator) Lookup(ctx context.Context, location string) (Entry, error) {
	if len(a.providers) == 0 {
		return Entry{}, ErrNoProviders
	}

	var (
		wg       sync.WaitGroup
		readings = make([]*ProviderReading, len(a.providers))
		errs     = make([]error, len(a.providers))
	)

	log.Printf("DEBUG: weather: lookup %q across %d providers", location, len(a.providers))

	for i, p := range a.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()

			r, err := p.Fetch(ctx, location)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Printf("provider %s fetch failed for %q: %v", p.Name(), location, err)
				errs[i] = fmt.Errorf("%s: %w", p.Name(), err)
				return
			}
			readings[i] = &r
		}(i, p)
	}

	wg.Wait()

	ok := make([]ProviderReading, 0, len(readings))
	for _, r := range readings {
		if r != nil {
			ok = append(ok, *r)
		}
	}
	if len(ok) == 0 {
		return Entry{}, fmt.Errorf("weather data not available for %q: %w", location, errors.Join(errs...))
	}

	return AggregateReadings(location, ok), nil
}
