package weather

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubProvider struct {
	name    string
	reading ProviderReading
	err     error
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Fetch(ctx context.Context, location string) (ProviderReading, error) {
	if s.err != nil {
		return ProviderReading{}, s.err
	}
	r := s.reading
	r.ProviderName = s.name
	return r, nil
}

func TestAggregatorAveragesAndPrefersFirstProvider(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	agg := NewAggregator([]Provider{
		stubProvider{name: "a", reading: ProviderReading{TemperatureC: 10, Description: "Light rain", Icon: "a.png", Condition: ConditionRain, Timestamp: ts}},
		stubProvider{name: "b", reading: ProviderReading{TemperatureC: 20, Description: "Clouds", Icon: "b.png", Condition: ConditionCloudy, Timestamp: ts.Add(time.Minute)}},
		stubProvider{name: "c", reading: ProviderReading{TemperatureC: 30, Description: "Drizzle", Condition: ConditionRain, Timestamp: ts}},
	})

	entry, err := agg.Lookup(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Temperature != 20 {
		t.Fatalf("expected averaged temperature 20, got %v", entry.Temperature)
	}
	if entry.Description != "Light rain" || entry.Icon != "a.png" {
		t.Fatalf("expected first provider description/icon, got %+v", entry)
	}
	if entry.Condition != ConditionRain {
		t.Fatalf("expected majority condition rain, got %s", entry.Condition)
	}
	if !entry.FetchedAt.Equal(ts.Add(time.Minute)) {
		t.Fatalf("expected newest timestamp, got %v", entry.FetchedAt)
	}
	if len(entry.Providers) != 3 {
		t.Fatalf("expected 3 contributions, got %d", len(entry.Providers))
	}
}

func TestAggregatorPartialFailure(t *testing.T) {
	agg := NewAggregator([]Provider{
		stubProvider{name: "down", err: errors.New("boom")},
		stubProvider{name: "up", reading: ProviderReading{TemperatureC: 7, Description: "Clear"}},
	})

	entry, err := agg.Lookup(context.Background(), "Oslo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Description != "Clear" || entry.Temperature != 7 {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestAggregatorAllFail(t *testing.T) {
	boom := errors.New("boom")
	agg := NewAggregator([]Provider{stubProvider{name: "down", err: boom}})

	if _, err := agg.Lookup(context.Background(), "Oslo"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
	if _, err := NewAggregator(nil).Lookup(context.Background(), "Oslo"); !errors.Is(err, ErrNoProviders) {
		t.Fatalf("expected ErrNoProviders, got %v", err)
	}
}
