package weather

import "time"

// AggregateReadings combines provider readings into a single Entry.
// Temperatures are averaged; the condition is the majority (earliest reading
// wins ties); description and icon come from the first reading, so callers
// pass readings in provider preference order.
func AggregateReadings(location string, readings []ProviderReading) Entry {
	if len(readings) == 0 {
		return Entry{
			Location:  location,
			FetchedAt: time.Now().UTC(),
			Condition: ConditionUnknown,
		}
	}

	var sumTemp float64

	conditionCounts := make(map[Condition]int)
	providers := make([]ProviderContribution, 0, len(readings))
	var newestTS time.Time

	for _, r := range readings {
		sumTemp += r.TemperatureC
		conditionCounts[r.Condition]++

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}

		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	// Pick majority condition, scanning in reading order for stable ties.
	bestCond := ConditionUnknown
	bestCount := 0
	for _, r := range readings {
		if count := conditionCounts[r.Condition]; count > bestCount {
			bestCount = count
			bestCond = r.Condition
		}
	}

	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}

	primary := readings[0]
	return Entry{
		Location:    location,
		Temperature: sumTemp / float64(len(readings)),
		Description: primary.Description,
		Icon:        primary.Icon,
		Condition:   bestCond,
		FetchedAt:   newestTS,
		Providers:   providers,
	}
}
