// internal/engine/timeseries/aggregator.go
package timeseries

import (
	"sort"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/domain"
)

// Aggregator buckets raw consumption records into a contiguous per-period
// series. Gaps are filled with zero: a period with no transactions is a true
// zero, never silently omitted.
type Aggregator struct {
	minPeriods int
}

func NewAggregator(minPeriods int) *Aggregator {
	if minPeriods < 1 {
		minPeriods = 1
	}
	return &Aggregator{minPeriods: minPeriods}
}

// Aggregate builds the series for one item covering [min(timestamp), now].
// Quantities within the same period sum. Returns InsufficientDataError when
// the covered range holds fewer than the configured minimum of periods.
func (a *Aggregator) Aggregate(itemID string, records []domain.ConsumptionRecord, g domain.Granularity, now time.Time) (*domain.TimeSeries, error) {
	if len(records) == 0 {
		return nil, &domain.InsufficientDataError{ItemID: itemID, Periods: 0, MinPeriods: a.minPeriods}
	}

	sorted := make([]domain.ConsumptionRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	start := truncate(sorted[0].Timestamp, g)
	end := truncate(now, g)

	totals := make(map[time.Time]float64, len(sorted))
	for _, r := range sorted {
		p := truncate(r.Timestamp, g)
		if p.After(end) {
			continue
		}
		totals[p] += r.Quantity
	}

	var points []domain.SeriesPoint
	for p := start; !p.After(end); p = next(p, g) {
		points = append(points, domain.SeriesPoint{Period: p, Quantity: totals[p]})
	}

	if len(points) < a.minPeriods {
		return nil, &domain.InsufficientDataError{ItemID: itemID, Periods: len(points), MinPeriods: a.minPeriods}
	}

	return &domain.TimeSeries{ItemID: itemID, Granularity: g, Points: points}, nil
}

func truncate(t time.Time, g domain.Granularity) time.Time {
	t = t.UTC()
	switch g {
	case domain.GranularityWeek:
		day := t.Truncate(24 * time.Hour)
		// ISO-style weeks starting Monday
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case domain.GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return t.Truncate(24 * time.Hour)
	}
}

func next(t time.Time, g domain.Granularity) time.Time {
	switch g {
	case domain.GranularityWeek:
		return t.AddDate(0, 0, 7)
	case domain.GranularityMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}
