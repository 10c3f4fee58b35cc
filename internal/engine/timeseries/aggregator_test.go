package timeseries

import (
	"errors"
	"testing"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 10, 30, 0, 0, time.UTC)
}

func TestAggregateFillsGapsWithZero(t *testing.T) {
	records := []domain.ConsumptionRecord{
		{ItemID: "amoxicillin-500", Timestamp: day(1), Quantity: 5},
		{ItemID: "amoxicillin-500", Timestamp: day(1), Quantity: 3},
		{ItemID: "amoxicillin-500", Timestamp: day(4), Quantity: 7},
	}

	agg := NewAggregator(3)
	series, err := agg.Aggregate("amoxicillin-500", records, domain.GranularityDay, day(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(series.Points); got != 5 {
		t.Fatalf("expected 5 contiguous periods, got %d", got)
	}

	want := []float64{8, 0, 0, 7, 0}
	for i, q := range want {
		if series.Points[i].Quantity != q {
			t.Errorf("period %d: want %v, got %v", i, q, series.Points[i].Quantity)
		}
	}
}

func TestAggregatePeriodsAreContiguous(t *testing.T) {
	records := []domain.ConsumptionRecord{
		{ItemID: "x", Timestamp: day(2), Quantity: 1},
		{ItemID: "x", Timestamp: day(9), Quantity: 1},
	}

	agg := NewAggregator(3)
	series, err := agg.Aggregate("x", records, domain.GranularityDay, day(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(series.Points); i++ {
		gap := series.Points[i].Period.Sub(series.Points[i-1].Period)
		if gap != 24*time.Hour {
			t.Fatalf("gap between period %d and %d is %v", i-1, i, gap)
		}
	}
}

func TestAggregateInsufficientHistory(t *testing.T) {
	records := []domain.ConsumptionRecord{
		{ItemID: "rare-drug", Timestamp: day(1), Quantity: 2},
		{ItemID: "rare-drug", Timestamp: day(2), Quantity: 3},
	}

	agg := NewAggregator(3)
	_, err := agg.Aggregate("rare-drug", records, domain.GranularityDay, day(2))

	var insufficient *domain.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if insufficient.Periods != 2 {
		t.Errorf("expected 2 periods reported, got %d", insufficient.Periods)
	}
}

func TestAggregateWeekly(t *testing.T) {
	records := []domain.ConsumptionRecord{
		{ItemID: "x", Timestamp: day(2), Quantity: 4},  // Mon Mar 2
		{ItemID: "x", Timestamp: day(5), Quantity: 6},  // same ISO week
		{ItemID: "x", Timestamp: day(16), Quantity: 2}, // two weeks later
	}

	agg := NewAggregator(2)
	series, err := agg.Aggregate("x", records, domain.GranularityWeek, day(20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(series.Points); got != 3 {
		t.Fatalf("expected 3 weekly periods, got %d", got)
	}
	if series.Points[0].Quantity != 10 {
		t.Errorf("week 0: want 10, got %v", series.Points[0].Quantity)
	}
	if series.Points[1].Quantity != 0 {
		t.Errorf("week 1: want 0, got %v", series.Points[1].Quantity)
	}
	if series.Points[2].Quantity != 2 {
		t.Errorf("week 2: want 2, got %v", series.Points[2].Quantity)
	}
}
