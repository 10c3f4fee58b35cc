package anomaly

import (
	"testing"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/domain"
)

func makeSeries(quantities ...float64) *domain.TimeSeries {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	points := make([]domain.SeriesPoint, len(quantities))
	for i, q := range quantities {
		points[i] = domain.SeriesPoint{Period: start.AddDate(0, 0, i), Quantity: q}
	}
	return &domain.TimeSeries{ItemID: "insulin-10ml", Granularity: domain.GranularityDay, Points: points}
}

func TestDetectSpikeFlaggedHigh(t *testing.T) {
	d := NewDetector(config.DefaultEngineConfig())

	// Last period spikes well past 3 trailing sigmas.
	flags := d.Detect(makeSeries(10, 12, 11, 13, 50))

	if len(flags) != 1 {
		t.Fatalf("expected exactly 1 flag, got %d", len(flags))
	}
	flag := flags[0]
	if flag.Severity != domain.SeverityHigh {
		t.Errorf("expected high severity, got %s", flag.Severity)
	}
	if flag.Observed != 50 {
		t.Errorf("expected observed 50, got %v", flag.Observed)
	}
	if flag.Expected != 11.5 {
		t.Errorf("expected trailing mean 11.5, got %v", flag.Expected)
	}
}

func TestDetectTooFewPeriods(t *testing.T) {
	d := NewDetector(config.DefaultEngineConfig())

	// window+1 periods are required; 4 is one short of the default.
	if flags := d.Detect(makeSeries(10, 12, 11, 13)); flags != nil {
		t.Errorf("expected no flags on short series, got %d", len(flags))
	}
}

func TestDetectStableSeriesNoFlags(t *testing.T) {
	d := NewDetector(config.DefaultEngineConfig())

	flags := d.Detect(makeSeries(10, 11, 10, 12, 11, 10, 11, 12))
	if len(flags) != 0 {
		t.Errorf("expected no flags on stable series, got %d", len(flags))
	}
}

func TestDetectConstantWindowBreak(t *testing.T) {
	d := NewDetector(config.DefaultEngineConfig())

	// Zero trailing variance, then any deviation is a hard break.
	flags := d.Detect(makeSeries(20, 20, 20, 20, 35))
	if len(flags) != 1 {
		t.Fatalf("expected 1 flag, got %d", len(flags))
	}
	if flags[0].Severity != domain.SeverityHigh {
		t.Errorf("expected high severity on zero-sigma break, got %s", flags[0].Severity)
	}
}

func TestDetectModerateDeviationMedium(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	d := NewDetector(cfg)

	// Trailing window [10 12 11 13]: mean 11.5, sigma ~1.118. An observation
	// of 14.5 deviates by ~2.7 sigma: medium, not high.
	flags := d.Detect(makeSeries(10, 12, 11, 13, 14.5))
	if len(flags) != 1 {
		t.Fatalf("expected 1 flag, got %d", len(flags))
	}
	if flags[0].Severity != domain.SeverityMedium {
		t.Errorf("expected medium severity, got %s", flags[0].Severity)
	}
}
