// internal/engine/anomaly/detector.go
package anomaly

import (
	"math"

	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/domain"
)

// Detector flags periods whose consumption deviates from a trailing
// moving-average expectation by more than a configurable number of trailing
// standard deviations.
type Detector struct {
	window int
	k      float64
	lowK   float64
}

func NewDetector(cfg config.EngineConfig) *Detector {
	window := cfg.AnomalyWindow
	if window < 2 {
		window = 2
	}
	return &Detector{window: window, k: cfg.AnomalyK, lowK: cfg.AnomalyLowK}
}

// Detect scans the series. Fewer than window+1 periods yields no flags:
// absence of signal, not failure.
func (d *Detector) Detect(series *domain.TimeSeries) []domain.AnomalyFlag {
	if series == nil || len(series.Points) < d.window+1 {
		return nil
	}

	vals := series.Quantities()
	var flags []domain.AnomalyFlag
	for i := d.window; i < len(vals); i++ {
		trailing := vals[i-d.window : i]
		expected := mean(trailing)
		sigma := stddev(trailing, expected)
		deviation := math.Abs(vals[i] - expected)

		severity, flagged := d.grade(deviation, sigma)
		if !flagged {
			continue
		}
		flags = append(flags, domain.AnomalyFlag{
			ItemID:   series.ItemID,
			Period:   series.Points[i].Period,
			Observed: vals[i],
			Expected: expected,
			Severity: severity,
		})
	}
	return flags
}

func (d *Detector) grade(deviation, sigma float64) (domain.AnomalySeverity, bool) {
	if sigma == 0 {
		// Constant trailing window: any movement at all is a hard break
		// from expectation.
		if deviation > 0 {
			return domain.SeverityHigh, true
		}
		return "", false
	}

	ratio := deviation / sigma
	switch {
	case ratio > 3:
		return domain.SeverityHigh, true
	case ratio > d.k:
		return domain.SeverityMedium, true
	case ratio > d.lowK:
		return domain.SeverityLow, true
	default:
		return "", false
	}
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64, m float64) float64 {
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)))
}
