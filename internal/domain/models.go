// internal/domain/models.go
package domain

import "time"

// Granularity is the bucketing unit for consumption time series.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Days returns the nominal length of one period in days.
func (g Granularity) Days() float64 {
	switch g {
	case GranularityWeek:
		return 7
	case GranularityMonth:
		return 30
	default:
		return 1
	}
}

// SeasonLength returns the number of periods in one seasonal cycle.
func (g Granularity) SeasonLength() int {
	switch g {
	case GranularityWeek:
		return 4
	case GranularityMonth:
		return 12
	default:
		return 7
	}
}

// ConsumptionRecord is a single dispensing event from the external
// transaction log. Immutable once recorded.
type ConsumptionRecord struct {
	ItemID    string    `json:"item_id" db:"item_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Quantity  float64   `json:"quantity_consumed" db:"quantity_consumed"`
}

// SeriesPoint is one aggregated period of a time series.
type SeriesPoint struct {
	Period   time.Time `json:"period"`
	Quantity float64   `json:"quantity"`
}

// TimeSeries is a contiguous, gap-filled per-item consumption series.
// A missing period is a true zero, not "unknown".
type TimeSeries struct {
	ItemID      string        `json:"item_id"`
	Granularity Granularity   `json:"granularity"`
	Points      []SeriesPoint `json:"points"`
}

// Quantities returns the ordered quantity values.
func (ts *TimeSeries) Quantities() []float64 {
	out := make([]float64, len(ts.Points))
	for i, p := range ts.Points {
		out[i] = p.Quantity
	}
	return out
}

// ForecastResult is the winning model's prediction for one item. One result
// per item per run; superseded, never merged, by the next run.
type ForecastResult struct {
	ItemID        string      `json:"item_id"`
	Granularity   Granularity `json:"granularity"`
	ModelName     string      `json:"model_name"`
	PerPeriod     float64     `json:"predicted_quantity_per_period"`
	Predictions   []float64   `json:"predictions"`
	IntervalLow   float64     `json:"confidence_low"`
	IntervalHigh  float64     `json:"confidence_high"`
	StdDev        float64     `json:"std_dev"`
	ErrorMetric   float64     `json:"error_metric"`
	MetricName    string      `json:"metric_name"`
	LowConfidence bool        `json:"low_confidence"`
	SkippedModels []string    `json:"skipped_models,omitempty"`
	GeneratedAt   time.Time   `json:"generated_at"`
}

// InventoryState is a read-only snapshot of one batch of one item.
type InventoryState struct {
	ItemID            string    `json:"item_id" db:"item_id"`
	BatchID           string    `json:"batch_id" db:"batch_id"`
	QuantityOnHand    float64   `json:"quantity_on_hand" db:"quantity_on_hand"`
	QuantityInTransit float64   `json:"quantity_in_transit" db:"quantity_in_transit"`
	UnitCost          float64   `json:"unit_cost" db:"unit_cost"`
	ExpiryDate        time.Time `json:"expiry_date" db:"expiry_date"`
	LeadTimeDays      float64   `json:"lead_time_days" db:"lead_time_days"`
	SupplierID        string    `json:"supplier_id" db:"supplier_id"`
	ReturnWindowOpen  bool      `json:"return_window_open" db:"return_window_open"`
}

// SupplierQuote is one supplier's terms for an item.
type SupplierQuote struct {
	SupplierID     string  `json:"supplier_id" db:"supplier_id"`
	UnitCost       float64 `json:"unit_cost" db:"unit_cost"`
	FixedOrderCost float64 `json:"fixed_order_cost" db:"fixed_order_cost"`
	LeadTimeDays   float64 `json:"lead_time_days" db:"lead_time_days"`
	MinOrderQty    float64 `json:"min_order_qty" db:"min_order_qty"`
}

// ReorderSuggestion recommends an order for an item whose projected stock
// breaches its reorder point. SupplierID is empty when no supplier is
// configured; the gap is flagged in RationaleTags instead of dropped.
type ReorderSuggestion struct {
	ItemID        string    `json:"item_id"`
	SupplierID    string    `json:"supplier_id"`
	Quantity      float64   `json:"suggested_quantity"`
	OrderDate     time.Time `json:"suggested_order_date"`
	EstimatedCost float64   `json:"estimated_cost"`
	RationaleTags []string  `json:"rationale_tags"`
}

// ExpiryAction is the recommended handling for an at-risk batch.
type ExpiryAction string

const (
	ActionNone             ExpiryAction = "none"
	ActionDiscount         ExpiryAction = "discount"
	ActionReturnToSupplier ExpiryAction = "return_to_supplier"
	ActionRedistribute     ExpiryAction = "redistribute"
)

// ExpiryRiskScore estimates how likely a batch is to expire on the shelf.
type ExpiryRiskScore struct {
	BatchID          string       `json:"batch_id"`
	ItemID           string       `json:"item_id"`
	RiskProbability  float64      `json:"risk_probability"`
	ProjectedWastage float64      `json:"projected_wastage_quantity"`
	Action           ExpiryAction `json:"recommended_action"`
}

// AnomalySeverity grades how far an observation sits from its expectation.
type AnomalySeverity string

const (
	SeverityLow    AnomalySeverity = "low"
	SeverityMedium AnomalySeverity = "medium"
	SeverityHigh   AnomalySeverity = "high"
)

// AnomalyFlag marks one period whose consumption deviates from the trailing
// expectation.
type AnomalyFlag struct {
	ItemID   string          `json:"item_id"`
	Period   time.Time       `json:"period"`
	Observed float64         `json:"observed"`
	Expected float64         `json:"expected"`
	Severity AnomalySeverity `json:"severity"`
}

// EngineRun is the audit summary of one batch run.
type EngineRun struct {
	ID          string    `json:"id" db:"id"`
	StartedAt   time.Time `json:"started_at" db:"started_at"`
	FinishedAt  time.Time `json:"finished_at" db:"finished_at"`
	ItemCount   int       `json:"item_count" db:"item_count"`
	FailedCount int       `json:"failed_count" db:"failed_count"`
	ResultURI   string    `json:"result_uri,omitempty" db:"result_uri"`
}
