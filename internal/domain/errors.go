// internal/domain/errors.go
package domain

import "fmt"

// InsufficientDataError signals too little history to forecast. Recoverable:
// callers fall back to their own safety-stock heuristic.
type InsufficientDataError struct {
	ItemID     string
	Periods    int
	MinPeriods int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("item %s: %d periods of history, need at least %d",
		e.ItemID, e.Periods, e.MinPeriods)
}

// ComputationError signals a numeric fit failure for one candidate model.
// The selector excludes the candidate and keeps going.
type ComputationError struct {
	Model  string
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("model %s: %s", e.Model, e.Reason)
}
