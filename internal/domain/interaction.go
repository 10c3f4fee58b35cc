// internal/domain/interaction.go
package domain

// InteractionSeverity is the ordinal risk level of a drug combination.
type InteractionSeverity string

const (
	InteractionNone     InteractionSeverity = "none"
	InteractionMinor    InteractionSeverity = "minor"
	InteractionModerate InteractionSeverity = "moderate"
	InteractionSevere   InteractionSeverity = "severe"
)

// Rank orders severities so the maximum across pairs can be taken.
func (s InteractionSeverity) Rank() int {
	switch s {
	case InteractionMinor:
		return 1
	case InteractionModerate:
		return 2
	case InteractionSevere:
		return 3
	default:
		return 0
	}
}

// InteractionRule is one entry of the configurable knowledge base.
type InteractionRule struct {
	DrugA       string              `json:"drug_a" mapstructure:"drug_a"`
	DrugB       string              `json:"drug_b" mapstructure:"drug_b"`
	Severity    InteractionSeverity `json:"severity" mapstructure:"severity"`
	Description string              `json:"description" mapstructure:"description"`
	Substitutes []string            `json:"substitutes" mapstructure:"substitutes"`
}

// MatchedInteraction is one resolved drug pair with a known interaction.
type MatchedInteraction struct {
	DrugA       string              `json:"drug_a"`
	DrugB       string              `json:"drug_b"`
	Severity    InteractionSeverity `json:"severity"`
	Description string              `json:"description,omitempty"`
	Substitutes []string            `json:"substitutes,omitempty"`
}

// InteractionQueryResult reports every matched pair plus the inputs that
// could not be resolved against the rule base vocabulary. "No known
// interaction" for a resolved pair is not an error and is simply absent
// from MatchedPairs.
type InteractionQueryResult struct {
	MatchedPairs    []MatchedInteraction `json:"matched_pairs"`
	UnmatchedInputs []string             `json:"unmatched_inputs"`
	OverallRisk     InteractionSeverity  `json:"overall_risk"`
}
