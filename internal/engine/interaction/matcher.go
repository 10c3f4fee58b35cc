// internal/engine/interaction/matcher.go
package interaction

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pharmalytics/inventory-engine/internal/domain"
)

// dosage and dosage-form suffixes are noise for interaction lookups:
// "Aspirin 100mg tablet" and "aspirin" are the same drug.
var suffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\d+\s*mg.*$`),
	regexp.MustCompile(`(?i)\s*\d+\s*mcg.*$`),
	regexp.MustCompile(`(?i)\s*tablet.*$`),
	regexp.MustCompile(`(?i)\s*capsule.*$`),
	regexp.MustCompile(`(?i)\s*injection.*$`),
	regexp.MustCompile(`(?i)\s*inhaler.*$`),
}

// Normalize folds case and whitespace and strips dosage/form suffixes.
func Normalize(name string) string {
	out := name
	for _, p := range suffixPatterns {
		out = p.ReplaceAllString(out, "")
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// RuleBase is an indexed, read-only view of the interaction knowledge base.
// Rebuilt whenever the rule file reloads; never mutated afterwards.
type RuleBase struct {
	pairs map[string]domain.InteractionRule
	vocab []string
}

func NewRuleBase(rules []domain.InteractionRule) *RuleBase {
	base := &RuleBase{pairs: make(map[string]domain.InteractionRule, len(rules))}
	seen := make(map[string]bool)
	for _, rule := range rules {
		a, b := Normalize(rule.DrugA), Normalize(rule.DrugB)
		if a == "" || b == "" {
			continue
		}
		base.pairs[pairKey(a, b)] = rule
		for _, drug := range []string{a, b} {
			if !seen[drug] {
				seen[drug] = true
				base.vocab = append(base.vocab, drug)
			}
		}
	}
	sort.Strings(base.vocab)
	return base
}

// Lookup returns the rule for an unordered drug pair.
func (b *RuleBase) Lookup(drugA, drugB string) (domain.InteractionRule, bool) {
	rule, ok := b.pairs[pairKey(drugA, drugB)]
	return rule, ok
}

// Contains reports whether the normalized name appears in any rule.
func (b *RuleBase) Contains(drug string) bool {
	i := sort.SearchStrings(b.vocab, drug)
	return i < len(b.vocab) && b.vocab[i] == drug
}

// Size returns the number of indexed rules.
func (b *RuleBase) Size() int { return len(b.pairs) }

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// Matcher resolves free-text drug names against a rule base and reports
// every known pairwise interaction among them.
type Matcher struct {
	threshold float64
}

func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = 0.8
	}
	return &Matcher{threshold: threshold}
}

// Check resolves each input (exact match first, fuzzy second), collapses
// duplicates resolving to the same canonical drug, and looks up every
// remaining pair. Inputs that resolve to nothing are reported in
// UnmatchedInputs, never dropped: "unknown name" is distinct from "no known
// interaction".
func (m *Matcher) Check(inputs []string, base *RuleBase) domain.InteractionQueryResult {
	result := domain.InteractionQueryResult{OverallRisk: domain.InteractionNone}
	if base == nil {
		result.UnmatchedInputs = append(result.UnmatchedInputs, inputs...)
		return result
	}

	var resolved []string
	seen := make(map[string]bool)
	for _, input := range inputs {
		canonical, ok := m.resolve(input, base)
		if !ok {
			result.UnmatchedInputs = append(result.UnmatchedInputs, input)
			continue
		}
		// A misspelled duplicate collapses onto its canonical drug; no
		// self-pair is ever evaluated.
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		resolved = append(resolved, canonical)
	}

	for i := 0; i < len(resolved); i++ {
		for j := i + 1; j < len(resolved); j++ {
			rule, ok := base.Lookup(resolved[i], resolved[j])
			if !ok || rule.Severity == domain.InteractionNone {
				continue
			}
			pair := domain.MatchedInteraction{
				DrugA:       resolved[i],
				DrugB:       resolved[j],
				Severity:    rule.Severity,
				Description: rule.Description,
			}
			if rule.Severity.Rank() >= domain.InteractionModerate.Rank() {
				pair.Substitutes = rule.Substitutes
			}
			result.MatchedPairs = append(result.MatchedPairs, pair)
			if rule.Severity.Rank() > result.OverallRisk.Rank() {
				result.OverallRisk = rule.Severity
			}
		}
	}
	return result
}

// resolve maps one input to a canonical drug from the rule base vocabulary.
func (m *Matcher) resolve(input string, base *RuleBase) (string, bool) {
	norm := Normalize(input)
	if norm == "" {
		return "", false
	}
	if base.Contains(norm) {
		return norm, true
	}

	bestScore := 0.0
	best := ""
	for _, candidate := range base.vocab {
		if score := jaroWinkler(norm, candidate); score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	if bestScore >= m.threshold {
		return best, true
	}
	return "", false
}
