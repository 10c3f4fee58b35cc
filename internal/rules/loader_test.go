package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/domain"
)

const rulesV1 = `rules:
  - drug_a: aspirin
    drug_b: warfarin
    severity: severe
    description: increased risk of bleeding
    substitutes:
      - paracetamol
`

const rulesV2 = rulesV1 + `  - drug_a: digoxin
    drug_b: furosemide
    severity: moderate
    description: increased digoxin toxicity risk
`

func writeRules(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderReadsRuleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interaction_rules.yaml")
	writeRules(t, path, rulesV1)

	l, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	base := l.Current()
	if base.Size() != 1 {
		t.Fatalf("expected 1 rule, got %d", base.Size())
	}
	rule, ok := base.Lookup("aspirin", "warfarin")
	if !ok {
		t.Fatal("expected aspirin/warfarin rule")
	}
	if rule.Severity != domain.InteractionSevere {
		t.Errorf("expected severe, got %s", rule.Severity)
	}
}

func TestLoaderReloadsOnFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interaction_rules.yaml")
	writeRules(t, path, rulesV1)

	l, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	writeRules(t, path, rulesV2)
	// mtime resolution on some filesystems is coarse; push it explicitly.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	base := l.Current()
	if base.Size() != 2 {
		t.Fatalf("expected reload to pick up 2 rules, got %d", base.Size())
	}
	if _, ok := base.Lookup("digoxin", "furosemide"); !ok {
		t.Error("expected digoxin/furosemide rule after reload")
	}
}

func TestLoaderKeepsRulesWhenFileBreaks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interaction_rules.yaml")
	writeRules(t, path, rulesV1)

	l, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	writeRules(t, path, "rules: [not: {valid")
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	base := l.Current()
	if base.Size() != 1 {
		t.Errorf("broken file should leave previous rules in service, got %d rules", base.Size())
	}
}

func TestLoaderMissingFile(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for a missing rule file")
	}
}
