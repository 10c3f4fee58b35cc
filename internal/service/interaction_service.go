// internal/service/interaction_service.go
package service

import (
	"github.com/pharmalytics/inventory-engine/internal/domain"
	"github.com/pharmalytics/inventory-engine/internal/engine/interaction"
	"github.com/pharmalytics/inventory-engine/internal/rules"
)

// InteractionService answers interaction queries against the rule base the
// loader currently serves.
type InteractionService struct {
	matcher *interaction.Matcher
	loader  *rules.Loader
}

func NewInteractionService(matcher *interaction.Matcher, loader *rules.Loader) *InteractionService {
	return &InteractionService{matcher: matcher, loader: loader}
}

// Check resolves the drug names and reports every known pairwise interaction.
func (s *InteractionService) Check(drugNames []string) domain.InteractionQueryResult {
	return s.matcher.Check(drugNames, s.loader.Current())
}

// Reload forces a rule file re-read.
func (s *InteractionService) Reload() error {
	return s.loader.Reload()
}

// RuleCount reports the size of the rule base in service.
func (s *InteractionService) RuleCount() int {
	return s.loader.Current().Size()
}
