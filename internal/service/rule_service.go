package service

import (
	"strings"

	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/rules"
)

// RuleService manages user-defined categorization rules. System defaults are
// embedded configuration and can only be shadowed, never edited.
type RuleService struct {
	ruleRepo domain.CategoryRuleRepository
	defaults []*domain.CategoryRule
}

// NewRuleService creates a new RuleService
func NewRuleService(ruleRepo domain.CategoryRuleRepository) *RuleService {
	return &RuleService{
		ruleRepo: ruleRepo,
		defaults: rules.MustDefaults(),
	}
}

// CreateRuleInput holds the input for creating a user rule
type CreateRuleInput struct {
	Name     string
	Category domain.TaxCategoryCode
	Keywords []string
	Priority int32
}

func validateRuleInput(input CreateRuleInput) (CreateRuleInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return input, domain.ErrNameRequired
	}
	if len(input.Name) > domain.MaxRuleNameLength {
		return input, domain.ErrNameTooLong
	}
	if !domain.ValidCategory(input.Category) {
		return input, domain.ErrInvalidCategory
	}

	keywords := make([]string, 0, len(input.Keywords))
	for _, keyword := range input.Keywords {
		trimmed := strings.TrimSpace(keyword)
		if trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	if len(keywords) == 0 {
		return input, domain.ErrKeywordsRequired
	}
	input.Keywords = keywords
	return input, nil
}

// CreateRule creates a user-defined categorization rule
func (s *RuleService) CreateRule(workspaceID int32, input CreateRuleInput) (*domain.CategoryRule, error) {
	input, err := validateRuleInput(input)
	if err != nil {
		return nil, err
	}

	return s.ruleRepo.Create(&domain.CategoryRule{
		Workspace:  workspaceID,
		Name:       input.Name,
		Category:   input.Category,
		Keywords:   input.Keywords,
		Priority:   input.Priority,
		Source:     domain.RuleSourceUser,
		Deductible: domain.DeductibleCategory(input.Category),
	})
}

// UpdateRule replaces a user rule's fields
func (s *RuleService) UpdateRule(workspaceID int32, id int32, input CreateRuleInput) (*domain.CategoryRule, error) {
	input, err := validateRuleInput(input)
	if err != nil {
		return nil, err
	}

	return s.ruleRepo.Update(workspaceID, id, &domain.CategoryRule{
		Name:       input.Name,
		Category:   input.Category,
		Keywords:   input.Keywords,
		Priority:   input.Priority,
		Source:     domain.RuleSourceUser,
		Deductible: domain.DeductibleCategory(input.Category),
	})
}

// GetRules returns the workspace's user rules
func (s *RuleService) GetRules(workspaceID int32) ([]*domain.CategoryRule, error) {
	return s.ruleRepo.GetByWorkspace(workspaceID)
}

// GetMergedRules returns the full ordered rule set the classifier sees:
// user rules layered over system defaults.
func (s *RuleService) GetMergedRules(workspaceID int32) ([]*domain.CategoryRule, error) {
	userRules, err := s.ruleRepo.GetByWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}
	return rules.Merge(s.defaults, userRules), nil
}

// DeleteRule removes a user rule
func (s *RuleService) DeleteRule(workspaceID int32, id int32) error {
	return s.ruleRepo.Delete(workspaceID, id)
}
