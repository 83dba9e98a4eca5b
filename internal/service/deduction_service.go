package service

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/rules"
)

// DeductionService classifies transactions into ATO deduction categories and
// computes claimable amounts. It is pure: the embedded default rules are its
// only state and are never mutated.
type DeductionService struct {
	defaults []*domain.CategoryRule
}

// NewDeductionService creates a new DeductionService
func NewDeductionService() *DeductionService {
	return &DeductionService{defaults: rules.MustDefaults()}
}

// Classify matches the record's merchant and description text against the
// given rule set. Rules are tried in order of descending priority (insertion
// order breaks ties; user rules precede system defaults at equal priority)
// and the first keyword hit wins. No match returns CategoryUncategorized.
func (s *DeductionService) Classify(record domain.ClassifiableRecord, ruleSet []*domain.CategoryRule) domain.TaxCategoryCode {
	haystack := strings.ToLower(record.Merchant + " " + record.Description)

	for _, rule := range ruleSet {
		for _, keyword := range rule.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(haystack, strings.ToLower(keyword)) {
				return rule.Category
			}
		}
	}
	return domain.CategoryUncategorized
}

// ClassifyWithDefaults classifies against user rules layered over the
// embedded system defaults.
func (s *DeductionService) ClassifyWithDefaults(record domain.ClassifiableRecord, userRules []*domain.CategoryRule) domain.TaxCategoryCode {
	return s.Classify(record, rules.Merge(s.defaults, userRules))
}

// ComputeClaimable computes the claimable deduction for an amount under a
// category. The business-use percentage must already be in [0,100]; an
// out-of-range value is a caller bug and is rejected rather than clamped so
// it cannot silently distort a compliance figure.
//
// Non-deductible categories (P8, uncategorized) force the claimable amount
// to zero. When a category claim limit clips the raw figure, AppliedLimit
// reports the limit so the caller can disclose the clamping.
func (s *DeductionService) ComputeClaimable(amount decimal.Decimal, category domain.TaxCategoryCode, businessUsePct int32) (*domain.ClaimableResult, error) {
	if businessUsePct < 0 || businessUsePct > 100 {
		return nil, domain.ErrInvalidPercentage
	}
	if !domain.ValidCategory(category) {
		return nil, domain.ErrInvalidCategory
	}

	result := &domain.ClaimableResult{
		Category:       category,
		BusinessUsePct: businessUsePct,
	}

	rule := s.categoryRule(category)
	if rule == nil || !rule.Deductible {
		result.ClaimableAmount = decimal.Zero
		return result, nil
	}
	result.Deductible = true

	raw := domain.RoundCurrency(amount.Abs().Mul(decimal.NewFromInt32(businessUsePct)).Div(decimal.NewFromInt(100)))
	if rule.ClaimLimit != nil && raw.GreaterThan(*rule.ClaimLimit) {
		limit := *rule.ClaimLimit
		result.ClaimableAmount = limit
		result.AppliedLimit = &limit
		return result, nil
	}

	result.ClaimableAmount = raw
	return result, nil
}

// categoryRule returns the highest-priority default rule for a category.
// Claim limits and deductibility are system policy, so user rules never
// override them.
func (s *DeductionService) categoryRule(category domain.TaxCategoryCode) *domain.CategoryRule {
	for _, rule := range s.defaults {
		if rule.Category == category {
			return rule
		}
	}
	return nil
}
