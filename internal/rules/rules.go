// Package rules loads the embedded system categorization rules and merges
// them with user-defined rules into a single ordered rule set.
package rules

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ruleConfig is the YAML shape of a single default rule.
type ruleConfig struct {
	Name       string   `yaml:"name"`
	Category   string   `yaml:"category"`
	Priority   int32    `yaml:"priority"`
	Deductible bool     `yaml:"deductible"`
	ClaimLimit string   `yaml:"claimLimit"`
	Keywords   []string `yaml:"keywords"`
}

type rulesConfig struct {
	Rules []ruleConfig `yaml:"rules"`
}

// Defaults parses the embedded system rule set. The returned slice preserves
// file order, which is the tie-break order during classification.
func Defaults() ([]*domain.CategoryRule, error) {
	var cfg rulesConfig
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parse default rules: %w", err)
	}

	out := make([]*domain.CategoryRule, 0, len(cfg.Rules))
	for _, rc := range cfg.Rules {
		category := domain.TaxCategoryCode(rc.Category)
		if !domain.ValidCategory(category) {
			return nil, fmt.Errorf("default rule %q: %w", rc.Name, domain.ErrInvalidCategory)
		}
		if len(rc.Keywords) == 0 {
			return nil, fmt.Errorf("default rule %q: %w", rc.Name, domain.ErrKeywordsRequired)
		}

		rule := &domain.CategoryRule{
			Name:       rc.Name,
			Category:   category,
			Keywords:   rc.Keywords,
			Priority:   rc.Priority,
			Source:     domain.RuleSourceSystem,
			Deductible: rc.Deductible,
		}
		if rc.ClaimLimit != "" {
			limit, err := decimal.NewFromString(rc.ClaimLimit)
			if err != nil {
				return nil, fmt.Errorf("default rule %q: invalid claim limit: %w", rc.Name, err)
			}
			rule.ClaimLimit = &limit
		}
		out = append(out, rule)
	}
	return out, nil
}

// MustDefaults is Defaults for process startup, where a broken embedded rule
// file is unrecoverable.
func MustDefaults() []*domain.CategoryRule {
	defaults, err := Defaults()
	if err != nil {
		panic(err)
	}
	return defaults
}

// Merge layers user rules over system defaults. User rules are placed first
// so that a stable sort on descending priority leaves them ahead of any
// system rule with the same priority; within each layer insertion order is
// preserved.
func Merge(system, user []*domain.CategoryRule) []*domain.CategoryRule {
	merged := make([]*domain.CategoryRule, 0, len(system)+len(user))
	merged = append(merged, user...)
	merged = append(merged, system...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Priority > merged[j].Priority
	})
	return merged
}
