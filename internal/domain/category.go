package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxCategoryCode is an ATO deduction category code.
type TaxCategoryCode string

const (
	CategoryD1MotorVehicle  TaxCategoryCode = "D1"
	CategoryD2Travel        TaxCategoryCode = "D2"
	CategoryD3Clothing      TaxCategoryCode = "D3"
	CategoryD4SelfEducation TaxCategoryCode = "D4"
	CategoryD5OtherWork     TaxCategoryCode = "D5"
	CategoryD6LowValuePool  TaxCategoryCode = "D6"
	CategoryD7Interest      TaxCategoryCode = "D7"
	CategoryD8Dividend      TaxCategoryCode = "D8"
	CategoryD9Gifts         TaxCategoryCode = "D9"
	CategoryD10CostOfTax    TaxCategoryCode = "D10"
	CategoryP8Personal      TaxCategoryCode = "P8"
	CategoryUncategorized   TaxCategoryCode = "UNCATEGORIZED"
)

// ValidCategory reports whether code is a recognized category code.
func ValidCategory(code TaxCategoryCode) bool {
	switch code {
	case CategoryD1MotorVehicle, CategoryD2Travel, CategoryD3Clothing,
		CategoryD4SelfEducation, CategoryD5OtherWork, CategoryD6LowValuePool,
		CategoryD7Interest, CategoryD8Dividend, CategoryD9Gifts,
		CategoryD10CostOfTax, CategoryP8Personal, CategoryUncategorized:
		return true
	}
	return false
}

// DeductibleCategory reports whether a category is claimable at all.
// Personal spending and unclassified records never are.
func DeductibleCategory(code TaxCategoryCode) bool {
	return ValidCategory(code) && code != CategoryP8Personal && code != CategoryUncategorized
}

// RuleSource distinguishes system default rules from user-defined ones.
// When priorities tie, user rules win because they are merged in first.
type RuleSource string

const (
	RuleSourceSystem RuleSource = "system"
	RuleSourceUser   RuleSource = "user"
)

// CategoryRule maps keyword matches on merchant/description text to a tax
// category. Rules are evaluated in merged priority order, first match wins.
type CategoryRule struct {
	ID         int32            `json:"id"`
	Workspace  int32            `json:"workspaceId,omitempty"`
	Name       string           `json:"name"`
	Category   TaxCategoryCode  `json:"category"`
	Keywords   []string         `json:"keywords"`
	Priority   int32            `json:"priority"`
	Source     RuleSource       `json:"source"`
	ClaimLimit *decimal.Decimal `json:"claimLimit,omitempty"`
	Deductible bool             `json:"deductible"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// ClassifiableRecord is the text a classification request matches against.
type ClassifiableRecord struct {
	Description string
	Merchant    string
	Amount      decimal.Decimal
}

// ClaimableResult is the outcome of a claimable-amount computation.
// AppliedLimit is non-nil only when a category claim limit clipped the raw
// figure, so reports can disclose the clamping rather than just the result.
type ClaimableResult struct {
	Category        TaxCategoryCode  `json:"category"`
	ClaimableAmount decimal.Decimal  `json:"claimableAmount"`
	AppliedLimit    *decimal.Decimal `json:"appliedLimit"`
	BusinessUsePct  int32            `json:"businessUsePercentage"`
	Deductible      bool             `json:"deductible"`
}

// CategoryRuleRepository defines persistence for user-defined rules.
// System default rules are embedded configuration, never stored.
type CategoryRuleRepository interface {
	Create(rule *CategoryRule) (*CategoryRule, error)
	GetByID(workspaceID, id int32) (*CategoryRule, error)
	GetByWorkspace(workspaceID int32) ([]*CategoryRule, error)
	Update(workspaceID, id int32, rule *CategoryRule) (*CategoryRule, error)
	Delete(workspaceID, id int32) error
}
