package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
)

func TestClassify_FirstMatchWins(t *testing.T) {
	deductionService := NewDeductionService()

	ruleSet := []*domain.CategoryRule{
		{Name: "travel", Category: domain.CategoryD2Travel, Keywords: []string{"qantas"}, Priority: 90},
		{Name: "office", Category: domain.CategoryD5OtherWork, Keywords: []string{"qantas", "officeworks"}, Priority: 50},
	}

	record := domain.ClassifiableRecord{Merchant: "Qantas Airways", Description: "Flight to Sydney"}
	got := deductionService.Classify(record, ruleSet)
	if got != domain.CategoryD2Travel {
		t.Errorf("Expected D2, got %s", got)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	deductionService := NewDeductionService()

	ruleSet := []*domain.CategoryRule{
		{Name: "fuel", Category: domain.CategoryD1MotorVehicle, Keywords: []string{"PETROL"}, Priority: 50},
	}

	record := domain.ClassifiableRecord{Merchant: "BP", Description: "unleaded petrol"}
	if got := deductionService.Classify(record, ruleSet); got != domain.CategoryD1MotorVehicle {
		t.Errorf("Expected D1, got %s", got)
	}
}

func TestClassify_NoMatchIsUncategorized(t *testing.T) {
	deductionService := NewDeductionService()

	record := domain.ClassifiableRecord{Merchant: "Mystery Pty Ltd", Description: "widget"}
	if got := deductionService.Classify(record, nil); got != domain.CategoryUncategorized {
		t.Errorf("Expected UNCATEGORIZED, got %s", got)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	deductionService := NewDeductionService()

	ruleSet := []*domain.CategoryRule{
		{Name: "fuel", Category: domain.CategoryD1MotorVehicle, Keywords: []string{"shell"}, Priority: 50},
	}
	record := domain.ClassifiableRecord{Merchant: "Shell Coles Express", Description: "fuel"}

	first := deductionService.Classify(record, ruleSet)
	second := deductionService.Classify(record, ruleSet)
	if first != second {
		t.Errorf("Classification not idempotent: %s then %s", first, second)
	}
}

func TestClassifyWithDefaults_UserRuleOverridesSystem(t *testing.T) {
	deductionService := NewDeductionService()

	// "netflix" is a P8 keyword in the system defaults; a higher-priority
	// user rule reclassifies it.
	userRules := []*domain.CategoryRule{
		{Name: "research subscriptions", Category: domain.CategoryD5OtherWork, Keywords: []string{"netflix"}, Priority: 100, Source: domain.RuleSourceUser},
	}

	record := domain.ClassifiableRecord{Merchant: "Netflix", Description: "monthly subscription"}
	if got := deductionService.ClassifyWithDefaults(record, userRules); got != domain.CategoryD5OtherWork {
		t.Errorf("Expected D5 from user rule, got %s", got)
	}

	if got := deductionService.ClassifyWithDefaults(record, nil); got != domain.CategoryP8Personal {
		t.Errorf("Expected P8 from system defaults, got %s", got)
	}
}

func TestComputeClaimable_LimitBindsBeforePercentage(t *testing.T) {
	deductionService := NewDeductionService()

	// 80% of 10000 is 8000, but D1 is capped at 5000.
	result, err := deductionService.ComputeClaimable(decimal.NewFromInt(10000), domain.CategoryD1MotorVehicle, 80)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !result.ClaimableAmount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected claimable 5000, got %s", result.ClaimableAmount.String())
	}
	if result.AppliedLimit == nil {
		t.Fatal("Expected applied limit to be reported")
	}
	if !result.AppliedLimit.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected applied limit 5000, got %s", result.AppliedLimit.String())
	}
}

func TestComputeClaimable_UncappedCategory(t *testing.T) {
	deductionService := NewDeductionService()

	result, err := deductionService.ComputeClaimable(decimal.NewFromInt(10000), domain.CategoryD5OtherWork, 100)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !result.ClaimableAmount.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("Expected claimable 10000, got %s", result.ClaimableAmount.String())
	}
	if result.AppliedLimit != nil {
		t.Errorf("Expected no applied limit, got %s", result.AppliedLimit.String())
	}
}

func TestComputeClaimable_PercentageScaling(t *testing.T) {
	deductionService := NewDeductionService()

	result, err := deductionService.ComputeClaimable(decimal.NewFromInt(200), domain.CategoryD5OtherWork, 50)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.ClaimableAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected claimable 100, got %s", result.ClaimableAmount.String())
	}
}

func TestComputeClaimable_NonDeductibleForcedToZero(t *testing.T) {
	deductionService := NewDeductionService()

	result, err := deductionService.ComputeClaimable(decimal.NewFromInt(500), domain.CategoryP8Personal, 100)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.ClaimableAmount.IsZero() {
		t.Errorf("Expected zero claimable for P8, got %s", result.ClaimableAmount.String())
	}
	if result.Deductible {
		t.Error("Expected P8 to be reported non-deductible")
	}
	if result.AppliedLimit != nil {
		t.Error("Expected no applied limit for non-deductible category")
	}
}

func TestComputeClaimable_RejectsOutOfRangePercentage(t *testing.T) {
	deductionService := NewDeductionService()

	for _, pct := range []int32{-1, 101, 200} {
		_, err := deductionService.ComputeClaimable(decimal.NewFromInt(100), domain.CategoryD5OtherWork, pct)
		if !errors.Is(err, domain.ErrInvalidPercentage) {
			t.Errorf("pct %d: expected ErrInvalidPercentage, got %v", pct, err)
		}
	}
}

func TestComputeClaimable_RejectsUnknownCategory(t *testing.T) {
	deductionService := NewDeductionService()

	_, err := deductionService.ComputeClaimable(decimal.NewFromInt(100), domain.TaxCategoryCode("D99"), 50)
	if !errors.Is(err, domain.ErrInvalidCategory) {
		t.Errorf("Expected ErrInvalidCategory, got %v", err)
	}
}

func TestComputeClaimable_UncategorizedIsNotDeductible(t *testing.T) {
	deductionService := NewDeductionService()

	result, err := deductionService.ComputeClaimable(decimal.NewFromInt(100), domain.CategoryUncategorized, 100)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.ClaimableAmount.IsZero() {
		t.Errorf("Expected zero claimable, got %s", result.ClaimableAmount.String())
	}
}
