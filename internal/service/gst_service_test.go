package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
)

func TestComputeGST_Inclusive(t *testing.T) {
	gstService := NewGSTService()

	result := gstService.ComputeGST(decimal.NewFromInt(110), true)

	if !result.NetAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected net 100, got %s", result.NetAmount.String())
	}
	if !result.GSTAmount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected GST 10, got %s", result.GSTAmount.String())
	}
	if !result.TotalAmount.Equal(decimal.NewFromInt(110)) {
		t.Errorf("Expected total 110, got %s", result.TotalAmount.String())
	}
}

func TestComputeGST_Exclusive(t *testing.T) {
	gstService := NewGSTService()

	result := gstService.ComputeGST(decimal.NewFromInt(100), false)

	if !result.NetAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected net 100, got %s", result.NetAmount.String())
	}
	if !result.GSTAmount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected GST 10, got %s", result.GSTAmount.String())
	}
	if !result.TotalAmount.Equal(decimal.NewFromInt(110)) {
		t.Errorf("Expected total 110, got %s", result.TotalAmount.String())
	}
}

func TestComputeGST_NegativeAmountKeepsSign(t *testing.T) {
	gstService := NewGSTService()

	result := gstService.ComputeGST(decimal.NewFromInt(-550), true)

	if !result.GSTAmount.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("Expected GST -50, got %s", result.GSTAmount.String())
	}
	if !result.NetAmount.Equal(decimal.NewFromInt(-500)) {
		t.Errorf("Expected net -500, got %s", result.NetAmount.String())
	}
}

func TestComputeGST_ComponentsSumToInclusiveAmount(t *testing.T) {
	gstService := NewGSTService()
	tolerance := decimal.NewFromFloat(0.01)

	amounts := []string{"0", "0.01", "1.10", "33.33", "110", "1234.56", "99999.99"}
	for _, raw := range amounts {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			t.Fatalf("Bad fixture amount %q: %v", raw, err)
		}

		result := gstService.ComputeGST(amount, true)
		sum := result.NetAmount.Add(result.GSTAmount)
		if sum.Sub(amount).Abs().GreaterThan(tolerance) {
			t.Errorf("net+gst for %s = %s, want within 1 cent of input", raw, sum.String())
		}
		if !result.TotalAmount.Equal(sum) {
			t.Errorf("total for %s = %s, want %s", raw, result.TotalAmount.String(), sum.String())
		}
	}
}

func TestComputeGST_RoundTripExclusiveInclusive(t *testing.T) {
	gstService := NewGSTService()
	tolerance := decimal.NewFromFloat(0.01)

	amounts := []string{"100", "0.05", "33.33", "-42.50", "875.20"}
	for _, raw := range amounts {
		amount, _ := decimal.NewFromString(raw)

		exclusive := gstService.ComputeGST(amount, false)
		roundTrip := gstService.ComputeGST(exclusive.TotalAmount, true)

		if roundTrip.NetAmount.Sub(amount).Abs().GreaterThan(tolerance) {
			t.Errorf("round trip of %s gave net %s", raw, roundTrip.NetAmount.String())
		}
	}
}

func TestComputeGST_RoundsHalfUpToCents(t *testing.T) {
	gstService := NewGSTService()

	// 10% of 1.05 is 0.105, which rounds up to 0.11
	result := gstService.ComputeGST(decimal.NewFromFloat(1.05), false)
	if !result.GSTAmount.Equal(decimal.NewFromFloat(0.11)) {
		t.Errorf("Expected GST 0.11, got %s", result.GSTAmount.String())
	}
}

func TestComputeBatch_SummaryAndSignConvention(t *testing.T) {
	gstService := NewGSTService()

	records := []domain.GSTLine{
		{Amount: decimal.NewFromInt(1100), GSTInclusive: true},  // sale, GST 100
		{Amount: decimal.NewFromInt(-550), GSTInclusive: true},  // purchase, GST 50
		{Amount: decimal.NewFromInt(-3300), GSTInclusive: true}, // purchase, GST 300
	}

	result, err := gstService.ComputeBatch(records)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(result.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(result.Results))
	}
	if !result.Summary.TotalSalesGST.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected sales GST 100, got %s", result.Summary.TotalSalesGST.String())
	}
	if !result.Summary.TotalPurchasesGST.Equal(decimal.NewFromInt(350)) {
		t.Errorf("Expected purchases GST 350, got %s", result.Summary.TotalPurchasesGST.String())
	}
	if !result.Summary.NetGSTPayable.Equal(decimal.NewFromInt(-250)) {
		t.Errorf("Expected net payable -250 (refund), got %s", result.Summary.NetGSTPayable.String())
	}
}

func TestComputeBatch_EmptyInput(t *testing.T) {
	gstService := NewGSTService()

	result, err := gstService.ComputeBatch(nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Results) != 0 {
		t.Errorf("Expected no results, got %d", len(result.Results))
	}
	if !result.Summary.NetGSTPayable.IsZero() {
		t.Errorf("Expected zero net payable, got %s", result.Summary.NetGSTPayable.String())
	}
}

func TestComputeBatch_RejectsOversizedBatch(t *testing.T) {
	gstService := NewGSTService()

	records := make([]domain.GSTLine, domain.MaxGSTBatchSize+1)
	for i := range records {
		records[i] = domain.GSTLine{Amount: decimal.NewFromInt(11), GSTInclusive: true}
	}

	_, err := gstService.ComputeBatch(records)
	if !errors.Is(err, domain.ErrBatchTooLarge) {
		t.Errorf("Expected ErrBatchTooLarge, got %v", err)
	}
}

func TestComputeBatch_RoundsPerRecordBeforeSumming(t *testing.T) {
	gstService := NewGSTService()

	// 10% of 0.33 rounds to 0.03 per record. Three records give 0.09; summing
	// the exact values first (0.099) and rounding once would give 0.10.
	records := []domain.GSTLine{
		{Amount: decimal.NewFromFloat(0.33), GSTInclusive: false},
		{Amount: decimal.NewFromFloat(0.33), GSTInclusive: false},
		{Amount: decimal.NewFromFloat(0.33), GSTInclusive: false},
	}

	result, err := gstService.ComputeBatch(records)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.Summary.TotalGST.Equal(decimal.NewFromFloat(0.09)) {
		t.Errorf("Expected total GST 0.09 (per-record rounding), got %s", result.Summary.TotalGST.String())
	}
}

func TestRoundCurrency_HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"0.105", "0.11"},
		{"-0.105", "-0.11"}, // refunds round to the larger magnitude too
		{"2.344", "2.34"},
		{"-2.344", "-2.34"},
		{"2.345", "2.35"},
		{"-2.345", "-2.35"},
	}

	for _, tt := range tests {
		got := domain.RoundCurrency(decimal.RequireFromString(tt.in))
		if got.String() != tt.expected {
			t.Errorf("RoundCurrency(%s) = %s, want %s", tt.in, got.String(), tt.expected)
		}
	}
}

func TestAmountFromFloat_RejectsNonFinite(t *testing.T) {
	nan := func() float64 { z := 0.0; return z / z }()
	inf := func() float64 { z := 0.0; return 1 / z }()

	for _, f := range []float64{nan, inf, -inf} {
		if _, err := domain.AmountFromFloat(f); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("AmountFromFloat(%v) error = %v, want ErrInvalidAmount", f, err)
		}
	}

	if _, err := domain.AmountFromFloat(110.0); err != nil {
		t.Errorf("AmountFromFloat(110) returned error: %v", err)
	}
}
