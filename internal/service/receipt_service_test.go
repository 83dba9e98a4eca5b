package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/testutil"
)

func newReceiptService(receiptRepo *testutil.MockReceiptRepository, ruleRepo *testutil.MockCategoryRuleRepository) *ReceiptService {
	return NewReceiptService(receiptRepo, ruleRepo, NewGSTService(), NewDeductionService(), NewImageService(nil))
}

func TestCaptureReceipt_ExtractsGSTFromTotal(t *testing.T) {
	receiptRepo := testutil.NewMockReceiptRepository()
	ruleRepo := testutil.NewMockCategoryRuleRepository()
	receiptService := newReceiptService(receiptRepo, ruleRepo)

	receipt, err := receiptService.CaptureReceipt(1, CaptureReceiptInput{
		Merchant:    "Officeworks",
		Description: "Printer ink",
		TotalAmount: decimal.NewFromInt(110),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !receipt.GSTAmount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected GST 10 backed out of total, got %s", receipt.GSTAmount.String())
	}
	if receipt.TaxCategory != domain.CategoryD5OtherWork {
		t.Errorf("Expected auto-classified D5, got %s", receipt.TaxCategory)
	}
	if receipt.BusinessUsePct != 100 {
		t.Errorf("Expected business use to default to 100, got %d", receipt.BusinessUsePct)
	}
}

func TestCaptureReceipt_ExplicitCategory(t *testing.T) {
	receiptRepo := testutil.NewMockReceiptRepository()
	ruleRepo := testutil.NewMockCategoryRuleRepository()
	receiptService := newReceiptService(receiptRepo, ruleRepo)

	category := domain.CategoryD2Travel
	receipt, err := receiptService.CaptureReceipt(1, CaptureReceiptInput{
		Merchant:    "Some Hotel",
		TotalAmount: decimal.NewFromInt(220),
		TaxCategory: &category,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if receipt.TaxCategory != domain.CategoryD2Travel {
		t.Errorf("Expected D2, got %s", receipt.TaxCategory)
	}
}

func TestCaptureReceipt_Validation(t *testing.T) {
	receiptRepo := testutil.NewMockReceiptRepository()
	ruleRepo := testutil.NewMockCategoryRuleRepository()
	receiptService := newReceiptService(receiptRepo, ruleRepo)

	badCategory := domain.TaxCategoryCode("D99")
	badPct := int32(-5)

	tests := []struct {
		name    string
		input   CaptureReceiptInput
		wantErr error
	}{
		{"empty merchant", CaptureReceiptInput{Merchant: " ", TotalAmount: decimal.NewFromInt(10)}, domain.ErrNameRequired},
		{"zero total", CaptureReceiptInput{Merchant: "x", TotalAmount: decimal.Zero}, domain.ErrInvalidAmount},
		{"negative total", CaptureReceiptInput{Merchant: "x", TotalAmount: decimal.NewFromInt(-10)}, domain.ErrInvalidAmount},
		{"bad category", CaptureReceiptInput{Merchant: "x", TotalAmount: decimal.NewFromInt(10), TaxCategory: &badCategory}, domain.ErrInvalidCategory},
		{"bad percentage", CaptureReceiptInput{Merchant: "x", TotalAmount: decimal.NewFromInt(10), BusinessUsePct: &badPct}, domain.ErrInvalidPercentage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := receiptService.CaptureReceipt(1, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCaptureReceipt_CustomDate(t *testing.T) {
	receiptRepo := testutil.NewMockReceiptRepository()
	ruleRepo := testutil.NewMockCategoryRuleRepository()
	receiptService := newReceiptService(receiptRepo, ruleRepo)

	date := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	receipt, err := receiptService.CaptureReceipt(1, CaptureReceiptInput{
		Merchant:    "BP",
		TotalAmount: decimal.NewFromInt(88),
		ReceiptDate: &date,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !receipt.ReceiptDate.Equal(date) {
		t.Errorf("Expected receipt date %v, got %v", date, receipt.ReceiptDate)
	}
}

func TestAttachImage_StorageNotConfigured(t *testing.T) {
	receiptRepo := testutil.NewMockReceiptRepository()
	ruleRepo := testutil.NewMockCategoryRuleRepository()
	receiptService := newReceiptService(receiptRepo, ruleRepo)

	receipt, err := receiptService.CaptureReceipt(1, CaptureReceiptInput{
		Merchant:    "BP",
		TotalAmount: decimal.NewFromInt(88),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = receiptService.AttachImage(context.Background(), 1, receipt.ID, []byte("not an image"), "photo.jpg")
	if !errors.Is(err, ErrImageStorageNotConfigured) {
		t.Errorf("Expected ErrImageStorageNotConfigured, got %v", err)
	}
}

func TestDeleteReceipt(t *testing.T) {
	receiptRepo := testutil.NewMockReceiptRepository()
	ruleRepo := testutil.NewMockCategoryRuleRepository()
	receiptService := newReceiptService(receiptRepo, ruleRepo)

	receipt, err := receiptService.CaptureReceipt(1, CaptureReceiptInput{
		Merchant:    "BP",
		TotalAmount: decimal.NewFromInt(88),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := receiptService.DeleteReceipt(context.Background(), 1, receipt.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := receiptService.GetReceiptByID(1, receipt.ID); !errors.Is(err, domain.ErrReceiptNotFound) {
		t.Errorf("Expected ErrReceiptNotFound after delete, got %v", err)
	}
}
