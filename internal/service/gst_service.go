package service

import (
	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
)

// GSTService is the single authority for GST arithmetic. Every place that
// needs the 10% split (handlers, receipts, BAS aggregation) goes through it
// so rounding behaves identically everywhere.
type GSTService struct{}

// NewGSTService creates a new GSTService
func NewGSTService() *GSTService {
	return &GSTService{}
}

// ComputeGST splits an amount into net/GST/total at the flat 10% rate.
// Inclusive amounts back the GST out (amount - amount/1.1); exclusive
// amounts add it on (amount * 0.1). Negative amounts represent refunds or
// credits and produce a GST amount with the same sign.
func (s *GSTService) ComputeGST(amount decimal.Decimal, gstInclusive bool) *domain.GSTComputation {
	var net, gst decimal.Decimal

	if gstInclusive {
		gst = domain.RoundCurrency(amount.Sub(amount.Div(domain.GSTDivisor)))
		net = domain.RoundCurrency(amount.Sub(gst))
	} else {
		gst = domain.RoundCurrency(amount.Mul(domain.GSTRate))
		net = domain.RoundCurrency(amount)
	}

	return &domain.GSTComputation{
		NetAmount:   net,
		GSTAmount:   gst,
		TotalAmount: net.Add(gst),
	}
}

// ComputeBatch computes GST for each record and aggregates the batch into
// sales/purchase totals. Each record is rounded individually before summing;
// summing first and rounding once can differ by cents on large batches and
// would no longer match per-transaction audited figures.
//
// Records with positive amounts are sales, negative are purchases.
// TotalPurchasesGST is reported as a positive magnitude and
// NetGSTPayable = TotalSalesGST - TotalPurchasesGST, so a negative payable
// means the period is in a refund position.
func (s *GSTService) ComputeBatch(records []domain.GSTLine) (*domain.GSTBatchResult, error) {
	if len(records) > domain.MaxGSTBatchSize {
		return nil, domain.ErrBatchTooLarge
	}

	results := make([]*domain.GSTComputation, 0, len(records))
	var totalGST, salesGST, purchasesGST decimal.Decimal

	for _, record := range records {
		computation := s.ComputeGST(record.Amount, record.GSTInclusive)
		results = append(results, computation)

		totalGST = totalGST.Add(computation.GSTAmount)
		if record.Amount.Sign() >= 0 {
			salesGST = salesGST.Add(computation.GSTAmount)
		} else {
			purchasesGST = purchasesGST.Add(computation.GSTAmount.Neg())
		}
	}

	return &domain.GSTBatchResult{
		Results: results,
		Summary: domain.GSTBatchSummary{
			TotalGST:          totalGST,
			TotalSalesGST:     salesGST,
			TotalPurchasesGST: purchasesGST,
			NetGSTPayable:     salesGST.Sub(purchasesGST),
		},
	}, nil
}
