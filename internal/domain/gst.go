package domain

import "github.com/shopspring/decimal"

// MaxGSTBatchSize caps ComputeBatch input. BAS figures must be exact, so an
// oversized batch fails outright instead of being truncated.
const MaxGSTBatchSize = 100

// GSTComputation is the derived GST breakdown for a single amount.
// Invariant: NetAmount + GSTAmount == TotalAmount after rounding.
type GSTComputation struct {
	NetAmount   decimal.Decimal `json:"netAmount"`
	GSTAmount   decimal.Decimal `json:"gstAmount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// GSTLine is a single record in a batch GST computation. Positive amounts
// are sales, negative amounts are purchases (refunds/credits keep the sign
// of the original transaction).
type GSTLine struct {
	Amount       decimal.Decimal `json:"amount"`
	GSTInclusive bool            `json:"gstInclusive"`
}

// GSTBatchSummary aggregates GST across a batch. TotalPurchasesGST is a
// positive magnitude; NetGSTPayable = TotalSalesGST - TotalPurchasesGST,
// so a negative value is a refund position.
type GSTBatchSummary struct {
	TotalGST          decimal.Decimal `json:"totalGST"`
	TotalSalesGST     decimal.Decimal `json:"totalSalesGST"`
	TotalPurchasesGST decimal.Decimal `json:"totalPurchasesGST"`
	NetGSTPayable     decimal.Decimal `json:"netGSTPayable"`
}

// GSTBatchResult carries per-record breakdowns plus the batch summary.
type GSTBatchResult struct {
	Results []*GSTComputation `json:"results"`
	Summary GSTBatchSummary   `json:"summary"`
}
