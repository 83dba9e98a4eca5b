package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CapitalPurchaseThreshold is the minimum magnitude for a purchase to be
// reported as a capital acquisition on the BAS (G10) when its category is a
// capital-asset category.
var CapitalPurchaseThreshold = decimal.NewFromInt(1000)

// TaxPeriod is a resolved BAS quarter with its half-open date range
// [Start, End). Half-open so a transaction on a boundary date is counted in
// exactly one period.
type TaxPeriod struct {
	Label   string    `json:"label"`
	Year    int       `json:"year"`
	Quarter int       `json:"quarter"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Contains reports whether t falls inside the period's [Start, End) range.
func (p TaxPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// BASReport is a Business Activity Statement summary for one tax period.
// The G1/G10/G11/1A/1B JSON labels are the literal ATO BAS field codes;
// compliance tooling keys off these exact names.
//
// Capital purchases appear in both G10 and G11, per the BAS form. NetGST may
// be negative, which is a valid refund position, not an error.
type BASReport struct {
	TaxPeriod        string          `json:"taxPeriod"`
	TotalSales       decimal.Decimal `json:"totalSales"`
	TotalPurchases   decimal.Decimal `json:"totalPurchases"`
	GSTCollected     decimal.Decimal `json:"gstCollected"`
	GSTPaid          decimal.Decimal `json:"gstPaid"`
	NetGST           decimal.Decimal `json:"netGST"`
	G1               decimal.Decimal `json:"G1"`
	G10              decimal.Decimal `json:"G10"`
	G11              decimal.Decimal `json:"G11"`
	OneA             decimal.Decimal `json:"1A"`
	OneB             decimal.Decimal `json:"1B"`
	TransactionCount int             `json:"transactionCount"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}
