package service

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/util"
)

// BASService aggregates classified transactions into Business Activity
// Statement reports.
type BASService struct {
	gstService      *GSTService
	transactionRepo domain.TransactionRepository
}

// NewBASService creates a new BASService
func NewBASService(gstService *GSTService, transactionRepo domain.TransactionRepository) *BASService {
	return &BASService{
		gstService:      gstService,
		transactionRepo: transactionRepo,
	}
}

// BuildReport buckets the given transactions into the taxPeriod's BAS
// figures. Transactions outside the period's [start, end) range are ignored,
// so callers may pass raw unfiltered history. An empty period produces a
// valid zero report.
//
// Sales are positive amounts, purchases negative. Capital purchases count
// toward G10 and are also included in G11, matching the BAS form; that dual
// counting is deliberate. NetGST below zero is a refund position.
func (s *BASService) BuildReport(taxPeriod string, transactions []*domain.ClassifiedTransaction) (*domain.BASReport, error) {
	period, err := util.ParseTaxPeriod(taxPeriod)
	if err != nil {
		return nil, err
	}

	var totalSales, totalPurchases, capitalPurchases decimal.Decimal
	var gstCollected, gstPaid decimal.Decimal
	count := 0

	for _, tx := range transactions {
		if !period.Contains(tx.Date) {
			continue
		}
		count++

		computation := s.gstService.ComputeGST(tx.Amount, tx.GSTInclusive)
		if tx.Amount.Sign() >= 0 {
			totalSales = totalSales.Add(computation.TotalAmount)
			gstCollected = gstCollected.Add(computation.GSTAmount)
			continue
		}

		magnitude := computation.TotalAmount.Neg()
		totalPurchases = totalPurchases.Add(magnitude)
		gstPaid = gstPaid.Add(computation.GSTAmount.Neg())
		if tx.IsCapital {
			capitalPurchases = capitalPurchases.Add(magnitude)
		}
	}

	return &domain.BASReport{
		TaxPeriod:        period.Label,
		TotalSales:       totalSales,
		TotalPurchases:   totalPurchases,
		GSTCollected:     gstCollected,
		GSTPaid:          gstPaid,
		NetGST:           gstCollected.Sub(gstPaid),
		G1:               totalSales,
		G10:              capitalPurchases,
		G11:              totalPurchases,
		OneA:             gstCollected,
		OneB:             gstPaid,
		TransactionCount: count,
		GeneratedAt:      time.Now().UTC(),
	}, nil
}

// BuildWorkspaceReport loads the period's transactions for a workspace and
// builds its BAS report.
func (s *BASService) BuildWorkspaceReport(workspaceID int32, taxPeriod string) (*domain.BASReport, error) {
	period, err := util.ParseTaxPeriod(taxPeriod)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.GetByDateRange(workspaceID, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	classified := make([]*domain.ClassifiedTransaction, 0, len(transactions))
	for _, tx := range transactions {
		classified = append(classified, &domain.ClassifiedTransaction{Transaction: *tx})
	}
	return s.BuildReport(taxPeriod, classified)
}
