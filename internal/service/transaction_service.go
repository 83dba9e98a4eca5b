package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/websocket"
)

// capitalCategories are the deduction categories whose purchases can be
// capital acquisitions on the BAS.
var capitalCategories = map[domain.TaxCategoryCode]bool{
	domain.CategoryD5OtherWork:    true,
	domain.CategoryD6LowValuePool: true,
}

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo  domain.TransactionRepository
	ruleRepo         domain.CategoryRuleRepository
	gstService       *GSTService
	deductionService *DeductionService
	eventPublisher   websocket.EventPublisher
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *TransactionService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, ruleRepo domain.CategoryRuleRepository, gstService *GSTService, deductionService *DeductionService) *TransactionService {
	return &TransactionService{
		transactionRepo:  transactionRepo,
		ruleRepo:         ruleRepo,
		gstService:       gstService,
		deductionService: deductionService,
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	Description    string
	Merchant       string
	Amount         decimal.Decimal
	GSTInclusive   bool
	Date           *time.Time
	TaxCategory    *domain.TaxCategoryCode
	BusinessUsePct *int32
	Notes          *string
	ReceiptID      *int32
}

// CreateTransaction creates a transaction. When no category is supplied the
// transaction is auto-classified against the workspace's merged rule set
// (user rules over system defaults).
func (s *TransactionService) CreateTransaction(workspaceID int32, input CreateTransactionInput) (*domain.Transaction, error) {
	transaction, err := s.buildTransaction(workspaceID, input)
	if err != nil {
		return nil, err
	}

	created, err := s.transactionRepo.Create(transaction)
	if err != nil {
		return nil, err
	}

	s.publishEvent(workspaceID, websocket.TransactionCreated(created))
	return created, nil
}

// UpdateTransaction replaces every caller-supplied field of an existing
// transaction. It takes the same input shape as create and re-derives the
// GST amount and capital flag from the new values.
func (s *TransactionService) UpdateTransaction(workspaceID int32, id int32, input CreateTransactionInput) (*domain.Transaction, error) {
	transaction, err := s.buildTransaction(workspaceID, input)
	if err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.Update(workspaceID, id, transaction)
	if err != nil {
		return nil, err
	}

	s.publishEvent(workspaceID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// buildTransaction validates input and assembles a transaction with its
// derived GST amount and capital flag. Shared by the create and update paths.
func (s *TransactionService) buildTransaction(workspaceID int32, input CreateTransactionInput) (*domain.Transaction, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, domain.ErrNameRequired
	}
	if len(description) > domain.MaxTransactionNameLength {
		return nil, domain.ErrNameTooLong
	}

	merchant := strings.TrimSpace(input.Merchant)
	if len(merchant) > domain.MaxMerchantNameLength {
		return nil, domain.ErrNameTooLong
	}

	if input.Amount.IsZero() {
		return nil, domain.ErrInvalidAmount
	}

	businessUsePct := int32(100)
	if input.BusinessUsePct != nil {
		businessUsePct = *input.BusinessUsePct
	}
	if businessUsePct < 0 || businessUsePct > 100 {
		return nil, domain.ErrInvalidPercentage
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if input.Date != nil {
		date = *input.Date
	}

	var notes *string
	if input.Notes != nil {
		trimmed := strings.TrimSpace(*input.Notes)
		if trimmed != "" {
			if len(trimmed) > domain.MaxTransactionNotesLength {
				return nil, domain.ErrNameTooLong
			}
			notes = &trimmed
		}
	}

	category, err := s.resolveCategory(workspaceID, input.TaxCategory, domain.ClassifiableRecord{
		Description: description,
		Merchant:    merchant,
		Amount:      input.Amount,
	})
	if err != nil {
		return nil, err
	}

	gst := s.gstService.ComputeGST(input.Amount, input.GSTInclusive)

	transaction := &domain.Transaction{
		WorkspaceID:    workspaceID,
		Description:    description,
		Merchant:       merchant,
		Amount:         input.Amount,
		GSTInclusive:   input.GSTInclusive,
		GSTAmount:      gst.GSTAmount,
		TaxCategory:    category,
		BusinessUsePct: businessUsePct,
		IsCapital:      isCapitalPurchase(input.Amount, input.GSTInclusive, category, s.gstService),
		Date:           date,
		Notes:          notes,
		ReceiptID:      input.ReceiptID,
	}
	return transaction, nil
}

// resolveCategory validates an explicit category or auto-classifies.
func (s *TransactionService) resolveCategory(workspaceID int32, explicit *domain.TaxCategoryCode, record domain.ClassifiableRecord) (domain.TaxCategoryCode, error) {
	if explicit != nil {
		if !domain.ValidCategory(*explicit) {
			return "", domain.ErrInvalidCategory
		}
		return *explicit, nil
	}

	userRules, err := s.ruleRepo.GetByWorkspace(workspaceID)
	if err != nil {
		return "", err
	}
	return s.deductionService.ClassifyWithDefaults(record, userRules), nil
}

// isCapitalPurchase reports whether a transaction should be flagged as a
// capital acquisition: a purchase in a capital-asset category whose gross
// magnitude meets the reporting threshold.
func isCapitalPurchase(amount decimal.Decimal, gstInclusive bool, category domain.TaxCategoryCode, gstService *GSTService) bool {
	if amount.Sign() >= 0 || !capitalCategories[category] {
		return false
	}
	gross := gstService.ComputeGST(amount, gstInclusive).TotalAmount.Neg()
	return gross.GreaterThanOrEqual(domain.CapitalPurchaseThreshold)
}

// GetTransactions retrieves transactions for a workspace with optional filters and pagination
func (s *TransactionService) GetTransactions(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	return s.transactionRepo.GetByWorkspace(workspaceID, filters)
}

// GetTransactionByID retrieves a transaction by ID within a workspace
func (s *TransactionService) GetTransactionByID(workspaceID int32, id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(workspaceID, id)
}

// Recategorize sets the category and business-use percentage of an existing
// transaction. The same strict validation applies as on create.
func (s *TransactionService) Recategorize(workspaceID int32, id int32, category domain.TaxCategoryCode, businessUsePct int32) (*domain.Transaction, error) {
	if !domain.ValidCategory(category) {
		return nil, domain.ErrInvalidCategory
	}
	if businessUsePct < 0 || businessUsePct > 100 {
		return nil, domain.ErrInvalidPercentage
	}

	existing, err := s.transactionRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}

	// The capital flag depends on the category, so it must be re-derived
	// here or the stored G10 figure goes stale.
	isCapital := isCapitalPurchase(existing.Amount, existing.GSTInclusive, category, s.gstService)

	updated, err := s.transactionRepo.SetCategory(workspaceID, id, category, businessUsePct, isCapital)
	if err != nil {
		return nil, err
	}

	s.publishEvent(workspaceID, websocket.TransactionRecategorized(updated))
	return updated, nil
}

// ClassifyTransaction annotates a stored transaction with its claimable
// deduction figure.
func (s *TransactionService) ClassifyTransaction(workspaceID int32, id int32) (*domain.ClassifiedTransaction, error) {
	tx, err := s.transactionRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}

	claimable, err := s.deductionService.ComputeClaimable(tx.Amount, tx.TaxCategory, tx.BusinessUsePct)
	if err != nil {
		return nil, err
	}

	return &domain.ClassifiedTransaction{
		Transaction:     *tx,
		ClaimableAmount: claimable.ClaimableAmount,
		AppliedLimit:    claimable.AppliedLimit,
	}, nil
}

// DeleteTransaction soft deletes a transaction
func (s *TransactionService) DeleteTransaction(workspaceID int32, id int32) error {
	if err := s.transactionRepo.SoftDelete(workspaceID, id); err != nil {
		return err
	}

	s.publishEvent(workspaceID, websocket.TransactionDeleted(map[string]int32{"id": id}))
	return nil
}
