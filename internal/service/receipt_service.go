package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/websocket"
)

// ReceiptService handles receipt capture: validation, GST extraction from
// the receipt total, auto-categorization, and image attachment.
type ReceiptService struct {
	receiptRepo      domain.ReceiptRepository
	ruleRepo         domain.CategoryRuleRepository
	gstService       *GSTService
	deductionService *DeductionService
	imageService     *ImageService
	eventPublisher   websocket.EventPublisher
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ReceiptService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *ReceiptService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(receiptRepo domain.ReceiptRepository, ruleRepo domain.CategoryRuleRepository, gstService *GSTService, deductionService *DeductionService, imageService *ImageService) *ReceiptService {
	return &ReceiptService{
		receiptRepo:      receiptRepo,
		ruleRepo:         ruleRepo,
		gstService:       gstService,
		deductionService: deductionService,
		imageService:     imageService,
	}
}

// CaptureReceiptInput holds the input for capturing a receipt
type CaptureReceiptInput struct {
	Merchant       string
	Description    string
	TotalAmount    decimal.Decimal
	ReceiptDate    *time.Time
	TaxCategory    *domain.TaxCategoryCode
	BusinessUsePct *int32
}

// CaptureReceipt records a receipt. The printed total is GST-inclusive, so
// the GST component is backed out of it; when no category is supplied the
// merchant/description text is auto-classified.
func (s *ReceiptService) CaptureReceipt(workspaceID int32, input CaptureReceiptInput) (*domain.Receipt, error) {
	merchant := strings.TrimSpace(input.Merchant)
	if merchant == "" {
		return nil, domain.ErrNameRequired
	}
	if len(merchant) > domain.MaxMerchantNameLength {
		return nil, domain.ErrNameTooLong
	}

	if input.TotalAmount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	businessUsePct := int32(100)
	if input.BusinessUsePct != nil {
		businessUsePct = *input.BusinessUsePct
	}
	if businessUsePct < 0 || businessUsePct > 100 {
		return nil, domain.ErrInvalidPercentage
	}

	receiptDate := time.Now().UTC().Truncate(24 * time.Hour)
	if input.ReceiptDate != nil {
		receiptDate = *input.ReceiptDate
	}

	description := strings.TrimSpace(input.Description)

	var category domain.TaxCategoryCode
	if input.TaxCategory != nil {
		if !domain.ValidCategory(*input.TaxCategory) {
			return nil, domain.ErrInvalidCategory
		}
		category = *input.TaxCategory
	} else {
		userRules, err := s.ruleRepo.GetByWorkspace(workspaceID)
		if err != nil {
			return nil, err
		}
		category = s.deductionService.ClassifyWithDefaults(domain.ClassifiableRecord{
			Description: description,
			Merchant:    merchant,
			Amount:      input.TotalAmount,
		}, userRules)
	}

	gst := s.gstService.ComputeGST(input.TotalAmount, true)

	created, err := s.receiptRepo.Create(&domain.Receipt{
		WorkspaceID:    workspaceID,
		Merchant:       merchant,
		Description:    description,
		TotalAmount:    input.TotalAmount,
		GSTAmount:      gst.GSTAmount,
		TaxCategory:    category,
		BusinessUsePct: businessUsePct,
		ReceiptDate:    receiptDate,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(workspaceID, websocket.ReceiptCreated(created))
	return created, nil
}

// AttachImage processes and stores a receipt photo, then links the stored
// variants to the receipt.
func (s *ReceiptService) AttachImage(ctx context.Context, workspaceID int32, receiptID int32, data []byte, filename string) (*domain.Receipt, error) {
	receipt, err := s.receiptRepo.GetByID(workspaceID, receiptID)
	if err != nil {
		return nil, err
	}

	uploaded, err := s.imageService.ProcessAndUpload(ctx, workspaceID, receipt.ID, data, filename)
	if err != nil {
		return nil, err
	}

	// Replace any previous image, best effort.
	if receipt.ImageURL != nil {
		_ = s.imageService.DeleteAllVariants(ctx, *receipt.ImageURL)
	}

	updated, err := s.receiptRepo.UpdateImage(workspaceID, receiptID, uploaded.DisplayURL, uploaded.ThumbnailURL)
	if err != nil {
		return nil, err
	}

	s.publishEvent(workspaceID, websocket.ReceiptImageAttached(updated))
	return updated, nil
}

// GetReceipts retrieves receipts for a workspace with optional filters
func (s *ReceiptService) GetReceipts(workspaceID int32, filters *domain.ReceiptFilters) (*domain.PaginatedReceipts, error) {
	return s.receiptRepo.GetByWorkspace(workspaceID, filters)
}

// GetReceiptByID retrieves a receipt by ID within a workspace
func (s *ReceiptService) GetReceiptByID(workspaceID int32, id int32) (*domain.Receipt, error) {
	return s.receiptRepo.GetByID(workspaceID, id)
}

// DeleteReceipt soft deletes a receipt and cleans up its stored image.
func (s *ReceiptService) DeleteReceipt(ctx context.Context, workspaceID int32, id int32) error {
	receipt, err := s.receiptRepo.GetByID(workspaceID, id)
	if err != nil {
		return err
	}

	if err := s.receiptRepo.SoftDelete(workspaceID, id); err != nil {
		return err
	}

	if receipt.ImageURL != nil && s.imageService.IsEnabled() {
		_ = s.imageService.DeleteAllVariants(ctx, *receipt.ImageURL)
	}

	s.publishEvent(workspaceID, websocket.ReceiptDeleted(map[string]int32{"id": id}))
	return nil
}
