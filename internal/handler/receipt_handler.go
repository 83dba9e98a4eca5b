package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/middleware"
	"github.com/taxmate/taxmate-backend/internal/service"
)

// ReceiptHandler handles receipt-related HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
	imageService   *service.ImageService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService, imageService *service.ImageService) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		imageService:   imageService,
	}
}

// CaptureReceiptRequest represents the capture receipt request body.
// TotalAmount is the GST-inclusive figure printed on the receipt.
type CaptureReceiptRequest struct {
	Merchant       string  `json:"merchant"`
	Description    string  `json:"description"`
	TotalAmount    string  `json:"totalAmount"`
	ReceiptDate    *string `json:"receiptDate,omitempty"`
	TaxCategory    *string `json:"taxCategory,omitempty"`
	BusinessUsePct *int32  `json:"businessUsePercentage,omitempty"`
}

// ReceiptResponse represents a receipt in API responses
type ReceiptResponse struct {
	ID             int32   `json:"id"`
	WorkspaceID    int32   `json:"workspaceId"`
	Merchant       string  `json:"merchant"`
	Description    string  `json:"description"`
	TotalAmount    string  `json:"totalAmount"`
	GSTAmount      string  `json:"gstAmount"`
	TaxCategory    string  `json:"taxCategory"`
	BusinessUsePct int32   `json:"businessUsePercentage"`
	ReceiptDate    string  `json:"receiptDate"`
	ImageURL       *string `json:"imageUrl,omitempty"`
	ThumbnailURL   *string `json:"thumbnailUrl,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

// CaptureReceipt handles POST /api/v1/receipts
func (h *ReceiptHandler) CaptureReceipt(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CaptureReceiptRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	totalAmount, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		return NewValidationError(c, "Invalid totalAmount", []ValidationError{
			{Field: "totalAmount", Message: "Must be a valid decimal number"},
		})
	}

	var receiptDate *time.Time
	if req.ReceiptDate != nil && *req.ReceiptDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.ReceiptDate)
		if err != nil {
			return NewValidationError(c, "Invalid receiptDate", []ValidationError{
				{Field: "receiptDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		receiptDate = &parsed
	}

	var taxCategory *domain.TaxCategoryCode
	if req.TaxCategory != nil && *req.TaxCategory != "" {
		category := domain.TaxCategoryCode(*req.TaxCategory)
		taxCategory = &category
	}

	input := service.CaptureReceiptInput{
		Merchant:       req.Merchant,
		Description:    req.Description,
		TotalAmount:    totalAmount,
		ReceiptDate:    receiptDate,
		TaxCategory:    taxCategory,
		BusinessUsePct: req.BusinessUsePct,
	}

	receipt, err := h.receiptService.CaptureReceipt(workspaceID, input)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "merchant", Message: "Merchant is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "merchant", Message: "Merchant must be 255 characters or less"},
			})
		}
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "totalAmount", Message: "Total amount must be positive"},
			})
		}
		if errors.Is(err, domain.ErrInvalidPercentage) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "businessUsePercentage", Message: "Must be between 0 and 100"},
			})
		}
		if errors.Is(err, domain.ErrInvalidCategory) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "taxCategory", Message: "Unknown tax category"},
			})
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to capture receipt")
		return NewInternalError(c, "Failed to capture receipt")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int32("receipt_id", receipt.ID).
		Str("merchant", receipt.Merchant).
		Msg("Receipt captured")

	return c.JSON(http.StatusCreated, toReceiptResponse(receipt))
}

// PaginatedReceiptsResponse represents paginated receipts in API responses
type PaginatedReceiptsResponse struct {
	Data       []ReceiptResponse `json:"data"`
	Page       int32             `json:"page"`
	PageSize   int32             `json:"pageSize"`
	TotalItems int64             `json:"totalItems"`
	TotalPages int32             `json:"totalPages"`
}

// GetReceipts handles GET /api/v1/receipts
func (h *ReceiptHandler) GetReceipts(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	filters := &domain.ReceiptFilters{
		Page:     1,
		PageSize: domain.DefaultPageSize,
	}

	if startDateStr := c.QueryParam("startDate"); startDateStr != "" {
		parsed, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			return NewValidationError(c, "Invalid startDate format (use YYYY-MM-DD)", nil)
		}
		filters.StartDate = &parsed
	}

	if endDateStr := c.QueryParam("endDate"); endDateStr != "" {
		parsed, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			return NewValidationError(c, "Invalid endDate format (use YYYY-MM-DD)", nil)
		}
		filters.EndDate = &parsed
	}

	if categoryStr := c.QueryParam("category"); categoryStr != "" {
		category := domain.TaxCategoryCode(categoryStr)
		if !domain.ValidCategory(category) {
			return NewValidationError(c, "Invalid category", nil)
		}
		filters.Category = &category
	}

	if pageStr := c.QueryParam("page"); pageStr != "" {
		var page int32
		if _, err := parseIntParam(pageStr, &page); err != nil || page < 1 {
			return NewValidationError(c, "Invalid page (must be positive integer)", nil)
		}
		filters.Page = page
	}

	if pageSizeStr := c.QueryParam("pageSize"); pageSizeStr != "" {
		var pageSize int32
		if _, err := parseIntParam(pageSizeStr, &pageSize); err != nil || pageSize < 1 {
			return NewValidationError(c, "Invalid pageSize (must be positive integer)", nil)
		}
		if pageSize > domain.MaxPageSize {
			pageSize = domain.MaxPageSize
		}
		filters.PageSize = pageSize
	}

	result, err := h.receiptService.GetReceipts(workspaceID, filters)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get receipts")
		return NewInternalError(c, "Failed to get receipts")
	}

	response := PaginatedReceiptsResponse{
		Data:       make([]ReceiptResponse, len(result.Data)),
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	}
	for i, receipt := range result.Data {
		response.Data[i] = toReceiptResponse(receipt)
	}

	return c.JSON(http.StatusOK, response)
}

// GetReceipt handles GET /api/v1/receipts/:id
func (h *ReceiptHandler) GetReceipt(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid receipt ID", nil)
	}

	receipt, err := h.receiptService.GetReceiptByID(workspaceID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return NewNotFoundError(c, "Receipt not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("receipt_id", id).Msg("Failed to get receipt")
		return NewInternalError(c, "Failed to get receipt")
	}

	return c.JSON(http.StatusOK, toReceiptResponse(receipt))
}

// UploadImage handles POST /api/v1/receipts/:id/image
func (h *ReceiptHandler) UploadImage(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	// If storage isn't configured, don't attempt to process/upload.
	if h.imageService == nil || !h.imageService.IsEnabled() {
		return NewServiceUnavailableError(c, "Image uploads are disabled (storage not configured)")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid receipt ID", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	receipt, err := h.receiptService.AttachImage(c.Request().Context(), workspaceID, int32(id), data, file.Filename)
	if err != nil {
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return NewNotFoundError(c, "Receipt not found")
		}
		switch err {
		case service.ErrImageTooLarge:
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 10MB"},
			})
		case service.ErrInvalidFormat:
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: JPEG, PNG, WebP"},
			})
		case service.ErrImageTooSmall:
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Image too small. Minimum 50x50 pixels"},
			})
		case service.ErrInvalidImageData:
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid image data"},
			})
		default:
			log.Error().Err(err).Int32("workspace_id", workspaceID).Int("receipt_id", id).Msg("Failed to upload receipt image")
			return NewInternalError(c, "Failed to upload receipt image")
		}
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int32("receipt_id", receipt.ID).
		Msg("Receipt image uploaded")

	return c.JSON(http.StatusOK, toReceiptResponse(receipt))
}

// DeleteReceipt handles DELETE /api/v1/receipts/:id
func (h *ReceiptHandler) DeleteReceipt(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid receipt ID", nil)
	}

	if err := h.receiptService.DeleteReceipt(c.Request().Context(), workspaceID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return NewNotFoundError(c, "Receipt not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("receipt_id", id).Msg("Failed to delete receipt")
		return NewInternalError(c, "Failed to delete receipt")
	}

	log.Info().Int32("workspace_id", workspaceID).Int("receipt_id", id).Msg("Receipt deleted")
	return c.NoContent(http.StatusNoContent)
}

// Helper function to convert domain.Receipt to ReceiptResponse
func toReceiptResponse(receipt *domain.Receipt) ReceiptResponse {
	resp := ReceiptResponse{
		ID:             receipt.ID,
		WorkspaceID:    receipt.WorkspaceID,
		Merchant:       receipt.Merchant,
		Description:    receipt.Description,
		TotalAmount:    receipt.TotalAmount.StringFixed(2),
		GSTAmount:      receipt.GSTAmount.StringFixed(2),
		TaxCategory:    string(receipt.TaxCategory),
		BusinessUsePct: receipt.BusinessUsePct,
		ReceiptDate:    receipt.ReceiptDate.Format("2006-01-02"),
		CreatedAt:      receipt.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      receipt.UpdatedAt.Format(time.RFC3339),
	}
	if receipt.ImageURL != nil {
		resp.ImageURL = receipt.ImageURL
	}
	if receipt.ThumbnailURL != nil {
		resp.ThumbnailURL = receipt.ThumbnailURL
	}
	return resp
}
