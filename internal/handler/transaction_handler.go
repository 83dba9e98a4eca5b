package handler

import (
	"errors"
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

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the create transaction request body.
// Amount is signed: positive for sales/income, negative for purchases.
type CreateTransactionRequest struct {
	Description    string  `json:"description"`
	Merchant       string  `json:"merchant"`
	Amount         string  `json:"amount"`
	GSTInclusive   bool    `json:"gstInclusive"`
	Date           *string `json:"date,omitempty"`
	TaxCategory    *string `json:"taxCategory,omitempty"`
	BusinessUsePct *int32  `json:"businessUsePercentage,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	ReceiptID      *int32  `json:"receiptId,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID             int32   `json:"id"`
	WorkspaceID    int32   `json:"workspaceId"`
	Description    string  `json:"description"`
	Merchant       string  `json:"merchant"`
	Amount         string  `json:"amount"`
	GSTInclusive   bool    `json:"gstInclusive"`
	GSTAmount      string  `json:"gstAmount"`
	TaxCategory    string  `json:"taxCategory"`
	BusinessUsePct int32   `json:"businessUsePercentage"`
	IsCapital      bool    `json:"isCapital"`
	Date           string  `json:"date"`
	Notes          *string `json:"notes,omitempty"`
	ReceiptID      *int32  `json:"receiptId,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var date *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		date = &parsed
	}

	var taxCategory *domain.TaxCategoryCode
	if req.TaxCategory != nil && *req.TaxCategory != "" {
		category := domain.TaxCategoryCode(*req.TaxCategory)
		taxCategory = &category
	}

	input := service.CreateTransactionInput{
		Description:    req.Description,
		Merchant:       req.Merchant,
		Amount:         amount,
		GSTInclusive:   req.GSTInclusive,
		Date:           date,
		TaxCategory:    taxCategory,
		BusinessUsePct: req.BusinessUsePct,
		Notes:          req.Notes,
		ReceiptID:      req.ReceiptID,
	}

	transaction, err := h.transactionService.CreateTransaction(workspaceID, input)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "description", Message: "Description is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "description", Message: "Text field exceeds its maximum length"},
			})
		}
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be non-zero"},
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
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int32("transaction_id", transaction.ID).
		Str("tax_category", string(transaction.TaxCategory)).
		Msg("Transaction created")

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// PaginatedTransactionsResponse represents paginated transactions in API responses
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	filters := &domain.TransactionFilters{
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

	if merchant := c.QueryParam("merchant"); merchant != "" {
		filters.Merchant = &merchant
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

	result, err := h.transactionService.GetTransactions(workspaceID, filters)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get transactions")
		return NewInternalError(c, "Failed to get transactions")
	}

	response := PaginatedTransactionsResponse{
		Data:       make([]TransactionResponse, len(result.Data)),
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	}
	for i, transaction := range result.Data {
		response.Data[i] = toTransactionResponse(transaction)
	}

	return c.JSON(http.StatusOK, response)
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransactionByID(workspaceID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransactionRequest represents the full-update request body. Every
// field is replaced; date is required because a PUT carries the whole record.
type UpdateTransactionRequest struct {
	Description    string  `json:"description"`
	Merchant       string  `json:"merchant"`
	Amount         string  `json:"amount"`
	GSTInclusive   bool    `json:"gstInclusive"`
	Date           string  `json:"date"`
	TaxCategory    *string `json:"taxCategory,omitempty"`
	BusinessUsePct *int32  `json:"businessUsePercentage,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	ReceiptID      *int32  `json:"receiptId,omitempty"`
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	var taxCategory *domain.TaxCategoryCode
	if req.TaxCategory != nil && *req.TaxCategory != "" {
		category := domain.TaxCategoryCode(*req.TaxCategory)
		taxCategory = &category
	}

	input := service.CreateTransactionInput{
		Description:    req.Description,
		Merchant:       req.Merchant,
		Amount:         amount,
		GSTInclusive:   req.GSTInclusive,
		Date:           &date,
		TaxCategory:    taxCategory,
		BusinessUsePct: req.BusinessUsePct,
		Notes:          req.Notes,
		ReceiptID:      req.ReceiptID,
	}

	transaction, err := h.transactionService.UpdateTransaction(workspaceID, int32(id), input)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "description", Message: "Description is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "description", Message: "Text field exceeds its maximum length"},
			})
		}
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be non-zero"},
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
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("transaction_id", id).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int32("transaction_id", transaction.ID).
		Str("tax_category", string(transaction.TaxCategory)).
		Msg("Transaction updated")

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// RecategorizeRequest represents the recategorize request body
type RecategorizeRequest struct {
	TaxCategory    string `json:"taxCategory"`
	BusinessUsePct int32  `json:"businessUsePercentage"`
}

// Recategorize handles PATCH /api/v1/transactions/:id/category
func (h *TransactionHandler) Recategorize(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req RecategorizeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	transaction, err := h.transactionService.Recategorize(workspaceID, int32(id), domain.TaxCategoryCode(req.TaxCategory), req.BusinessUsePct)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if errors.Is(err, domain.ErrInvalidCategory) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "taxCategory", Message: "Unknown tax category"},
			})
		}
		if errors.Is(err, domain.ErrInvalidPercentage) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "businessUsePercentage", Message: "Must be between 0 and 100"},
			})
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("transaction_id", id).Msg("Failed to recategorize transaction")
		return NewInternalError(c, "Failed to recategorize transaction")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int32("transaction_id", transaction.ID).
		Str("tax_category", string(transaction.TaxCategory)).
		Msg("Transaction recategorized")

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// ClassifiedTransactionResponse represents a transaction with its claimable
// deduction figure in API responses
type ClassifiedTransactionResponse struct {
	TransactionResponse
	ClaimableAmount string  `json:"claimableAmount"`
	AppliedLimit    *string `json:"appliedLimit,omitempty"`
}

// GetClaimable handles GET /api/v1/transactions/:id/claimable
func (h *TransactionHandler) GetClaimable(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	classified, err := h.transactionService.ClassifyTransaction(workspaceID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("transaction_id", id).Msg("Failed to classify transaction")
		return NewInternalError(c, "Failed to classify transaction")
	}

	response := ClassifiedTransactionResponse{
		TransactionResponse: toTransactionResponse(&classified.Transaction),
		ClaimableAmount:     classified.ClaimableAmount.StringFixed(2),
	}
	if classified.AppliedLimit != nil {
		limit := classified.AppliedLimit.StringFixed(2)
		response.AppliedLimit = &limit
	}

	return c.JSON(http.StatusOK, response)
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(workspaceID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("transaction_id", id).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	log.Info().Int32("workspace_id", workspaceID).Int("transaction_id", id).Msg("Transaction deleted")
	return c.NoContent(http.StatusNoContent)
}

// Helper function to parse int query params with overflow protection
func parseIntParam(s string, out *int32) (bool, error) {
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return false, errors.New("invalid integer")
	}
	*out = int32(v)
	return true, nil
}

// Helper function to convert domain.Transaction to TransactionResponse
func toTransactionResponse(transaction *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:             transaction.ID,
		WorkspaceID:    transaction.WorkspaceID,
		Description:    transaction.Description,
		Merchant:       transaction.Merchant,
		Amount:         transaction.Amount.StringFixed(2),
		GSTInclusive:   transaction.GSTInclusive,
		GSTAmount:      transaction.GSTAmount.StringFixed(2),
		TaxCategory:    string(transaction.TaxCategory),
		BusinessUsePct: transaction.BusinessUsePct,
		IsCapital:      transaction.IsCapital,
		Date:           transaction.Date.Format("2006-01-02"),
		CreatedAt:      transaction.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      transaction.UpdatedAt.Format(time.RFC3339),
	}
	if transaction.Notes != nil {
		resp.Notes = transaction.Notes
	}
	if transaction.ReceiptID != nil {
		resp.ReceiptID = transaction.ReceiptID
	}
	return resp
}
