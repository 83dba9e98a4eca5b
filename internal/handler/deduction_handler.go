package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/middleware"
	"github.com/taxmate/taxmate-backend/internal/service"
)

// DeductionHandler handles classification and claimable-amount HTTP requests
type DeductionHandler struct {
	deductionService *service.DeductionService
	ruleService      *service.RuleService
}

// NewDeductionHandler creates a new DeductionHandler
func NewDeductionHandler(deductionService *service.DeductionService, ruleService *service.RuleService) *DeductionHandler {
	return &DeductionHandler{
		deductionService: deductionService,
		ruleService:      ruleService,
	}
}

// ClassifyRequest represents the classify request body
type ClassifyRequest struct {
	Description string `json:"description"`
	Merchant    string `json:"merchant"`
	Amount      string `json:"amount,omitempty"`
}

// ClassifyResponse represents a classification result in API responses
type ClassifyResponse struct {
	Category string `json:"category"`
}

// Classify handles POST /api/v1/deductions/classify
//
// The workspace's user rules are merged over the system defaults before
// matching, so a user rule always beats a default at equal priority.
func (h *DeductionHandler) Classify(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req ClassifyRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount := decimal.Zero
	if req.Amount != "" {
		parsed, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Must be a valid decimal number"},
			})
		}
		amount = parsed
	}

	userRules, err := h.ruleService.GetRules(workspaceID)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to load workspace rules")
		return NewInternalError(c, "Failed to classify record")
	}

	category := h.deductionService.ClassifyWithDefaults(domain.ClassifiableRecord{
		Description: req.Description,
		Merchant:    req.Merchant,
		Amount:      amount,
	}, userRules)

	return c.JSON(http.StatusOK, ClassifyResponse{Category: string(category)})
}

// ClaimableRequest represents the claimable computation request body
type ClaimableRequest struct {
	Amount         string `json:"amount"`
	Category       string `json:"category"`
	BusinessUsePct int32  `json:"businessUsePercentage"`
}

// ClaimableResponse represents a claimable computation in API responses
type ClaimableResponse struct {
	Category        string  `json:"category"`
	ClaimableAmount string  `json:"claimableAmount"`
	AppliedLimit    *string `json:"appliedLimit,omitempty"`
	BusinessUsePct  int32   `json:"businessUsePercentage"`
	Deductible      bool    `json:"deductible"`
}

// ComputeClaimable handles POST /api/v1/deductions/claimable
func (h *DeductionHandler) ComputeClaimable(c echo.Context) error {
	var req ClaimableRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	result, err := h.deductionService.ComputeClaimable(amount, domain.TaxCategoryCode(req.Category), req.BusinessUsePct)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPercentage) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "businessUsePercentage", Message: "Must be between 0 and 100"},
			})
		}
		if errors.Is(err, domain.ErrInvalidCategory) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "category", Message: "Unknown tax category"},
			})
		}
		log.Error().Err(err).Msg("Failed to compute claimable amount")
		return NewInternalError(c, "Failed to compute claimable amount")
	}

	response := ClaimableResponse{
		Category:        string(result.Category),
		ClaimableAmount: result.ClaimableAmount.StringFixed(2),
		BusinessUsePct:  result.BusinessUsePct,
		Deductible:      result.Deductible,
	}
	if result.AppliedLimit != nil {
		limit := result.AppliedLimit.StringFixed(2)
		response.AppliedLimit = &limit
	}

	return c.JSON(http.StatusOK, response)
}
