package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/middleware"
	"github.com/taxmate/taxmate-backend/internal/service"
	"github.com/taxmate/taxmate-backend/internal/websocket"
)

// RuleHandler handles categorization rule HTTP requests
type RuleHandler struct {
	ruleService    *service.RuleService
	eventPublisher websocket.EventPublisher
}

// NewRuleHandler creates a new RuleHandler
func NewRuleHandler(ruleService *service.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

// SetEventPublisher sets the event publisher for real-time updates
func (h *RuleHandler) SetEventPublisher(publisher websocket.EventPublisher) {
	h.eventPublisher = publisher
}

func (h *RuleHandler) publishEvent(workspaceID int32, event websocket.Event) {
	if h.eventPublisher != nil {
		h.eventPublisher.Publish(workspaceID, event)
	}
}

// RuleRequest represents the create/update rule request body
type RuleRequest struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
	Priority int32    `json:"priority"`
}

// RuleResponse represents a categorization rule in API responses
type RuleResponse struct {
	ID         int32    `json:"id,omitempty"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Keywords   []string `json:"keywords"`
	Priority   int32    `json:"priority"`
	Source     string   `json:"source"`
	ClaimLimit *string  `json:"claimLimit,omitempty"`
	Deductible bool     `json:"deductible"`
	CreatedAt  string   `json:"createdAt,omitempty"`
	UpdatedAt  string   `json:"updatedAt,omitempty"`
}

// CreateRule handles POST /api/v1/rules
func (h *RuleHandler) CreateRule(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req RuleRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	rule, err := h.ruleService.CreateRule(workspaceID, service.CreateRuleInput{
		Name:     req.Name,
		Category: domain.TaxCategoryCode(req.Category),
		Keywords: req.Keywords,
		Priority: req.Priority,
	})
	if err != nil {
		if resp := ruleValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to create rule")
		return NewInternalError(c, "Failed to create rule")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int32("rule_id", rule.ID).
		Str("category", string(rule.Category)).
		Msg("Rule created")

	h.publishEvent(workspaceID, websocket.RuleCreated(rule))
	return c.JSON(http.StatusCreated, toRuleResponse(rule))
}

// UpdateRule handles PUT /api/v1/rules/:id
func (h *RuleHandler) UpdateRule(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid rule ID", nil)
	}

	var req RuleRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	rule, err := h.ruleService.UpdateRule(workspaceID, int32(id), service.CreateRuleInput{
		Name:     req.Name,
		Category: domain.TaxCategoryCode(req.Category),
		Keywords: req.Keywords,
		Priority: req.Priority,
	})
	if err != nil {
		if errors.Is(err, domain.ErrRuleNotFound) {
			return NewNotFoundError(c, "Rule not found")
		}
		if resp := ruleValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("rule_id", id).Msg("Failed to update rule")
		return NewInternalError(c, "Failed to update rule")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("rule_id", rule.ID).Msg("Rule updated")

	h.publishEvent(workspaceID, websocket.RuleUpdated(rule))
	return c.JSON(http.StatusOK, toRuleResponse(rule))
}

// GetRules handles GET /api/v1/rules
//
// With ?includeDefaults=true the response is the merged rule set in
// evaluation order (user rules over system defaults); otherwise only the
// workspace's own rules are returned.
func (h *RuleHandler) GetRules(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var (
		rules []*domain.CategoryRule
		err   error
	)
	if c.QueryParam("includeDefaults") == "true" {
		rules, err = h.ruleService.GetMergedRules(workspaceID)
	} else {
		rules, err = h.ruleService.GetRules(workspaceID)
	}
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get rules")
		return NewInternalError(c, "Failed to get rules")
	}

	response := make([]RuleResponse, len(rules))
	for i, rule := range rules {
		response[i] = toRuleResponse(rule)
	}

	return c.JSON(http.StatusOK, response)
}

// DeleteRule handles DELETE /api/v1/rules/:id
func (h *RuleHandler) DeleteRule(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid rule ID", nil)
	}

	if err := h.ruleService.DeleteRule(workspaceID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrRuleNotFound) {
			return NewNotFoundError(c, "Rule not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("rule_id", id).Msg("Failed to delete rule")
		return NewInternalError(c, "Failed to delete rule")
	}

	log.Info().Int32("workspace_id", workspaceID).Int("rule_id", id).Msg("Rule deleted")

	h.publishEvent(workspaceID, websocket.RuleDeleted(map[string]int32{"id": int32(id)}))
	return c.NoContent(http.StatusNoContent)
}

// ruleValidationResponse maps rule validation errors onto 400 responses.
// Returns nil for errors it does not recognize.
func ruleValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 100 characters or less"},
		})
	case errors.Is(err, domain.ErrInvalidCategory):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "category", Message: "Unknown tax category"},
		})
	case errors.Is(err, domain.ErrKeywordsRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "keywords", Message: "At least one keyword is required"},
		})
	}
	return nil
}

// Helper function to convert domain.CategoryRule to RuleResponse
func toRuleResponse(rule *domain.CategoryRule) RuleResponse {
	resp := RuleResponse{
		ID:         rule.ID,
		Name:       rule.Name,
		Category:   string(rule.Category),
		Keywords:   rule.Keywords,
		Priority:   rule.Priority,
		Source:     string(rule.Source),
		Deductible: rule.Deductible,
	}
	if rule.ClaimLimit != nil {
		limit := rule.ClaimLimit.StringFixed(2)
		resp.ClaimLimit = &limit
	}
	if !rule.CreatedAt.IsZero() {
		resp.CreatedAt = rule.CreatedAt.Format(time.RFC3339)
	}
	if !rule.UpdatedAt.IsZero() {
		resp.UpdatedAt = rule.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
