package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/service"
)

// GSTHandler handles GST computation HTTP requests
type GSTHandler struct {
	gstService *service.GSTService
}

// NewGSTHandler creates a new GSTHandler
func NewGSTHandler(gstService *service.GSTService) *GSTHandler {
	return &GSTHandler{gstService: gstService}
}

// ComputeGSTRequest represents the compute GST request body
type ComputeGSTRequest struct {
	Amount       string `json:"amount"`
	GSTInclusive bool   `json:"gstInclusive"`
}

// GSTComputationResponse represents a GST breakdown in API responses
type GSTComputationResponse struct {
	NetAmount   string `json:"netAmount"`
	GSTAmount   string `json:"gstAmount"`
	TotalAmount string `json:"totalAmount"`
}

// ComputeGST handles POST /api/v1/gst/compute
func (h *GSTHandler) ComputeGST(c echo.Context) error {
	var req ComputeGSTRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	result := h.gstService.ComputeGST(amount, req.GSTInclusive)
	return c.JSON(http.StatusOK, toGSTComputationResponse(result))
}

// GSTBatchRequest represents the batch compute request body
type GSTBatchRequest struct {
	Records []ComputeGSTRequest `json:"records"`
}

// GSTBatchSummaryResponse represents batch GST totals in API responses
type GSTBatchSummaryResponse struct {
	TotalGST          string `json:"totalGST"`
	TotalSalesGST     string `json:"totalSalesGST"`
	TotalPurchasesGST string `json:"totalPurchasesGST"`
	NetGSTPayable     string `json:"netGSTPayable"`
}

// GSTBatchResponse represents a batch computation in API responses
type GSTBatchResponse struct {
	Results []GSTComputationResponse `json:"results"`
	Summary GSTBatchSummaryResponse  `json:"summary"`
}

// ComputeBatch handles POST /api/v1/gst/compute-batch
func (h *GSTHandler) ComputeBatch(c echo.Context) error {
	var req GSTBatchRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	records := make([]domain.GSTLine, len(req.Records))
	for i, r := range req.Records {
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "records", Message: "Each record amount must be a valid decimal number"},
			})
		}
		records[i] = domain.GSTLine{Amount: amount, GSTInclusive: r.GSTInclusive}
	}

	result, err := h.gstService.ComputeBatch(records)
	if err != nil {
		if errors.Is(err, domain.ErrBatchTooLarge) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "records", Message: "Batch cannot exceed 100 records"},
			})
		}
		log.Error().Err(err).Msg("Failed to compute GST batch")
		return NewInternalError(c, "Failed to compute GST batch")
	}

	response := GSTBatchResponse{
		Results: make([]GSTComputationResponse, len(result.Results)),
		Summary: GSTBatchSummaryResponse{
			TotalGST:          result.Summary.TotalGST.StringFixed(2),
			TotalSalesGST:     result.Summary.TotalSalesGST.StringFixed(2),
			TotalPurchasesGST: result.Summary.TotalPurchasesGST.StringFixed(2),
			NetGSTPayable:     result.Summary.NetGSTPayable.StringFixed(2),
		},
	}
	for i, r := range result.Results {
		response.Results[i] = toGSTComputationResponse(r)
	}

	return c.JSON(http.StatusOK, response)
}

// Helper function to convert domain.GSTComputation to GSTComputationResponse
func toGSTComputationResponse(g *domain.GSTComputation) GSTComputationResponse {
	return GSTComputationResponse{
		NetAmount:   g.NetAmount.StringFixed(2),
		GSTAmount:   g.GSTAmount.StringFixed(2),
		TotalAmount: g.TotalAmount.StringFixed(2),
	}
}
