package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/middleware"
	"github.com/taxmate/taxmate-backend/internal/service"
	"github.com/taxmate/taxmate-backend/internal/util"
	"github.com/taxmate/taxmate-backend/internal/websocket"
)

// BASHandler handles BAS report HTTP requests
type BASHandler struct {
	basService     *service.BASService
	eventPublisher websocket.EventPublisher
}

// NewBASHandler creates a new BASHandler
func NewBASHandler(basService *service.BASService) *BASHandler {
	return &BASHandler{basService: basService}
}

// SetEventPublisher sets the event publisher for real-time updates
func (h *BASHandler) SetEventPublisher(publisher websocket.EventPublisher) {
	h.eventPublisher = publisher
}

// BASReportResponse represents a BAS report in API responses.
// G1/G10/G11/1A/1B are the literal ATO BAS field codes.
type BASReportResponse struct {
	TaxPeriod        string `json:"taxPeriod"`
	TotalSales       string `json:"totalSales"`
	TotalPurchases   string `json:"totalPurchases"`
	GSTCollected     string `json:"gstCollected"`
	GSTPaid          string `json:"gstPaid"`
	NetGST           string `json:"netGST"`
	G1               string `json:"G1"`
	G10              string `json:"G10"`
	G11              string `json:"G11"`
	OneA             string `json:"1A"`
	OneB             string `json:"1B"`
	TransactionCount int    `json:"transactionCount"`
	GeneratedAt      string `json:"generatedAt"`
}

// GetReport handles GET /api/v1/bas/report?period=2024Q2
//
// When the period parameter is omitted the current quarter is reported.
func (h *BASHandler) GetReport(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	period := c.QueryParam("period")
	if period == "" {
		period = util.CurrentTaxPeriod(time.Now().UTC())
	}

	report, err := h.basService.BuildWorkspaceReport(workspaceID, period)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTaxPeriod) {
			return NewValidationError(c, "Invalid tax period", []ValidationError{
				{Field: "period", Message: "Must be in YYYYQn format, e.g. 2024Q2"},
			})
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Str("period", period).Msg("Failed to build BAS report")
		return NewInternalError(c, "Failed to build BAS report")
	}

	response := toBASReportResponse(report)

	if h.eventPublisher != nil {
		h.eventPublisher.Publish(workspaceID, websocket.ReportGenerated(response))
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Str("period", period).
		Int("transaction_count", report.TransactionCount).
		Msg("BAS report generated")

	return c.JSON(http.StatusOK, response)
}

// GetPeriods handles GET /api/v1/bas/periods
//
// Returns the current quarter and the four preceding ones, newest first, so
// clients can offer a period picker without reimplementing quarter math.
func (h *BASHandler) GetPeriods(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	now := time.Now().UTC()
	current, err := util.ParseTaxPeriod(util.CurrentTaxPeriod(now))
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve current tax period")
		return NewInternalError(c, "Failed to list tax periods")
	}

	periods := make([]string, 0, 5)
	year, quarter := current.Year, current.Quarter
	for i := 0; i < 5; i++ {
		periods = append(periods, util.FormatTaxPeriod(year, quarter))
		quarter--
		if quarter < 1 {
			quarter = 4
			year--
		}
	}

	return c.JSON(http.StatusOK, map[string][]string{"periods": periods})
}

// Helper function to convert domain.BASReport to BASReportResponse
func toBASReportResponse(r *domain.BASReport) BASReportResponse {
	return BASReportResponse{
		TaxPeriod:        r.TaxPeriod,
		TotalSales:       r.TotalSales.StringFixed(2),
		TotalPurchases:   r.TotalPurchases.StringFixed(2),
		GSTCollected:     r.GSTCollected.StringFixed(2),
		GSTPaid:          r.GSTPaid.StringFixed(2),
		NetGST:           r.NetGST.StringFixed(2),
		G1:               r.G1.StringFixed(2),
		G10:              r.G10.StringFixed(2),
		G11:              r.G11.StringFixed(2),
		OneA:             r.OneA.StringFixed(2),
		OneB:             r.OneB.StringFixed(2),
		TransactionCount: r.TransactionCount,
		GeneratedAt:      r.GeneratedAt.Format(time.RFC3339),
	}
}
