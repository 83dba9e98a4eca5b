package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/taxmate/taxmate-backend/internal/service"
)

func TestComputeGST_Inclusive(t *testing.T) {
	e := echo.New()
	handler := NewGSTHandler(service.NewGSTService())

	reqBody := `{"amount": "110.00", "gstInclusive": true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gst/compute", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.ComputeGST(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response GSTComputationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.GSTAmount != "10.00" {
		t.Errorf("Expected GST '10.00', got %s", response.GSTAmount)
	}
	if response.NetAmount != "100.00" {
		t.Errorf("Expected net '100.00', got %s", response.NetAmount)
	}
	if response.TotalAmount != "110.00" {
		t.Errorf("Expected total '110.00', got %s", response.TotalAmount)
	}
}

func TestComputeGST_Exclusive(t *testing.T) {
	e := echo.New()
	handler := NewGSTHandler(service.NewGSTService())

	reqBody := `{"amount": "100.00", "gstInclusive": false}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gst/compute", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.ComputeGST(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response GSTComputationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.GSTAmount != "10.00" {
		t.Errorf("Expected GST '10.00', got %s", response.GSTAmount)
	}
	if response.TotalAmount != "110.00" {
		t.Errorf("Expected total '110.00', got %s", response.TotalAmount)
	}
}

func TestComputeGST_InvalidAmount(t *testing.T) {
	e := echo.New()
	handler := NewGSTHandler(service.NewGSTService())

	reqBody := `{"amount": "not-a-number", "gstInclusive": true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gst/compute", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.ComputeGST(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestComputeBatch_Summary(t *testing.T) {
	e := echo.New()
	handler := NewGSTHandler(service.NewGSTService())

	// One sale, one purchase: net payable is the difference
	reqBody := `{"records": [
		{"amount": "1100.00", "gstInclusive": true},
		{"amount": "-550.00", "gstInclusive": true}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gst/compute-batch", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.ComputeBatch(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response GSTBatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if len(response.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(response.Results))
	}

	if response.Summary.TotalSalesGST != "100.00" {
		t.Errorf("Expected sales GST '100.00', got %s", response.Summary.TotalSalesGST)
	}
	if response.Summary.TotalPurchasesGST != "50.00" {
		t.Errorf("Expected purchases GST '50.00', got %s", response.Summary.TotalPurchasesGST)
	}
	if response.Summary.NetGSTPayable != "50.00" {
		t.Errorf("Expected net GST payable '50.00', got %s", response.Summary.NetGSTPayable)
	}
}

func TestComputeBatch_TooLarge(t *testing.T) {
	e := echo.New()
	handler := NewGSTHandler(service.NewGSTService())

	records := make([]string, 101)
	for i := range records {
		records[i] = `{"amount": "11.00", "gstInclusive": true}`
	}
	reqBody := fmt.Sprintf(`{"records": [%s]}`, strings.Join(records, ","))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gst/compute-batch", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.ComputeBatch(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "100 records") {
		t.Errorf("Expected batch limit message, got %s", rec.Body.String())
	}
}
