package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"procurement-dashboard/internal/models"
)

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics(t)
	handlers := NewSSEHandlers(analytics, testLogger())

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewSSEHandlers() should set analytics field")
	}
}

func TestSSEHandlers_RenderSupplierTable(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testLogger())

	data := []models.SupplierPerformance{
		{
			SupplierID:        "S001",
			SupplierName:      "Alpha Steel",
			Category:          "Raw Materials",
			TotalOrders:       12,
			TotalSpend:        34000,
			OnTimeDeliveryPct: 91.7,
			QualityIncidents:  0,
			Grade:             "A",
		},
		{
			SupplierID:        "S002",
			SupplierName:      "Beta Steel",
			Category:          "Raw Materials",
			TotalOrders:       8,
			TotalSpend:        12000,
			OnTimeDeliveryPct: 50,
			QualityIncidents:  4,
			Grade:             "D",
		},
	}

	html, err := handlers.renderSupplierTable(data)
	if err != nil {
		t.Fatalf("renderSupplierTable() error: %v", err)
	}

	for _, want := range []string{
		`<div id="supplier-content">`,
		`<table class="modern-table">`,
		"<th>Supplier</th>",
		"<th>Grade</th>",
		"Alpha Steel",
		"Beta Steel",
		`grade-badge grade-A`,
		`grade-badge grade-D`,
		"$34000",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered table missing %q", want)
		}
	}
}

func TestSSEHandlers_RenderSupplierTable_CapsRows(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testLogger())

	data := make([]models.SupplierPerformance, 75)
	for i := range data {
		data[i] = models.SupplierPerformance{
			SupplierID:   fmt.Sprintf("S%03d", i),
			SupplierName: fmt.Sprintf("Supplier %d", i),
			Category:     "Raw Materials",
			Grade:        "C",
		}
	}

	html, err := handlers.renderSupplierTable(data)
	if err != nil {
		t.Fatalf("renderSupplierTable() error: %v", err)
	}

	// One header row plus at most maxTableRows data rows.
	rows := strings.Count(html, "<tr>") - 1
	if rows > maxTableRows {
		t.Errorf("expected at most %d data rows, got %d", maxTableRows, rows)
	}
	if strings.Contains(html, "Supplier 74") {
		t.Error("rows past the cap should not be rendered")
	}
}

func TestSSEHandlers_RenderVarianceTable(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testLogger())

	data := []models.PriceVarianceOpportunity{
		{
			MaterialName:     "Steel Coil",
			Category:         "Raw Materials",
			SupplierCount:    3,
			MinPrice:         100,
			AvgPrice:         113.33,
			MaxPrice:         130,
			VariancePct:      30,
			PotentialSavings: 400,
		},
	}

	html, err := handlers.renderVarianceTable(data)
	if err != nil {
		t.Fatalf("renderVarianceTable() error: %v", err)
	}

	for _, want := range []string{
		`<div id="variance-content">`,
		"<th>Variance %</th>",
		"Steel Coil",
		"$100.00",
		"$130.00",
		"$400",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered table missing %q", want)
		}
	}
}

func TestSSEHandlers_HandleSupplierPerformance(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/supplier-performance", nil)
	w := httptest.NewRecorder()

	handlers.HandleSupplierPerformance(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected event-stream content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "supplier-content") {
		t.Error("stream should patch the supplier-content element")
	}
}

func TestSSEHandlers_HandlePriceVariance(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/price-variance", nil)
	w := httptest.NewRecorder()

	handlers.HandlePriceVariance(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "variance-content") {
		t.Error("stream should patch the variance-content element")
	}
}

func TestSSEHandlers_HandleCategorySpend(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/category-spend", nil)
	w := httptest.NewRecorder()

	handlers.HandleCategorySpend(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "categoryData") {
		t.Error("stream should patch the categoryData signal")
	}
	if !strings.Contains(body, "category-content") {
		t.Error("stream should patch the category-content element")
	}
}

func TestSSEHandlers_HandleScenarios(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/scenarios", nil)
	w := httptest.NewRecorder()

	handlers.HandleScenarios(w, req)

	body := w.Body.String()
	for _, signal := range []string{"scenariosData", "sensitivityData", "uncertaintyData"} {
		if !strings.Contains(body, signal) {
			t.Errorf("stream should patch the %s signal", signal)
		}
	}
}

func TestSSEHandlers_HandleRecommendations(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/recommendations", nil)
	w := httptest.NewRecorder()

	handlers.HandleRecommendations(w, req)

	if !strings.Contains(w.Body.String(), "recommendationsData") {
		t.Error("stream should patch the recommendationsData signal")
	}
}

func TestSSEHandlers_HandleRefreshAll(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/refresh-all", nil)
	w := httptest.NewRecorder()

	handlers.HandleRefreshAll(w, req)

	body := w.Body.String()
	for _, want := range []string{
		"supplier-content",
		"variance-content",
		"categoryData",
		"scenariosData",
		"recommendationsData",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("refresh stream missing %q", want)
		}
	}
}
