package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sales-analytics/internal/models"
)

func TestRenderCountryTable(t *testing.T) {
	env := models.Success(models.SalesByCountry{
		Countries: []models.CountrySales{
			{Country: "USA", TotalSales: 150, Customers: 2, TicketAverage: 75},
			{Country: "<script>", TotalSales: 30, Customers: 1, TicketAverage: 30},
		},
		TotalCountries: 2,
	})

	html, err := renderCountryTable(env)
	if err != nil {
		t.Fatalf("renderCountryTable() failed: %v", err)
	}

	expectedContent := []string{
		`<div id="country-content">`,
		"<th>Country</th>",
		"USA",
		"150.00",
		"75.00",
		"&lt;script&gt;",
		"2 countries",
	}
	for _, content := range expectedContent {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
	if strings.Contains(html, "report-error") {
		t.Error("successful report should not render the error notice")
	}
}

func TestRenderCountryTable_Failure(t *testing.T) {
	html, err := renderCountryTable(models.Failure(models.EmptySalesByCountry()))
	if err != nil {
		t.Fatalf("renderCountryTable() failed: %v", err)
	}
	if !strings.Contains(html, "unavailable") {
		t.Error("failed report should render the error notice")
	}
}

func TestSSEHandlers_Streams(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		contains []string
	}{
		{"country", handlers.HandleSalesByCountry, []string{"<table", "USA"}},
		{"temporal", handlers.HandleTemporal, []string{"temporalData", "Month 1", "temporal-content"}},
		{"products", handlers.HandleProducts, []string{"productsData", "top_produtos", "products-content"}},
		{"customers", handlers.HandleCustomers, []string{"customersData", "top_clientes", "customers-content"}},
		{"billing", handlers.HandleBilling, []string{"billingData", "evolucao_temporal", "billing-content"}},
		{"refresh all", handlers.HandleRefreshAll, []string{"<table", "temporalData", "productsData", "customersData", "billingData"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, httptest.NewRequest(http.MethodGet, "/sse/"+tt.name, nil))

			if w.Code != http.StatusOK {
				t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
			}

			body := w.Body.String()
			for _, want := range tt.contains {
				if !strings.Contains(body, want) {
					t.Errorf("stream missing %q", want)
				}
			}
		})
	}
}

func TestSSEHandlers_StoreDown(t *testing.T) {
	handlers := NewSSEHandlers(createBrokenAnalytics(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleBilling(w, httptest.NewRequest(http.MethodGet, "/sse/billing", nil))

	body := w.Body.String()
	if !strings.Contains(body, `"status":"error"`) {
		t.Error("signals should carry the error status")
	}
	if !strings.Contains(body, "Billing analysis unavailable") {
		t.Error("status line should report the failure")
	}
}
