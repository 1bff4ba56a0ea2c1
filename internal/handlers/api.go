package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"sales-analytics/internal/errors"
	"sales-analytics/internal/observability"
	"sales-analytics/internal/services"
)

const version = "1.0.0"

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// Report handlers always answer 200. A report that could not be computed
// carries "status":"error" in its body.

func (h *APIHandlers) HandleSalesByCountry(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, h.analytics.SalesByCountry(r.Context()))
}

func (h *APIHandlers) HandleTemporal(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, h.analytics.TemporalAnalysis(r.Context()))
}

func (h *APIHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, h.analytics.ProductAnalysis(r.Context()))
}

func (h *APIHandlers) HandleCustomers(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, h.analytics.CustomerAnalysis(r.Context()))
}

func (h *APIHandlers) HandleBilling(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, h.analytics.BillingAnalysis(r.Context()))
}

func (h *APIHandlers) HandleTest(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{"ok", "API is running"})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.analytics.Ping(r.Context()); err != nil {
		appErr := errors.ServiceUnavailableWrap(err, "Transaction store unavailable")
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   version,
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Stats(r.Context())
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccess(w, stats)
}
