package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
	"golang.org/x/sync/errgroup"

	"sales-analytics/internal/models"
	"sales-analytics/internal/services"
)

var countryTableTemplate = template.Must(template.New("countryTable").Parse(`
<div id="country-content">
{{if not .OK}}<p class="report-error">Sales by country is unavailable.</p>{{end}}
<table class="modern-table">
<thead><tr><th>Country</th><th>Sales</th><th>Customers</th><th>Average ticket</th></tr></thead>
<tbody>
{{range .Countries}}<tr>
<td>{{.Country}}</td>
<td><strong>{{printf "%.2f" .TotalSales}}</strong></td>
<td>{{.Customers}}</td>
<td>{{printf "%.2f" .TicketAverage}}</td>
</tr>{{end}}
</tbody>
</table>
<p class="table-footer">{{.TotalCountries}} countries</p>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func renderCountryTable(env models.Envelope[models.SalesByCountry]) (string, error) {
	var buf strings.Builder
	err := countryTableTemplate.Execute(&buf, struct {
		OK bool
		models.SalesByCountry
	}{env.OK(), env.Payload})
	return buf.String(), err
}

// statusLine renders the placeholder element the dashboard swaps in once a
// chart's signals have arrived.
func statusLine(id, label string, status models.Status) string {
	if status == models.StatusSuccess {
		return fmt.Sprintf(`<div id="%s">%s loaded</div>`, id, label)
	}
	return fmt.Sprintf(`<div id="%s" class="report-error">%s unavailable</div>`, id, label)
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) {
	payload, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(payload); err != nil {
		h.logger.Warn("patch signals", "error", err)
	}
}

func (h *SSEHandlers) patchElements(sse *datastar.ServerSentEventGenerator, html string) {
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch elements", "error", err)
	}
}

func (h *SSEHandlers) HandleSalesByCountry(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	html, err := renderCountryTable(h.analytics.SalesByCountry(r.Context()))
	if err != nil {
		h.logger.Error("render country table", "error", err)
		return
	}
	h.patchElements(sse, html)
}

func (h *SSEHandlers) HandleTemporal(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	env := h.analytics.TemporalAnalysis(r.Context())
	h.patchSignals(sse, map[string]any{"temporalData": env})
	h.patchElements(sse, statusLine("temporal-content", "Temporal analysis", env.Status))
}

func (h *SSEHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	env := h.analytics.ProductAnalysis(r.Context())
	h.patchSignals(sse, map[string]any{"productsData": env})
	h.patchElements(sse, statusLine("products-content", "Product analysis", env.Status))
}

func (h *SSEHandlers) HandleCustomers(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	env := h.analytics.CustomerAnalysis(r.Context())
	h.patchSignals(sse, map[string]any{"customersData": env})
	h.patchElements(sse, statusLine("customers-content", "Customer analysis", env.Status))
}

func (h *SSEHandlers) HandleBilling(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	env := h.analytics.BillingAnalysis(r.Context())
	h.patchSignals(sse, map[string]any{"billingData": env})
	h.patchElements(sse, statusLine("billing-content", "Billing analysis", env.Status))
}

type dashboardReports struct {
	country   models.Envelope[models.SalesByCountry]
	temporal  models.Envelope[models.TemporalAnalysis]
	products  models.Envelope[models.ProductAnalysis]
	customers models.Envelope[models.CustomerAnalysis]
	billing   models.Envelope[models.BillingAnalysis]
}

// loadAll runs the five reports concurrently. Reports never fail outright,
// so the group only waits.
func (h *SSEHandlers) loadAll(ctx context.Context) dashboardReports {
	var reports dashboardReports
	var g errgroup.Group

	g.Go(func() error { reports.country = h.analytics.SalesByCountry(ctx); return nil })
	g.Go(func() error { reports.temporal = h.analytics.TemporalAnalysis(ctx); return nil })
	g.Go(func() error { reports.products = h.analytics.ProductAnalysis(ctx); return nil })
	g.Go(func() error { reports.customers = h.analytics.CustomerAnalysis(ctx); return nil })
	g.Go(func() error { reports.billing = h.analytics.BillingAnalysis(ctx); return nil })

	_ = g.Wait()
	return reports
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	reports := h.loadAll(r.Context())

	html, err := renderCountryTable(reports.country)
	if err != nil {
		h.logger.Error("render country table", "error", err)
		return
	}
	h.patchElements(sse, html)

	h.patchSignals(sse, map[string]any{
		"temporalData":  reports.temporal,
		"productsData":  reports.products,
		"customersData": reports.customers,
		"billingData":   reports.billing,
	})
}
