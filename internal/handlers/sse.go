package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"procurement-dashboard/internal/models"
	"procurement-dashboard/internal/services"
)

const (
	maxTableRows       = 50
	maxOpportunities   = 20
	maxRecommendations = 10
)

var supplierTableTemplate = template.Must(template.New("supplierTable").Parse(`
<div id="supplier-content">
<table class="modern-table">
<thead><tr><th>Supplier</th><th>Category</th><th>Orders</th><th>Spend</th><th>OTD %</th><th>Incidents</th><th>Grade</th></tr></thead>
<tbody>
{{range $i, $item := .Data}}{{if lt $i $.MaxRows}}<tr>
<td>{{.SupplierName}}</td>
<td><span class="category-badge">{{.Category}}</span></td>
<td>{{.TotalOrders}}</td>
<td><strong>${{printf "%.0f" .TotalSpend}}</strong></td>
<td>{{printf "%.1f" .OnTimeDeliveryPct}}</td>
<td>{{.QualityIncidents}}</td>
<td><span class="grade-badge grade-{{.Grade}}">{{.Grade}}</span></td>
</tr>{{end}}{{end}}
</tbody>
</table>
</div>`))

var varianceTableTemplate = template.Must(template.New("varianceTable").Parse(`
<div id="variance-content">
<table class="modern-table">
<thead><tr><th>Material</th><th>Category</th><th>Suppliers</th><th>Min</th><th>Avg</th><th>Max</th><th>Variance %</th><th>Savings</th></tr></thead>
<tbody>
{{range $i, $item := .Data}}{{if lt $i $.MaxRows}}<tr>
<td>{{.MaterialName}}</td>
<td><span class="category-badge">{{.Category}}</span></td>
<td>{{.SupplierCount}}</td>
<td>${{printf "%.2f" .MinPrice}}</td>
<td>${{printf "%.2f" .AvgPrice}}</td>
<td>${{printf "%.2f" .MaxPrice}}</td>
<td>{{printf "%.1f" .VariancePct}}</td>
<td><strong>${{printf "%.0f" .PotentialSavings}}</strong></td>
</tr>{{end}}{{end}}
</tbody>
</table>
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

type templateData struct {
	Data    interface{}
	MaxRows int
}

func (h *SSEHandlers) renderSupplierTable(data []models.SupplierPerformance) (string, error) {
	var buf strings.Builder

	if len(data) > maxTableRows {
		data = data[:maxTableRows]
	}

	tmplData := templateData{Data: data, MaxRows: maxTableRows}
	err := supplierTableTemplate.Execute(&buf, tmplData)
	return buf.String(), err
}

func (h *SSEHandlers) renderVarianceTable(data []models.PriceVarianceOpportunity) (string, error) {
	var buf strings.Builder

	tmplData := templateData{Data: data, MaxRows: maxOpportunities}
	err := varianceTableTemplate.Execute(&buf, tmplData)
	return buf.String(), err
}

func (h *SSEHandlers) HandleSupplierPerformance(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.analytics.SupplierPerformance()
	html, err := h.renderSupplierTable(data)
	if err != nil {
		h.logger.Error("render supplier table", "error", err)
		return
	}

	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandlePriceVariance(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.analytics.PriceVariance(maxOpportunities)
	html, err := h.renderVarianceTable(data)
	if err != nil {
		h.logger.Error("render variance table", "error", err)
		return
	}

	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleCategorySpend(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.analytics.CategorySpend()
	jsonData, err := json.Marshal(map[string]any{
		"categoryData": data,
	})
	if err != nil {
		h.logger.Error("marshal category data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="category-content">✅ Category spend chart data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleScenarios(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"scenariosData":   h.analytics.Scenarios(),
		"sensitivityData": h.analytics.Sensitivity(),
		"uncertaintyData": h.analytics.Uncertainty(),
	})
	if err != nil {
		h.logger.Error("marshal scenarios data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="scenarios-content">✅ Savings scenarios loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"recommendationsData": h.analytics.Recommendations(true),
	})
	if err != nil {
		h.logger.Error("marshal recommendations data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
	sse.PatchElements(`<div id="recommendations-content">✅ Recommendations loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	supplierData := h.analytics.SupplierPerformance()
	html, err := h.renderSupplierTable(supplierData)
	if err != nil {
		h.logger.Error("render supplier table", "error", err)
		return
	}
	sse.PatchElements(html)

	varianceData := h.analytics.PriceVariance(maxOpportunities)
	html, err = h.renderVarianceTable(varianceData)
	if err != nil {
		h.logger.Error("render variance table", "error", err)
		return
	}
	sse.PatchElements(html)

	allSignals, err := json.Marshal(map[string]any{
		"categoryData":        h.analytics.CategorySpend(),
		"scenariosData":       h.analytics.Scenarios(),
		"sensitivityData":     h.analytics.Sensitivity(),
		"uncertaintyData":     h.analytics.Uncertainty(),
		"recommendationsData": h.analytics.Recommendations(true),
	})
	if err != nil {
		h.logger.Error("marshal refresh signals", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
