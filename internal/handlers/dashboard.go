package handlers

import (
	"html/template"
	"log/slog"
	"net/http"

	"procurement-dashboard/internal/services"
)

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Procurement Savings Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6f8; color: #1b1f24; }
header { background: #16324f; color: #fff; padding: 1rem 2rem; display: flex; justify-content: space-between; align-items: center; }
main { padding: 1.5rem 2rem; display: grid; gap: 1.5rem; }
section { background: #fff; border-radius: 8px; padding: 1rem 1.25rem; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
.kpi-row { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 1rem; }
.kpi { background: #fff; border-radius: 8px; padding: 1rem; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
.kpi .value { font-size: 1.6rem; font-weight: 700; }
.modern-table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
.modern-table th { text-align: left; padding: 0.5rem; border-bottom: 2px solid #e2e6ea; }
.modern-table td { padding: 0.5rem; border-bottom: 1px solid #eef1f4; }
.category-badge { background: #e8f0fe; color: #16324f; border-radius: 4px; padding: 0.1rem 0.4rem; font-size: 0.8rem; }
.grade-badge { border-radius: 4px; padding: 0.1rem 0.45rem; font-weight: 700; }
.grade-A { background: #d9f2e3; color: #1b6b3a; }
.grade-B { background: #e8f0fe; color: #16324f; }
.grade-C { background: #fdf2d9; color: #8a6116; }
.grade-D { background: #fbe0e0; color: #8f1f1f; }
button { background: #16324f; color: #fff; border: 0; border-radius: 6px; padding: 0.5rem 1rem; cursor: pointer; }
</style>
</head>
<body>
<header>
<h1>Procurement Savings Dashboard</h1>
<div>
<button data-on-click="@get('/sse/refresh-all')">Refresh</button>
<a href="/api/export/workbook"><button type="button">Download XLSX</button></a>
</div>
</header>
<main>
<div class="kpi-row">
<div class="kpi"><div>Total spend</div><div class="value">${{printf "%.0f" .TotalSpend}}</div></div>
<div class="kpi"><div>Purchase orders</div><div class="value">{{.OrderCount}}</div></div>
<div class="kpi"><div>Suppliers graded</div><div class="value">{{.SupplierCount}}</div></div>
<div class="kpi"><div>Identified savings</div><div class="value">${{printf "%.0f" .TotalSavings}}</div></div>
</div>
<section data-on-load="@get('/sse/supplier-performance')">
<h2>Supplier scorecard</h2>
<div id="supplier-content">Loading...</div>
</section>
<section data-on-load="@get('/sse/price-variance')">
<h2>Price variance opportunities</h2>
<div id="variance-content">Loading...</div>
</section>
<section data-on-load="@get('/sse/category-spend')">
<h2>Spend by category</h2>
<div id="category-content">Loading...</div>
</section>
<section data-on-load="@get('/sse/scenarios')">
<h2>Savings scenarios and uncertainty</h2>
<div id="scenarios-content">Loading...</div>
</section>
<section data-on-load="@get('/sse/recommendations')">
<h2>Recommendations</h2>
<div id="recommendations-content">Loading...</div>
</section>
</main>
</body>
</html>`))

type DashboardHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewDashboardHandlers(analytics *services.Analytics, logger *slog.Logger) *DashboardHandlers {
	return &DashboardHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

type dashboardData struct {
	TotalSpend    float64
	OrderCount    int
	SupplierCount int
	TotalSavings  float64
}

func (h *DashboardHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{}
	if report := h.analytics.Report(); report != nil {
		data.TotalSpend = report.TotalSpend
		data.OrderCount = report.OrderCount
		data.SupplierCount = len(report.SupplierPerformance)
		for _, s := range report.Scenarios {
			if s.Name == services.ScenarioTotal {
				data.TotalSavings = s.TotalSavings
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, data); err != nil {
		h.logger.Error("render dashboard", "error", err)
	}
}
