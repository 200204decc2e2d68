// Package export renders a finished analysis report to CSV files and an XLSX
// workbook. Rounding to the documented precision — currency to whole units,
// percentages to two decimals — happens here and only here; the engine keeps
// full precision throughout.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"procurement-dashboard/internal/services"
)

// RoundCurrency rounds a monetary amount to zero decimals.
func RoundCurrency(v float64) float64 {
	return math.Round(v)
}

// RoundPct rounds a percentage to two decimals.
func RoundPct(v float64) float64 {
	return math.Round(v*100) / 100
}

type table struct {
	name   string
	header []string
	rows   [][]any
}

func tables(r *services.Report) []table {
	categorySpend := table{
		name:   "category_spend",
		header: []string{"category", "order_count", "total_spend", "pct_of_total", "avg_order_value", "supplier_count"},
	}
	for _, row := range r.CategorySpend {
		categorySpend.rows = append(categorySpend.rows, []any{
			row.Category, row.OrderCount, RoundCurrency(row.TotalSpend),
			RoundPct(row.PctOfTotal), RoundCurrency(row.AvgOrderValue), row.SupplierCount,
		})
	}

	performance := table{
		name: "supplier_performance",
		header: []string{"supplier_name", "category", "country", "total_orders", "total_spend",
			"otd_pct", "quality_incidents", "quality_cost", "performance_grade"},
	}
	for _, row := range r.SupplierPerformance {
		performance.rows = append(performance.rows, []any{
			row.SupplierName, row.Category, row.Country, row.TotalOrders,
			RoundCurrency(row.TotalSpend), RoundPct(row.OnTimeDeliveryPct),
			row.QualityIncidents, RoundCurrency(row.QualityCost), row.Grade,
		})
	}

	variance := table{
		name: "price_variance_opportunities",
		header: []string{"material_name", "category", "supplier_count", "min_price", "avg_price",
			"max_price", "variance_pct", "potential_savings"},
	}
	for _, row := range r.PriceVariance {
		variance.rows = append(variance.rows, []any{
			row.MaterialName, row.Category, row.SupplierCount, RoundPct(row.MinPrice),
			RoundPct(row.AvgPrice), RoundPct(row.MaxPrice), RoundPct(row.VariancePct),
			RoundCurrency(row.PotentialSavings),
		})
	}

	scenarios := table{
		name:   "savings_scenarios",
		header: []string{"scenario_name", "total_savings", "savings_pct_of_spend"},
	}
	for _, row := range r.Scenarios {
		scenarios.rows = append(scenarios.rows, []any{
			row.Name, RoundCurrency(row.TotalSavings), RoundPct(row.SavingsPctOfSpend),
		})
	}
	for _, row := range r.Sensitivity {
		scenarios.rows = append(scenarios.rows, []any{
			row.Name, RoundCurrency(row.TotalSavings), RoundPct(row.SavingsPctOfSpend),
		})
	}

	uncertainty := table{
		name:   "monte_carlo_uncertainty_bounds",
		header: []string{"percentile_label", "value"},
	}
	for _, bound := range r.Uncertainty.Bounds {
		uncertainty.rows = append(uncertainty.rows, []any{bound.Percentile, RoundCurrency(bound.Value)})
	}
	uncertainty.rows = append(uncertainty.rows, []any{"interval_width", RoundCurrency(r.Uncertainty.IntervalWidth)})

	recommendations := table{
		name:   "supplier_recommendations",
		header: []string{"action_type", "target", "category", "estimated_savings", "reason", "constrained"},
	}
	constrained := make(map[string]bool, len(r.Recommendations.Constrained))
	for _, rec := range r.Recommendations.Constrained {
		constrained[rec.ActionType+"|"+rec.Target] = true
	}
	for _, rec := range r.Recommendations.Unconstrained {
		recommendations.rows = append(recommendations.rows, []any{
			rec.ActionType, rec.Target, rec.Category, RoundCurrency(rec.EstimatedSavings),
			rec.Reason, constrained[rec.ActionType+"|"+rec.Target],
		})
	}

	maverick := table{
		name:   "maverick_spend",
		header: []string{"supplier_name", "risk_level", "order_count", "total_spend"},
	}
	for _, row := range r.MaverickSpend {
		maverick.rows = append(maverick.rows, []any{
			row.SupplierName, row.RiskLevel, row.OrderCount, RoundCurrency(row.TotalSpend),
		})
	}

	return []table{categorySpend, performance, variance, scenarios, uncertainty, recommendations, maverick}
}

// WriteCSVDir writes one CSV file per derived table into dir.
func WriteCSVDir(dir string, r *services.Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, t := range tables(r) {
		path := filepath.Join(dir, t.name+".csv")
		if err := writeCSV(path, t); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

func writeCSV(path string, t table) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(t.header); err != nil {
		return err
	}
	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		if err := w.Write(cells); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Workbook builds one XLSX workbook with a sheet per derived table.
func Workbook(r *services.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	for i, t := range tables(r) {
		sheet := sheetName(t.name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}

		headerRow := make([]any, len(t.header))
		for j, h := range t.header {
			headerRow[j] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
			return nil, err
		}

		for j, row := range t.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

// WriteWorkbook streams the XLSX workbook to w.
func WriteWorkbook(w io.Writer, r *services.Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	return f.Write(w)
}

// Excel sheet names are capped at 31 characters.
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
