package services

import (
	"slices"
	"strings"

	"procurement-dashboard/internal/models"
)

// The grade cascade is an ordered rule list, first match wins. Order matters:
// a supplier at 95% OTD with 3 incidents falls through A and B and lands on
// the OR-based C rule, not D. Do not replace this with a weighted score.
var gradeRules = []struct {
	matches func(otdPct float64, incidents int) bool
	grade   string
}{
	{func(otd float64, n int) bool { return otd >= 90 && n == 0 }, "A"},
	{func(otd float64, n int) bool { return otd >= 80 && n <= 2 }, "B"},
	{func(otd float64, n int) bool { return otd >= 70 || n <= 5 }, "C"},
}

func gradeFor(otdPct float64, incidents int) string {
	for _, rule := range gradeRules {
		if rule.matches(otdPct, incidents) {
			return rule.grade
		}
	}
	return "D"
}

// ScorecardResult carries the performance rows plus the count of suppliers
// excluded because no order of theirs has an actual delivery date, which
// leaves the OTD ratio undefined.
type ScorecardResult struct {
	Rows             []models.SupplierPerformance
	SkippedSuppliers int
}

// buildScorecard grades every supplier with strictly more than minOrders
// orders. OTD counts orders delivered on or before the expected date among
// orders with a recorded actual delivery date; undated orders are excluded
// from both sides of the ratio.
func buildScorecard(rollups map[string]*supplierRollup, minOrders int) ScorecardResult {
	var result ScorecardResult

	for _, r := range rollups {
		if r.Orders <= minOrders {
			continue
		}
		if r.Delivered == 0 {
			result.SkippedSuppliers++
			continue
		}

		otdPct := float64(r.OnTime) / float64(r.Delivered) * 100

		row := models.SupplierPerformance{
			SupplierID:        r.SupplierID,
			SupplierName:      r.SupplierName,
			Category:          r.Category,
			Country:           r.Country,
			TotalOrders:       r.Orders,
			TotalSpend:        r.Spend,
			OnTimeDeliveryPct: otdPct,
			QualityIncidents:  r.Incidents,
			QualityCost:       r.QualityCost,
			Grade:             gradeFor(otdPct, r.Incidents),
		}
		if len(r.Severity) > 0 {
			row.IncidentSeverity = r.Severity
		}
		result.Rows = append(result.Rows, row)
	}

	slices.SortFunc(result.Rows, func(a, b models.SupplierPerformance) int {
		if a.TotalSpend != b.TotalSpend {
			if a.TotalSpend > b.TotalSpend {
				return -1
			}
			return 1
		}
		return strings.Compare(a.SupplierName, b.SupplierName)
	})

	return result
}
