package services

import (
	"slices"
	"strings"

	"procurement-dashboard/internal/models"
	"procurement-dashboard/internal/store"
)

// computeCategorySpend rolls the ledger up by category. Percentages use the
// grand total spend across all orders; with no orders there are no groups and
// the table is empty rather than divided by zero. Output is sorted by total
// spend descending, category ascending on ties, so runs are deterministic.
func computeCategorySpend(snap *store.Snapshot) []models.CategorySpend {
	type accum struct {
		orders    int
		spend     float64
		suppliers map[string]struct{}
	}

	groups := make(map[string]*accum)
	var grandTotal float64

	for _, po := range snap.Orders() {
		g := groups[po.Category]
		if g == nil {
			g = &accum{suppliers: make(map[string]struct{})}
			groups[po.Category] = g
		}
		g.orders++
		g.spend += po.TotalAmount
		g.suppliers[po.SupplierID] = struct{}{}
		grandTotal += po.TotalAmount
	}

	result := make([]models.CategorySpend, 0, len(groups))
	for category, g := range groups {
		row := models.CategorySpend{
			Category:      category,
			OrderCount:    g.orders,
			TotalSpend:    g.spend,
			AvgOrderValue: g.spend / float64(g.orders),
			SupplierCount: len(g.suppliers),
		}
		if grandTotal > 0 {
			row.PctOfTotal = g.spend / grandTotal * 100
		}
		result = append(result, row)
	}

	slices.SortFunc(result, func(a, b models.CategorySpend) int {
		if a.TotalSpend != b.TotalSpend {
			if a.TotalSpend > b.TotalSpend {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Category, b.Category)
	})

	return result
}

// supplierRollup is the per-supplier accumulator shared by the scorecard, the
// scenario modeler, and the recommender. Delivered counts only orders with a
// recorded actual delivery date.
type supplierRollup struct {
	SupplierID   string
	SupplierName string
	Category     string
	Country      string

	Orders    int
	Spend     float64
	Delivered int
	OnTime    int

	Incidents   int
	Severity    map[string]int
	QualityCost float64
}

func computeSupplierRollups(snap *store.Snapshot) map[string]*supplierRollup {
	rollups := make(map[string]*supplierRollup)

	for _, sup := range snap.Suppliers() {
		orders := snap.OrdersBySupplier(sup.SupplierID)
		if len(orders) == 0 {
			continue
		}

		r := &supplierRollup{
			SupplierID:   sup.SupplierID,
			SupplierName: sup.SupplierName,
			Category:     sup.Category,
			Country:      sup.Country,
			Severity:     make(map[string]int),
		}

		for _, po := range orders {
			r.Orders++
			r.Spend += po.TotalAmount
			if po.ActualDelivery != nil {
				r.Delivered++
				if po.DeliveredOnTime() {
					r.OnTime++
				}
			}
		}

		for _, qi := range snap.IncidentsBySupplier(sup.SupplierID) {
			r.Incidents++
			r.Severity[qi.Severity]++
			r.QualityCost += qi.CostImpact
		}

		rollups[sup.SupplierID] = r
	}

	return rollups
}

// computeMaverickSpend totals purchase volume routed to unapproved or
// high-risk suppliers, largest first.
func computeMaverickSpend(snap *store.Snapshot) ([]models.MaverickSpend, float64) {
	var rows []models.MaverickSpend
	var total float64

	for _, sup := range snap.Suppliers() {
		if sup.IsApproved && sup.RiskLevel != models.LevelHigh {
			continue
		}
		orders := snap.OrdersBySupplier(sup.SupplierID)
		if len(orders) == 0 {
			continue
		}

		row := models.MaverickSpend{
			SupplierName: sup.SupplierName,
			RiskLevel:    sup.RiskLevel,
			OrderCount:   len(orders),
		}
		for _, po := range orders {
			row.TotalSpend += po.TotalAmount
		}
		rows = append(rows, row)
		total += row.TotalSpend
	}

	slices.SortFunc(rows, func(a, b models.MaverickSpend) int {
		if a.TotalSpend != b.TotalSpend {
			if a.TotalSpend > b.TotalSpend {
				return -1
			}
			return 1
		}
		return strings.Compare(a.SupplierName, b.SupplierName)
	})

	return rows, total
}
