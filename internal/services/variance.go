package services

import (
	"slices"
	"strings"

	"procurement-dashboard/internal/models"
	"procurement-dashboard/internal/store"
)

// PriceVarianceResult is the full opportunity table plus the count of pairs
// excluded because a zero minimum price makes the variance undefined. The
// exclusion is counted, not zeroed, so callers can observe it.
type PriceVarianceResult struct {
	Opportunities []models.PriceVarianceOpportunity
	SkippedPairs  int
}

// detectPriceVariance computes cross-supplier price dispersion per
// (material name, category) pair. A pair qualifies only with more than one
// distinct supplier and a variance above thresholdPct. Potential savings is
// what the pair's spend would shrink by at the minimum observed price:
// spend * (avg - min) / avg.
func detectPriceVariance(snap *store.Snapshot, thresholdPct float64) PriceVarianceResult {
	type accum struct {
		material  string
		category  string
		suppliers map[string]struct{}
		minPrice  float64
		maxPrice  float64
		priceSum  float64
		orders    int
		spend     float64
	}

	groups := make(map[string]*accum)

	for _, po := range snap.Orders() {
		key := po.MaterialName + "|" + po.Category
		g := groups[key]
		if g == nil {
			g = &accum{
				material:  po.MaterialName,
				category:  po.Category,
				suppliers: make(map[string]struct{}),
				minPrice:  po.UnitPrice,
				maxPrice:  po.UnitPrice,
			}
			groups[key] = g
		}
		g.suppliers[po.SupplierID] = struct{}{}
		g.minPrice = min(g.minPrice, po.UnitPrice)
		g.maxPrice = max(g.maxPrice, po.UnitPrice)
		g.priceSum += po.UnitPrice
		g.orders++
		g.spend += po.TotalAmount
	}

	var result PriceVarianceResult

	for _, g := range groups {
		if len(g.suppliers) <= 1 {
			continue
		}
		if g.minPrice <= 0 {
			// Variance over a zero floor is undefined, not zero.
			result.SkippedPairs++
			continue
		}

		avgPrice := g.priceSum / float64(g.orders)
		variancePct := (g.maxPrice - g.minPrice) / g.minPrice * 100
		if variancePct <= thresholdPct {
			continue
		}

		result.Opportunities = append(result.Opportunities, models.PriceVarianceOpportunity{
			MaterialName:     g.material,
			Category:         g.category,
			SupplierCount:    len(g.suppliers),
			MinPrice:         g.minPrice,
			AvgPrice:         avgPrice,
			MaxPrice:         g.maxPrice,
			VariancePct:      variancePct,
			PotentialSavings: g.spend * (avgPrice - g.minPrice) / avgPrice,
			TotalSpend:       g.spend,
		})
	}

	slices.SortFunc(result.Opportunities, func(a, b models.PriceVarianceOpportunity) int {
		if a.PotentialSavings != b.PotentialSavings {
			if a.PotentialSavings > b.PotentialSavings {
				return -1
			}
			return 1
		}
		return strings.Compare(a.MaterialName, b.MaterialName)
	})

	return result
}

// topOpportunities is the externally consumed slice of the variance table.
func topOpportunities(res PriceVarianceResult, n int) []models.PriceVarianceOpportunity {
	if len(res.Opportunities) <= n {
		return res.Opportunities
	}
	return res.Opportunities[:n]
}

// totalPriceSavings sums every qualifying opportunity, not just the top-N
// view; the scenario modeler works on the full table.
func totalPriceSavings(res PriceVarianceResult) float64 {
	var total float64
	for _, opp := range res.Opportunities {
		total += opp.PotentialSavings
	}
	return total
}
