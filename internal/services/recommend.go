package services

import (
	"fmt"
	"slices"
	"strings"

	"procurement-dashboard/internal/models"
)

const (
	ActionRenegotiatePrice = "Renegotiate Price"
	ActionReplaceSupplier  = "Replace Supplier"
)

// Replacement candidates must be performing this badly before they are worth
// the switching cost.
const (
	replaceOTDCeiling    = 70.0
	replaceIncidentFloor = 3
)

// Recommendations holds both variants of the action list. The unconstrained
// list ranks purely by estimated savings; the constrained list additionally
// drops any supplier replacement that would leave a category single-sourced.
type Recommendations struct {
	Unconstrained []models.OptimizationRecommendation `json:"unconstrained"`
	Constrained   []models.OptimizationRecommendation `json:"constrained"`
}

// buildRecommendations merges the two independently ranked action types under
// the total budget, split evenly between them. Every action targets a real
// row of the variance table or the scorecard rollups, never a synthesized
// entity.
func buildRecommendations(variance PriceVarianceResult, rollups map[string]*supplierRollup,
	categorySpend []models.CategorySpend, p Params) Recommendations {

	perType := p.MaxRecommendations / 2
	if perType < 1 {
		perType = 1
	}

	priceActions := renegotiateActions(variance, perType)

	replacements := replacementCandidates(rollups, p.MinSupplierOrders, p.DeliveryPenaltyRate)

	suppliersInCategory := make(map[string]int, len(categorySpend))
	for _, row := range categorySpend {
		suppliersInCategory[row.Category] = row.SupplierCount
	}

	constrained := make([]models.OptimizationRecommendation, 0, len(replacements))
	for _, rec := range replacements {
		// Removing the last-but-one supplier would single-source the category.
		if suppliersInCategory[rec.Category]-1 >= 2 {
			constrained = append(constrained, rec)
		}
	}

	return Recommendations{
		Unconstrained: mergeActions(priceActions, capActions(replacements, perType), p.MaxRecommendations),
		Constrained:   mergeActions(priceActions, capActions(constrained, perType), p.MaxRecommendations),
	}
}

func renegotiateActions(variance PriceVarianceResult, limit int) []models.OptimizationRecommendation {
	actions := make([]models.OptimizationRecommendation, 0, limit)
	for _, opp := range topOpportunities(variance, limit) {
		actions = append(actions, models.OptimizationRecommendation{
			ActionType:       ActionRenegotiatePrice,
			Target:           opp.MaterialName,
			Category:         opp.Category,
			EstimatedSavings: opp.PotentialSavings,
			Reason: fmt.Sprintf("%d suppliers quote a %.1f%% price spread; current average %.2f vs best %.2f",
				opp.SupplierCount, opp.VariancePct, opp.AvgPrice, opp.MinPrice),
		})
	}
	return actions
}

// replacementCandidates ranks poorly performing suppliers by what replacing
// them is worth: their quality cost plus the late-delivery penalty on their
// spend. Only suppliers the scorecard grades can be candidates, so the same
// order-count and computable-OTD filters apply here.
func replacementCandidates(rollups map[string]*supplierRollup, minOrders int, penaltyRate float64) []models.OptimizationRecommendation {
	var candidates []models.OptimizationRecommendation

	for _, r := range rollups {
		if r.Orders <= minOrders || r.Delivered == 0 {
			continue
		}
		otdPct := float64(r.OnTime) / float64(r.Delivered) * 100
		if otdPct >= replaceOTDCeiling || r.Incidents <= replaceIncidentFloor {
			continue
		}

		candidates = append(candidates, models.OptimizationRecommendation{
			ActionType:       ActionReplaceSupplier,
			Target:           r.SupplierName,
			Category:         r.Category,
			EstimatedSavings: r.QualityCost + r.Spend*penaltyRate,
			Reason: fmt.Sprintf("%.1f%% on-time delivery with %d quality incidents",
				otdPct, r.Incidents),
		})
	}

	sortActions(candidates)
	return candidates
}

func capActions(actions []models.OptimizationRecommendation, limit int) []models.OptimizationRecommendation {
	if len(actions) <= limit {
		return actions
	}
	return actions[:limit]
}

func mergeActions(a, b []models.OptimizationRecommendation, limit int) []models.OptimizationRecommendation {
	merged := make([]models.OptimizationRecommendation, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sortActions(merged)
	return capActions(merged, limit)
}

func sortActions(actions []models.OptimizationRecommendation) {
	slices.SortFunc(actions, func(a, b models.OptimizationRecommendation) int {
		if a.EstimatedSavings != b.EstimatedSavings {
			if a.EstimatedSavings > b.EstimatedSavings {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Target, b.Target)
	})
}
