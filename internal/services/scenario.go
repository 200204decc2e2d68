package services

import (
	"slices"

	"procurement-dashboard/internal/models"
)

// Scenario names are part of the output contract.
const (
	ScenarioPriceStandardization = "Price Standardization"
	ScenarioPerformance          = "Supplier Performance Improvement"
	ScenarioConsolidation        = "Supplier Consolidation"
	ScenarioTotal                = "Total Savings"
)

// ScenarioBase freezes the aggregates the scenario formulas are evaluated
// against. The Monte Carlo simulator re-evaluates the same formulas with
// substituted parameters and never touches the aggregation layer again.
type ScenarioBase struct {
	TotalSpend float64

	// Sum of every qualifying price-variance opportunity.
	PriceSavings float64

	// Quality cost and spend of suppliers with at least one incident.
	IncidentQualityCost   float64
	IncidentSupplierSpend float64

	// Spend in categories whose distinct-supplier count exceeds the
	// fragmentation threshold.
	FragmentedSpend float64
}

func buildScenarioBase(categorySpend []models.CategorySpend, rollups map[string]*supplierRollup,
	variance PriceVarianceResult, p Params) ScenarioBase {

	b := ScenarioBase{PriceSavings: totalPriceSavings(variance)}

	for _, row := range categorySpend {
		b.TotalSpend += row.TotalSpend
		if row.SupplierCount > p.FragmentationThreshold {
			b.FragmentedSpend += row.TotalSpend
		}
	}

	for _, r := range rollups {
		if r.Incidents >= 1 {
			b.IncidentQualityCost += r.QualityCost
			b.IncidentSupplierSpend += r.Spend
		}
	}

	return b
}

// evaluate recomputes the three component savings for the given parameter
// values. priceNoise is a multiplicative factor with nominal value 1.
func (b ScenarioBase) evaluate(penaltyRate, consolidationRate, priceNoise float64) (price, perf, cons float64) {
	price = b.PriceSavings * priceNoise
	perf = b.IncidentQualityCost + b.IncidentSupplierSpend*penaltyRate
	cons = b.FragmentedSpend * consolidationRate
	return price, perf, cons
}

func (b ScenarioBase) pctOfSpend(savings float64) float64 {
	if b.TotalSpend <= 0 {
		return 0
	}
	return savings / b.TotalSpend * 100
}

// buildScenarios produces the three named scenarios at nominal parameters
// plus the Total Savings row, which is their exact arithmetic sum.
func buildScenarios(b ScenarioBase, p Params) []models.SavingsScenario {
	price, perf, cons := b.evaluate(p.DeliveryPenaltyRate, p.ConsolidationRate, 1.0)
	total := price + perf + cons

	return []models.SavingsScenario{
		{Name: ScenarioPriceStandardization, TotalSavings: price, SavingsPctOfSpend: b.pctOfSpend(price)},
		{Name: ScenarioPerformance, TotalSavings: perf, SavingsPctOfSpend: b.pctOfSpend(perf)},
		{Name: ScenarioConsolidation, TotalSavings: cons, SavingsPctOfSpend: b.pctOfSpend(cons)},
		{Name: ScenarioTotal, TotalSavings: total, SavingsPctOfSpend: b.pctOfSpend(total)},
	}
}

// Sensitivity multipliers applied uniformly to the three components.
var sensitivityFactors = []struct {
	name   string
	factor float64
}{
	{"Conservative", 0.8},
	{"Base", 1.0},
	{"Aggressive", 1.2},
}

// buildSensitivity reports total savings under conservative, base, and
// aggressive realizations of the component estimates, lowest total first.
func buildSensitivity(b ScenarioBase, p Params) []models.SavingsScenario {
	price, perf, cons := b.evaluate(p.DeliveryPenaltyRate, p.ConsolidationRate, 1.0)

	rows := make([]models.SavingsScenario, 0, len(sensitivityFactors))
	for _, s := range sensitivityFactors {
		total := (price + perf + cons) * s.factor
		rows = append(rows, models.SavingsScenario{
			Name:              s.name,
			TotalSavings:      total,
			SavingsPctOfSpend: b.pctOfSpend(total),
		})
	}

	slices.SortFunc(rows, func(a, b models.SavingsScenario) int {
		switch {
		case a.TotalSavings < b.TotalSavings:
			return -1
		case a.TotalSavings > b.TotalSavings:
			return 1
		default:
			return 0
		}
	})

	return rows
}
