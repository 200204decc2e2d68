package services

import (
	"procurement-dashboard/internal/config"
	apperrors "procurement-dashboard/internal/errors"
)

// Params are the tunable thresholds of the savings engine. Every constant the
// underlying model assumes (consolidation rate, perturbation spread, and so
// on) lives here rather than in the formulas.
type Params struct {
	// Scorecard covers suppliers with strictly more than this many orders.
	MinSupplierOrders int

	// A (material, category) pair qualifies as an opportunity only above
	// this cross-supplier price variance, in percent.
	VarianceThresholdPct float64

	// Size of the externally consumed price-variance slice.
	TopOpportunities int

	// Estimated extra cost of late deliveries, as a fraction of spend.
	DeliveryPenaltyRate float64

	// Assumed savings fraction of spend in fragmented categories.
	ConsolidationRate float64

	// Categories with strictly more distinct suppliers than this are
	// considered fragmented.
	FragmentationThreshold int

	// Monte Carlo trial count, seed, and the half-width of the symmetric
	// perturbation band around each nominal parameter (0.20 = ±20%).
	Trials             int
	Seed               int64
	PerturbationSpread float64

	// Total recommendation budget, split across the two action types.
	MaxRecommendations int
}

func DefaultParams() Params {
	return Params{
		MinSupplierOrders:      5,
		VarianceThresholdPct:   10,
		TopOpportunities:       20,
		DeliveryPenaltyRate:    0.03,
		ConsolidationRate:      0.05,
		FragmentationThreshold: 10,
		Trials:                 1000,
		Seed:                   42,
		PerturbationSpread:     0.20,
		MaxRecommendations:     10,
	}
}

func ParamsFromConfig(cfg config.AnalysisConfig) Params {
	return Params{
		MinSupplierOrders:      cfg.MinSupplierOrders,
		VarianceThresholdPct:   cfg.VarianceThresholdPct,
		TopOpportunities:       cfg.TopOpportunities,
		DeliveryPenaltyRate:    cfg.DeliveryPenaltyRate,
		ConsolidationRate:      cfg.ConsolidationRate,
		FragmentationThreshold: cfg.FragmentationThreshold,
		Trials:                 cfg.Trials,
		Seed:                   cfg.Seed,
		PerturbationSpread:     cfg.PerturbationSpread,
		MaxRecommendations:     cfg.MaxRecommendations,
	}
}

// Validate rejects out-of-range thresholds before any computation starts.
func (p Params) Validate() error {
	if p.MinSupplierOrders < 0 {
		return apperrors.Configuration("minimum supplier orders must not be negative, got %d", p.MinSupplierOrders)
	}
	if p.VarianceThresholdPct < 0 {
		return apperrors.Configuration("variance threshold must not be negative, got %.2f", p.VarianceThresholdPct)
	}
	if p.TopOpportunities <= 0 {
		return apperrors.Configuration("top opportunity count must be positive, got %d", p.TopOpportunities)
	}
	if p.DeliveryPenaltyRate < 0 || p.DeliveryPenaltyRate > 1 {
		return apperrors.Configuration("delivery penalty rate must be in [0, 1], got %.4f", p.DeliveryPenaltyRate)
	}
	if p.ConsolidationRate < 0 || p.ConsolidationRate > 1 {
		return apperrors.Configuration("consolidation rate must be in [0, 1], got %.4f", p.ConsolidationRate)
	}
	if p.FragmentationThreshold <= 1 {
		return apperrors.Configuration("fragmentation threshold must be greater than 1, got %d", p.FragmentationThreshold)
	}
	if p.Trials < 2 {
		return apperrors.Configuration("trial count must be at least 2, got %d", p.Trials)
	}
	if p.PerturbationSpread <= 0 || p.PerturbationSpread >= 1 {
		return apperrors.Configuration("perturbation spread must be in (0, 1), got %.4f", p.PerturbationSpread)
	}
	if p.MaxRecommendations <= 0 {
		return apperrors.Configuration("recommendation budget must be positive, got %d", p.MaxRecommendations)
	}
	return nil
}
