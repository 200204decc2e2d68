// Package services is the savings analytics engine: a one-directional
// pipeline from the record snapshot through aggregation, price-variance
// detection, and supplier scoring into scenarios, a Monte Carlo uncertainty
// envelope, and a constrained recommendation list. Every stage is a pure
// function of its declared inputs; Analytics only sequences them and caches
// the result.
package services

import (
	"context"
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"procurement-dashboard/internal/config"
	"procurement-dashboard/internal/loader"
	"procurement-dashboard/internal/models"
	"procurement-dashboard/internal/store"
)

const (
	cacheVersion = "v1"
	cacheDir     = ".cache"
)

// Report is one complete analysis run. All fields are derived values owned by
// whoever holds the report; nothing points back into the snapshot.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	OrderCount int     `json:"order_count"`
	TotalSpend float64 `json:"total_spend"`

	CategorySpend       []models.CategorySpend            `json:"category_spend"`
	SupplierPerformance []models.SupplierPerformance      `json:"supplier_performance"`
	SkippedSuppliers    int                               `json:"skipped_suppliers"`
	PriceVariance       []models.PriceVarianceOpportunity `json:"price_variance"`
	SkippedPairs        int                               `json:"skipped_pairs"`
	Scenarios           []models.SavingsScenario          `json:"scenarios"`
	Sensitivity         []models.SavingsScenario          `json:"sensitivity"`
	Uncertainty         models.UncertaintyEnvelope        `json:"uncertainty"`
	Recommendations     Recommendations                   `json:"recommendations"`
	MaverickSpend       []models.MaverickSpend            `json:"maverick_spend"`
	MaverickTotal       float64                           `json:"maverick_total"`
}

type Analytics struct {
	mu      sync.RWMutex
	report  *Report
	params  Params
	dataKey string
	logger  *slog.Logger
}

// NewAnalytics validates the engine parameters up front; out-of-range
// thresholds are rejected before any computation starts.
func NewAnalytics(params Params, logger *slog.Logger) (*Analytics, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		report: &Report{},
		params: params,
		logger: logger,
	}, nil
}

// Analyze runs the full pipeline over one snapshot and swaps in the result.
func (a *Analytics) Analyze(ctx context.Context, snap *store.Snapshot) error {
	start := time.Now()

	report, err := a.compute(ctx, snap)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.report = report
	a.mu.Unlock()

	a.logger.Info("analysis complete",
		"run_id", report.RunID,
		"orders", report.OrderCount,
		"total_spend", report.TotalSpend,
		"opportunities", len(report.PriceVariance),
		"duration", time.Since(start),
	)
	return nil
}

func (a *Analytics) compute(ctx context.Context, snap *store.Snapshot) (*Report, error) {
	categorySpend := computeCategorySpend(snap)
	rollups := computeSupplierRollups(snap)

	variance := detectPriceVariance(snap, a.params.VarianceThresholdPct)
	scorecard := buildScorecard(rollups, a.params.MinSupplierOrders)

	base := buildScenarioBase(categorySpend, rollups, variance, a.params)

	uncertainty, err := simulateUncertainty(ctx, base, a.params)
	if err != nil {
		return nil, err
	}

	maverick, maverickTotal := computeMaverickSpend(snap)

	return &Report{
		RunID:               uuid.New().String(),
		GeneratedAt:         time.Now(),
		OrderCount:          len(snap.Orders()),
		TotalSpend:          base.TotalSpend,
		CategorySpend:       categorySpend,
		SupplierPerformance: scorecard.Rows,
		SkippedSuppliers:    scorecard.SkippedSuppliers,
		PriceVariance:       topOpportunities(variance, a.params.TopOpportunities),
		SkippedPairs:        variance.SkippedPairs,
		Scenarios:           buildScenarios(base, a.params),
		Sensitivity:         buildSensitivity(base, a.params),
		Uncertainty:         uncertainty,
		Recommendations:     buildRecommendations(variance, rollups, categorySpend, a.params),
		MaverickSpend:       maverick,
		MaverickTotal:       maverickTotal,
	}, nil
}

// LoadFromCSV ingests the snapshot files and analyzes them, reusing a cached
// report when none of the files changed since it was written.
func (a *Analytics) LoadFromCSV(ctx context.Context, cfg config.DataConfig) error {
	a.dataKey = cacheKey(cfg, a.params)

	if cached, err := a.loadFromCache(); err == nil {
		if newest, err := loader.NewestModTime(cfg); err == nil && newest.Before(cached.GeneratedAt) {
			a.mu.Lock()
			a.report = cached
			a.mu.Unlock()
			a.logger.Info("loaded analysis from cache", "run_id", cached.RunID, "orders", cached.OrderCount)
			return nil
		}
	}

	snap, _, err := loader.Load(ctx, a.logger, cfg)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if err := a.Analyze(ctx, snap); err != nil {
		return err
	}

	if err := a.saveToCache(); err != nil {
		a.logger.Warn("failed to save analysis cache", "error", err)
	}
	return nil
}

// cacheKey folds every input that shapes the report into the filename, so a
// changed threshold, seed, or file path invalidates the cache even when the
// data files themselves are untouched.
func cacheKey(cfg config.DataConfig, p Params) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s|%+v",
		cfg.SuppliersFile, cfg.MaterialsFile, cfg.OrdersFile, cfg.IncidentsFile, p)
	return fmt.Sprintf("%016x", h.Sum64())
}

func (a *Analytics) cacheFilename() string {
	return fmt.Sprintf("%s/report_%s_%s.gob", cacheDir, a.dataKey, cacheVersion)
}

func (a *Analytics) saveToCache() error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(a.cacheFilename())
	if err != nil {
		return err
	}
	defer file.Close()

	a.mu.RLock()
	defer a.mu.RUnlock()
	return gob.NewEncoder(file).Encode(a.report)
}

func (a *Analytics) loadFromCache() (*Report, error) {
	file, err := os.Open(a.cacheFilename())
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var report Report
	if err := gob.NewDecoder(file).Decode(&report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Query methods return slices of the current report; treat them as read-only.

func (a *Analytics) CategorySpend() []models.CategorySpend {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.report.CategorySpend
}

func (a *Analytics) SupplierPerformance() []models.SupplierPerformance {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.report.SupplierPerformance
}

func (a *Analytics) PriceVariance(limit int) []models.PriceVarianceOpportunity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if limit > 0 && len(a.report.PriceVariance) > limit {
		return a.report.PriceVariance[:limit]
	}
	return a.report.PriceVariance
}

func (a *Analytics) Scenarios() []models.SavingsScenario {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.report.Scenarios
}

func (a *Analytics) Sensitivity() []models.SavingsScenario {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.report.Sensitivity
}

func (a *Analytics) Uncertainty() models.UncertaintyEnvelope {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.report.Uncertainty
}

func (a *Analytics) Recommendations(constrained bool) []models.OptimizationRecommendation {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if constrained {
		return a.report.Recommendations.Constrained
	}
	return a.report.Recommendations.Unconstrained
}

func (a *Analytics) MaverickSpend() []models.MaverickSpend {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.report.MaverickSpend
}

// Report returns the whole current report for exporters.
func (a *Analytics) Report() *Report {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.report
}

// Stats summarizes the current report for monitoring.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"run_id":            a.report.RunID,
		"generated_at":      a.report.GeneratedAt,
		"order_count":       a.report.OrderCount,
		"total_spend":       a.report.TotalSpend,
		"categories":        len(a.report.CategorySpend),
		"suppliers_graded":  len(a.report.SupplierPerformance),
		"skipped_suppliers": a.report.SkippedSuppliers,
		"opportunities":     len(a.report.PriceVariance),
		"skipped_pairs":     a.report.SkippedPairs,
		"mc_trials":         a.report.Uncertainty.Trials,
	}
}
