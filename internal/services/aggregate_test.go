package services

import (
	"testing"

	"procurement-dashboard/internal/models"
)

func TestComputeCategorySpend(t *testing.T) {
	snap := testSnapshot(t)
	result := computeCategorySpend(snap)

	if len(result) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(result))
	}

	// Per-category spend must add up to the grand total.
	var sum, pctSum float64
	for _, row := range result {
		sum += row.TotalSpend
		pctSum += row.PctOfTotal
	}
	if !almostEqual(sum, snap.TotalSpend(), 0.01) {
		t.Errorf("category spend sums to %.2f, want grand total %.2f", sum, snap.TotalSpend())
	}
	if !almostEqual(pctSum, 100, 0.01) {
		t.Errorf("percentages sum to %.2f, want 100", pctSum)
	}

	// Sorted by spend descending.
	for i := 1; i < len(result); i++ {
		if result[i].TotalSpend > result[i-1].TotalSpend {
			t.Errorf("rows not sorted by spend descending at index %d", i)
		}
	}

	// Raw Materials is the biggest category: 1000 + 1100 + 1300.
	top := result[0]
	if top.Category != "Raw Materials" {
		t.Errorf("top category = %q, want Raw Materials", top.Category)
	}
	if top.OrderCount != 3 {
		t.Errorf("Raw Materials order count = %d, want 3", top.OrderCount)
	}
	if top.SupplierCount != 3 {
		t.Errorf("Raw Materials supplier count = %d, want 3", top.SupplierCount)
	}
	if !almostEqual(top.TotalSpend, 3400, 0.01) {
		t.Errorf("Raw Materials spend = %.2f, want 3400", top.TotalSpend)
	}
	if !almostEqual(top.AvgOrderValue, 3400.0/3, 0.01) {
		t.Errorf("Raw Materials avg order value = %.2f, want %.2f", top.AvgOrderValue, 3400.0/3)
	}
}

func TestComputeCategorySpend_Empty(t *testing.T) {
	snap := mustSnapshot(t, []models.Supplier{
		{SupplierID: "S001", SupplierName: "Alpha", Category: "Raw Materials", RiskLevel: models.LevelLow},
	}, nil, nil, nil)

	result := computeCategorySpend(snap)
	if len(result) != 0 {
		t.Errorf("expected empty category table with no orders, got %d rows", len(result))
	}
}

func TestComputeSupplierRollups(t *testing.T) {
	snap := testSnapshot(t)
	rollups := computeSupplierRollups(snap)

	// S004 placed one order; suppliers without orders are absent entirely.
	if _, ok := rollups["S004"]; !ok {
		t.Error("S004 should have a rollup")
	}

	zeta := rollups["S006"]
	if zeta == nil {
		t.Fatal("S006 should have a rollup")
	}
	if zeta.Orders != 5 {
		t.Errorf("S006 orders = %d, want 5", zeta.Orders)
	}
	if zeta.Delivered != 5 {
		t.Errorf("S006 delivered = %d, want 5", zeta.Delivered)
	}
	if zeta.OnTime != 2 {
		t.Errorf("S006 on-time = %d, want 2", zeta.OnTime)
	}
	if zeta.Incidents != 4 {
		t.Errorf("S006 incidents = %d, want 4", zeta.Incidents)
	}
	if !almostEqual(zeta.QualityCost, 750, 0.01) {
		t.Errorf("S006 quality cost = %.2f, want 750", zeta.QualityCost)
	}
	if zeta.Severity[models.LevelMedium] != 2 {
		t.Errorf("S006 medium severity count = %d, want 2", zeta.Severity[models.LevelMedium])
	}

	// S004's single order has no actual delivery date.
	delta := rollups["S004"]
	if delta.Delivered != 0 {
		t.Errorf("S004 delivered = %d, want 0", delta.Delivered)
	}
}

func TestComputeMaverickSpend(t *testing.T) {
	snap := testSnapshot(t)
	rows, total := computeMaverickSpend(snap)

	// S004 is unapproved, S005 is high risk. Everyone else is clean.
	if len(rows) != 2 {
		t.Fatalf("expected 2 maverick suppliers, got %d", len(rows))
	}

	// Sorted by spend descending: Epsilon Chem (1800) before Delta Packaging (0).
	if rows[0].SupplierName != "Epsilon Chem" {
		t.Errorf("top maverick = %q, want Epsilon Chem", rows[0].SupplierName)
	}
	if !almostEqual(rows[0].TotalSpend, 1800, 0.01) {
		t.Errorf("Epsilon Chem maverick spend = %.2f, want 1800", rows[0].TotalSpend)
	}
	if rows[1].SupplierName != "Delta Packaging" {
		t.Errorf("second maverick = %q, want Delta Packaging", rows[1].SupplierName)
	}
	if !almostEqual(total, 1800, 0.01) {
		t.Errorf("maverick total = %.2f, want 1800", total)
	}
}
