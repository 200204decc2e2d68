package services

import (
	"testing"
)

func TestGradeFor(t *testing.T) {
	tests := []struct {
		name      string
		otdPct    float64
		incidents int
		want      string
	}{
		{"perfect", 95, 0, "A"},
		{"A boundary", 90, 0, "A"},
		{"good with few incidents", 85, 2, "B"},
		{"B boundary", 80, 2, "B"},
		{"high OTD but too many incidents for B", 95, 3, "C"},
		{"low OTD saved by incident count", 60, 4, "C"},
		{"C via OTD alone", 70, 10, "C"},
		{"C via incidents alone", 10, 5, "C"},
		{"fails every rule", 60, 6, "D"},
		{"just under C on both axes", 69.9, 6, "D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gradeFor(tt.otdPct, tt.incidents); got != tt.want {
				t.Errorf("gradeFor(%.1f, %d) = %q, want %q", tt.otdPct, tt.incidents, got, tt.want)
			}
		})
	}
}

func TestBuildScorecard(t *testing.T) {
	rollups := map[string]*supplierRollup{
		"S001": {SupplierID: "S001", SupplierName: "Alpha", Category: "Raw Materials", Orders: 10, Spend: 5000, Delivered: 10, OnTime: 10},
		"S002": {SupplierID: "S002", SupplierName: "Beta", Category: "Raw Materials", Orders: 8, Spend: 9000, Delivered: 8, OnTime: 4, Incidents: 6},
		// Exactly at the order minimum: excluded, coverage is strict.
		"S003": {SupplierID: "S003", SupplierName: "Gamma", Category: "Packaging", Orders: 5, Spend: 100, Delivered: 5, OnTime: 5},
		// Above the minimum but no order has an actual delivery date.
		"S004": {SupplierID: "S004", SupplierName: "Delta", Category: "Chemicals", Orders: 7, Spend: 200, Delivered: 0},
	}

	result := buildScorecard(rollups, 5)

	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 graded suppliers, got %d", len(result.Rows))
	}
	if result.SkippedSuppliers != 1 {
		t.Errorf("skipped suppliers = %d, want 1", result.SkippedSuppliers)
	}

	// Sorted by spend descending: Beta (9000) before Alpha (5000).
	if result.Rows[0].SupplierName != "Beta" {
		t.Errorf("first row = %q, want Beta", result.Rows[0].SupplierName)
	}
	if !almostEqual(result.Rows[0].OnTimeDeliveryPct, 50, 0.001) {
		t.Errorf("Beta OTD = %.2f, want 50", result.Rows[0].OnTimeDeliveryPct)
	}
	if result.Rows[0].Grade != "D" {
		t.Errorf("Beta grade = %q, want D", result.Rows[0].Grade)
	}

	if result.Rows[1].SupplierName != "Alpha" {
		t.Errorf("second row = %q, want Alpha", result.Rows[1].SupplierName)
	}
	if result.Rows[1].Grade != "A" {
		t.Errorf("Alpha grade = %q, want A", result.Rows[1].Grade)
	}
}

func TestBuildScorecard_UndatedOrdersExcludedFromOTD(t *testing.T) {
	// 4 delivered of 6 orders, 3 on time: OTD is 75%, not 50%.
	rollups := map[string]*supplierRollup{
		"S001": {SupplierID: "S001", SupplierName: "Alpha", Orders: 6, Spend: 1000, Delivered: 4, OnTime: 3},
	}

	result := buildScorecard(rollups, 1)
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	if !almostEqual(result.Rows[0].OnTimeDeliveryPct, 75, 0.001) {
		t.Errorf("OTD = %.2f, want 75 (undated orders excluded from the ratio)", result.Rows[0].OnTimeDeliveryPct)
	}
}
