package services

import (
	"testing"
	"time"

	"procurement-dashboard/internal/models"
	"procurement-dashboard/internal/store"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y, m, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func mustSnapshot(t *testing.T, suppliers []models.Supplier, materials []models.Material,
	orders []models.PurchaseOrder, incidents []models.QualityIncident) *store.Snapshot {
	t.Helper()
	snap, err := store.New(suppliers, materials, orders, incidents)
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}
	return snap
}

// testSnapshot builds a small but complete procurement snapshot:
//   - three steel suppliers quoting 100/110/130 for the same coil
//   - a single-supplier solvent pair with a wide internal spread
//   - a packaging pair where one supplier quotes a zero price
//   - one poorly performing components supplier with four incidents
//   - one unapproved and one high-risk supplier
func testSnapshot(t *testing.T) *store.Snapshot {
	t.Helper()

	suppliers := []models.Supplier{
		{SupplierID: "S001", SupplierName: "Alpha Steel", Category: "Raw Materials", Country: "Germany", QualityRating: 4.5, IsApproved: true, RiskLevel: models.LevelLow},
		{SupplierID: "S002", SupplierName: "Beta Steel", Category: "Raw Materials", Country: "Poland", QualityRating: 4.0, IsApproved: true, RiskLevel: models.LevelLow},
		{SupplierID: "S003", SupplierName: "Gamma Steel", Category: "Raw Materials", Country: "Czechia", QualityRating: 3.8, IsApproved: true, RiskLevel: models.LevelMedium},
		{SupplierID: "S004", SupplierName: "Delta Packaging", Category: "Packaging", Country: "France", QualityRating: 3.0, IsApproved: false, RiskLevel: models.LevelMedium},
		{SupplierID: "S005", SupplierName: "Epsilon Chem", Category: "Chemicals", Country: "Spain", QualityRating: 3.5, IsApproved: true, RiskLevel: models.LevelHigh},
		{SupplierID: "S006", SupplierName: "Zeta Parts", Category: "Components", Country: "Italy", QualityRating: 2.5, IsApproved: true, RiskLevel: models.LevelLow},
	}

	materials := []models.Material{
		{MaterialID: "M001", MaterialName: "Steel Coil", Category: "Raw Materials", UnitOfMeasure: "kg", StandardPrice: 110, LeadTimeDays: 14},
		{MaterialID: "M002", MaterialName: "Carton Box", Category: "Packaging", UnitOfMeasure: "pcs", StandardPrice: 10, LeadTimeDays: 7},
		{MaterialID: "M003", MaterialName: "Solvent", Category: "Chemicals", UnitOfMeasure: "l", StandardPrice: 60, LeadTimeDays: 10},
		{MaterialID: "M004", MaterialName: "Bearing", Category: "Components", UnitOfMeasure: "pcs", StandardPrice: 20, LeadTimeDays: 21},
	}

	orders := []models.PurchaseOrder{
		// Steel Coil quoted by three suppliers: min 100, avg 113.33, max 130.
		{PONumber: "PO-1001", OrderDate: date(2024, 1, 5), SupplierID: "S001", SupplierName: "Alpha Steel", MaterialID: "M001", MaterialName: "Steel Coil", Category: "Raw Materials", Quantity: 10, UnitPrice: 100, TotalAmount: 1000, ExpectedDelivery: date(2024, 2, 1), ActualDelivery: datePtr(2024, 1, 30)},
		{PONumber: "PO-1002", OrderDate: date(2024, 1, 6), SupplierID: "S002", SupplierName: "Beta Steel", MaterialID: "M001", MaterialName: "Steel Coil", Category: "Raw Materials", Quantity: 10, UnitPrice: 110, TotalAmount: 1100, ExpectedDelivery: date(2024, 2, 5), ActualDelivery: datePtr(2024, 2, 7)},
		{PONumber: "PO-1003", OrderDate: date(2024, 1, 7), SupplierID: "S003", SupplierName: "Gamma Steel", MaterialID: "M001", MaterialName: "Steel Coil", Category: "Raw Materials", Quantity: 10, UnitPrice: 130, TotalAmount: 1300, ExpectedDelivery: date(2024, 2, 10), ActualDelivery: datePtr(2024, 2, 10)},

		// Solvent bought twice from the same supplier; wide spread but one source.
		{PONumber: "PO-1004", OrderDate: date(2024, 1, 8), SupplierID: "S005", SupplierName: "Epsilon Chem", MaterialID: "M003", MaterialName: "Solvent", Category: "Chemicals", Quantity: 20, UnitPrice: 50, TotalAmount: 1000, ExpectedDelivery: date(2024, 2, 1), ActualDelivery: datePtr(2024, 1, 28)},
		{PONumber: "PO-1005", OrderDate: date(2024, 1, 9), SupplierID: "S005", SupplierName: "Epsilon Chem", MaterialID: "M003", MaterialName: "Solvent", Category: "Chemicals", Quantity: 10, UnitPrice: 80, TotalAmount: 800, ExpectedDelivery: date(2024, 2, 5), ActualDelivery: datePtr(2024, 2, 8)},

		// Carton Box: two suppliers, but the minimum quote is zero.
		{PONumber: "PO-1006", OrderDate: date(2024, 1, 10), SupplierID: "S004", SupplierName: "Delta Packaging", MaterialID: "M002", MaterialName: "Carton Box", Category: "Packaging", Quantity: 5, UnitPrice: 0, TotalAmount: 0, ExpectedDelivery: date(2024, 2, 1)},
		{PONumber: "PO-1007", OrderDate: date(2024, 1, 11), SupplierID: "S002", SupplierName: "Beta Steel", MaterialID: "M002", MaterialName: "Carton Box", Category: "Packaging", Quantity: 10, UnitPrice: 10, TotalAmount: 100, ExpectedDelivery: date(2024, 2, 1), ActualDelivery: datePtr(2024, 1, 31)},

		// Bearings from Zeta Parts: five orders, two on time, three late.
		{PONumber: "PO-1008", OrderDate: date(2024, 1, 12), SupplierID: "S006", SupplierName: "Zeta Parts", MaterialID: "M004", MaterialName: "Bearing", Category: "Components", Quantity: 10, UnitPrice: 20, TotalAmount: 200, ExpectedDelivery: date(2024, 2, 1), ActualDelivery: datePtr(2024, 1, 31)},
		{PONumber: "PO-1009", OrderDate: date(2024, 1, 13), SupplierID: "S006", SupplierName: "Zeta Parts", MaterialID: "M004", MaterialName: "Bearing", Category: "Components", Quantity: 10, UnitPrice: 20, TotalAmount: 200, ExpectedDelivery: date(2024, 2, 2), ActualDelivery: datePtr(2024, 2, 1)},
		{PONumber: "PO-1010", OrderDate: date(2024, 1, 14), SupplierID: "S006", SupplierName: "Zeta Parts", MaterialID: "M004", MaterialName: "Bearing", Category: "Components", Quantity: 10, UnitPrice: 20, TotalAmount: 200, ExpectedDelivery: date(2024, 2, 3), ActualDelivery: datePtr(2024, 2, 9)},
		{PONumber: "PO-1011", OrderDate: date(2024, 1, 15), SupplierID: "S006", SupplierName: "Zeta Parts", MaterialID: "M004", MaterialName: "Bearing", Category: "Components", Quantity: 10, UnitPrice: 20, TotalAmount: 200, ExpectedDelivery: date(2024, 2, 4), ActualDelivery: datePtr(2024, 2, 11)},
		{PONumber: "PO-1012", OrderDate: date(2024, 1, 16), SupplierID: "S006", SupplierName: "Zeta Parts", MaterialID: "M004", MaterialName: "Bearing", Category: "Components", Quantity: 10, UnitPrice: 20, TotalAmount: 200, ExpectedDelivery: date(2024, 2, 5), ActualDelivery: datePtr(2024, 2, 12)},
	}

	incidents := []models.QualityIncident{
		{IncidentID: "QI-001", PONumber: "PO-1008", SupplierID: "S006", IncidentType: "Defect", Severity: models.LevelLow, CostImpact: 100},
		{IncidentID: "QI-002", PONumber: "PO-1009", SupplierID: "S006", IncidentType: "Defect", Severity: models.LevelMedium, CostImpact: 200},
		{IncidentID: "QI-003", PONumber: "PO-1010", SupplierID: "S006", IncidentType: "Damage", Severity: models.LevelHigh, CostImpact: 300},
		{IncidentID: "QI-004", PONumber: "PO-1011", SupplierID: "S006", IncidentType: "Documentation", Severity: models.LevelMedium, CostImpact: 150},
	}

	return mustSnapshot(t, suppliers, materials, orders, incidents)
}

func testParams() Params {
	p := DefaultParams()
	p.MinSupplierOrders = 1
	p.Trials = 64
	return p
}

func almostEqual(a, b, tolerance float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
