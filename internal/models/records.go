package models

import "time"

// Risk levels and incident severities share the same three-step scale.
const (
	LevelLow    = "Low"
	LevelMedium = "Medium"
	LevelHigh   = "High"
)

// PurchaseOrder is one ledger row. TotalAmount is in the local currency;
// TotalAmountUSD is present only for foreign-currency orders. ActualDelivery
// is nil for orders that have not arrived yet.
type PurchaseOrder struct {
	PONumber         string     `json:"po_number" validate:"required"`
	OrderDate        time.Time  `json:"po_date" validate:"required"`
	SupplierID       string     `json:"supplier_id" validate:"required"`
	SupplierName     string     `json:"supplier_name"`
	MaterialID       string     `json:"material_id" validate:"required"`
	MaterialName     string     `json:"material_name" validate:"required"`
	Category         string     `json:"category" validate:"required"`
	Quantity         int        `json:"quantity" validate:"gt=0"`
	UnitPrice        float64    `json:"unit_price" validate:"gte=0"`
	TotalAmount      float64    `json:"total_amount" validate:"gte=0"`
	TotalAmountUSD   *float64   `json:"total_amount_usd,omitempty"`
	Currency         string     `json:"currency"`
	ExpectedDelivery time.Time  `json:"expected_delivery_date"`
	ActualDelivery   *time.Time `json:"actual_delivery_date,omitempty"`
	DeliveryStatus   string     `json:"delivery_status"`
	PaymentStatus    string     `json:"payment_status"`
	Buyer            string     `json:"buyer"`
	PlantLocation    string     `json:"plant_location"`
}

// DeliveredOnTime reports whether the order arrived on or before the expected
// date. Orders without a recorded actual delivery date are neither on time nor
// late; callers must exclude them from OTD ratios.
func (po *PurchaseOrder) DeliveredOnTime() bool {
	return po.ActualDelivery != nil && !po.ActualDelivery.After(po.ExpectedDelivery)
}

type Supplier struct {
	SupplierID    string  `json:"supplier_id" validate:"required"`
	SupplierName  string  `json:"supplier_name" validate:"required"`
	Category      string  `json:"category" validate:"required"`
	Country       string  `json:"country"`
	PaymentTerms  string  `json:"payment_terms"`
	Currency      string  `json:"currency"`
	QualityRating float64 `json:"quality_rating" validate:"gte=0,lte=5"`
	IsApproved    bool    `json:"is_approved"`
	RiskLevel     string  `json:"risk_level" validate:"oneof=Low Medium High"`
}

type Material struct {
	MaterialID    string  `json:"material_id" validate:"required"`
	MaterialName  string  `json:"material_name" validate:"required"`
	Category      string  `json:"category" validate:"required"`
	UnitOfMeasure string  `json:"unit_of_measure"`
	StandardPrice float64 `json:"standard_price" validate:"gte=0"`
	LeadTimeDays  int     `json:"lead_time_days" validate:"gte=0"`
}

type QualityIncident struct {
	IncidentID   string  `json:"incident_id" validate:"required"`
	PONumber     string  `json:"po_number" validate:"required"`
	SupplierID   string  `json:"supplier_id" validate:"required"`
	IncidentType string  `json:"incident_type"`
	Severity     string  `json:"severity" validate:"oneof=Low Medium High"`
	CostImpact   float64 `json:"cost_impact" validate:"gte=0"`
}

// Derived rows below are recomputed on every analysis run and owned by the
// caller; none of them reference the snapshot they were derived from.

type CategorySpend struct {
	Category      string  `json:"category"`
	OrderCount    int     `json:"order_count"`
	TotalSpend    float64 `json:"total_spend"`
	PctOfTotal    float64 `json:"pct_of_total"`
	AvgOrderValue float64 `json:"avg_order_value"`
	SupplierCount int     `json:"supplier_count"`
}

type SupplierPerformance struct {
	SupplierID        string         `json:"supplier_id"`
	SupplierName      string         `json:"supplier_name"`
	Category          string         `json:"category"`
	Country           string         `json:"country"`
	TotalOrders       int            `json:"total_orders"`
	TotalSpend        float64        `json:"total_spend"`
	OnTimeDeliveryPct float64        `json:"otd_pct"`
	QualityIncidents  int            `json:"quality_incidents"`
	IncidentSeverity  map[string]int `json:"incident_severity,omitempty"`
	QualityCost       float64        `json:"quality_cost"`
	Grade             string         `json:"performance_grade"`
}

type PriceVarianceOpportunity struct {
	MaterialName     string  `json:"material_name"`
	Category         string  `json:"category"`
	SupplierCount    int     `json:"supplier_count"`
	MinPrice         float64 `json:"min_price"`
	AvgPrice         float64 `json:"avg_price"`
	MaxPrice         float64 `json:"max_price"`
	VariancePct      float64 `json:"variance_pct"`
	PotentialSavings float64 `json:"potential_savings"`
	TotalSpend       float64 `json:"total_spend"`
}

type SavingsScenario struct {
	Name              string  `json:"scenario_name"`
	TotalSavings      float64 `json:"total_savings"`
	SavingsPctOfSpend float64 `json:"savings_pct_of_spend"`
}

type UncertaintyBound struct {
	Percentile string  `json:"percentile_label"`
	Value      float64 `json:"value"`
}

// UncertaintyEnvelope is the full Monte Carlo output: the three percentile
// bounds plus the derived interval width, tagged with the run parameters that
// produced it.
type UncertaintyEnvelope struct {
	Bounds        []UncertaintyBound `json:"bounds"`
	IntervalWidth float64            `json:"interval_width"`
	Trials        int                `json:"trials"`
	Seed          int64              `json:"seed"`
}

type OptimizationRecommendation struct {
	ActionType       string  `json:"action_type"`
	Target           string  `json:"target"`
	Category         string  `json:"category"`
	EstimatedSavings float64 `json:"estimated_savings"`
	Reason           string  `json:"reason"`
}

// MaverickSpend is purchase volume routed to unapproved or high-risk suppliers.
type MaverickSpend struct {
	SupplierName string  `json:"supplier_name"`
	RiskLevel    string  `json:"risk_level"`
	OrderCount   int     `json:"order_count"`
	TotalSpend   float64 `json:"total_spend"`
}
