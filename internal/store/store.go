// Package store holds one immutable procurement snapshot: the four input
// record sets plus the lookup indices every downstream computation joins
// through. Indices are built once at construction; the engine never scans a
// table per row.
package store

import (
	"slices"

	apperrors "procurement-dashboard/internal/errors"
	"procurement-dashboard/internal/models"
)

type Snapshot struct {
	suppliers []models.Supplier
	materials []models.Material
	orders    []models.PurchaseOrder
	incidents []models.QualityIncident

	supplierByID        map[string]*models.Supplier
	materialByID        map[string]*models.Material
	materialByNameCat   map[string]*models.Material
	orderByNumber       map[string]*models.PurchaseOrder
	ordersBySupplier    map[string][]*models.PurchaseOrder
	ordersByCategory    map[string][]*models.PurchaseOrder
	incidentsBySupplier map[string][]*models.QualityIncident
}

// New copies the record sets, builds the indices, and verifies referential
// integrity. A purchase order naming an unknown supplier or material, or an
// incident naming an unknown order or supplier, is fatal: the engine refuses
// to silently drop referential mismatches.
func New(suppliers []models.Supplier, materials []models.Material,
	orders []models.PurchaseOrder, incidents []models.QualityIncident) (*Snapshot, error) {

	s := &Snapshot{
		suppliers:           slices.Clone(suppliers),
		materials:           slices.Clone(materials),
		orders:              slices.Clone(orders),
		incidents:           slices.Clone(incidents),
		supplierByID:        make(map[string]*models.Supplier, len(suppliers)),
		materialByID:        make(map[string]*models.Material, len(materials)),
		materialByNameCat:   make(map[string]*models.Material, len(materials)),
		orderByNumber:       make(map[string]*models.PurchaseOrder, len(orders)),
		ordersBySupplier:    make(map[string][]*models.PurchaseOrder),
		ordersByCategory:    make(map[string][]*models.PurchaseOrder),
		incidentsBySupplier: make(map[string][]*models.QualityIncident),
	}

	for i := range s.suppliers {
		sup := &s.suppliers[i]
		if _, dup := s.supplierByID[sup.SupplierID]; dup {
			return nil, apperrors.DataIntegrity("duplicate supplier id %q", sup.SupplierID)
		}
		s.supplierByID[sup.SupplierID] = sup
	}

	for i := range s.materials {
		mat := &s.materials[i]
		if _, dup := s.materialByID[mat.MaterialID]; dup {
			return nil, apperrors.DataIntegrity("duplicate material id %q", mat.MaterialID)
		}
		s.materialByID[mat.MaterialID] = mat
		s.materialByNameCat[materialKey(mat.MaterialName, mat.Category)] = mat
	}

	for i := range s.orders {
		po := &s.orders[i]
		if _, ok := s.supplierByID[po.SupplierID]; !ok {
			return nil, apperrors.DataIntegrity("order %s references unknown supplier %q", po.PONumber, po.SupplierID)
		}
		if _, ok := s.materialByID[po.MaterialID]; !ok {
			return nil, apperrors.DataIntegrity("order %s references unknown material %q", po.PONumber, po.MaterialID)
		}
		if _, dup := s.orderByNumber[po.PONumber]; dup {
			return nil, apperrors.DataIntegrity("duplicate order number %q", po.PONumber)
		}
		s.orderByNumber[po.PONumber] = po
		s.ordersBySupplier[po.SupplierID] = append(s.ordersBySupplier[po.SupplierID], po)
		s.ordersByCategory[po.Category] = append(s.ordersByCategory[po.Category], po)
	}

	for i := range s.incidents {
		qi := &s.incidents[i]
		if _, ok := s.orderByNumber[qi.PONumber]; !ok {
			return nil, apperrors.DataIntegrity("incident %s references unknown order %q", qi.IncidentID, qi.PONumber)
		}
		if _, ok := s.supplierByID[qi.SupplierID]; !ok {
			return nil, apperrors.DataIntegrity("incident %s references unknown supplier %q", qi.IncidentID, qi.SupplierID)
		}
		s.incidentsBySupplier[qi.SupplierID] = append(s.incidentsBySupplier[qi.SupplierID], qi)
	}

	return s, nil
}

func materialKey(name, category string) string {
	return name + "|" + category
}

// The returned slices and pointers are views into the snapshot and must be
// treated as read-only.

func (s *Snapshot) Suppliers() []models.Supplier        { return s.suppliers }
func (s *Snapshot) Materials() []models.Material        { return s.materials }
func (s *Snapshot) Orders() []models.PurchaseOrder      { return s.orders }
func (s *Snapshot) Incidents() []models.QualityIncident { return s.incidents }

func (s *Snapshot) SupplierByID(id string) (*models.Supplier, bool) {
	sup, ok := s.supplierByID[id]
	return sup, ok
}

func (s *Snapshot) MaterialByID(id string) (*models.Material, bool) {
	mat, ok := s.materialByID[id]
	return mat, ok
}

func (s *Snapshot) MaterialByName(name, category string) (*models.Material, bool) {
	mat, ok := s.materialByNameCat[materialKey(name, category)]
	return mat, ok
}

func (s *Snapshot) OrderByNumber(poNumber string) (*models.PurchaseOrder, bool) {
	po, ok := s.orderByNumber[poNumber]
	return po, ok
}

func (s *Snapshot) OrdersBySupplier(supplierID string) []*models.PurchaseOrder {
	return s.ordersBySupplier[supplierID]
}

func (s *Snapshot) OrdersByCategory(category string) []*models.PurchaseOrder {
	return s.ordersByCategory[category]
}

func (s *Snapshot) IncidentsBySupplier(supplierID string) []*models.QualityIncident {
	return s.incidentsBySupplier[supplierID]
}

// Categories returns the distinct order categories in ascending order.
func (s *Snapshot) Categories() []string {
	cats := make([]string, 0, len(s.ordersByCategory))
	for cat := range s.ordersByCategory {
		cats = append(cats, cat)
	}
	slices.Sort(cats)
	return cats
}

// TotalSpend is the grand total across all orders, the denominator for every
// percentage-of-spend figure.
func (s *Snapshot) TotalSpend() float64 {
	var total float64
	for i := range s.orders {
		total += s.orders[i].TotalAmount
	}
	return total
}
