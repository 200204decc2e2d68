// Package loader ingests a procurement snapshot from CSV files. Parsing is
// streamed and batched; malformed or invalid rows are skipped and counted,
// while referential problems are left to the store to reject.
package loader

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"procurement-dashboard/internal/config"
	"procurement-dashboard/internal/models"
	"procurement-dashboard/internal/store"
)

const (
	batchSize  = 5000
	maxWorkers = 8
	dateLayout = "2006-01-02"

	// Orders where total != quantity*price beyond this relative tolerance are
	// treated as corrupt rows, not rounding noise.
	amountTolerance = 0.01
)

var validate = validator.New()

// Stats reports what ingestion kept and dropped.
type Stats struct {
	Suppliers   int
	Materials   int
	Orders      int
	Incidents   int
	SkippedRows int
}

// Load reads the four snapshot files and assembles an integrity-checked store.
func Load(ctx context.Context, logger *slog.Logger, cfg config.DataConfig) (*store.Snapshot, Stats, error) {
	var stats Stats
	start := time.Now()

	suppliers, skipped, err := loadSuppliers(cfg.SuppliersFile)
	if err != nil {
		return nil, stats, fmt.Errorf("load suppliers: %w", err)
	}
	stats.SkippedRows += skipped

	materials, skipped, err := loadMaterials(cfg.MaterialsFile)
	if err != nil {
		return nil, stats, fmt.Errorf("load materials: %w", err)
	}
	stats.SkippedRows += skipped

	orders, skipped, err := loadOrders(ctx, cfg.OrdersFile)
	if err != nil {
		return nil, stats, fmt.Errorf("load orders: %w", err)
	}
	stats.SkippedRows += skipped

	incidents, skipped, err := loadIncidents(cfg.IncidentsFile)
	if err != nil {
		return nil, stats, fmt.Errorf("load incidents: %w", err)
	}
	stats.SkippedRows += skipped

	snap, err := store.New(suppliers, materials, orders, incidents)
	if err != nil {
		return nil, stats, err
	}

	stats.Suppliers = len(suppliers)
	stats.Materials = len(materials)
	stats.Orders = len(orders)
	stats.Incidents = len(incidents)

	logger.Info("snapshot loaded",
		"suppliers", stats.Suppliers,
		"materials", stats.Materials,
		"orders", stats.Orders,
		"incidents", stats.Incidents,
		"skipped_rows", stats.SkippedRows,
		"duration", time.Since(start),
	)

	return snap, stats, nil
}

// NewestModTime returns the most recent modification time across the four
// snapshot files, used for cache freshness checks.
func NewestModTime(cfg config.DataConfig) (time.Time, error) {
	var newest time.Time
	for _, path := range []string{cfg.SuppliersFile, cfg.MaterialsFile, cfg.OrdersFile, cfg.IncidentsFile} {
		info, err := os.Stat(path)
		if err != nil {
			return time.Time{}, err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest, nil
}

func scanRows(path string, fn func(record []string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	// Skip header
	if !scanner.Scan() {
		return fmt.Errorf("empty file %s", path)
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(strings.Split(line, ",")); err != nil {
			return err
		}
	}

	return scanner.Err()
}

func loadSuppliers(path string) ([]models.Supplier, int, error) {
	var suppliers []models.Supplier
	skipped := 0

	err := scanRows(path, func(record []string) error {
		sup, err := parseSupplier(record)
		if err != nil || validate.Struct(sup) != nil {
			skipped++
			return nil
		}
		suppliers = append(suppliers, sup)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	if len(suppliers) == 0 {
		return nil, 0, fmt.Errorf("no valid supplier records in %s", path)
	}
	return suppliers, skipped, nil
}

func parseSupplier(record []string) (models.Supplier, error) {
	if len(record) < 9 {
		return models.Supplier{}, fmt.Errorf("insufficient columns")
	}

	rating, err := strconv.ParseFloat(strings.TrimSpace(record[6]), 64)
	if err != nil {
		return models.Supplier{}, err
	}

	approved, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(record[7])))
	if err != nil {
		return models.Supplier{}, err
	}

	return models.Supplier{
		SupplierID:    strings.TrimSpace(record[0]),
		SupplierName:  strings.TrimSpace(record[1]),
		Category:      strings.TrimSpace(record[2]),
		Country:       strings.TrimSpace(record[3]),
		PaymentTerms:  strings.TrimSpace(record[4]),
		Currency:      strings.TrimSpace(record[5]),
		QualityRating: rating,
		IsApproved:    approved,
		RiskLevel:     strings.TrimSpace(record[8]),
	}, nil
}

func loadMaterials(path string) ([]models.Material, int, error) {
	var materials []models.Material
	skipped := 0

	err := scanRows(path, func(record []string) error {
		mat, err := parseMaterial(record)
		if err != nil || validate.Struct(mat) != nil {
			skipped++
			return nil
		}
		materials = append(materials, mat)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return materials, skipped, nil
}

func parseMaterial(record []string) (models.Material, error) {
	if len(record) < 6 {
		return models.Material{}, fmt.Errorf("insufficient columns")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
	if err != nil {
		return models.Material{}, err
	}

	leadTime, err := strconv.Atoi(strings.TrimSpace(record[5]))
	if err != nil {
		return models.Material{}, err
	}

	return models.Material{
		MaterialID:    strings.TrimSpace(record[0]),
		MaterialName:  strings.TrimSpace(record[1]),
		Category:      strings.TrimSpace(record[2]),
		UnitOfMeasure: strings.TrimSpace(record[3]),
		StandardPrice: price,
		LeadTimeDays:  leadTime,
	}, nil
}

// loadOrders streams the ledger file in batches and parses each batch on a
// bounded worker pool. The orders file dominates snapshot size; the master
// tables are not worth the fan-out.
func loadOrders(ctx context.Context, path string) ([]models.PurchaseOrder, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	if !scanner.Scan() {
		return nil, 0, fmt.Errorf("empty file %s", path)
	}

	var (
		orders  []models.PurchaseOrder
		skipped int
	)

	batch := make([]string, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		parsed, bad, err := parseOrderBatch(ctx, batch)
		if err != nil {
			return err
		}
		orders = append(orders, parsed...)
		skipped += bad
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		batch = append(batch, line)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, 0, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan error: %w", err)
	}
	if err := flush(); err != nil {
		return nil, 0, err
	}

	if len(orders) == 0 {
		return nil, 0, fmt.Errorf("no valid order records in %s", path)
	}

	return orders, skipped, nil
}

func parseOrderBatch(ctx context.Context, batch []string) ([]models.PurchaseOrder, int, error) {
	type result struct {
		po    models.PurchaseOrder
		valid bool
	}

	results := make([]result, len(batch))

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)

	for i, line := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			po, err := parseOrder(strings.Split(line, ","))
			if err != nil || validate.Struct(po) != nil {
				return nil
			}
			results[i] = result{po: po, valid: true}
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		return nil, 0, err
	}

	orders := make([]models.PurchaseOrder, 0, len(batch))
	skipped := 0
	for _, r := range results {
		if r.valid {
			orders = append(orders, r.po)
		} else {
			skipped++
		}
	}
	return orders, skipped, nil
}

func parseOrder(record []string) (models.PurchaseOrder, error) {
	if len(record) < 18 {
		return models.PurchaseOrder{}, fmt.Errorf("insufficient columns")
	}

	orderDate, err := time.Parse(dateLayout, strings.TrimSpace(record[1]))
	if err != nil {
		return models.PurchaseOrder{}, err
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(record[7]))
	if err != nil {
		return models.PurchaseOrder{}, err
	}

	unitPrice, err := strconv.ParseFloat(strings.TrimSpace(record[8]), 64)
	if err != nil {
		return models.PurchaseOrder{}, err
	}

	totalAmount, err := strconv.ParseFloat(strings.TrimSpace(record[9]), 64)
	if err != nil {
		return models.PurchaseOrder{}, err
	}

	var totalUSD *float64
	if v := strings.TrimSpace(record[10]); v != "" {
		usd, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return models.PurchaseOrder{}, err
		}
		totalUSD = &usd
	}

	expected, err := time.Parse(dateLayout, strings.TrimSpace(record[12]))
	if err != nil {
		return models.PurchaseOrder{}, err
	}

	var actual *time.Time
	if v := strings.TrimSpace(record[13]); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return models.PurchaseOrder{}, err
		}
		actual = &t
	}

	po := models.PurchaseOrder{
		PONumber:         strings.TrimSpace(record[0]),
		OrderDate:        orderDate,
		SupplierID:       strings.TrimSpace(record[2]),
		SupplierName:     strings.TrimSpace(record[3]),
		MaterialID:       strings.TrimSpace(record[4]),
		MaterialName:     strings.TrimSpace(record[5]),
		Category:         strings.TrimSpace(record[6]),
		Quantity:         quantity,
		UnitPrice:        unitPrice,
		TotalAmount:      totalAmount,
		TotalAmountUSD:   totalUSD,
		Currency:         strings.TrimSpace(record[11]),
		ExpectedDelivery: expected,
		ActualDelivery:   actual,
		DeliveryStatus:   strings.TrimSpace(record[14]),
		PaymentStatus:    strings.TrimSpace(record[15]),
		Buyer:            strings.TrimSpace(record[16]),
		PlantLocation:    strings.TrimSpace(record[17]),
	}

	// total = quantity * unit price, within rounding tolerance
	implied := float64(po.Quantity) * po.UnitPrice
	if implied > 0 && math.Abs(po.TotalAmount-implied) > amountTolerance*implied {
		return models.PurchaseOrder{}, fmt.Errorf("total amount %f inconsistent with quantity*price %f", po.TotalAmount, implied)
	}

	return po, nil
}

func loadIncidents(path string) ([]models.QualityIncident, int, error) {
	var incidents []models.QualityIncident
	skipped := 0

	err := scanRows(path, func(record []string) error {
		qi, err := parseIncident(record)
		if err != nil || validate.Struct(qi) != nil {
			skipped++
			return nil
		}
		incidents = append(incidents, qi)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return incidents, skipped, nil
}

func parseIncident(record []string) (models.QualityIncident, error) {
	if len(record) < 6 {
		return models.QualityIncident{}, fmt.Errorf("insufficient columns")
	}

	cost, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
	if err != nil {
		return models.QualityIncident{}, err
	}

	return models.QualityIncident{
		IncidentID:   strings.TrimSpace(record[0]),
		PONumber:     strings.TrimSpace(record[1]),
		SupplierID:   strings.TrimSpace(record[2]),
		IncidentType: strings.TrimSpace(record[3]),
		Severity:     strings.TrimSpace(record[4]),
		CostImpact:   cost,
	}, nil
}
