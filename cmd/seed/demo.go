package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/codicehealth/codice-inventory/backend-go/internal/config"
)

type demoBranch struct {
	code string
	name string
	kind string
	lat  float64
	lon  float64
}

type demoMedication struct {
	sku          string
	name         string
	generic      string
	category     string
	purchaseCost float64
	salePrice    float64
	manufacturer string
	// baseDemand is the average units sold per day at a typical branch.
	baseDemand float64
}

var demoBranches = []demoBranch{
	{code: "SUC-001", name: "Sucursal Central", kind: "principal", lat: -12.0464, lon: -77.0428},
	{code: "SUC-002", name: "Sucursal Miraflores", kind: "farmacia", lat: -12.1211, lon: -77.0297},
	{code: "SUC-003", name: "Sucursal Callao", kind: "farmacia", lat: -12.0566, lon: -77.1181},
	{code: "SUC-004", name: "Sucursal San Isidro", kind: "farmacia", lat: -12.0976, lon: -77.0365},
	{code: "SUC-005", name: "Sucursal Surco", kind: "farmacia", lat: -12.1508, lon: -76.9910},
}

var demoCatalog = []demoMedication{
	{sku: "MED-0001", name: "Paracetamol 500mg", generic: "Paracetamol", category: "analgesicos", purchaseCost: 0.80, salePrice: 2.50, manufacturer: "Genfar", baseDemand: 14},
	{sku: "MED-0002", name: "Ibuprofeno 400mg", generic: "Ibuprofeno", category: "analgesicos", purchaseCost: 1.10, salePrice: 3.20, manufacturer: "Genfar", baseDemand: 10},
	{sku: "MED-0003", name: "Amoxicilina 500mg", generic: "Amoxicilina", category: "antibioticos", purchaseCost: 2.40, salePrice: 6.80, manufacturer: "Medifarma", baseDemand: 6},
	{sku: "MED-0004", name: "Azitromicina 500mg", generic: "Azitromicina", category: "antibioticos", purchaseCost: 4.50, salePrice: 12.00, manufacturer: "Medifarma", baseDemand: 3},
	{sku: "MED-0005", name: "Losartan 50mg", generic: "Losartan", category: "cronicos", purchaseCost: 1.80, salePrice: 4.90, manufacturer: "Teva", baseDemand: 8},
	{sku: "MED-0006", name: "Metformina 850mg", generic: "Metformina", category: "cronicos", purchaseCost: 1.20, salePrice: 3.60, manufacturer: "Teva", baseDemand: 9},
	{sku: "MED-0007", name: "Enalapril 10mg", generic: "Enalapril", category: "cronicos", purchaseCost: 0.90, salePrice: 2.80, manufacturer: "Portugal", baseDemand: 5},
	{sku: "MED-0008", name: "Salbutamol Inhalador", generic: "Salbutamol", category: "respiratorios", purchaseCost: 8.50, salePrice: 19.90, manufacturer: "GSK", baseDemand: 2},
	{sku: "MED-0009", name: "Loratadina 10mg", generic: "Loratadina", category: "antialergicos", purchaseCost: 0.70, salePrice: 2.10, manufacturer: "Genfar", baseDemand: 7},
	{sku: "MED-0010", name: "Omeprazol 20mg", generic: "Omeprazol", category: "gastricos", purchaseCost: 1.00, salePrice: 3.40, manufacturer: "Medifarma", baseDemand: 8},
	{sku: "MED-0011", name: "Insulina Glargina", generic: "Insulina glargina", category: "refrigerados", purchaseCost: 45.00, salePrice: 89.00, manufacturer: "Sanofi", baseDemand: 1},
	{sku: "MED-0012", name: "Vitamina C 1g", generic: "Acido ascorbico", category: "suplementos", purchaseCost: 0.60, salePrice: 1.90, manufacturer: "Portugal", baseDemand: 11},
}

// defaultMonthFactor is the seasonal curve used when the engine config does
// not override it. Respiratory season peaks mid-year in Lima, December picks
// up with holiday traffic.
var defaultMonthFactor = map[time.Month]float64{
	time.January: 1.0, time.February: 0.9, time.March: 0.95,
	time.April: 1.0, time.May: 1.1, time.June: 1.3,
	time.July: 1.35, time.August: 1.25, time.September: 1.1,
	time.October: 1.0, time.November: 1.05, time.December: 1.4,
}

func seasonalFactors(cfg config.EngineConfig) map[time.Month]float64 {
	factors := make(map[time.Month]float64, len(defaultMonthFactor))
	for m, f := range defaultMonthFactor {
		factors[m] = f
	}
	for key, f := range cfg.SeasonalFactors {
		m, err := strconv.Atoi(key)
		if err != nil || m < 1 || m > 12 || f <= 0 {
			continue
		}
		factors[time.Month(m)] = f
	}
	return factors
}

func runDemo(c *cli.Context) error {
	db := dbFrom(c)
	if db == nil {
		return fmt.Errorf("database connection not found in context")
	}

	rng := rand.New(rand.NewSource(c.Int64("rand-seed")))
	historyDays := c.Int("history-days")
	if historyDays < 1 {
		historyDays = 365
	}

	branchIDs, err := seedBranches(c.Context, db)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d branches", len(branchIDs))

	medIDs, err := seedMedications(c.Context, db)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d medications", len(medIDs))

	invIDs, err := seedInventory(c.Context, db, branchIDs, medIDs, rng)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d inventory rows", len(invIDs))

	lots, err := seedLots(c.Context, db, rng)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d lots", lots)

	factors := seasonalFactors(config.Load().Engine)
	sales, err := seedSales(c.Context, db, branchIDs, medIDs, historyDays, factors, rng)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d sale movements over %d days", sales, historyDays)

	return nil
}

func seedBranches(ctx context.Context, db *sql.DB) ([]int64, error) {
	ids := make([]int64, 0, len(demoBranches))
	for _, b := range demoBranches {
		var id int64
		err := db.QueryRowContext(ctx, `
			INSERT INTO sucursales (codigo, nombre, tipo, latitud, longitud)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (codigo) DO UPDATE SET nombre = EXCLUDED.nombre
			RETURNING id`,
			b.code, b.name, b.kind, b.lat, b.lon).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert branch %s: %w", b.code, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func seedMedications(ctx context.Context, db *sql.DB) ([]int64, error) {
	ids := make([]int64, 0, len(demoCatalog))
	for _, m := range demoCatalog {
		var id int64
		err := db.QueryRowContext(ctx, `
			INSERT INTO medicamentos (sku, nombre, nombre_generico, categoria, precio_compra, precio_venta, fabricante)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (sku) DO UPDATE SET precio_compra = EXCLUDED.precio_compra, precio_venta = EXCLUDED.precio_venta
			RETURNING id`,
			m.sku, m.name, m.generic, m.category, m.purchaseCost, m.salePrice, m.manufacturer).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert medication %s: %w", m.sku, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// seedInventory gives every branch a row for every medication. Roughly one
// row in six starts below its minimum so the recommendation surface has
// something to flag, and one in eight sits well above it to feed transfers.
func seedInventory(ctx context.Context, db *sql.DB, branchIDs, medIDs []int64, rng *rand.Rand) ([]int64, error) {
	ids := make([]int64, 0, len(branchIDs)*len(medIDs))
	for _, branchID := range branchIDs {
		for mi, medID := range medIDs {
			minStock := int(math.Ceil(demoCatalog[mi].baseDemand * 7))
			maxStock := minStock * 5

			var stock int
			switch roll := rng.Intn(24); {
			case roll < 4:
				stock = rng.Intn(minStock/2 + 1)
			case roll < 7:
				stock = maxStock - rng.Intn(minStock+1)
			default:
				stock = minStock + rng.Intn(maxStock-minStock)
			}

			var id int64
			err := db.QueryRowContext(ctx, `
				INSERT INTO inventario (medicamento_id, sucursal_id, stock_actual, stock_minimo, stock_maximo)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (medicamento_id, sucursal_id)
				DO UPDATE SET stock_actual = EXCLUDED.stock_actual
				RETURNING id`,
				medID, branchID, stock, minStock, maxStock).Scan(&id)
			if err != nil {
				return nil, fmt.Errorf("failed to insert inventory for medication %d branch %d: %w", medID, branchID, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func seedLots(ctx context.Context, db *sql.DB, rng *rand.Rand) (int, error) {
	count := 0
	rows, err := db.QueryContext(ctx, `
		SELECT id, medicamento_id, stock_actual
		FROM inventario
		WHERE stock_actual > 0`)
	if err != nil {
		return 0, fmt.Errorf("failed to read inventory for lots: %w", err)
	}
	defer rows.Close()

	type invRow struct {
		id, medID int64
		stock     int
	}
	var inv []invRow
	for rows.Next() {
		var r invRow
		if err := rows.Scan(&r.id, &r.medID, &r.stock); err != nil {
			return 0, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		inv = append(inv, r)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, r := range inv {
		// Split stock into one or two lots with staggered expiries. A
		// handful of lots land inside the 90 day alert window.
		remaining := r.stock
		lots := 1 + rng.Intn(2)
		for n := 0; n < lots && remaining > 0; n++ {
			qty := remaining
			if n < lots-1 {
				qty = remaining/2 + rng.Intn(remaining/2+1)
			}
			remaining -= qty

			daysOut := 30 + rng.Intn(540)
			if rng.Intn(10) == 0 {
				daysOut = 10 + rng.Intn(80)
			}
			expiry := time.Now().AddDate(0, 0, daysOut).Format("2006-01-02")
			lotNumber := fmt.Sprintf("L%d-%02d%d", r.id, n+1, rng.Intn(9000)+1000)

			_, err := db.ExecContext(ctx, `
				INSERT INTO lotes (inventario_id, medicamento_id, numero_lote, fecha_vencimiento, cantidad_actual, costo_unitario)
				VALUES ($1, $2, $3, $4, $5,
					(SELECT precio_compra FROM medicamentos WHERE id = $2))`,
				r.id, r.medID, lotNumber, expiry, qty)
			if err != nil {
				return count, fmt.Errorf("failed to insert lot for inventory %d: %w", r.id, err)
			}
			count++
		}
	}
	return count, nil
}

// seedSales writes one aggregated sale movement per medication, branch and
// day, modulated by the month's seasonal factor plus noise. A mild upward
// drift over the window gives the trend estimator something to latch onto.
func seedSales(ctx context.Context, db *sql.DB, branchIDs, medIDs []int64, historyDays int, factors map[time.Month]float64, rng *rand.Rand) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin sales transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO movimientos_inventario (medicamento_id, sucursal_id, tipo, fecha, cantidad)
		VALUES ($1, $2, 'venta', $3, $4)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare sales insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	start := time.Now().AddDate(0, 0, -historyDays)
	for _, branchID := range branchIDs {
		// Branches differ in traffic. The first one is the flagship.
		branchScale := 0.6 + rng.Float64()*0.6
		for mi, medID := range medIDs {
			drift := (rng.Float64() - 0.4) * 0.002
			for d := 0; d < historyDays; d++ {
				day := start.AddDate(0, 0, d)
				expected := demoCatalog[mi].baseDemand * branchScale * factors[day.Month()]
				expected *= 1 + drift*float64(d)

				noise := 0.7 + rng.Float64()*0.6
				qty := int(math.Round(expected * noise))
				if qty <= 0 {
					// Slow movers skip days entirely.
					continue
				}

				if _, err := stmt.ExecContext(ctx, medID, branchID, day.Format("2006-01-02"), qty); err != nil {
					return count, fmt.Errorf("failed to insert sale: %w", err)
				}
				count++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("failed to commit sales: %w", err)
	}
	return count, nil
}
