package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/codicehealth/codice-inventory/backend-go/internal/config"
	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

// Store reads the inventory schema over a direct SQL connection. Like the
// PostgREST backend it degrades to empty result sets on query failure.
type Store struct {
	db     *sqlx.DB
	sem    *semaphore.Weighted
	logger zerolog.Logger
}

var (
	instance *Store
	once     sync.Once
)

// New creates the shared connection pool.
func New(cfg config.StoreConfig) (*Store, error) {
	var err error
	once.Do(func() {
		connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

		var db *sqlx.DB
		db, err = sqlx.Connect("postgres", connStr)
		if err != nil {
			return
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		instance = &Store{
			db:     db,
			sem:    semaphore.NewWeighted(10),
			logger: log.With().Str("component", "postgres").Logger(),
		}
	})
	return instance, err
}

// WithTx executes fn within a transaction, bounded by the connection
// semaphore.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer s.sem.Release(1)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx.Tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

func (s *Store) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer s.sem.Release(1)
	return s.db.SelectContext(ctx, dest, query, args...)
}

// Branches implements store.Store.
func (s *Store) Branches(ctx context.Context) ([]domain.Branch, error) {
	query := `
		SELECT id, codigo AS code, nombre AS name, tipo AS kind,
		       COALESCE(latitud, 0) AS latitude, COALESCE(longitud, 0) AS longitude,
		       created_at
		FROM sucursales
		ORDER BY id`

	var out []domain.Branch
	if err := s.selectContext(ctx, &out, query); err != nil {
		s.logger.Warn().Err(err).Msg("branch query failed, continuing with empty set")
		return []domain.Branch{}, nil
	}
	return out, nil
}

// Medications implements store.Store.
func (s *Store) Medications(ctx context.Context) ([]domain.Medication, error) {
	query := `
		SELECT id, sku, nombre AS name, COALESCE(nombre_generico, '') AS generic_name,
		       categoria AS category, precio_compra AS purchase_cost,
		       precio_venta AS sale_price, COALESCE(fabricante, '') AS manufacturer
		FROM medicamentos
		ORDER BY id`

	var out []domain.Medication
	if err := s.selectContext(ctx, &out, query); err != nil {
		s.logger.Warn().Err(err).Msg("medication query failed, continuing with empty set")
		return []domain.Medication{}, nil
	}
	return out, nil
}

// InventorySnapshot implements store.Store.
func (s *Store) InventorySnapshot(ctx context.Context, branchID int64) ([]domain.InventoryItem, error) {
	query := `
		SELECT i.id AS inventory_id, m.id AS medication_id, m.sku, m.nombre AS name,
		       m.categoria AS category, m.precio_compra AS purchase_cost,
		       m.precio_venta AS sale_price, s.id AS branch_id, s.nombre AS branch_name,
		       i.stock_actual AS current_stock, i.stock_minimo AS minimum_stock,
		       COALESCE(i.stock_maximo, 0) AS maximum_stock,
		       MIN(l.fecha_vencimiento) AS next_expiry
		FROM inventario i
		JOIN medicamentos m ON m.id = i.medicamento_id
		JOIN sucursales s ON s.id = i.sucursal_id
		LEFT JOIN lotes l ON l.inventario_id = i.id AND l.cantidad_actual > 0
		WHERE ($1 = 0 OR i.sucursal_id = $1)
		GROUP BY i.id, m.id, s.id
		ORDER BY m.sku, s.id`

	var out []domain.InventoryItem
	if err := s.selectContext(ctx, &out, query, branchID); err != nil {
		s.logger.Warn().Err(err).Int64("branch_id", branchID).Msg("inventory query failed, continuing with empty set")
		return []domain.InventoryItem{}, nil
	}
	return out, nil
}

// SalesHistory implements store.Store.
func (s *Store) SalesHistory(ctx context.Context, medicationID, branchID int64, since time.Time) ([]domain.SaleRecord, error) {
	query := `
		SELECT medicamento_id AS medication_id, sucursal_id AS branch_id,
		       to_char(fecha, 'YYYY-MM-DD') AS date, cantidad AS quantity,
		       'sale' AS kind, COALESCE(created_at, fecha) AS recorded_at
		FROM movimientos_inventario
		WHERE tipo = 'venta'
		  AND ($1 = 0 OR medicamento_id = $1)
		  AND ($2 = 0 OR sucursal_id = $2)
		  AND fecha >= $3
		ORDER BY fecha`

	var out []domain.SaleRecord
	if err := s.selectContext(ctx, &out, query, medicationID, branchID, since); err != nil {
		s.logger.Warn().Err(err).Int64("branch_id", branchID).Int64("medication_id", medicationID).
			Msg("sales query failed, continuing with empty set")
		return []domain.SaleRecord{}, nil
	}
	return out, nil
}

// Lots implements store.Store.
func (s *Store) Lots(ctx context.Context, branchID int64) ([]domain.Lot, error) {
	query := `
		SELECT l.id, l.medicamento_id AS medication_id, i.sucursal_id AS branch_id,
		       l.numero_lote AS lot_number, l.fecha_vencimiento AS expiry,
		       l.cantidad_actual AS quantity, l.costo_unitario AS unit_cost
		FROM lotes l
		JOIN inventario i ON i.id = l.inventario_id
		WHERE l.cantidad_actual > 0
		  AND ($1 = 0 OR i.sucursal_id = $1)
		ORDER BY l.fecha_vencimiento`

	var out []domain.Lot
	if err := s.selectContext(ctx, &out, query, branchID); err != nil {
		s.logger.Warn().Err(err).Int64("branch_id", branchID).Msg("lot query failed, continuing with empty set")
		return []domain.Lot{}, nil
	}
	return out, nil
}
