package main

import (
	"fmt"
	"log"

	"github.com/urfave/cli/v2"
)

// schemaStatements creates the upstream tables with their original Spanish
// column names, so both the SQL and PostgREST backends read the same shape.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sucursales (
		id         BIGSERIAL PRIMARY KEY,
		codigo     TEXT NOT NULL UNIQUE,
		nombre     TEXT NOT NULL,
		tipo       TEXT NOT NULL DEFAULT 'farmacia',
		latitud    DOUBLE PRECISION,
		longitud   DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS medicamentos (
		id              BIGSERIAL PRIMARY KEY,
		sku             TEXT NOT NULL UNIQUE,
		nombre          TEXT NOT NULL,
		nombre_generico TEXT,
		categoria       TEXT NOT NULL,
		precio_compra   NUMERIC(10,2) NOT NULL,
		precio_venta    NUMERIC(10,2) NOT NULL,
		fabricante      TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS inventario (
		id             BIGSERIAL PRIMARY KEY,
		medicamento_id BIGINT NOT NULL REFERENCES medicamentos(id),
		sucursal_id    BIGINT NOT NULL REFERENCES sucursales(id),
		stock_actual   INTEGER NOT NULL DEFAULT 0,
		stock_minimo   INTEGER NOT NULL DEFAULT 0,
		stock_maximo   INTEGER,
		UNIQUE (medicamento_id, sucursal_id)
	)`,
	`CREATE TABLE IF NOT EXISTS lotes (
		id                BIGSERIAL PRIMARY KEY,
		inventario_id     BIGINT NOT NULL REFERENCES inventario(id),
		medicamento_id    BIGINT NOT NULL REFERENCES medicamentos(id),
		numero_lote       TEXT NOT NULL,
		fecha_vencimiento DATE NOT NULL,
		cantidad_actual   INTEGER NOT NULL DEFAULT 0,
		costo_unitario    NUMERIC(10,2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS movimientos_inventario (
		id             BIGSERIAL PRIMARY KEY,
		medicamento_id BIGINT NOT NULL REFERENCES medicamentos(id),
		sucursal_id    BIGINT NOT NULL REFERENCES sucursales(id),
		tipo           TEXT NOT NULL,
		fecha          DATE NOT NULL,
		cantidad       INTEGER NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_movimientos_fecha
		ON movimientos_inventario (fecha)`,
	`CREATE INDEX IF NOT EXISTS idx_movimientos_med_sucursal
		ON movimientos_inventario (medicamento_id, sucursal_id)`,
	`CREATE INDEX IF NOT EXISTS idx_lotes_vencimiento
		ON lotes (fecha_vencimiento)`,
	`CREATE OR REPLACE VIEW vista_inventario_completo AS
		SELECT i.id AS inventario_id,
		       m.id AS medicamento_id,
		       m.sku,
		       m.nombre,
		       m.categoria,
		       m.precio_compra,
		       m.precio_venta,
		       s.id AS sucursal_id,
		       s.nombre AS sucursal_nombre,
		       i.stock_actual,
		       i.stock_minimo,
		       COALESCE(i.stock_maximo, 0) AS stock_maximo,
		       to_char(MIN(l.fecha_vencimiento), 'YYYY-MM-DD') AS proxima_caducidad
		FROM inventario i
		JOIN medicamentos m ON m.id = i.medicamento_id
		JOIN sucursales s ON s.id = i.sucursal_id
		LEFT JOIN lotes l ON l.inventario_id = i.id AND l.cantidad_actual > 0
		GROUP BY i.id, m.id, s.id`,
}

func runSchema(c *cli.Context) error {
	db := dbFrom(c)
	if db == nil {
		return fmt.Errorf("database connection not found in context")
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(c.Context, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	log.Println("Schema created successfully")
	return nil
}
