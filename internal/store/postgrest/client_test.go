package postgrest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codicehealth/codice-inventory/backend-go/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.StoreConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		TimeoutSeconds: 2,
	})
}

func TestBranches(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sucursales", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "codigo": "CEN", "nombre": "Central", "tipo": "Principal", "latitud": -12.04, "longitud": -77.04, "created_at": "2025-01-15T10:00:00Z"},
			{"id": 2, "codigo": "NOR", "nombre": "Norte", "tipo": "Sucursal", "latitud": -12.00, "longitud": -77.06}
		]`))
	})

	branches, err := c.Branches(context.Background())
	require.NoError(t, err)
	require.Len(t, branches, 2)

	assert.Equal(t, int64(1), branches[0].ID)
	assert.Equal(t, "Central", branches[0].Name)
	assert.Equal(t, -12.04, branches[0].Latitude)
	assert.Equal(t, 2025, branches[0].CreatedAt.Year())
	assert.True(t, branches[1].CreatedAt.IsZero())
}

func TestInventorySnapshotFiltersByBranch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vista_inventario_completo", r.URL.Path)
		assert.Equal(t, "eq.3", r.URL.Query().Get("sucursal_id"))

		w.Write([]byte(`[
			{"inventario_id": 9, "medicamento_id": 4, "sku": "MED-004", "nombre": "Ibuprofeno",
			 "categoria": "Antiinflamatorio", "precio_compra": 5.5, "precio_venta": 12.0,
			 "sucursal_id": 3, "sucursal_nombre": "Sur", "stock_actual": 40, "stock_minimo": 25,
			 "stock_maximo": 120, "proxima_caducidad": "2026-11-30"}
		]`))
	})

	items, err := c.InventorySnapshot(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, int64(4), item.MedicationID)
	assert.Equal(t, 40, item.CurrentStock)
	require.NotNil(t, item.NextExpiry)
	assert.Equal(t, time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC), *item.NextExpiry)
}

func TestSalesHistoryQueryAndMapping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.venta", q.Get("tipo"))
		assert.Equal(t, "eq.4", q.Get("medicamento_id"))
		assert.Equal(t, "eq.3", q.Get("sucursal_id"))
		assert.Equal(t, "gte.2026-06-01", q.Get("fecha"))

		w.Write([]byte(`[
			{"medicamento_id": 4, "sucursal_id": 3, "fecha": "2026-06-02", "cantidad": 7, "tipo": "venta"},
			{"medicamento_id": 4, "sucursal_id": 3, "fecha": "2026-06-03", "cantidad": 3, "tipo": "venta"}
		]`))
	})

	since := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	records, err := c.SalesHistory(context.Background(), 4, 3, since)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "sale", records[0].Kind)
	assert.Equal(t, "2026-06-02", records[0].Date)
	assert.Equal(t, 7, records[0].Quantity)
}

func TestFetchFailureDegradesToEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	branches, err := c.Branches(context.Background())
	require.NoError(t, err)
	assert.Empty(t, branches)

	items, err := c.InventorySnapshot(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	records, err := c.SalesHistory(context.Background(), 1, 1, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, records)

	lots, err := c.Lots(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, lots)
}

func TestLots(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lotes", r.URL.Path)
		w.Write([]byte(`[
			{"id": 1, "medicamento_id": 4, "sucursal_id": 3, "numero_lote": "L-2026-04",
			 "fecha_vencimiento": "2026-10-01", "cantidad_actual": 30, "costo_unitario": 5.5}
		]`))
	})

	lots, err := c.Lots(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "L-2026-04", lots[0].LotNumber)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), lots[0].Expiry)
}
