package postgrest

import (
	"time"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

// Row types mirror the upstream schema, which keeps its Spanish column
// names. Conversion to domain types happens here and nowhere else.

type branchRow struct {
	ID        int64   `json:"id"`
	Code      string  `json:"codigo"`
	Name      string  `json:"nombre"`
	Kind      string  `json:"tipo"`
	Latitude  float64 `json:"latitud"`
	Longitude float64 `json:"longitud"`
	CreatedAt string  `json:"created_at"`
}

func (r branchRow) toDomain() domain.Branch {
	b := domain.Branch{
		ID:        r.ID,
		Code:      r.Code,
		Name:      r.Name,
		Kind:      r.Kind,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		b.CreatedAt = t
	}
	return b
}

type medicationRow struct {
	ID           int64   `json:"id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"nombre"`
	GenericName  string  `json:"nombre_generico"`
	Category     string  `json:"categoria"`
	PurchaseCost float64 `json:"precio_compra"`
	SalePrice    float64 `json:"precio_venta"`
	Manufacturer string  `json:"fabricante"`
}

func (r medicationRow) toDomain() domain.Medication {
	return domain.Medication{
		ID:           r.ID,
		SKU:          r.SKU,
		Name:         r.Name,
		GenericName:  r.GenericName,
		Category:     r.Category,
		PurchaseCost: r.PurchaseCost,
		SalePrice:    r.SalePrice,
		Manufacturer: r.Manufacturer,
	}
}

type inventoryRow struct {
	InventoryID  int64   `json:"inventario_id"`
	MedicationID int64   `json:"medicamento_id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"nombre"`
	Category     string  `json:"categoria"`
	PurchaseCost float64 `json:"precio_compra"`
	SalePrice    float64 `json:"precio_venta"`
	BranchID     int64   `json:"sucursal_id"`
	BranchName   string  `json:"sucursal_nombre"`
	CurrentStock int     `json:"stock_actual"`
	MinimumStock int     `json:"stock_minimo"`
	MaximumStock int     `json:"stock_maximo"`
	NextExpiry   string  `json:"proxima_caducidad"`
}

func (r inventoryRow) toDomain() domain.InventoryItem {
	item := domain.InventoryItem{
		InventoryID:  r.InventoryID,
		MedicationID: r.MedicationID,
		SKU:          r.SKU,
		Name:         r.Name,
		Category:     r.Category,
		PurchaseCost: r.PurchaseCost,
		SalePrice:    r.SalePrice,
		BranchID:     r.BranchID,
		BranchName:   r.BranchName,
		CurrentStock: r.CurrentStock,
		MinimumStock: r.MinimumStock,
		MaximumStock: r.MaximumStock,
	}
	if r.NextExpiry != "" {
		if t, err := time.Parse("2006-01-02", r.NextExpiry); err == nil {
			item.NextExpiry = &t
		}
	}
	return item
}

type saleRow struct {
	MedicationID int64  `json:"medicamento_id"`
	BranchID     int64  `json:"sucursal_id"`
	Date         string `json:"fecha"`
	Quantity     int    `json:"cantidad"`
	Kind         string `json:"tipo"`
	RecordedAt   string `json:"created_at"`
}

func (r saleRow) toDomain() domain.SaleRecord {
	rec := domain.SaleRecord{
		MedicationID: r.MedicationID,
		BranchID:     r.BranchID,
		Date:         r.Date,
		Quantity:     r.Quantity,
		Kind:         r.Kind,
	}
	if rec.Kind == "venta" {
		rec.Kind = "sale"
	}
	if t, err := time.Parse(time.RFC3339, r.RecordedAt); err == nil {
		rec.RecordedAt = t
	}
	return rec
}

type lotRow struct {
	ID           int64   `json:"id"`
	MedicationID int64   `json:"medicamento_id"`
	BranchID     int64   `json:"sucursal_id"`
	LotNumber    string  `json:"numero_lote"`
	Expiry       string  `json:"fecha_vencimiento"`
	Quantity     int     `json:"cantidad_actual"`
	UnitCost     float64 `json:"costo_unitario"`
}

func (r lotRow) toDomain() domain.Lot {
	lot := domain.Lot{
		ID:           r.ID,
		MedicationID: r.MedicationID,
		BranchID:     r.BranchID,
		LotNumber:    r.LotNumber,
		Quantity:     r.Quantity,
		UnitCost:     r.UnitCost,
	}
	if t, err := time.Parse("2006-01-02", r.Expiry); err == nil {
		lot.Expiry = t
	}
	return lot
}
