// backend-go/internal/domain/models.go
package domain

import "time"

// Branch represents a pharmacy branch location
type Branch struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	Kind      string    `json:"kind" db:"kind"` // Principal, Sucursal, Especializada
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Medication is a catalog entry identified by SKU
type Medication struct {
	ID           int64   `json:"id" db:"id"`
	SKU          string  `json:"sku" db:"sku"`
	Name         string  `json:"name" db:"name"`
	GenericName  string  `json:"generic_name" db:"generic_name"`
	Category     string  `json:"category" db:"category"`
	PurchaseCost float64 `json:"purchase_cost" db:"purchase_cost"`
	SalePrice    float64 `json:"sale_price" db:"sale_price"`
	Manufacturer string  `json:"manufacturer" db:"manufacturer"`
}

// InventoryItem is one (medication, branch) stock row from the joined
// inventory view. It is a read-only snapshot for the duration of one
// analysis run; the engine never mutates it.
type InventoryItem struct {
	InventoryID  int64   `json:"inventory_id" db:"inventory_id"`
	MedicationID int64   `json:"medication_id" db:"medication_id"`
	SKU          string  `json:"sku" db:"sku"`
	Name         string  `json:"name" db:"name"`
	Category     string  `json:"category" db:"category"`
	PurchaseCost float64 `json:"purchase_cost" db:"purchase_cost"`
	SalePrice    float64 `json:"sale_price" db:"sale_price"`
	BranchID     int64   `json:"branch_id" db:"branch_id"`
	BranchName   string  `json:"branch_name" db:"branch_name"`
	CurrentStock int     `json:"current_stock" db:"current_stock"`
	MinimumStock int     `json:"minimum_stock" db:"minimum_stock"`
	MaximumStock int     `json:"maximum_stock" db:"maximum_stock"`

	// NextExpiry is the nearest lot expiry for this row, when known.
	NextExpiry *time.Time `json:"next_expiry,omitempty" db:"next_expiry"`
}

// SaleRecord is a historical outflow event for one medication at one branch.
// Records are immutable and append-only; the engine only reads a bounded
// window of them.
type SaleRecord struct {
	MedicationID int64     `json:"medication_id" db:"medication_id"`
	BranchID     int64     `json:"branch_id" db:"branch_id"`
	Date         string    `json:"date" db:"date"` // raw, parsed defensively
	Quantity     int       `json:"quantity" db:"quantity"`
	Kind         string    `json:"kind" db:"kind"` // only "sale" enters the stats
	RecordedAt   time.Time `json:"recorded_at" db:"recorded_at"`
}

// Lot is a batch of stock with an expiry date
type Lot struct {
	ID           int64     `json:"id" db:"id"`
	MedicationID int64     `json:"medication_id" db:"medication_id"`
	BranchID     int64     `json:"branch_id" db:"branch_id"`
	LotNumber    string    `json:"lot_number" db:"lot_number"`
	Expiry       time.Time `json:"expiry" db:"expiry"`
	Quantity     int       `json:"quantity" db:"quantity"`
	UnitCost     float64   `json:"unit_cost" db:"unit_cost"`
}

// DemandMetrics holds per-item, per-branch sales statistics derived from
// the historical window. All fields default to zero/neutral values when
// history is insufficient; no field is ever NaN or infinite.
type DemandMetrics struct {
	DailyVelocity float64 `json:"daily_velocity"`
	RotationIndex float64 `json:"rotation_index"`
	TrendSlope    float64 `json:"trend_slope"`
	Seasonality   float64 `json:"seasonality"`
	Variability   float64 `json:"variability"`
	SampleDays    int     `json:"sample_days"`
}

// Forecast is the projected demand over a horizon plus the safety stock
// needed for the configured service level. Both values are finite and >= 0.
type Forecast struct {
	HorizonDays     int     `json:"horizon_days"`
	PredictedDemand float64 `json:"predicted_demand"`
	SafetyStock     float64 `json:"safety_stock"`
}

// Priority tiers, highest first.
const (
	PriorityCritical = "CRITICAL"
	PriorityHigh     = "HIGH"
	PriorityMedium   = "MEDIUM"
	PriorityLow      = "LOW"
)

// Recommendation is one purchase suggestion for a branch
type Recommendation struct {
	MedicationID    int64   `json:"medication_id"`
	SKU             string  `json:"sku"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	BranchID        int64   `json:"branch_id"`
	CurrentStock    int     `json:"current_stock"`
	MinimumStock    int     `json:"minimum_stock"`
	OrderQuantity   int     `json:"order_quantity"`
	Priority        string  `json:"priority"`
	StockoutRisk    float64 `json:"stockout_risk"`
	Confidence      float64 `json:"confidence"`
	PredictedDemand float64 `json:"predicted_demand"`
	SafetyStock     float64 `json:"safety_stock"`
	PurchaseCost    float64 `json:"purchase_cost"`
	EstimatedSaving float64 `json:"estimated_saving"`
	Justification   string  `json:"justification"`
}

// Urgency tiers for redistribution.
const (
	UrgencyCritical = "CRITICAL"
	UrgencyHigh     = "HIGH"
	UrgencyMedium   = "MEDIUM"
)

// TransferOpportunity proposes moving surplus stock between two branches
// for the same SKU. Source and destination are always distinct and the
// quantity never exceeds min(source surplus, destination deficit).
type TransferOpportunity struct {
	MedicationID     int64   `json:"medication_id"`
	SKU              string  `json:"sku"`
	Name             string  `json:"name"`
	SourceBranchID   int64   `json:"source_branch_id"`
	SourceBranch     string  `json:"source_branch"`
	DestBranchID     int64   `json:"dest_branch_id"`
	DestBranch       string  `json:"dest_branch"`
	Quantity         int     `json:"quantity"`
	SourceStock      int     `json:"source_stock"`
	DestStock        int     `json:"dest_stock"`
	SourceExcess     int     `json:"source_excess"`
	DestDeficit      int     `json:"dest_deficit"`
	Urgency          string  `json:"urgency"`
	PriorityScore    float64 `json:"priority_score"`
	DistanceKm       float64 `json:"distance_km"`
	TransferCost     float64 `json:"transfer_cost"`
	TransferValue    float64 `json:"transfer_value"`
	NetSaving        float64 `json:"net_saving"`
	ROI              float64 `json:"roi"`
	Justification    string  `json:"justification"`
	RecommendedDate  string  `json:"recommended_date"`
}
