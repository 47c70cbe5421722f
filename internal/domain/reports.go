// backend-go/internal/domain/reports.go
package domain

import "time"

// ReportMetadata is attached to every generated report
type ReportMetadata struct {
	Tenant        string    `json:"tenant,omitempty"`
	BranchID      int64     `json:"branch_id,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
	EngineVersion string    `json:"engine_version"`
}

// RecommendationStats summarizes a purchase recommendation report
type RecommendationStats struct {
	Total         int            `json:"total"`
	ByPriority    map[string]int `json:"by_priority"`
	TotalCost     float64        `json:"total_cost"`
	TotalSavings  float64        `json:"total_savings"`
	AvgRisk       float64        `json:"avg_risk"`
	AvgConfidence float64        `json:"avg_confidence"`
}

// RecommendationReport is the purchase-path analysis result for one branch
type RecommendationReport struct {
	Recommendations []Recommendation    `json:"recommendations"`
	Stats           RecommendationStats `json:"estadisticas"`
	Metadata        ReportMetadata      `json:"metadata"`
}

// BranchFlow aggregates transfer traffic for one branch in a redistribution
// summary (either as destination or as source).
type BranchFlow struct {
	Branch    string  `json:"branch"`
	Transfers int     `json:"transfers"`
	Value     float64 `json:"value"`
}

// UrgencyBreakdown groups opportunity counts and money by urgency tier
type UrgencyBreakdown struct {
	Count  int     `json:"count"`
	Value  float64 `json:"value"`
	Saving float64 `json:"saving"`
}

// RedistributionSummary aggregates a redistribution report
type RedistributionSummary struct {
	TotalTransfers int                         `json:"total_transfers"`
	TotalSavings   float64                     `json:"total_savings"`
	TotalValue     float64                     `json:"total_value"`
	TotalCost      float64                     `json:"total_cost"`
	ByUrgency      map[string]UrgencyBreakdown `json:"by_urgency"`
	TopDeficit     []BranchFlow                `json:"most_in_need"`
	TopSurplus     []BranchFlow                `json:"most_surplus"`
}

// RedistributionReport is the transfer-path analysis result
type RedistributionReport struct {
	Opportunities []TransferOpportunity `json:"oportunidades"`
	Summary       RedistributionSummary `json:"resumen"`
	Metadata      ReportMetadata        `json:"metadata"`
}

// BranchAnalytics is the per-branch health view for dashboards
type BranchAnalytics struct {
	BranchID         int64            `json:"branch_id"`
	BranchName       string           `json:"branch_name"`
	BranchCode       string           `json:"branch_code"`
	StockScore       float64          `json:"stock_score"`
	InventoryValue   float64          `json:"inventory_value"`
	CriticalAlerts   int              `json:"critical_alerts"`
	PredictedTurns   float64          `json:"predicted_turns"`
	StockEfficiency  float64          `json:"stock_efficiency"`
	Trend            string           `json:"trend"`
	TotalMedications int              `json:"total_medications"`
	TotalUnits       int              `json:"total_units"`
	ValueAtRisk      float64          `json:"value_at_risk"`
	CriticalBuys     []Recommendation `json:"critical_buys"`
}

// ConsolidatedDashboard aggregates analytics across all branches
type ConsolidatedDashboard struct {
	TotalBranches        int               `json:"total_branches"`
	TotalInvestment      float64           `json:"total_investment"`
	TotalValueAtRisk     float64           `json:"total_value_at_risk"`
	GlobalAlerts         int               `json:"global_alerts"`
	ProductsAnalyzed     int               `json:"products_analyzed"`
	RedistributionSaving float64           `json:"redistribution_saving"`
	Opportunities        int               `json:"redistribution_opportunities"`
	Branches             []BranchAnalytics `json:"branches"`
	Metadata             ReportMetadata    `json:"metadata"`
}

// ExpiryAlert flags a lot approaching its expiry date
type ExpiryAlert struct {
	MedicationID int64   `json:"medication_id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	BranchID     int64   `json:"branch_id"`
	BranchName   string  `json:"branch_name"`
	LotNumber    string  `json:"lot_number"`
	Expiry       string  `json:"expiry"`
	DaysLeft     int     `json:"days_left"`
	Quantity     int     `json:"quantity"`
	ValueAtRisk  float64 `json:"value_at_risk"`
	Priority     string  `json:"priority"`
	Discount     float64 `json:"suggested_discount_pct"`
}

// ExpiryReport lists expiry alerts plus totals
type ExpiryReport struct {
	Alerts      []ExpiryAlert  `json:"alertas"`
	Total       int            `json:"total_alerts"`
	ValueAtRisk float64        `json:"value_at_risk"`
	ByPriority  map[string]int `json:"by_priority"`
	Metadata    ReportMetadata `json:"metadata"`
}

// DemandProjection is a per-SKU multi-horizon forecast row
type DemandProjection struct {
	MedicationID int64   `json:"medication_id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	CurrentStock int     `json:"current_stock"`
	Demand30     float64 `json:"demand_30d"`
	Demand60     float64 `json:"demand_60d"`
	Demand90     float64 `json:"demand_90d"`
	Confidence   float64 `json:"confidence"`
	Trend        string  `json:"trend"`
}

// ForecastReport lists demand projections for a branch
type ForecastReport struct {
	Projections []DemandProjection `json:"predicciones"`
	Metadata    ReportMetadata     `json:"metadata"`
}
