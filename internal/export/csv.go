package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

// WriteRecommendationsCSV streams a recommendation report as CSV.
func WriteRecommendationsCSV(w io.Writer, report *domain.RecommendationReport) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"sku", "name", "category", "branch_id", "current_stock", "minimum_stock",
		"order_quantity", "priority", "stockout_risk", "confidence",
		"predicted_demand", "safety_stock", "purchase_cost", "estimated_saving",
		"justification",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range report.Recommendations {
		row := []string{
			rec.SKU,
			rec.Name,
			rec.Category,
			strconv.FormatInt(rec.BranchID, 10),
			strconv.Itoa(rec.CurrentStock),
			strconv.Itoa(rec.MinimumStock),
			strconv.Itoa(rec.OrderQuantity),
			rec.Priority,
			formatFloat(rec.StockoutRisk),
			formatFloat(rec.Confidence),
			formatFloat(rec.PredictedDemand),
			formatFloat(rec.SafetyStock),
			formatFloat(rec.PurchaseCost),
			formatFloat(rec.EstimatedSaving),
			rec.Justification,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", rec.SKU, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteRedistributionCSV streams a redistribution report as CSV.
func WriteRedistributionCSV(w io.Writer, report *domain.RedistributionReport) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"sku", "name", "source_branch", "dest_branch", "quantity", "urgency",
		"priority_score", "distance_km", "transfer_cost", "transfer_value",
		"net_saving", "roi", "recommended_date",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, op := range report.Opportunities {
		row := []string{
			op.SKU,
			op.Name,
			op.SourceBranch,
			op.DestBranch,
			strconv.Itoa(op.Quantity),
			op.Urgency,
			formatFloat(op.PriorityScore),
			formatFloat(op.DistanceKm),
			formatFloat(op.TransferCost),
			formatFloat(op.TransferValue),
			formatFloat(op.NetSaving),
			formatFloat(op.ROI),
			op.RecommendedDate,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", op.SKU, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
