package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

// WriteRecommendationsXLSX writes a recommendation report as a workbook
// with one sheet of recommendations and one of summary stats.
func WriteRecommendationsXLSX(w io.Writer, report *domain.RecommendationReport) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Recommendations"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{
		"SKU", "Name", "Category", "Branch", "Current stock", "Minimum stock",
		"Order quantity", "Priority", "Stockout risk", "Confidence",
		"Predicted demand", "Safety stock", "Purchase cost", "Estimated saving",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range report.Recommendations {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			rec.SKU, rec.Name, rec.Category, rec.BranchID, rec.CurrentStock,
			rec.MinimumStock, rec.OrderQuantity, rec.Priority, rec.StockoutRisk,
			rec.Confidence, rec.PredictedDemand, rec.SafetyStock,
			rec.PurchaseCost, rec.EstimatedSaving,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	statsSheet := "Summary"
	if _, err := f.NewSheet(statsSheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	summary := [][]any{
		{"Total recommendations", report.Stats.Total},
		{"Total cost", report.Stats.TotalCost},
		{"Total estimated savings", report.Stats.TotalSavings},
		{"Average stockout risk", report.Stats.AvgRisk},
		{"Average confidence", report.Stats.AvgConfidence},
		{"Generated at", report.Metadata.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Engine version", report.Metadata.EngineVersion},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(statsSheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}

	return f.Write(w)
}

// WriteRedistributionXLSX writes a redistribution report as a workbook.
func WriteRedistributionXLSX(w io.Writer, report *domain.RedistributionReport) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Transfers"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{
		"SKU", "Name", "Source", "Destination", "Quantity", "Urgency",
		"Priority score", "Distance km", "Transfer cost", "Transfer value",
		"Net saving", "ROI", "Recommended date",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, op := range report.Opportunities {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			op.SKU, op.Name, op.SourceBranch, op.DestBranch, op.Quantity,
			op.Urgency, op.PriorityScore, op.DistanceKm, op.TransferCost,
			op.TransferValue, op.NetSaving, op.ROI, op.RecommendedDate,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}
