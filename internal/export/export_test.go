package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

func sampleRecommendationReport() *domain.RecommendationReport {
	return &domain.RecommendationReport{
		Recommendations: []domain.Recommendation{
			{
				SKU: "MED-001", Name: "Paracetamol", Category: "Analgesico",
				BranchID: 1, CurrentStock: 5, MinimumStock: 50, OrderQuantity: 120,
				Priority: domain.PriorityCritical, StockoutRisk: 0.97, Confidence: 0.85,
				PredictedDemand: 140, SafetyStock: 22, PurchaseCost: 960,
				EstimatedSaving: 1800, Justification: "Stock critico",
			},
		},
		Stats: domain.RecommendationStats{Total: 1, TotalCost: 960, TotalSavings: 1800},
	}
}

func TestWriteRecommendationsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecommendationsCSV(&buf, sampleRecommendationReport()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "sku", rows[0][0])
	assert.Equal(t, "MED-001", rows[1][0])
	assert.Equal(t, "120", rows[1][6])
	assert.Equal(t, "CRITICAL", rows[1][7])
	assert.Equal(t, "0.97", rows[1][8])
}

func TestWriteRedistributionCSV(t *testing.T) {
	report := &domain.RedistributionReport{
		Opportunities: []domain.TransferOpportunity{
			{
				SKU: "MED-002", Name: "Amoxicilina", SourceBranch: "Central",
				DestBranch: "Norte", Quantity: 15, Urgency: domain.UrgencyCritical,
				PriorityScore: 149.5, DistanceKm: 8.3, TransferCost: 110,
				TransferValue: 375, NetSaving: 265, ROI: 2.41,
				RecommendedDate: "2026-09-01",
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRedistributionCSV(&buf, report))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Central", rows[1][2])
	assert.Equal(t, "Norte", rows[1][3])
	assert.Equal(t, "15", rows[1][4])
}

func TestWriteRecommendationsXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecommendationsXLSX(&buf, sampleRecommendationReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Recommendations")
	assert.Contains(t, f.GetSheetList(), "Summary")

	sku, err := f.GetCellValue("Recommendations", "A2")
	require.NoError(t, err)
	assert.Equal(t, "MED-001", sku)

	priority, err := f.GetCellValue("Recommendations", "H2")
	require.NoError(t, err)
	assert.Equal(t, "CRITICAL", priority)
}
