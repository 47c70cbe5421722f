package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

func testItem() domain.InventoryItem {
	return domain.InventoryItem{
		InventoryID:  1,
		MedicationID: 1,
		SKU:          "MED-001",
		Name:         "Paracetamol 500mg",
		Category:     "Analgesico",
		PurchaseCost: 10,
		SalePrice:    25,
		BranchID:     1,
		CurrentStock: 20,
		MinimumStock: 50,
		MaximumStock: 200,
	}
}

func TestStockoutRiskBoundaries(t *testing.T) {
	r := NewRanker(DefaultParams())
	forecast := domain.Forecast{PredictedDemand: 80, SafetyStock: 20}

	assert.Equal(t, 1.0, r.StockoutRisk(0, forecast))
	assert.Equal(t, 1.0, r.StockoutRisk(-3, forecast))
	assert.Equal(t, 0.0, r.StockoutRisk(100, forecast))
	assert.Equal(t, 0.0, r.StockoutRisk(500, forecast))

	// Half the requirement sits exactly on the logistic midpoint.
	assert.InDelta(t, 0.5, r.StockoutRisk(50, forecast), 1e-9)
}

func TestStockoutRiskMonotonic(t *testing.T) {
	r := NewRanker(DefaultParams())
	forecast := domain.Forecast{PredictedDemand: 100, SafetyStock: 0}

	low := r.StockoutRisk(75, forecast)
	mid := r.StockoutRisk(50, forecast)
	high := r.StockoutRisk(25, forecast)

	assert.Greater(t, high, mid)
	assert.Greater(t, mid, low)
	assert.InDelta(t, 1/(1+math.Exp(-2)), high, 1e-9)
	assert.InDelta(t, 1/(1+math.Exp(2)), low, 1e-9)
}

func TestStockoutRiskDegenerateForecast(t *testing.T) {
	r := NewRanker(DefaultParams())

	risk := r.StockoutRisk(10, domain.Forecast{PredictedDemand: math.NaN()})
	assert.Equal(t, 0.5, risk)
}

func TestEvaluateSkipsDormantStockedItem(t *testing.T) {
	r := NewRanker(DefaultParams())

	item := testItem()
	item.CurrentStock = 60 // above minimum

	metrics := domain.DemandMetrics{RotationIndex: 0.4, Seasonality: 1}
	_, ok := r.Evaluate(item, metrics, domain.Forecast{PredictedDemand: 1})
	assert.False(t, ok)
}

func TestEvaluateSkipsHealthyItem(t *testing.T) {
	r := NewRanker(DefaultParams())

	item := testItem()
	item.CurrentStock = 180 // covers demand with room to spare

	metrics := domain.DemandMetrics{RotationIndex: 60, DailyVelocity: 2, Seasonality: 1, SampleDays: 30}
	forecast := domain.Forecast{HorizonDays: 30, PredictedDemand: 60, SafetyStock: 10}

	_, ok := r.Evaluate(item, metrics, forecast)
	assert.False(t, ok)
}

func TestEvaluateCriticalWhenEmpty(t *testing.T) {
	r := NewRanker(DefaultParams())

	item := testItem()
	item.CurrentStock = 0

	metrics := domain.DemandMetrics{RotationIndex: 150, DailyVelocity: 5, Seasonality: 1, SampleDays: 30}
	forecast := domain.Forecast{HorizonDays: 30, PredictedDemand: 150, SafetyStock: 20}

	rec, ok := r.Evaluate(item, metrics, forecast)
	require.True(t, ok)

	assert.Equal(t, domain.PriorityCritical, rec.Priority)
	assert.Equal(t, 1.0, rec.StockoutRisk)
	assert.Positive(t, rec.OrderQuantity)
	assert.NotEmpty(t, rec.Justification)
}

func TestEvaluateCategoryMultiplierRaisesTier(t *testing.T) {
	params := DefaultParams()
	params.CategoryMultipliers = map[string]float64{"antibiotico": 1.5}
	r := NewRanker(params)

	item := testItem()
	item.CurrentStock = 40

	metrics := domain.DemandMetrics{RotationIndex: 90, DailyVelocity: 3, Seasonality: 1, SampleDays: 30}
	forecast := domain.Forecast{HorizonDays: 30, PredictedDemand: 90, SafetyStock: 10}

	base, ok := r.Evaluate(item, metrics, forecast)
	require.True(t, ok)

	item.Category = "Antibiótico"
	boosted, ok := r.Evaluate(item, metrics, forecast)
	require.True(t, ok)

	baseScore := priorityRank[base.Priority]
	boostedScore := priorityRank[boosted.Priority]
	assert.LessOrEqual(t, boostedScore, baseScore)
}

func TestPriorityTierCutoffs(t *testing.T) {
	r := NewRanker(DefaultParams())

	assert.Equal(t, domain.PriorityCritical, r.priorityTier(80))
	assert.Equal(t, domain.PriorityHigh, r.priorityTier(79.9))
	assert.Equal(t, domain.PriorityHigh, r.priorityTier(60))
	assert.Equal(t, domain.PriorityMedium, r.priorityTier(59.9))
	assert.Equal(t, domain.PriorityMedium, r.priorityTier(40))
	assert.Equal(t, domain.PriorityLow, r.priorityTier(39.9))
}

func TestOrderQuantityBounds(t *testing.T) {
	params := DefaultParams()
	r := NewRanker(params)

	item := testItem()
	item.CurrentStock = 10

	metrics := domain.DemandMetrics{DailyVelocity: 4, Seasonality: 1}
	forecast := domain.Forecast{HorizonDays: 30, PredictedDemand: 100, SafetyStock: 20}

	eoq := math.Sqrt(2 * (4 * 365) * params.OrderCost / (params.HoldingRate * item.PurchaseCost))
	need := 100.0 + 20 - 10

	expected := math.Max(need, eoq/2)
	expected = math.Min(expected, float64(item.MaximumStock-item.CurrentStock))

	assert.Equal(t, int(math.Round(expected)), r.OrderQuantity(item, metrics, forecast))
}

func TestOrderQuantityCappedByMaximum(t *testing.T) {
	r := NewRanker(DefaultParams())

	item := testItem()
	item.CurrentStock = 190
	item.MaximumStock = 200

	metrics := domain.DemandMetrics{DailyVelocity: 10, Seasonality: 1}
	forecast := domain.Forecast{HorizonDays: 30, PredictedDemand: 300, SafetyStock: 50}

	// The gap to maximum wins, whatever the demand says.
	assert.Equal(t, 10, r.OrderQuantity(item, metrics, forecast))
}

func TestOrderQuantityWithoutMaximumUsesEOQCeiling(t *testing.T) {
	params := DefaultParams()
	r := NewRanker(params)

	item := testItem()
	item.CurrentStock = 0
	item.MaximumStock = 0

	metrics := domain.DemandMetrics{DailyVelocity: 1, Seasonality: 1}
	forecast := domain.Forecast{HorizonDays: 30, PredictedDemand: 10000, SafetyStock: 0}

	eoq := math.Sqrt(2 * 365 * params.OrderCost / (params.HoldingRate * item.PurchaseCost))
	assert.Equal(t, int(math.Round(2*eoq)), r.OrderQuantity(item, metrics, forecast))
}

func TestConfidence(t *testing.T) {
	r := NewRanker(DefaultParams())

	assert.InDelta(t, 1.0, r.Confidence(domain.DemandMetrics{SampleDays: 30}), 1e-9)
	assert.InDelta(t, 1.0, r.Confidence(domain.DemandMetrics{SampleDays: 90}), 1e-9)
	assert.InDelta(t, 0.65, r.Confidence(domain.DemandMetrics{SampleDays: 15}), 1e-9)
	assert.InDelta(t, 0.5, r.Confidence(domain.DemandMetrics{SampleDays: 30, Variability: 1}), 1e-9)

	// Sparse or wild history bottoms out at 0.3, never below.
	assert.Equal(t, 0.3, r.Confidence(domain.DemandMetrics{}))
	assert.Equal(t, 0.3, r.Confidence(domain.DemandMetrics{SampleDays: 2, Variability: 4}))
}

func TestEvaluateDeterministic(t *testing.T) {
	r := NewRanker(DefaultParams())

	item := testItem()
	metrics := domain.DemandMetrics{RotationIndex: 90, DailyVelocity: 3, Variability: 0.4, Seasonality: 1.1, SampleDays: 45}
	forecast := domain.Forecast{HorizonDays: 30, PredictedDemand: 99, SafetyStock: 9.2}

	first, ok := r.Evaluate(item, metrics, forecast)
	require.True(t, ok)
	second, ok := r.Evaluate(item, metrics, forecast)
	require.True(t, ok)

	assert.Equal(t, first, second)
}

func TestSortRecommendations(t *testing.T) {
	recs := []domain.Recommendation{
		{SKU: "a", Priority: domain.PriorityLow, StockoutRisk: 0.9},
		{SKU: "b", Priority: domain.PriorityCritical, StockoutRisk: 0.7},
		{SKU: "c", Priority: domain.PriorityHigh, StockoutRisk: 0.5},
		{SKU: "d", Priority: domain.PriorityCritical, StockoutRisk: 0.95},
	}

	SortRecommendations(recs)

	order := []string{recs[0].SKU, recs[1].SKU, recs[2].SKU, recs[3].SKU}
	assert.Equal(t, []string{"d", "b", "c", "a"}, order)

	// Sorting again must not reshuffle anything.
	SortRecommendations(recs)
	assert.Equal(t, "d", recs[0].SKU)
	assert.Equal(t, "a", recs[3].SKU)
}
