package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

// riskSteepness controls how fast the logistic stockout curve moves from 1
// to 0 as the availability ratio grows past its 0.5 midpoint.
const riskSteepness = 8.0

// Ranker turns an inventory row plus its metrics and forecast into a
// prioritized purchase recommendation, or decides the item needs none.
type Ranker struct {
	params Params
}

// NewRanker creates a ranker with the given parameters.
func NewRanker(params Params) *Ranker {
	return &Ranker{params: params}
}

// Evaluate decides whether item warrants a recommendation. The boolean is
// false when the item is skipped by an eligibility gate.
func (r *Ranker) Evaluate(item domain.InventoryItem, metrics domain.DemandMetrics, forecast domain.Forecast) (domain.Recommendation, bool) {
	// Dormant and adequately stocked: nothing to do.
	if metrics.RotationIndex < 1 && item.CurrentStock >= item.MinimumStock {
		return domain.Recommendation{}, false
	}

	risk := r.StockoutRisk(item.CurrentStock, forecast)

	// Healthy item, negligible risk: stay quiet.
	if risk < 0.1 && item.CurrentStock >= item.MinimumStock {
		return domain.Recommendation{}, false
	}

	deficitRatio := SafeDiv(math.Max(float64(item.MinimumStock-item.CurrentStock), 0), float64(item.MinimumStock), 0)
	score := (risk*100 + deficitRatio*50) * r.params.categoryMultiplier(item.Category)
	priority := r.priorityTier(score)

	quantity := r.OrderQuantity(item, metrics, forecast)
	confidence := r.Confidence(metrics)

	cost := float64(quantity) * item.PurchaseCost
	saving := float64(quantity) * (item.SalePrice - item.PurchaseCost)

	return domain.Recommendation{
		MedicationID:    item.MedicationID,
		SKU:             item.SKU,
		Name:            item.Name,
		Category:        item.Category,
		BranchID:        item.BranchID,
		CurrentStock:    item.CurrentStock,
		MinimumStock:    item.MinimumStock,
		OrderQuantity:   quantity,
		Priority:        priority,
		StockoutRisk:    Sanitize(risk, 0.5),
		Confidence:      confidence,
		PredictedDemand: forecast.PredictedDemand,
		SafetyStock:     forecast.SafetyStock,
		PurchaseCost:    Sanitize(cost, 0),
		EstimatedSaving: Sanitize(saving, 0),
		Justification: fmt.Sprintf("Stock %s: %d unidades (minimo: %d, demanda %dd: %.0f)",
			priorityLabel(priority), item.CurrentStock, item.MinimumStock,
			forecast.HorizonDays, forecast.PredictedDemand),
	}, true
}

// StockoutRisk maps available stock against the forecast requirement to a
// probability in [0,1]: 0 when stock covers demand plus safety stock, 1 when
// stock is gone, and a logistic curve of the availability ratio in between.
// Degenerate inputs resolve to the neutral 0.5.
func (r *Ranker) StockoutRisk(currentStock int, forecast domain.Forecast) float64 {
	required := forecast.PredictedDemand + forecast.SafetyStock
	if math.IsNaN(required) || math.IsInf(required, 0) {
		return 0.5
	}
	if currentStock <= 0 {
		return 1
	}
	if float64(currentStock) >= required {
		return 0
	}

	ratio := SafeDiv(float64(currentStock), required, math.NaN())
	if math.IsNaN(ratio) {
		return 0.5
	}
	risk := 1 / (1 + math.Exp(riskSteepness*(ratio-0.5)))
	return Clamp(Sanitize(risk, 0.5), 0, 1)
}

// OrderQuantity computes the suggested order size: the gap to the target
// level (demand + safety stock), bounded below by half the economic order
// quantity and above by remaining capacity to the configured maximum, or
// twice the EOQ when no maximum is set.
func (r *Ranker) OrderQuantity(item domain.InventoryItem, metrics domain.DemandMetrics, forecast domain.Forecast) int {
	target := forecast.PredictedDemand + forecast.SafetyStock
	need := math.Max(0, target-float64(item.CurrentStock))

	annualDemand := metrics.DailyVelocity * 365
	holding := r.params.HoldingRate * item.PurchaseCost
	eoq := math.Sqrt(SafeDiv(2*annualDemand*r.params.OrderCost, holding, 0))
	eoq = Sanitize(eoq, 0)

	lower := eoq / 2
	var upper float64
	if item.MaximumStock > 0 {
		upper = math.Max(0, float64(item.MaximumStock-item.CurrentStock))
	} else {
		upper = 2 * eoq
	}

	qty := math.Max(need, lower)
	if upper > 0 || item.MaximumStock > 0 {
		qty = math.Min(qty, upper)
	}
	qty = math.Max(0, Sanitize(qty, 0))
	return int(math.Round(qty))
}

// Confidence grows with the number of daily observations behind the metrics
// and shrinks with demand variability, clamped to [0.3, 1.0].
func (r *Ranker) Confidence(metrics domain.DemandMetrics) float64 {
	history := math.Min(float64(metrics.SampleDays)/30, 1)
	confidence := (0.3 + 0.7*history) / (1 + metrics.Variability)
	return Clamp(Sanitize(confidence, 0.3), 0.3, 1.0)
}

func (r *Ranker) priorityTier(score float64) string {
	switch {
	case score >= r.params.ScoreCritical:
		return domain.PriorityCritical
	case score >= r.params.ScoreHigh:
		return domain.PriorityHigh
	case score >= r.params.ScoreMedium:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func priorityLabel(priority string) string {
	switch priority {
	case domain.PriorityCritical:
		return "critico"
	case domain.PriorityHigh:
		return "alto"
	case domain.PriorityMedium:
		return "medio"
	default:
		return "bajo"
	}
}

var priorityRank = map[string]int{
	domain.PriorityCritical: 0,
	domain.PriorityHigh:     1,
	domain.PriorityMedium:   2,
	domain.PriorityLow:      3,
}

// SortRecommendations orders a report: priority tier first (CRITICAL on
// top), then descending stockout risk.
func SortRecommendations(recs []domain.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		ri, rj := priorityRank[recs[i].Priority], priorityRank[recs[j].Priority]
		if ri != rj {
			return ri < rj
		}
		return recs[i].StockoutRisk > recs[j].StockoutRisk
	})
}
