package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

// Matcher pairs surplus branches with deficit branches for the same SKU and
// proposes transfers that are both geographically and economically viable.
type Matcher struct {
	params   Params
	distance DistanceProvider
	now      func() time.Time
}

// NewMatcher creates a matcher using the given distance provider.
func NewMatcher(params Params, distance DistanceProvider) *Matcher {
	return &Matcher{params: params, distance: distance, now: time.Now}
}

type surplusPosition struct {
	item      domain.InventoryItem
	available int
}

type deficitPosition struct {
	item       domain.InventoryItem
	needed     int
	stockRatio float64
	urgency    string
}

// Match scans all inventory rows grouped by medication and returns transfer
// opportunities ordered by priority score, then net saving. A source's
// excess is consumed as transfers are emitted so the same units are never
// promised twice.
func (m *Matcher) Match(items []domain.InventoryItem, branches []domain.Branch) []domain.TransferOpportunity {
	branchIdx := make(map[int64]domain.Branch, len(branches))
	for _, b := range branches {
		branchIdx[b.ID] = b
	}

	byMedication := make(map[int64][]domain.InventoryItem)
	for _, it := range items {
		byMedication[it.MedicationID] = append(byMedication[it.MedicationID], it)
	}

	var opportunities []domain.TransferOpportunity
	for _, rows := range byMedication {
		opportunities = append(opportunities, m.matchMedication(rows, branchIdx)...)
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		if opportunities[i].PriorityScore != opportunities[j].PriorityScore {
			return opportunities[i].PriorityScore > opportunities[j].PriorityScore
		}
		return opportunities[i].NetSaving > opportunities[j].NetSaving
	})
	return opportunities
}

func (m *Matcher) matchMedication(rows []domain.InventoryItem, branchIdx map[int64]domain.Branch) []domain.TransferOpportunity {
	var surpluses []*surplusPosition
	var deficits []deficitPosition

	for _, row := range rows {
		if excess := m.excessUnits(row); excess > 0 {
			surpluses = append(surpluses, &surplusPosition{item: row, available: excess})
			continue
		}
		if row.CurrentStock < row.MinimumStock {
			ratio := SafeDiv(float64(row.CurrentStock), float64(row.MinimumStock), 1)
			deficits = append(deficits, deficitPosition{
				item:       row,
				needed:     row.MinimumStock - row.CurrentStock,
				stockRatio: ratio,
				urgency:    deficitUrgency(ratio),
			})
		}
	}
	if len(surpluses) == 0 || len(deficits) == 0 {
		return nil
	}

	// Most starved destinations pick sources first.
	sort.SliceStable(deficits, func(i, j int) bool {
		return deficits[i].stockRatio < deficits[j].stockRatio
	})

	var out []domain.TransferOpportunity
	for _, def := range deficits {
		destBranch, ok := branchIdx[def.item.BranchID]
		if !ok {
			continue
		}
		remaining := def.needed

		for _, src := range surpluses {
			if remaining < m.params.MinTransferQty || src.available < m.params.MinTransferQty {
				continue
			}
			if src.item.BranchID == def.item.BranchID {
				continue
			}
			srcBranch, ok := branchIdx[src.item.BranchID]
			if !ok {
				continue
			}

			dist := m.distance.DistanceKm(srcBranch, destBranch)
			if dist > m.params.MaxTransferKm {
				continue
			}

			qty := remaining
			if src.available < qty {
				qty = src.available
			}
			if qty < m.params.MinTransferQty {
				continue
			}

			cost := m.params.TransferFixedCost + m.params.TransferPerKm*dist + m.params.TransferPerUnit*float64(qty)
			perUnit := SafeDiv(m.params.TransferFixedCost+m.params.TransferPerKm*dist, float64(qty), math.Inf(1)) + m.params.TransferPerUnit
			if perUnit >= def.item.PurchaseCost {
				continue
			}

			value := float64(qty) * def.item.SalePrice
			saving := value - cost
			score := m.urgencyScore(def, src)

			out = append(out, domain.TransferOpportunity{
				MedicationID:    def.item.MedicationID,
				SKU:             def.item.SKU,
				Name:            def.item.Name,
				SourceBranchID:  src.item.BranchID,
				SourceBranch:    srcBranch.Name,
				DestBranchID:    def.item.BranchID,
				DestBranch:      destBranch.Name,
				Quantity:        qty,
				SourceStock:     src.item.CurrentStock,
				DestStock:       def.item.CurrentStock,
				SourceExcess:    src.available,
				DestDeficit:     def.needed,
				Urgency:         def.urgency,
				PriorityScore:   math.Round(score*10) / 10,
				DistanceKm:      math.Round(dist*10) / 10,
				TransferCost:    math.Round(cost*100) / 100,
				TransferValue:   math.Round(value*100) / 100,
				NetSaving:       math.Round(saving*100) / 100,
				ROI:             math.Round(SafeDiv(saving, cost, 0)*100) / 100,
				RecommendedDate: m.recommendedDate(def.urgency),
				Justification: fmt.Sprintf("%s tiene %d unidades (minimo: %d); %s puede ceder %d sin bajar de su reserva",
					destBranch.Name, def.item.CurrentStock, def.item.MinimumStock, srcBranch.Name, qty),
			})

			src.available -= qty
			remaining -= qty
			if remaining < m.params.MinTransferQty {
				break
			}
		}
	}
	return out
}

// excessUnits returns how many units a row can give away under the active
// surplus policy, or 0 when the row is not a surplus.
func (m *Matcher) excessUnits(row domain.InventoryItem) int {
	switch m.params.SurplusPolicy {
	case PolicyMaxCapacity:
		if row.MaximumStock <= 0 {
			return 0
		}
		if float64(row.CurrentStock) <= 0.8*float64(row.MaximumStock) {
			return 0
		}
		return row.CurrentStock - int(math.Ceil(0.6*float64(row.MaximumStock)))
	default: // PolicyMinBuffer
		if row.MinimumStock <= 0 || row.CurrentStock < 2*row.MinimumStock {
			return 0
		}
		return row.CurrentStock - int(math.Ceil(1.5*float64(row.MinimumStock)))
	}
}

func deficitUrgency(stockRatio float64) string {
	switch {
	case stockRatio <= 0.5:
		return domain.UrgencyCritical
	case stockRatio <= 0.8:
		return domain.UrgencyHigh
	default:
		return domain.UrgencyMedium
	}
}

// urgencyScore blends the destination's tier and starvation level with the
// source's surplus depth and near-term expiry pressure.
func (m *Matcher) urgencyScore(def deficitPosition, src *surplusPosition) float64 {
	var score float64
	switch def.urgency {
	case domain.UrgencyCritical:
		score = 100
	case domain.UrgencyHigh:
		score = 70
	default:
		score = 30
	}

	score += 50 * Clamp(1-def.stockRatio, 0, 1)

	surplusRatio := SafeDiv(float64(src.available), float64(src.item.CurrentStock), 0)
	score += 30 * Clamp(surplusRatio, 0, 1)

	if src.item.NextExpiry != nil {
		days := int(src.item.NextExpiry.Sub(m.now()).Hours() / 24)
		switch {
		case days >= 0 && days <= 30:
			score += 50
		case days > 30 && days <= 60:
			score += 25
		}
	}
	return score
}

func (m *Matcher) recommendedDate(urgency string) string {
	days := 7
	switch urgency {
	case domain.UrgencyCritical:
		days = 1
	case domain.UrgencyHigh:
		days = 3
	}
	return m.now().AddDate(0, 0, days).Format("2006-01-02")
}

// Summarize aggregates a list of opportunities into the report summary:
// totals, per-urgency breakdown, and the three busiest branches on each
// side of the flow.
func Summarize(opportunities []domain.TransferOpportunity) domain.RedistributionSummary {
	summary := domain.RedistributionSummary{
		TotalTransfers: len(opportunities),
		ByUrgency:      make(map[string]domain.UrgencyBreakdown),
	}

	inbound := make(map[string]*domain.BranchFlow)
	outbound := make(map[string]*domain.BranchFlow)
	for _, op := range opportunities {
		summary.TotalSavings += op.NetSaving
		summary.TotalValue += op.TransferValue
		summary.TotalCost += op.TransferCost

		b := summary.ByUrgency[op.Urgency]
		b.Count++
		b.Value += op.TransferValue
		b.Saving += op.NetSaving
		summary.ByUrgency[op.Urgency] = b

		addFlow(inbound, op.DestBranch, op.TransferValue)
		addFlow(outbound, op.SourceBranch, op.TransferValue)
	}

	summary.TopDeficit = topFlows(inbound, 3)
	summary.TopSurplus = topFlows(outbound, 3)
	return summary
}

func addFlow(flows map[string]*domain.BranchFlow, branch string, value float64) {
	f, ok := flows[branch]
	if !ok {
		f = &domain.BranchFlow{Branch: branch}
		flows[branch] = f
	}
	f.Transfers++
	f.Value += value
}

func topFlows(flows map[string]*domain.BranchFlow, n int) []domain.BranchFlow {
	out := make([]domain.BranchFlow, 0, len(flows))
	for _, f := range flows {
		out = append(out, *f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Transfers != out[j].Transfers {
			return out[i].Transfers > out[j].Transfers
		}
		return out[i].Value > out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
