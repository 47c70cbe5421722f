package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

// fixedDistance resolves distances from a branch-ID pair table, defaulting
// to 10km for pairs not listed.
type fixedDistance map[[2]int64]float64

func (f fixedDistance) DistanceKm(from, to domain.Branch) float64 {
	if d, ok := f[[2]int64{from.ID, to.ID}]; ok {
		return d
	}
	if d, ok := f[[2]int64{to.ID, from.ID}]; ok {
		return d
	}
	return 10
}

var testBranches = []domain.Branch{
	{ID: 1, Code: "CEN", Name: "Central"},
	{ID: 2, Code: "NOR", Name: "Norte"},
	{ID: 3, Code: "SUR", Name: "Sur"},
}

func invRow(medID, branchID int64, stock, minStock, maxStock int) domain.InventoryItem {
	return domain.InventoryItem{
		MedicationID: medID,
		SKU:          "MED-001",
		Name:         "Amoxicilina 500mg",
		PurchaseCost: 20,
		SalePrice:    25,
		BranchID:     branchID,
		CurrentStock: stock,
		MinimumStock: minStock,
		MaximumStock: maxStock,
	}
}

func TestMatchBasicTransfer(t *testing.T) {
	m := NewMatcher(DefaultParams(), fixedDistance{{1, 2}: 20})

	items := []domain.InventoryItem{
		invRow(1, 1, 50, 20, 200), // excess 50 - 30 = 20
		invRow(1, 2, 5, 20, 200),  // deficit 15, ratio 0.25
	}

	ops := m.Match(items, testBranches)
	require.Len(t, ops, 1)

	op := ops[0]
	assert.Equal(t, int64(1), op.SourceBranchID)
	assert.Equal(t, "Central", op.SourceBranch)
	assert.Equal(t, int64(2), op.DestBranchID)
	assert.Equal(t, "Norte", op.DestBranch)
	assert.Equal(t, 15, op.Quantity)
	assert.Equal(t, domain.UrgencyCritical, op.Urgency)
	assert.InDelta(t, 20.0, op.DistanceKm, 1e-9)

	// cost = fixed 50 + 1.5/km * 20km + 2/unit * 15
	assert.InDelta(t, 110.0, op.TransferCost, 1e-9)
	assert.InDelta(t, 375.0, op.TransferValue, 1e-9)
	assert.InDelta(t, 265.0, op.NetSaving, 1e-9)
	assert.InDelta(t, 2.41, op.ROI, 1e-9)
	assert.NotEmpty(t, op.Justification)
	assert.NotEmpty(t, op.RecommendedDate)
}

func TestMatchDistanceGate(t *testing.T) {
	m := NewMatcher(DefaultParams(), fixedDistance{{1, 2}: 80})

	items := []domain.InventoryItem{
		invRow(1, 1, 50, 20, 200),
		invRow(1, 2, 5, 20, 200),
	}

	assert.Empty(t, m.Match(items, testBranches))
}

func TestMatchEconomicGate(t *testing.T) {
	m := NewMatcher(DefaultParams(), fixedDistance{{1, 2}: 20})

	// A cheap item: moving it costs more per unit than buying it.
	src := invRow(1, 1, 50, 20, 200)
	src.PurchaseCost = 1
	dst := invRow(1, 2, 5, 20, 200)
	dst.PurchaseCost = 1

	assert.Empty(t, m.Match([]domain.InventoryItem{src, dst}, testBranches))
}

func TestMatchMinimumQuantity(t *testing.T) {
	m := NewMatcher(DefaultParams(), fixedDistance{})

	items := []domain.InventoryItem{
		invRow(1, 1, 50, 20, 200),
		invRow(1, 2, 17, 20, 200), // deficit 3, below the 5-unit floor
	}

	assert.Empty(t, m.Match(items, testBranches))
}

func TestMatchConservesSourceExcess(t *testing.T) {
	m := NewMatcher(DefaultParams(), fixedDistance{})

	items := []domain.InventoryItem{
		invRow(1, 1, 50, 20, 200), // excess 20
		invRow(1, 2, 5, 20, 200),  // deficit 15, ratio 0.25, served first
		invRow(1, 3, 10, 20, 200), // deficit 10, ratio 0.50
	}

	ops := m.Match(items, testBranches)
	require.Len(t, ops, 2)

	var total int
	for _, op := range ops {
		assert.Equal(t, int64(1), op.SourceBranchID)
		total += op.Quantity
	}
	// Never promise more than the source can actually give.
	assert.LessOrEqual(t, total, 20)
	assert.Equal(t, 20, total)

	byDest := map[int64]int{}
	for _, op := range ops {
		byDest[op.DestBranchID] = op.Quantity
	}
	assert.Equal(t, 15, byDest[2])
	assert.Equal(t, 5, byDest[3])
}

func TestMatchMaxCapacityPolicy(t *testing.T) {
	items := []domain.InventoryItem{
		invRow(1, 1, 90, 50, 100), // not a surplus by buffer, but over 80% of max
		invRow(1, 2, 5, 20, 200),
	}

	buffer := NewMatcher(DefaultParams(), fixedDistance{})
	assert.Empty(t, buffer.Match(items, testBranches))

	params := DefaultParams()
	params.SurplusPolicy = PolicyMaxCapacity
	capacity := NewMatcher(params, fixedDistance{})

	ops := capacity.Match(items, testBranches)
	require.Len(t, ops, 1)
	assert.Equal(t, 15, ops[0].Quantity)
	assert.Equal(t, 30, ops[0].SourceExcess) // 90 - 60% of 100
}

func TestMatchExpiryBonus(t *testing.T) {
	params := DefaultParams()

	plain := invRow(1, 1, 50, 20, 200)
	expiring := plain
	soon := time.Now().AddDate(0, 0, 20)
	expiring.NextExpiry = &soon

	dst := invRow(1, 2, 5, 20, 200)

	m := NewMatcher(params, fixedDistance{})

	base := m.Match([]domain.InventoryItem{plain, dst}, testBranches)
	bonus := m.Match([]domain.InventoryItem{expiring, dst}, testBranches)
	require.Len(t, base, 1)
	require.Len(t, bonus, 1)

	assert.InDelta(t, base[0].PriorityScore+50, bonus[0].PriorityScore, 1e-9)
}

func TestMatchOrderedByScore(t *testing.T) {
	m := NewMatcher(DefaultParams(), fixedDistance{})

	mild := invRow(2, 3, 85, 100, 200) // deficit 15, ratio 0.85, MEDIUM
	mild.SKU = "MED-002"

	items := []domain.InventoryItem{
		invRow(1, 1, 50, 20, 200),
		invRow(1, 2, 5, 20, 200), // CRITICAL
		invRow(2, 1, 80, 30, 200),
		mild,
	}

	ops := m.Match(items, testBranches)
	require.Len(t, ops, 2)

	assert.Equal(t, domain.UrgencyCritical, ops[0].Urgency)
	assert.Equal(t, domain.UrgencyMedium, ops[1].Urgency)
	assert.GreaterOrEqual(t, ops[0].PriorityScore, ops[1].PriorityScore)
}

func TestSummarize(t *testing.T) {
	ops := []domain.TransferOpportunity{
		{SourceBranch: "Central", DestBranch: "Norte", Urgency: domain.UrgencyCritical, TransferValue: 300, TransferCost: 100, NetSaving: 200},
		{SourceBranch: "Central", DestBranch: "Sur", Urgency: domain.UrgencyCritical, TransferValue: 150, TransferCost: 50, NetSaving: 100},
		{SourceBranch: "Sur", DestBranch: "Norte", Urgency: domain.UrgencyMedium, TransferValue: 100, TransferCost: 60, NetSaving: 40},
	}

	s := Summarize(ops)

	assert.Equal(t, 3, s.TotalTransfers)
	assert.InDelta(t, 340.0, s.TotalSavings, 1e-9)
	assert.InDelta(t, 550.0, s.TotalValue, 1e-9)
	assert.InDelta(t, 210.0, s.TotalCost, 1e-9)

	assert.Equal(t, 2, s.ByUrgency[domain.UrgencyCritical].Count)
	assert.InDelta(t, 300.0, s.ByUrgency[domain.UrgencyCritical].Saving, 1e-9)
	assert.Equal(t, 1, s.ByUrgency[domain.UrgencyMedium].Count)

	require.NotEmpty(t, s.TopDeficit)
	assert.Equal(t, "Norte", s.TopDeficit[0].Branch)
	assert.Equal(t, 2, s.TopDeficit[0].Transfers)
	require.NotEmpty(t, s.TopSurplus)
	assert.Equal(t, "Central", s.TopSurplus[0].Branch)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	assert.Zero(t, s.TotalTransfers)
	assert.Empty(t, s.TopDeficit)
	assert.Empty(t, s.TopSurplus)
	assert.NotNil(t, s.ByUrgency)
}
