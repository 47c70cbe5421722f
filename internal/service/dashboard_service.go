package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codicehealth/codice-inventory/backend-go/internal/config"
	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
	"github.com/codicehealth/codice-inventory/backend-go/internal/engine"
	"github.com/codicehealth/codice-inventory/backend-go/internal/store"
)

// Trend labels for branch health.
const (
	TrendCritical = "CRITICAL"
	TrendStable   = "STABLE"
	TrendGood     = "GOOD"
	TrendNoData   = "NO_DATA"
)

// DashboardService assembles per-branch and consolidated health views.
type DashboardService struct {
	store           store.Store
	recommendations *RecommendationService
	redistribution  *RedistributionService
	version         string
}

func NewDashboardService(st store.Store, cfg config.EngineConfig, distance engine.DistanceProvider) *DashboardService {
	return &DashboardService{
		store:           st,
		recommendations: NewRecommendationService(st, cfg),
		redistribution:  NewRedistributionService(st, cfg, distance),
		version:         cfg.EngineVersion,
	}
}

// BranchAnalytics computes the health view for one branch.
func (s *DashboardService) BranchAnalytics(ctx context.Context, branch domain.Branch) (domain.BranchAnalytics, error) {
	items, err := s.store.InventorySnapshot(ctx, branch.ID)
	if err != nil {
		return domain.BranchAnalytics{}, fmt.Errorf("load inventory for branch %d: %w", branch.ID, err)
	}

	analytics := domain.BranchAnalytics{
		BranchID:   branch.ID,
		BranchName: branch.Name,
		BranchCode: branch.Code,
	}

	if len(items) == 0 {
		analytics.StockScore = 75.0
		analytics.StockEfficiency = 50.0
		analytics.Trend = TrendNoData
		return analytics, nil
	}

	var ratioSum float64
	var ratioCount int
	for _, item := range items {
		analytics.TotalMedications++
		analytics.TotalUnits += item.CurrentStock
		analytics.InventoryValue += float64(item.CurrentStock) * item.SalePrice
		if item.CurrentStock < item.MinimumStock {
			analytics.CriticalAlerts++
		}
		if item.MinimumStock > 0 {
			ratioSum += engine.SafeDiv(float64(item.CurrentStock), float64(item.MinimumStock), 1)
			ratioCount++
		}
	}

	avgRatio := 1.0
	if ratioCount > 0 {
		avgRatio = ratioSum / float64(ratioCount)
	}

	base := engine.Clamp(avgRatio*85, 0, 100)
	penalty := engine.SafeDiv(float64(analytics.CriticalAlerts), float64(analytics.TotalMedications), 0) * 30
	analytics.StockScore = round1(math.Max(50, base-penalty))
	analytics.PredictedTurns = round1(engine.Clamp(avgRatio*2.5, 1.0, 4.0))
	analytics.StockEfficiency = round1(avgRatio * 90)

	switch {
	case analytics.CriticalAlerts > 5:
		analytics.Trend = TrendCritical
	case analytics.CriticalAlerts > 2:
		analytics.Trend = TrendStable
	default:
		analytics.Trend = TrendGood
	}

	analytics.ValueAtRisk = round2(s.valueAtRisk(ctx, branch.ID))
	analytics.InventoryValue = round2(analytics.InventoryValue)
	analytics.CriticalBuys = s.criticalBuys(ctx, branch.ID)

	return analytics, nil
}

// valueAtRisk sums the purchase value of lots expiring within 60 days.
// Lot data being unavailable just leaves the figure at zero.
func (s *DashboardService) valueAtRisk(ctx context.Context, branchID int64) float64 {
	lots, err := s.store.Lots(ctx, branchID)
	if err != nil {
		log.Warn().Err(err).Int64("branch_id", branchID).Msg("lot lookup failed, value at risk unknown")
		return 0
	}

	cutoff := time.Now().AddDate(0, 0, 60)
	var total float64
	for _, lot := range lots {
		if !lot.Expiry.IsZero() && lot.Expiry.Before(cutoff) {
			total += float64(lot.Quantity) * lot.UnitCost
		}
	}
	return total
}

// criticalBuys returns the top critical purchase recommendations for the
// branch, at most five.
func (s *DashboardService) criticalBuys(ctx context.Context, branchID int64) []domain.Recommendation {
	report, err := s.recommendations.Recommendations(ctx, branchID)
	if err != nil {
		log.Warn().Err(err).Int64("branch_id", branchID).Msg("critical buy lookup failed")
		return []domain.Recommendation{}
	}

	out := make([]domain.Recommendation, 0, 5)
	for _, rec := range report.Recommendations {
		if rec.Priority != domain.PriorityCritical {
			continue
		}
		out = append(out, rec)
		if len(out) == 5 {
			break
		}
	}
	return out
}

// Consolidated aggregates analytics across every branch plus the network
// redistribution outlook. A branch that fails to analyze is skipped with a
// warning rather than failing the whole dashboard.
func (s *DashboardService) Consolidated(ctx context.Context) (*domain.ConsolidatedDashboard, error) {
	branches, err := s.store.Branches(ctx)
	if err != nil {
		return nil, fmt.Errorf("load branches: %w", err)
	}

	dashboard := &domain.ConsolidatedDashboard{
		Branches: make([]domain.BranchAnalytics, 0, len(branches)),
		Metadata: domain.ReportMetadata{
			GeneratedAt:   time.Now().UTC(),
			EngineVersion: s.version,
		},
	}

	for _, branch := range branches {
		analytics, err := s.BranchAnalytics(ctx, branch)
		if err != nil {
			log.Warn().Err(err).Int64("branch_id", branch.ID).Msg("branch analytics failed, skipping branch")
			continue
		}
		dashboard.TotalBranches++
		dashboard.TotalInvestment += analytics.InventoryValue
		dashboard.TotalValueAtRisk += analytics.ValueAtRisk
		dashboard.GlobalAlerts += analytics.CriticalAlerts
		dashboard.ProductsAnalyzed += analytics.TotalMedications
		dashboard.Branches = append(dashboard.Branches, analytics)
	}

	if redistribution, err := s.redistribution.Redistribution(ctx); err == nil {
		dashboard.RedistributionSaving = round2(redistribution.Summary.TotalSavings)
		dashboard.Opportunities = redistribution.Summary.TotalTransfers
	} else {
		log.Warn().Err(err).Msg("redistribution outlook failed, dashboard continues without it")
	}

	dashboard.TotalInvestment = round2(dashboard.TotalInvestment)
	dashboard.TotalValueAtRisk = round2(dashboard.TotalValueAtRisk)

	return dashboard, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
