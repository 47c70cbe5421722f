package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codicehealth/codice-inventory/backend-go/internal/config"
	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
	"github.com/codicehealth/codice-inventory/backend-go/internal/engine"
	"github.com/codicehealth/codice-inventory/backend-go/internal/store"
)

// maxConcurrentItems bounds the per-item fan-out of one analysis run.
const maxConcurrentItems = 8

// RecommendationService produces prioritized purchase recommendations for a
// branch.
type RecommendationService struct {
	store      store.Store
	params     engine.Params
	calculator *engine.MetricsCalculator
	forecaster *engine.Forecaster
	ranker     *engine.Ranker
	version    string
}

func NewRecommendationService(st store.Store, cfg config.EngineConfig) *RecommendationService {
	params := engineParams(cfg)
	return &RecommendationService{
		store:      st,
		params:     params,
		calculator: engine.NewMetricsCalculator(params),
		forecaster: engine.NewForecaster(params),
		ranker:     engine.NewRanker(params),
		version:    cfg.EngineVersion,
	}
}

// Recommendations analyzes every inventory row of a branch with the
// configured lookback window.
func (s *RecommendationService) Recommendations(ctx context.Context, branchID int64) (*domain.RecommendationReport, error) {
	return s.RecommendationsSince(ctx, branchID, s.params.LookbackDays)
}

// RecommendationsSince is Recommendations with an explicit lookback window.
// Windows outside [7, 365] days fall back to the configured default. Items
// are evaluated concurrently; a failure on one item is logged and skipped,
// it never sinks the run.
func (s *RecommendationService) RecommendationsSince(ctx context.Context, branchID int64, lookbackDays int) (*domain.RecommendationReport, error) {
	if lookbackDays < 7 || lookbackDays > 365 {
		lookbackDays = s.params.LookbackDays
	}

	items, err := s.store.InventorySnapshot(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("load inventory for branch %d: %w", branchID, err)
	}

	since := time.Now().AddDate(0, 0, -lookbackDays)
	sales, err := s.store.SalesHistory(ctx, 0, branchID, since)
	if err != nil {
		return nil, fmt.Errorf("load sales for branch %d: %w", branchID, err)
	}

	var (
		mu   sync.Mutex
		recs []domain.Recommendation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentItems)

	for _, item := range items {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			rec, ok := s.evaluateItem(item, sales)
			if !ok {
				return nil
			}

			mu.Lock()
			recs = append(recs, rec)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	engine.SortRecommendations(recs)

	return &domain.RecommendationReport{
		Recommendations: recs,
		Stats:           buildStats(recs),
		Metadata: domain.ReportMetadata{
			BranchID:      branchID,
			GeneratedAt:   time.Now().UTC(),
			EngineVersion: s.version,
		},
	}, nil
}

// evaluateItem runs the metric, forecast and ranking stages for one row.
// A panic in any stage is contained to the item.
func (s *RecommendationService) evaluateItem(item domain.InventoryItem, sales []domain.SaleRecord) (rec domain.Recommendation, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int64("medication_id", item.MedicationID).
				Int64("branch_id", item.BranchID).
				Interface("panic", r).
				Msg("item evaluation panicked, skipping item")
			ok = false
		}
	}()

	metrics := s.calculator.Calculate(item.MedicationID, item.BranchID, sales)
	forecast := s.forecaster.Forecast(metrics, s.params.HorizonDays)
	return s.ranker.Evaluate(item, metrics, forecast)
}

func buildStats(recs []domain.Recommendation) domain.RecommendationStats {
	stats := domain.RecommendationStats{
		Total:      len(recs),
		ByPriority: make(map[string]int),
	}
	if len(recs) == 0 {
		return stats
	}

	var riskSum, confSum float64
	for _, r := range recs {
		stats.ByPriority[r.Priority]++
		stats.TotalCost += r.PurchaseCost
		stats.TotalSavings += r.EstimatedSaving
		riskSum += r.StockoutRisk
		confSum += r.Confidence
	}
	stats.AvgRisk = riskSum / float64(len(recs))
	stats.AvgConfidence = confSum / float64(len(recs))
	return stats
}
