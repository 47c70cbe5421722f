package service

import (
	"context"
	"fmt"
	"time"

	"github.com/codicehealth/codice-inventory/backend-go/internal/config"
	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
	"github.com/codicehealth/codice-inventory/backend-go/internal/engine"
	"github.com/codicehealth/codice-inventory/backend-go/internal/store"
)

// Demand trend labels.
const (
	DemandGrowing   = "GROWING"
	DemandDeclining = "DECLINING"
	DemandStable    = "STABLE"
)

// ForecastService projects per-SKU demand over 30, 60 and 90 day horizons.
type ForecastService struct {
	store      store.Store
	params     engine.Params
	calculator *engine.MetricsCalculator
	forecaster *engine.Forecaster
	ranker     *engine.Ranker
	version    string
}

func NewForecastService(st store.Store, cfg config.EngineConfig) *ForecastService {
	params := engineParams(cfg)
	return &ForecastService{
		store:      st,
		params:     params,
		calculator: engine.NewMetricsCalculator(params),
		forecaster: engine.NewForecaster(params),
		ranker:     engine.NewRanker(params),
		version:    cfg.EngineVersion,
	}
}

// Projections builds the multi-horizon demand view for one branch.
func (s *ForecastService) Projections(ctx context.Context, branchID int64) (*domain.ForecastReport, error) {
	items, err := s.store.InventorySnapshot(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("load inventory for branch %d: %w", branchID, err)
	}

	since := time.Now().AddDate(0, 0, -s.params.LookbackDays)
	sales, err := s.store.SalesHistory(ctx, 0, branchID, since)
	if err != nil {
		return nil, fmt.Errorf("load sales for branch %d: %w", branchID, err)
	}

	projections := make([]domain.DemandProjection, 0, len(items))
	for _, item := range items {
		metrics := s.calculator.Calculate(item.MedicationID, item.BranchID, sales)

		projections = append(projections, domain.DemandProjection{
			MedicationID: item.MedicationID,
			SKU:          item.SKU,
			Name:         item.Name,
			Category:     item.Category,
			CurrentStock: item.CurrentStock,
			Demand30:     round1(s.forecaster.Forecast(metrics, 30).PredictedDemand),
			Demand60:     round1(s.forecaster.Forecast(metrics, 60).PredictedDemand),
			Demand90:     round1(s.forecaster.Forecast(metrics, 90).PredictedDemand),
			Confidence:   s.ranker.Confidence(metrics),
			Trend:        trendLabel(metrics.TrendSlope),
		})
	}

	return &domain.ForecastReport{
		Projections: projections,
		Metadata: domain.ReportMetadata{
			BranchID:      branchID,
			GeneratedAt:   time.Now().UTC(),
			EngineVersion: s.version,
		},
	}, nil
}

func trendLabel(slope float64) string {
	switch {
	case slope > 0.05:
		return DemandGrowing
	case slope < -0.05:
		return DemandDeclining
	default:
		return DemandStable
	}
}
