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

// RedistributionService finds inter-branch transfer opportunities across
// the whole network.
type RedistributionService struct {
	store   store.Store
	matcher *engine.Matcher
	version string
}

func NewRedistributionService(st store.Store, cfg config.EngineConfig, distance engine.DistanceProvider) *RedistributionService {
	if distance == nil {
		distance = engine.HaversineDistance{}
	}
	return &RedistributionService{
		store:   st,
		matcher: engine.NewMatcher(engineParams(cfg), distance),
		version: cfg.EngineVersion,
	}
}

// Redistribution analyzes the consolidated inventory of all branches.
func (s *RedistributionService) Redistribution(ctx context.Context) (*domain.RedistributionReport, error) {
	branches, err := s.store.Branches(ctx)
	if err != nil {
		return nil, fmt.Errorf("load branches: %w", err)
	}

	items, err := s.store.InventorySnapshot(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("load consolidated inventory: %w", err)
	}

	opportunities := s.matcher.Match(items, branches)

	return &domain.RedistributionReport{
		Opportunities: opportunities,
		Summary:       engine.Summarize(opportunities),
		Metadata: domain.ReportMetadata{
			GeneratedAt:   time.Now().UTC(),
			EngineVersion: s.version,
		},
	}, nil
}
