package service

import (
	"context"
	"fmt"
	"time"

	"github.com/codicehealth/codice-inventory/backend-go/internal/config"
	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
	"github.com/codicehealth/codice-inventory/backend-go/internal/store"
)

// Expiry alert priorities.
const (
	ExpiryExpired  = "EXPIRED"
	ExpiryCritical = "CRITICAL"
	ExpiryHigh     = "HIGH"
	ExpiryMedium   = "MEDIUM"
	ExpiryLow      = "LOW"
)

// expiryWindowDays is how far ahead the alert scan looks.
const expiryWindowDays = 90

// ExpiryService flags lots approaching their expiry date and suggests
// clearance discounts.
type ExpiryService struct {
	store   store.Store
	version string
	now     func() time.Time
}

func NewExpiryService(st store.Store, cfg config.EngineConfig) *ExpiryService {
	return &ExpiryService{store: st, version: cfg.EngineVersion, now: time.Now}
}

// Alerts scans lots for one branch, or the whole network when branchID is 0.
func (s *ExpiryService) Alerts(ctx context.Context, branchID int64) (*domain.ExpiryReport, error) {
	lots, err := s.store.Lots(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("load lots for branch %d: %w", branchID, err)
	}

	medications, err := s.store.Medications(ctx)
	if err != nil {
		return nil, fmt.Errorf("load medications: %w", err)
	}
	medIdx := make(map[int64]domain.Medication, len(medications))
	for _, m := range medications {
		medIdx[m.ID] = m
	}

	branches, err := s.store.Branches(ctx)
	if err != nil {
		return nil, fmt.Errorf("load branches: %w", err)
	}
	branchIdx := make(map[int64]domain.Branch, len(branches))
	for _, b := range branches {
		branchIdx[b.ID] = b
	}

	report := &domain.ExpiryReport{
		Alerts:     []domain.ExpiryAlert{},
		ByPriority: make(map[string]int),
		Metadata: domain.ReportMetadata{
			BranchID:      branchID,
			GeneratedAt:   s.now().UTC(),
			EngineVersion: s.version,
		},
	}

	today := s.now()
	for _, lot := range lots {
		if lot.Expiry.IsZero() || lot.Quantity <= 0 {
			continue
		}

		daysLeft := int(lot.Expiry.Sub(today).Hours() / 24)
		if daysLeft > expiryWindowDays {
			continue
		}

		priority, discount := expiryTier(daysLeft)
		valueAtRisk := float64(lot.Quantity) * lot.UnitCost

		alert := domain.ExpiryAlert{
			MedicationID: lot.MedicationID,
			BranchID:     lot.BranchID,
			LotNumber:    lot.LotNumber,
			Expiry:       lot.Expiry.Format("2006-01-02"),
			DaysLeft:     daysLeft,
			Quantity:     lot.Quantity,
			ValueAtRisk:  round2(valueAtRisk),
			Priority:     priority,
			Discount:     discount,
		}
		if med, ok := medIdx[lot.MedicationID]; ok {
			alert.SKU = med.SKU
			alert.Name = med.Name
		}
		if branch, ok := branchIdx[lot.BranchID]; ok {
			alert.BranchName = branch.Name
		}

		report.Alerts = append(report.Alerts, alert)
		report.ByPriority[priority]++
		report.ValueAtRisk += valueAtRisk
	}

	report.Total = len(report.Alerts)
	report.ValueAtRisk = round2(report.ValueAtRisk)
	return report, nil
}

// expiryTier maps remaining shelf days to an alert priority and a suggested
// clearance discount percentage.
func expiryTier(daysLeft int) (string, float64) {
	var priority string
	switch {
	case daysLeft <= 0:
		priority = ExpiryExpired
	case daysLeft <= 15:
		priority = ExpiryCritical
	case daysLeft <= 30:
		priority = ExpiryHigh
	case daysLeft <= 90:
		priority = ExpiryMedium
	default:
		priority = ExpiryLow
	}

	var discount float64
	switch {
	case daysLeft <= 0:
		discount = 60
	case daysLeft <= 7:
		discount = 50
	case daysLeft <= 15:
		discount = 35
	case daysLeft <= 30:
		discount = 20
	case daysLeft <= 90:
		discount = 10
	default:
		discount = 5
	}
	return priority, discount
}
