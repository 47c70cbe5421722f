package store

import (
	"context"
	"time"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

// Store is the read surface the analytics services run against. Backends
// degrade to empty result sets on upstream failure so one bad fetch never
// takes an analysis run down; callers treat empty slices as valid input.
type Store interface {
	// Branches returns all registered branch locations.
	Branches(ctx context.Context) ([]domain.Branch, error)

	// Medications returns the full catalog.
	Medications(ctx context.Context) ([]domain.Medication, error)

	// InventorySnapshot returns the joined stock rows for one branch, or
	// for every branch when branchID is 0.
	InventorySnapshot(ctx context.Context, branchID int64) ([]domain.InventoryItem, error)

	// SalesHistory returns sale records for one medication at one branch
	// from since onwards. A zero medicationID returns the whole branch
	// window.
	SalesHistory(ctx context.Context, medicationID, branchID int64, since time.Time) ([]domain.SaleRecord, error)

	// Lots returns stock lots with expiry dates for one branch, or all
	// branches when branchID is 0.
	Lots(ctx context.Context, branchID int64) ([]domain.Lot, error)
}
