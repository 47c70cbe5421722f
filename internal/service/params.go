package service

import (
	"github.com/codicehealth/codice-inventory/backend-go/internal/config"
	"github.com/codicehealth/codice-inventory/backend-go/internal/engine"
)

// engineParams maps engine configuration onto engine parameters, falling
// back to the defaults for anything unset.
func engineParams(cfg config.EngineConfig) engine.Params {
	p := engine.DefaultParams()

	if cfg.LookbackDays > 0 {
		p.LookbackDays = cfg.LookbackDays
	}
	if cfg.HorizonDays > 0 {
		p.HorizonDays = cfg.HorizonDays
	}
	if cfg.ServiceLevel > 0 {
		p.ServiceLevel = cfg.ServiceLevel
	}
	if cfg.LeadTimeDays > 0 {
		p.LeadTimeDays = cfg.LeadTimeDays
	}
	if cfg.ReviewPeriodDays > 0 {
		p.ReviewPeriodDays = cfg.ReviewPeriodDays
	}
	if cfg.OrderCost > 0 {
		p.OrderCost = cfg.OrderCost
	}
	if cfg.HoldingRate > 0 {
		p.HoldingRate = cfg.HoldingRate
	}
	if cfg.MinTransferQty > 0 {
		p.MinTransferQty = cfg.MinTransferQty
	}
	if cfg.MaxTransferKm > 0 {
		p.MaxTransferKm = cfg.MaxTransferKm
	}
	if cfg.TransferFixedCost > 0 {
		p.TransferFixedCost = cfg.TransferFixedCost
	}
	if cfg.TransferPerUnit > 0 {
		p.TransferPerUnit = cfg.TransferPerUnit
	}
	if cfg.TransferPerKm > 0 {
		p.TransferPerKm = cfg.TransferPerKm
	}
	if cfg.RedistPolicy == string(engine.PolicyMaxCapacity) {
		p.SurplusPolicy = engine.PolicyMaxCapacity
	}
	if cfg.ScoreCritical > 0 {
		p.ScoreCritical = cfg.ScoreCritical
	}
	if cfg.ScoreHigh > 0 {
		p.ScoreHigh = cfg.ScoreHigh
	}
	if cfg.ScoreMedium > 0 {
		p.ScoreMedium = cfg.ScoreMedium
	}
	if len(cfg.CategoryMultipliers) > 0 {
		p.CategoryMultipliers = cfg.CategoryMultipliers
	}
	return p
}
