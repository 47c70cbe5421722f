package engine

// Params holds the engine tunables for one analysis run. Zero values are
// never used directly; callers start from DefaultParams and override.
type Params struct {
	LookbackDays     int
	HorizonDays      int
	ServiceLevel     float64
	LeadTimeDays     int
	ReviewPeriodDays int

	// EOQ inputs
	OrderCost   float64
	HoldingRate float64

	// Redistribution
	MinTransferQty    int
	MaxTransferKm     float64
	TransferFixedCost float64
	TransferPerUnit   float64
	TransferPerKm     float64
	SurplusPolicy     SurplusPolicy

	// Priority scoring
	ScoreCritical       float64
	ScoreHigh           float64
	ScoreMedium         float64
	CategoryMultipliers map[string]float64
}

// SurplusPolicy selects how transferable excess is computed for a branch.
type SurplusPolicy string

const (
	// PolicyMinBuffer marks surplus at stock >= 2x minimum and keeps a
	// 150% buffer: excess = stock - 1.5*minimum.
	PolicyMinBuffer SurplusPolicy = "min_buffer"
	// PolicyMaxCapacity marks surplus at stock > 80% of maximum and
	// computes excess against 60% of maximum.
	PolicyMaxCapacity SurplusPolicy = "max_capacity"
)

// DefaultParams returns the engine defaults documented in the configuration
// surface.
func DefaultParams() Params {
	return Params{
		LookbackDays:      90,
		HorizonDays:       30,
		ServiceLevel:      0.95,
		LeadTimeDays:      7,
		ReviewPeriodDays:  7,
		OrderCost:         50.0,
		HoldingRate:       0.25,
		MinTransferQty:    5,
		MaxTransferKm:     50.0,
		TransferFixedCost: 50.0,
		TransferPerUnit:   2.0,
		TransferPerKm:     1.5,
		SurplusPolicy:     PolicyMinBuffer,
		ScoreCritical:     80.0,
		ScoreHigh:         60.0,
		ScoreMedium:       40.0,
	}
}

// categoryMultiplier returns the importance multiplier for a category,
// defaulting to 1.0 for unlisted ones.
func (p Params) categoryMultiplier(category string) float64 {
	if p.CategoryMultipliers == nil {
		return 1.0
	}
	if m, ok := p.CategoryMultipliers[normalizeCategory(category)]; ok && m > 0 {
		return m
	}
	return 1.0
}

// zScore maps a service level fraction to the one-sided normal z value.
// The engine only needs the handful of levels operators actually configure;
// intermediate levels fall back to the nearest tabled entry below.
func zScore(serviceLevel float64) float64 {
	switch {
	case serviceLevel >= 0.99:
		return 2.33
	case serviceLevel >= 0.975:
		return 1.96
	case serviceLevel >= 0.95:
		return 1.65
	case serviceLevel >= 0.90:
		return 1.28
	case serviceLevel >= 0.85:
		return 1.04
	case serviceLevel >= 0.80:
		return 0.84
	default:
		return 0.67
	}
}
