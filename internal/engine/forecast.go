package engine

import (
	"math"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

// Forecaster projects demand and safety stock from demand metrics.
type Forecaster struct {
	params Params
}

// NewForecaster creates a forecaster with the given parameters.
func NewForecaster(params Params) *Forecaster {
	return &Forecaster{params: params}
}

// Forecast projects demand over horizonDays and computes the safety stock
// for the configured service level. A non-positive horizon falls back to the
// configured default. Outputs are always finite and non-negative, for any
// input metrics including all-zero ones.
func (f *Forecaster) Forecast(metrics domain.DemandMetrics, horizonDays int) domain.Forecast {
	if horizonDays <= 0 {
		horizonDays = f.params.HorizonDays
	}
	h := float64(horizonDays)

	base := metrics.DailyVelocity * h
	adjusted := base + metrics.TrendSlope*h
	demand := adjusted * metrics.Seasonality
	demand = math.Max(0, Sanitize(demand, 0))

	z := zScore(f.params.ServiceLevel)
	coverage := math.Sqrt(float64(f.params.LeadTimeDays + f.params.ReviewPeriodDays))
	safety := z * (metrics.DailyVelocity * metrics.Variability) * coverage
	safety = math.Max(0, Sanitize(safety, 0))

	return domain.Forecast{
		HorizonDays:     horizonDays,
		PredictedDemand: demand,
		SafetyStock:     safety,
	}
}
