package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

func TestForecastSteadyDemand(t *testing.T) {
	f := NewForecaster(DefaultParams())

	metrics := domain.DemandMetrics{
		DailyVelocity: 10,
		Seasonality:   1,
		Variability:   0.5,
		SampleDays:    30,
	}

	out := f.Forecast(metrics, 30)

	assert.Equal(t, 30, out.HorizonDays)
	assert.InDelta(t, 300.0, out.PredictedDemand, 1e-9)
	// z=1.65 at the 95% service level, coverage sqrt(7+7) days.
	assert.InDelta(t, 1.65*10*0.5*math.Sqrt(14), out.SafetyStock, 1e-9)
}

func TestForecastTrendAndSeasonality(t *testing.T) {
	f := NewForecaster(DefaultParams())

	metrics := domain.DemandMetrics{
		DailyVelocity: 10,
		TrendSlope:    0.5,
		Seasonality:   1.2,
	}

	out := f.Forecast(metrics, 30)
	assert.InDelta(t, (300+15)*1.2, out.PredictedDemand, 1e-9)
}

func TestForecastNeverNegative(t *testing.T) {
	f := NewForecaster(DefaultParams())

	metrics := domain.DemandMetrics{
		DailyVelocity: 1,
		TrendSlope:    -5,
		Seasonality:   1,
	}

	out := f.Forecast(metrics, 30)
	assert.Zero(t, out.PredictedDemand)
	assert.GreaterOrEqual(t, out.SafetyStock, 0.0)
}

func TestForecastZeroMetrics(t *testing.T) {
	f := NewForecaster(DefaultParams())

	out := f.Forecast(domain.DemandMetrics{Seasonality: 1}, 0)

	assert.Equal(t, 30, out.HorizonDays)
	assert.Zero(t, out.PredictedDemand)
	assert.Zero(t, out.SafetyStock)
}
