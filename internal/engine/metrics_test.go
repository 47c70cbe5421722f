package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

func saleOn(day time.Time, qty int) domain.SaleRecord {
	return domain.SaleRecord{
		MedicationID: 1,
		BranchID:     1,
		Date:         day.Format("2006-01-02"),
		Quantity:     qty,
		Kind:         "sale",
	}
}

func dailySales(start time.Time, days, qtyPerDay int) []domain.SaleRecord {
	records := make([]domain.SaleRecord, 0, days)
	for i := 0; i < days; i++ {
		records = append(records, saleOn(start.AddDate(0, 0, i), qtyPerDay))
	}
	return records
}

func TestCalculateConstantDemand(t *testing.T) {
	calc := NewMetricsCalculator(DefaultParams())
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	m := calc.Calculate(1, 1, dailySales(start, 30, 10))

	assert.Equal(t, 30, m.SampleDays)
	assert.InDelta(t, 10.0, m.DailyVelocity, 1e-9)
	assert.InDelta(t, 300.0, m.RotationIndex, 1e-9)
	assert.InDelta(t, 0.0, m.Variability, 1e-9)
	assert.InDelta(t, 1.0, m.Seasonality, 1e-9)
	assert.InDelta(t, 0.0, m.TrendSlope, 1e-9)
}

func TestCalculateNoHistoryIsNeutral(t *testing.T) {
	calc := NewMetricsCalculator(DefaultParams())

	m := calc.Calculate(1, 1, nil)

	assert.Equal(t, 0, m.SampleDays)
	assert.Zero(t, m.DailyVelocity)
	assert.Zero(t, m.RotationIndex)
	assert.Zero(t, m.TrendSlope)
	assert.Zero(t, m.Variability)
	assert.Equal(t, 1.0, m.Seasonality)
}

func TestCalculateFiltersRecords(t *testing.T) {
	calc := NewMetricsCalculator(DefaultParams())
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	records := []domain.SaleRecord{
		saleOn(day, 10),
		{MedicationID: 2, BranchID: 1, Date: "2026-05-01", Quantity: 99, Kind: "sale"},
		{MedicationID: 1, BranchID: 7, Date: "2026-05-01", Quantity: 99, Kind: "sale"},
		{MedicationID: 1, BranchID: 1, Date: "2026-05-01", Quantity: 99, Kind: "return"},
		{MedicationID: 1, BranchID: 1, Date: "2026-05-01", Quantity: 0, Kind: "sale"},
		{MedicationID: 1, BranchID: 1, Date: "2026-05-01", Quantity: -4, Kind: "sale"},
		{MedicationID: 1, BranchID: 1, Date: "not a date", Quantity: 99, Kind: "sale"},
		{MedicationID: 1, BranchID: 1, Date: "", Quantity: 99, Kind: "sale"},
	}

	m := calc.Calculate(1, 1, records)

	assert.Equal(t, 1, m.SampleDays)
	assert.InDelta(t, 10.0, m.DailyVelocity, 1e-9)
}

func TestCalculateAggregatesSameDay(t *testing.T) {
	calc := NewMetricsCalculator(DefaultParams())
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	m := calc.Calculate(1, 1, []domain.SaleRecord{saleOn(day, 4), saleOn(day, 6)})

	assert.Equal(t, 1, m.SampleDays)
	assert.InDelta(t, 10.0, m.DailyVelocity, 1e-9)
}

func TestCalculateSeasonalitySpikeClamped(t *testing.T) {
	calc := NewMetricsCalculator(DefaultParams())
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	// 23 calm days of 10 then 7 hot days of 30: the raw factor exceeds 2.
	records := dailySales(start, 23, 10)
	records = append(records, dailySales(start.AddDate(0, 0, 23), 7, 30)...)

	m := calc.Calculate(1, 1, records)

	assert.InDelta(t, 2.0, m.Seasonality, 1e-9)
}

func TestCalculateTrendSlope(t *testing.T) {
	calc := NewMetricsCalculator(DefaultParams())
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	// Quantities 1..5 on consecutive days fit a slope of exactly 1.
	records := make([]domain.SaleRecord, 0, 5)
	for i := 0; i < 5; i++ {
		records = append(records, saleOn(start.AddDate(0, 0, i), i+1))
	}

	m := calc.Calculate(1, 1, records)
	assert.InDelta(t, 1.0, m.TrendSlope, 1e-9)

	// Below the minimum sample the trend stays flat.
	m = calc.Calculate(1, 1, records[:4])
	assert.Zero(t, m.TrendSlope)
}

func TestCalculateVariability(t *testing.T) {
	calc := NewMetricsCalculator(DefaultParams())
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	// Alternating 5 and 15 around a mean of 10: population stddev 5, CV 0.5.
	records := make([]domain.SaleRecord, 0, 10)
	for i := 0; i < 10; i++ {
		qty := 5
		if i%2 == 1 {
			qty = 15
		}
		records = append(records, saleOn(start.AddDate(0, 0, i), qty))
	}

	m := calc.Calculate(1, 1, records)
	assert.InDelta(t, 0.5, m.Variability, 1e-9)
}

func TestParseSaleDateLayouts(t *testing.T) {
	for i, raw := range []string{
		"2026-05-01",
		"2026-05-01T09:30:00Z",
		"2026-05-01T09:30:00",
		"2026-05-01 09:30:00",
	} {
		t.Run(fmt.Sprintf("layout_%d", i), func(t *testing.T) {
			day, ok := parseSaleDate(raw)
			require.True(t, ok)
			assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), day)
		})
	}

	_, ok := parseSaleDate("01/05/2026")
	assert.False(t, ok)
}
