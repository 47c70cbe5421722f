package engine

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

// minTrendPoints is the smallest sample a regression is attempted on.
const minTrendPoints = 5

// MetricsCalculator derives per-item, per-branch demand statistics from raw
// sale records.
type MetricsCalculator struct {
	params Params
}

// NewMetricsCalculator creates a calculator with the given parameters.
func NewMetricsCalculator(params Params) *MetricsCalculator {
	return &MetricsCalculator{params: params}
}

var saleDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseSaleDate parses a record date defensively. Records with dates that
// match none of the known layouts are dropped from the sample.
func parseSaleDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range saleDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Truncate(24 * time.Hour), true
		}
	}
	return time.Time{}, false
}

// Calculate builds DemandMetrics for one (medication, branch) pair from a
// bounded window of sale records. Absence of history is a valid case and
// yields neutral metrics, never an error.
func (c *MetricsCalculator) Calculate(medicationID, branchID int64, records []domain.SaleRecord) domain.DemandMetrics {
	metrics := domain.DemandMetrics{Seasonality: 1.0}

	// Aggregate quantity by calendar day for exactly this pair.
	byDay := make(map[time.Time]float64)
	for _, rec := range records {
		if rec.MedicationID != medicationID || rec.BranchID != branchID {
			continue
		}
		if rec.Kind != "" && !strings.EqualFold(rec.Kind, "sale") {
			continue
		}
		if rec.Quantity <= 0 {
			continue
		}
		day, ok := parseSaleDate(rec.Date)
		if !ok {
			continue
		}
		byDay[day] += float64(rec.Quantity)
	}

	if len(byDay) == 0 {
		return metrics
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	quantities := make([]float64, len(days))
	var total float64
	for i, day := range days {
		quantities[i] = byDay[day]
		total += byDay[day]
	}

	metrics.SampleDays = len(days)
	metrics.DailyVelocity = SafeDiv(total, float64(len(days)), 0)
	metrics.RotationIndex = metrics.DailyVelocity * 30

	mean := metrics.DailyVelocity
	metrics.Variability = SafeDiv(stdDev(quantities, mean), mean, 0)
	metrics.Seasonality = seasonalityFactor(quantities, mean)
	metrics.TrendSlope = trendSlope(days, quantities)

	// Belt and braces: nothing non-finite leaves this function.
	metrics.DailyVelocity = Sanitize(metrics.DailyVelocity, 0)
	metrics.RotationIndex = Sanitize(metrics.RotationIndex, 0)
	metrics.TrendSlope = Sanitize(metrics.TrendSlope, 0)
	metrics.Seasonality = Clamp(Sanitize(metrics.Seasonality, 1.0), 0.5, 2.0)
	metrics.Variability = math.Max(0, Sanitize(metrics.Variability, 0))

	return metrics
}

// seasonalityFactor is the mean of the last 7 observed days over the mean of
// the whole window, clamped to [0.5, 2.0]. With fewer than 7 observed days
// the factor stays neutral.
func seasonalityFactor(quantities []float64, windowMean float64) float64 {
	if len(quantities) < 7 {
		return 1.0
	}
	var recent float64
	for _, q := range quantities[len(quantities)-7:] {
		recent += q
	}
	factor := SafeDiv(recent/7, windowMean, 1.0)
	return Clamp(factor, 0.5, 2.0)
}

// trendSlope fits quantity against day index by least squares. Regression is
// only attempted with enough points; any numerical failure collapses to a
// flat trend.
func trendSlope(days []time.Time, quantities []float64) float64 {
	if len(days) < minTrendPoints {
		return 0
	}

	origin := days[0]
	n := float64(len(days))
	var sumX, sumY, sumXY, sumXX float64
	for i, day := range days {
		x := day.Sub(origin).Hours() / 24
		y := quantities[i]
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	slope := SafeDiv(n*sumXY-sumX*sumY, denom, 0)
	return Sanitize(slope, 0)
}

// stdDev is the population standard deviation around the given mean.
func stdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// normalizeCategory strips accents-insensitive variance the cheap way: the
// lookup keys are stored lowercase without diacritics, so incoming category
// names are lowered and the few accented vowels used in the catalog mapped.
func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u")
	return replacer.Replace(category)
}
