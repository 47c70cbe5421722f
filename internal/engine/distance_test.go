package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

func TestHaversineDistance(t *testing.T) {
	h := HaversineDistance{}

	lima := domain.Branch{Latitude: -12.0464, Longitude: -77.0428}
	callao := domain.Branch{Latitude: -12.0566, Longitude: -77.1181}

	d := h.DistanceKm(lima, callao)
	assert.InDelta(t, 8.3, d, 0.5)

	// Symmetric and zero on itself.
	assert.InDelta(t, d, h.DistanceKm(callao, lima), 1e-9)
	assert.InDelta(t, 0, h.DistanceKm(lima, lima), 1e-9)
}

func TestHaversineOneDegreeLatitude(t *testing.T) {
	h := HaversineDistance{}

	a := domain.Branch{Latitude: 0, Longitude: 0}
	b := domain.Branch{Latitude: 1, Longitude: 0}

	assert.InDelta(t, 111.2, h.DistanceKm(a, b), 0.5)
}
