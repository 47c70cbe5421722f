package engine

import (
	"math"

	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
)

const earthRadiusKm = 6371.0

// DistanceProvider yields the distance in kilometers between two branches.
// Implementations must be safe for concurrent use.
type DistanceProvider interface {
	DistanceKm(from, to domain.Branch) float64
}

// HaversineDistance computes great-circle distances from branch coordinates.
type HaversineDistance struct{}

func (HaversineDistance) DistanceKm(from, to domain.Branch) float64 {
	lat1 := from.Latitude * math.Pi / 180
	lat2 := to.Latitude * math.Pi / 180
	dLat := (to.Latitude - from.Latitude) * math.Pi / 180
	dLon := (to.Longitude - from.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return Sanitize(earthRadiusKm*c, 0)
}
