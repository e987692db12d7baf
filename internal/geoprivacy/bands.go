package geoprivacy

import (
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
)

// Band upper thresholds in kilometers, inclusive for their band.
const (
	veryCloseMaxKm = 0.5
	nearbyMaxKm    = 2.0
	moderateMaxKm  = 10.0
	farMaxKm       = 50.0
)

// DistanceBandOf maps a distance to its coarse band. A value exactly at a
// boundary belongs to the closer band.
func DistanceBandOf(distanceKm float64) entities.DistanceBand {
	switch {
	case distanceKm <= veryCloseMaxKm:
		return entities.DistanceBandVeryClose
	case distanceKm <= nearbyMaxKm:
		return entities.DistanceBandNearby
	case distanceKm <= moderateMaxKm:
		return entities.DistanceBandModerate
	case distanceKm <= farMaxKm:
		return entities.DistanceBandFar
	default:
		return entities.DistanceBandVeryFar
	}
}

// BandText returns the user-facing description of a band
func BandText(band entities.DistanceBand) string {
	switch band {
	case entities.DistanceBandVeryClose:
		return "Very close (< 0.5 km)"
	case entities.DistanceBandNearby:
		return "Nearby (0.5 - 2 km)"
	case entities.DistanceBandModerate:
		return "Moderate distance (2 - 10 km)"
	case entities.DistanceBandFar:
		return "Far (10 - 50 km)"
	case entities.DistanceBandVeryFar:
		return "Very far (50+ km)"
	default:
		return "Unknown distance"
	}
}
