package geoprivacy

import (
	"math"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
)

const (
	earthRadiusKm  = 6371.0
	kmPerDegreeLat = 111.32
)

// GreatCircleDistance returns the haversine distance between two
// coordinates in kilometers.
func GreatCircleDistance(a, b entities.Coordinate) float64 {
	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLon := degreesToRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(a.Latitude))*math.Cos(degreesToRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// BoundingBoxAround returns a latitude/longitude rectangle that fully
// contains the circle of radiusKm around center. The box is a coarse
// pre-filter; exact distances decide membership afterwards.
func BoundingBoxAround(center entities.Coordinate, radiusKm float64) entities.BoundingBox {
	latDelta := radiusKm / kmPerDegreeLat

	// Longitude degrees shrink with latitude; avoid blowing up near the poles.
	cosLat := math.Cos(degreesToRadians(center.Latitude))
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonDelta := radiusKm / (kmPerDegreeLat * cosLat)

	return entities.BoundingBox{
		MinLatitude:  math.Max(center.Latitude-latDelta, -90),
		MaxLatitude:  math.Min(center.Latitude+latDelta, 90),
		MinLongitude: math.Max(center.Longitude-lonDelta, -180),
		MaxLongitude: math.Min(center.Longitude+lonDelta, 180),
	}
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
