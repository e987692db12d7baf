package geoprivacy

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
)

// Quantize snaps each axis of the coordinate to the center of its grid
// cell for the given privacy level. Deterministic and idempotent.
func Quantize(c entities.Coordinate, level entities.PrivacyLevel) entities.Coordinate {
	grid := level.GridSize()
	return entities.Coordinate{
		Latitude:  snapToCell(c.Latitude, grid),
		Longitude: snapToCell(c.Longitude, grid),
	}
}

func snapToCell(value, grid float64) float64 {
	return math.Floor(value/grid)*grid + grid/2
}

// JitteredLocation quantizes the coordinate and adds a pseudo-random
// offset that is stable within the current clock hour. Repeated calls in
// the same hour return identical output; an attacker sampling across
// requests cannot average the jitter away inside a session.
func JitteredLocation(c entities.Coordinate, level entities.PrivacyLevel) entities.Coordinate {
	return JitteredLocationAt(c, level, time.Now().UTC())
}

// JitteredLocationAt is JitteredLocation with an explicit clock reading
func JitteredLocationAt(c entities.Coordinate, level entities.PrivacyLevel, at time.Time) entities.Coordinate {
	quantized := Quantize(c, level)
	grid := level.GridSize()

	hourBucket := at.UTC().Truncate(time.Hour).Unix()
	rng := rand.New(rand.NewSource(jitterSeed(quantized, hourBucket)))

	// Offset magnitude stays within one grid cell per axis, so the
	// jittered point never leaves the neighboring cell.
	return entities.Coordinate{
		Latitude:  quantized.Latitude + (rng.Float64()*2-1)*grid,
		Longitude: quantized.Longitude + (rng.Float64()*2-1)*grid,
	}
}

func jitterSeed(quantized entities.Coordinate, hourBucket int64) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%.6f:%.6f:%d", quantized.Latitude, quantized.Longitude, hourBucket)
	return int64(h.Sum64())
}

// FuzzedDistance adds up to ±20% of uniform noise to a distance value.
// Intentionally non-deterministic: fresh randomness per call prevents
// averaging the true value out of repeated queries.
func FuzzedDistance(distanceKm float64) float64 {
	noise := (rand.Float64()*2 - 1) * 0.2
	fuzzed := distanceKm * (1 + noise)
	if fuzzed < 0 {
		return 0
	}
	return fuzzed
}
