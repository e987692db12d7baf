package geoprivacy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
)

func TestDistanceBandOf_BoundariesBelongToCloserBand(t *testing.T) {
	cases := []struct {
		distanceKm float64
		expected   entities.DistanceBand
	}{
		{0, entities.DistanceBandVeryClose},
		{0.5, entities.DistanceBandVeryClose},
		{0.51, entities.DistanceBandNearby},
		{2.0, entities.DistanceBandNearby},
		{2.01, entities.DistanceBandModerate},
		{10.0, entities.DistanceBandModerate},
		{50.0, entities.DistanceBandFar},
		{50.1, entities.DistanceBandVeryFar},
		{5000, entities.DistanceBandVeryFar},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, DistanceBandOf(tc.distanceKm), "distance %.2f km", tc.distanceKm)
	}
}

func TestBandText_EveryBandHasText(t *testing.T) {
	bands := []entities.DistanceBand{
		entities.DistanceBandVeryClose,
		entities.DistanceBandNearby,
		entities.DistanceBandModerate,
		entities.DistanceBandFar,
		entities.DistanceBandVeryFar,
	}

	seen := map[string]bool{}
	for _, band := range bands {
		text := BandText(band)
		assert.NotEmpty(t, text)
		assert.False(t, seen[text], "band text %q reused", text)
		seen[text] = true
	}

	assert.Equal(t, "Very close (< 0.5 km)", BandText(entities.DistanceBandVeryClose))
	assert.Equal(t, "Very far (50+ km)", BandText(entities.DistanceBandVeryFar))
}
