package entities

// PrivacyLevel controls how much positional precision a coordinate keeps
// when disclosed. Coarser levels hide more.
type PrivacyLevel string

const (
	PrivacyLevelExact        PrivacyLevel = "exact"
	PrivacyLevelDistrict     PrivacyLevel = "district"
	PrivacyLevelZipCode      PrivacyLevel = "zipcode"
	PrivacyLevelNeighborhood PrivacyLevel = "neighborhood"
)

// GridSize returns the quantization grid cell size in degrees
func (p PrivacyLevel) GridSize() float64 {
	switch p {
	case PrivacyLevelExact:
		return 0.0001
	case PrivacyLevelDistrict:
		return 0.001
	case PrivacyLevelZipCode:
		return 0.01
	case PrivacyLevelNeighborhood:
		return 0.1
	default:
		return 0.01
	}
}

// DistanceBand is a coarse distance category substituted for an exact
// distance to limit information leakage.
type DistanceBand string

const (
	DistanceBandVeryClose DistanceBand = "very_close"
	DistanceBandNearby    DistanceBand = "nearby"
	DistanceBandModerate  DistanceBand = "moderate"
	DistanceBandFar       DistanceBand = "far"
	DistanceBandVeryFar   DistanceBand = "very_far"
)
