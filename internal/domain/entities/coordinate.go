package entities

// Coordinate represents a geographical point in decimal degrees.
// Immutable value type.
type Coordinate struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Valid reports whether the coordinate is within valid ranges
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// BoundingBox represents a latitude/longitude rectangle used for
// coarse nearby-item queries before exact distance filtering.
type BoundingBox struct {
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// Contains reports whether the coordinate falls inside the box
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Latitude >= b.MinLatitude && c.Latitude <= b.MaxLatitude &&
		c.Longitude >= b.MinLongitude && c.Longitude <= b.MaxLongitude
}
