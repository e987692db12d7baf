package entities

// LocationOption is a resolved location candidate produced by a geocoding
// provider or by aggregating known item locations. Created fresh per query,
// never persisted.
type LocationOption struct {
	DisplayName string      `json:"display_name"`
	City        string      `json:"city,omitempty"`
	State       string      `json:"state,omitempty"`
	Country     string      `json:"country,omitempty"`
	Location    *Coordinate `json:"location,omitempty"`
	Confidence  *float64    `json:"confidence,omitempty"`
}

// GeographicCluster is a derived, non-persisted grouping of location
// options around a shared area.
type GeographicCluster struct {
	Label       string      `json:"label"`
	MemberCount int         `json:"member_count"`
	Centroid    *Coordinate `json:"centroid,omitempty"`
}
