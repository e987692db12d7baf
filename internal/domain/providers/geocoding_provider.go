package providers

import (
	"context"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
)

// GeocodingProvider resolves free-text queries to candidate locations and
// coordinates to display addresses. Implementations are interchangeable
// and selected via configuration.
//
// Contract: "no results" is an empty slice or nil option, never an error.
// Errors are reserved for network/auth failures, which the orchestrator
// degrades to empty results.
type GeocodingProvider interface {
	// SearchLocations resolves a free-text query to candidate locations
	SearchLocations(ctx context.Context, query string, limit int, countryCode string) ([]*entities.LocationOption, error)

	// ReverseGeocode resolves a coordinate to a display address
	ReverseGeocode(ctx context.Context, lat, lng float64) (*entities.LocationOption, error)

	// ProviderName identifies the upstream service
	ProviderName() string
}
