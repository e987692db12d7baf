package geocoding

import (
	"context"
	"fmt"
	"strings"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/providers"
)

// MockProvider implements a deterministic geocoding provider for tests
// and local development.
type MockProvider struct{}

// NewMockProvider creates a new mock geocoding provider
func NewMockProvider() providers.GeocodingProvider {
	return &MockProvider{}
}

// ProviderName identifies the upstream service
func (m *MockProvider) ProviderName() string {
	return "mock"
}

var mockPlaces = []entities.LocationOption{
	{
		DisplayName: "Athens, Clarke County, Georgia, United States",
		City:        "Athens",
		State:       "Georgia",
		Country:     "United States",
		Location:    &entities.Coordinate{Latitude: 33.9519, Longitude: -83.3576},
	},
	{
		DisplayName: "Atlanta, Fulton County, Georgia, United States",
		City:        "Atlanta",
		State:       "Georgia",
		Country:     "United States",
		Location:    &entities.Coordinate{Latitude: 33.7490, Longitude: -84.3880},
	},
	{
		DisplayName: "Savannah, Chatham County, Georgia, United States",
		City:        "Savannah",
		State:       "Georgia",
		Country:     "United States",
		Location:    &entities.Coordinate{Latitude: 32.0809, Longitude: -81.0912},
	},
	{
		DisplayName: "Nashville, Davidson County, Tennessee, United States",
		City:        "Nashville",
		State:       "Tennessee",
		Country:     "United States",
		Location:    &entities.Coordinate{Latitude: 36.1627, Longitude: -86.7816},
	},
}

// SearchLocations matches the query against the fixture cities.
// Unknown queries return an empty slice, never an error.
func (m *MockProvider) SearchLocations(ctx context.Context, query string, limit int, countryCode string) ([]*entities.LocationOption, error) {
	if limit <= 0 {
		limit = len(mockPlaces)
	}

	normalized := strings.ToLower(strings.TrimSpace(query))
	var options []*entities.LocationOption
	for i := range mockPlaces {
		place := mockPlaces[i]
		if strings.Contains(normalized, strings.ToLower(place.City)) {
			confidence := 0.9
			place.Confidence = &confidence
			options = append(options, &place)
		}
		if len(options) >= limit {
			break
		}
	}

	return options, nil
}

// ReverseGeocode returns a synthetic address echoing the coordinate
func (m *MockProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*entities.LocationOption, error) {
	for i := range mockPlaces {
		place := mockPlaces[i]
		if place.Location != nil &&
			absFloat(place.Location.Latitude-lat) < 0.05 &&
			absFloat(place.Location.Longitude-lng) < 0.05 {
			matched := place
			matched.Location = &entities.Coordinate{Latitude: lat, Longitude: lng}
			return &matched, nil
		}
	}

	return &entities.LocationOption{
		DisplayName: fmt.Sprintf("%.4f, %.4f", lat, lng),
		Location:    &entities.Coordinate{Latitude: lat, Longitude: lng},
	}, nil
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
