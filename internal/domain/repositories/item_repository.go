package repositories

import (
	"context"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
)

// ItemRepository is the read-only view of the marketplace's item store
// needed for proximity search. The surrounding system owns writes,
// approval and soft-delete semantics.
type ItemRepository interface {
	// FindInBoundingBox returns available items of the given type inside the box
	FindInBoundingBox(ctx context.Context, box entities.BoundingBox, searchType entities.SearchType) ([]*entities.Item, error)

	// ListCities aggregates the most common item cities, most popular first
	ListCities(ctx context.Context, limit int) ([]CityCount, error)
}

// CityCount is one row of the popular-locations aggregate
type CityCount struct {
	City      string
	State     string
	ItemCount int
	Centroid  entities.Coordinate
}

// ItemSearchRepository is the geo-indexed search engine view of items.
// The orchestrator prefers it and falls back to ItemRepository when the
// index is unavailable.
type ItemSearchRepository interface {
	// SearchNearby returns items of the given type within radiusKm of center
	SearchNearby(ctx context.Context, center entities.Coordinate, radiusKm float64, searchType entities.SearchType) ([]*entities.Item, error)

	// Index upserts one item into the geo index
	Index(ctx context.Context, item *entities.Item) error

	// Delete removes an item from the geo index
	Delete(ctx context.Context, id string) error
}
