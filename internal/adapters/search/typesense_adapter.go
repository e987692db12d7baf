package search

import (
	"context"
	"fmt"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/repositories"
	tsclient "github.com/nickprotop/NeighborTools-sub004/internal/infrastructure/clients/typesense"
)

const collectionName = "items"

const maxNearbyHits = 250

// TypesenseAdapter implements geo-indexed item search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements ItemSearchRepository
var _ repositories.ItemSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "owner_id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "category", Type: "string", Facet: pointer.True()},
			{Name: "search_type", Type: "string", Facet: pointer.True()},
			{Name: "location", Type: "geopoint"},
			{Name: "city", Type: "string", Facet: pointer.True()},
			{Name: "state", Type: "string", Facet: pointer.True()},
			{Name: "is_available", Type: "bool"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts one item into the geo index
func (a *TypesenseAdapter) Index(ctx context.Context, item *entities.Item) error {
	document := map[string]interface{}{
		"id":           item.ID,
		"owner_id":     item.OwnerID,
		"name":         item.Name,
		"category":     item.Category,
		"search_type":  string(item.SearchType),
		"location":     []float64{item.Location.Latitude, item.Location.Longitude},
		"city":         item.City,
		"state":        item.State,
		"is_available": item.IsAvailable,
		"created_at":   item.CreatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index item: %w", err)
	}

	return nil
}

// Delete removes an item from the geo index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete item from index: %w", err)
	}
	return nil
}

// SearchNearby returns items of the given type within radiusKm of center
func (a *TypesenseAdapter) SearchNearby(ctx context.Context, center entities.Coordinate, radiusKm float64, searchType entities.SearchType) ([]*entities.Item, error) {
	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String("*"),
		QueryBy: pointer.String("name"),
		FilterBy: pointer.String(fmt.Sprintf(
			"is_available:=true && search_type:=%s && location:(%f, %f, %f km)",
			string(searchType), center.Latitude, center.Longitude, radiusKm,
		)),
		SortBy:  pointer.String(fmt.Sprintf("location(%f, %f):asc", center.Latitude, center.Longitude)),
		PerPage: pointer.Int(maxNearbyHits),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search nearby items: %w", err)
	}

	items := []*entities.Item{}
	if result.Hits == nil {
		return items, nil
	}

	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document

		item := &entities.Item{}
		item.ID, _ = doc["id"].(string)
		item.OwnerID, _ = doc["owner_id"].(string)
		item.Name, _ = doc["name"].(string)
		item.Category, _ = doc["category"].(string)
		item.City, _ = doc["city"].(string)
		item.State, _ = doc["state"].(string)
		if st, ok := doc["search_type"].(string); ok {
			item.SearchType = entities.SearchType(st)
		}
		if available, ok := doc["is_available"].(bool); ok {
			item.IsAvailable = available
		}
		if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
			lat, _ := loc[0].(float64)
			lng, _ := loc[1].(float64)
			item.Location = entities.Coordinate{Latitude: lat, Longitude: lng}
		}
		if createdAt, ok := doc["created_at"].(float64); ok {
			item.CreatedAt = time.Unix(int64(createdAt), 0).UTC()
		}

		items = append(items, item)
	}

	return items, nil
}
