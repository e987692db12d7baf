package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/repositories"
	"github.com/nickprotop/NeighborTools-sub004/internal/infrastructure/clients/postgres"
	apperrors "github.com/nickprotop/NeighborTools-sub004/pkg/errors"
)

const itemsTable = "items"

// ItemAdapter implements the read-only ItemRepository over the
// marketplace's items table. Approval, availability and soft-delete
// filters are applied on every query; writes belong to the marketplace.
type ItemAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewItemAdapter creates a new item adapter
func NewItemAdapter(client *postgres.Client) repositories.ItemRepository {
	return &ItemAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// FindInBoundingBox returns available items of the given type inside the box
func (a *ItemAdapter) FindInBoundingBox(ctx context.Context, box entities.BoundingBox, searchType entities.SearchType) ([]*entities.Item, error) {
	query, args, err := a.db.From(itemsTable).
		Select(
			"id", "owner_id", "name", "category", "search_type",
			"latitude", "longitude", "city", "state",
			"is_available", "created_at",
		).
		Where(
			goqu.Ex{
				"search_type":  string(searchType),
				"is_approved":  true,
				"is_available": true,
				"is_deleted":   false,
			},
			goqu.C("latitude").Between(goqu.Range(box.MinLatitude, box.MaxLatitude)),
			goqu.C("longitude").Between(goqu.Range(box.MinLongitude, box.MaxLongitude)),
		).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build item bounding box query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query items in bounding box", err)
	}
	defer rows.Close()

	var items []*entities.Item
	for rows.Next() {
		item := &entities.Item{}
		var searchType string
		err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.Name,
			&item.Category,
			&searchType,
			&item.Location.Latitude,
			&item.Location.Longitude,
			&item.City,
			&item.State,
			&item.IsAvailable,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan item", err)
		}
		item.SearchType = entities.SearchType(searchType)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate items", err)
	}

	return items, nil
}

// ListCities aggregates the most common item cities, most popular first
func (a *ItemAdapter) ListCities(ctx context.Context, limit int) ([]repositories.CityCount, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := a.db.From(itemsTable).
		Select(
			"city",
			"state",
			goqu.COUNT("*").As("item_count"),
			goqu.AVG("latitude").As("avg_latitude"),
			goqu.AVG("longitude").As("avg_longitude"),
		).
		Where(
			goqu.Ex{"is_approved": true, "is_available": true, "is_deleted": false},
			goqu.C("city").Neq(""),
		).
		GroupBy("city", "state").
		Order(goqu.C("item_count").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build city aggregate query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query item cities", err)
	}
	defer rows.Close()

	var cities []repositories.CityCount
	for rows.Next() {
		var c repositories.CityCount
		if err := rows.Scan(&c.City, &c.State, &c.ItemCount, &c.Centroid.Latitude, &c.Centroid.Longitude); err != nil {
			return nil, apperrors.NewInternalError("failed to scan city aggregate", err)
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate city aggregates", err)
	}

	return cities, nil
}
