// Package mocks provides hand-written testify mocks for the domain
// interfaces used across service tests.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/repositories"
)

// MockSearchAuditRepository mocks repositories.SearchAuditRepository
type MockSearchAuditRepository struct {
	mock.Mock
}

// NewMockSearchAuditRepository creates a mock wired to the test lifecycle
func NewMockSearchAuditRepository(t *testing.T) *MockSearchAuditRepository {
	m := &MockSearchAuditRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSearchAuditRepository) Create(ctx context.Context, entry *entities.SearchAuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSearchAuditRepository) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockSearchAuditRepository) CountByUserTargetSince(ctx context.Context, userID, targetID string, since time.Time) (int, error) {
	args := m.Called(ctx, userID, targetID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockSearchAuditRepository) LatestByUser(ctx context.Context, userID string) (*entities.SearchAuditEntry, error) {
	args := m.Called(ctx, userID)
	if entry, ok := args.Get(0).(*entities.SearchAuditEntry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSearchAuditRepository) ListWithCoordinatesSince(ctx context.Context, scope repositories.AuditScope, since time.Time) ([]*entities.SearchAuditEntry, error) {
	args := m.Called(ctx, scope, since)
	if entries, ok := args.Get(0).([]*entities.SearchAuditEntry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSearchAuditRepository) ListSuspicious(ctx context.Context, limit int) ([]*entities.SearchAuditEntry, error) {
	args := m.Called(ctx, limit)
	if entries, ok := args.Get(0).([]*entities.SearchAuditEntry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSearchAuditRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockItemRepository mocks repositories.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

// NewMockItemRepository creates a mock wired to the test lifecycle
func NewMockItemRepository(t *testing.T) *MockItemRepository {
	m := &MockItemRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockItemRepository) FindInBoundingBox(ctx context.Context, box entities.BoundingBox, searchType entities.SearchType) ([]*entities.Item, error) {
	args := m.Called(ctx, box, searchType)
	if items, ok := args.Get(0).([]*entities.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockItemRepository) ListCities(ctx context.Context, limit int) ([]repositories.CityCount, error) {
	args := m.Called(ctx, limit)
	if cities, ok := args.Get(0).([]repositories.CityCount); ok {
		return cities, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockItemSearchRepository mocks repositories.ItemSearchRepository
type MockItemSearchRepository struct {
	mock.Mock
}

// NewMockItemSearchRepository creates a mock wired to the test lifecycle
func NewMockItemSearchRepository(t *testing.T) *MockItemSearchRepository {
	m := &MockItemSearchRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockItemSearchRepository) SearchNearby(ctx context.Context, center entities.Coordinate, radiusKm float64, searchType entities.SearchType) ([]*entities.Item, error) {
	args := m.Called(ctx, center, radiusKm, searchType)
	if items, ok := args.Get(0).([]*entities.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockItemSearchRepository) Index(ctx context.Context, item *entities.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemSearchRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGeocodingProvider mocks providers.GeocodingProvider
type MockGeocodingProvider struct {
	mock.Mock
}

// NewMockGeocodingProvider creates a mock wired to the test lifecycle
func NewMockGeocodingProvider(t *testing.T) *MockGeocodingProvider {
	m := &MockGeocodingProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockGeocodingProvider) SearchLocations(ctx context.Context, query string, limit int, countryCode string) ([]*entities.LocationOption, error) {
	args := m.Called(ctx, query, limit, countryCode)
	if options, ok := args.Get(0).([]*entities.LocationOption); ok {
		return options, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGeocodingProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*entities.LocationOption, error) {
	args := m.Called(ctx, lat, lng)
	if option, ok := args.Get(0).(*entities.LocationOption); ok {
		return option, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGeocodingProvider) ProviderName() string {
	return "mock-provider"
}

// MockCacheProvider mocks providers.CacheProvider
type MockCacheProvider struct {
	mock.Mock
}

// NewMockCacheProvider creates a mock wired to the test lifecycle
func NewMockCacheProvider(t *testing.T) *MockCacheProvider {
	m := &MockCacheProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if value, ok := args.Get(0).([]byte); ok {
		return value, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	args := m.Called(ctx, key, value, expirationSeconds)
	return args.Error(0)
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
