package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nickprotop/NeighborTools-sub004/internal/adapters/providers/geocoding"
	"github.com/nickprotop/NeighborTools-sub004/internal/application/services"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/repositories"
	apperrors "github.com/nickprotop/NeighborTools-sub004/pkg/errors"
	"github.com/nickprotop/NeighborTools-sub004/tests/mocks"
)

// newQuietSecurityService builds a real security service over an audit
// repository that accepts everything, so proximity tests exercise the
// full gate without asserting on audit internals.
func newQuietSecurityService(t *testing.T) *services.LocationSecurityService {
	repo := mocks.NewMockSearchAuditRepository(t)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	repo.On("CountByUserSince", mock.Anything, mock.Anything, mock.Anything).Return(0, nil).Maybe()
	repo.On("CountByUserTargetSince", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(0, nil).Maybe()
	repo.On("ListWithCoordinatesSince", mock.Anything, mock.Anything, mock.Anything).Return([]*entities.SearchAuditEntry{}, nil).Maybe()
	return services.NewLocationSecurityService(repo, securityConfig(), nil)
}

func athensItem(id, name string, lat, lng float64) *entities.Item {
	return &entities.Item{
		ID:          id,
		OwnerID:     "owner-1",
		Name:        name,
		Category:    "tools",
		SearchType:  entities.SearchTypeItem,
		Location:    entities.Coordinate{Latitude: lat, Longitude: lng},
		City:        "Athens",
		State:       "GA",
		IsAvailable: true,
	}
}

func TestFindNearbyItems_ReturnsBandedResultsWithinRadius(t *testing.T) {
	near := athensItem("item-near", "Cordless drill", 33.9520, -83.3575)
	far := athensItem("item-far", "Ladder", 40.0, -90.0)

	itemRepo := mocks.NewMockItemRepository(t)
	itemRepo.On("FindInBoundingBox", mock.Anything, mock.Anything, entities.SearchTypeItem).
		Return([]*entities.Item{near, far}, nil)

	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(), itemRepo, nil, nil, nil)

	results, err := service.FindNearbyItems(context.Background(), services.NearbySearchParams{
		Center:     entities.Coordinate{Latitude: 33.9519, Longitude: -83.3576},
		RadiusKm:   10,
		SearchType: entities.SearchTypeItem,
		UserID:     strPtr("user-1"),
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "item-near", results[0].Item.ID)
	assert.Equal(t, entities.DistanceBandVeryClose, results[0].Band)
	assert.Equal(t, "Very close (< 0.5 km)", results[0].BandText)
	assert.Nil(t, results[0].FuzzedKm)
}

func TestFindNearbyItems_SortsByDistanceWithIDTieBreak(t *testing.T) {
	center := entities.Coordinate{Latitude: 33.9519, Longitude: -83.3576}
	closest := athensItem("item-b", "Drill", 33.9520, -83.3575)
	sameSpotLowerID := athensItem("item-a", "Saw", 33.9600, -83.3576)
	sameSpotHigherID := athensItem("item-c", "Sander", 33.9600, -83.3576)
	farther := athensItem("item-d", "Mower", 34.0000, -83.3576)

	itemRepo := mocks.NewMockItemRepository(t)
	itemRepo.On("FindInBoundingBox", mock.Anything, mock.Anything, entities.SearchTypeItem).
		Return([]*entities.Item{farther, sameSpotHigherID, closest, sameSpotLowerID}, nil)

	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(), itemRepo, nil, nil, nil)

	results, err := service.FindNearbyItems(context.Background(), services.NearbySearchParams{
		Center:     center,
		RadiusKm:   25,
		SearchType: entities.SearchTypeItem,
		UserID:     strPtr("user-1"),
	})

	require.NoError(t, err)
	require.Len(t, results, 4)
	ids := []string{results[0].Item.ID, results[1].Item.ID, results[2].Item.ID, results[3].Item.ID}
	assert.Equal(t, []string{"item-b", "item-a", "item-c", "item-d"}, ids)
}

func TestFindNearbyItems_FuzzedDistanceStaysInBounds(t *testing.T) {
	item := athensItem("item-1", "Drill", 33.9600, -83.3576)

	itemRepo := mocks.NewMockItemRepository(t)
	itemRepo.On("FindInBoundingBox", mock.Anything, mock.Anything, entities.SearchTypeItem).
		Return([]*entities.Item{item}, nil)

	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(), itemRepo, nil, nil, nil)

	results, err := service.FindNearbyItems(context.Background(), services.NearbySearchParams{
		Center:          entities.Coordinate{Latitude: 33.9519, Longitude: -83.3576},
		RadiusKm:        25,
		SearchType:      entities.SearchTypeItem,
		UserID:          strPtr("user-1"),
		IncludeFuzzedKm: true,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	exact := results[0].SortKey()
	require.NotNil(t, results[0].FuzzedKm)
	assert.GreaterOrEqual(t, *results[0].FuzzedKm, exact*0.8-1e-9)
	assert.LessOrEqual(t, *results[0].FuzzedKm, exact*1.2+1e-9)
}

func TestFindNearbyItems_DisclosedLocationIsJittered(t *testing.T) {
	trueLocation := entities.Coordinate{Latitude: 33.95193, Longitude: -83.35762}
	item := athensItem("item-1", "Drill", trueLocation.Latitude, trueLocation.Longitude)

	itemRepo := mocks.NewMockItemRepository(t)
	itemRepo.On("FindInBoundingBox", mock.Anything, mock.Anything, entities.SearchTypeItem).
		Return([]*entities.Item{item}, nil)

	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(), itemRepo, nil, nil, nil)

	results, err := service.FindNearbyItems(context.Background(), services.NearbySearchParams{
		Center:     entities.Coordinate{Latitude: 33.9519, Longitude: -83.3576},
		RadiusKm:   10,
		SearchType: entities.SearchTypeItem,
		UserID:     strPtr("user-1"),
	})

	require.NoError(t, err)
	require.Len(t, results, 1)

	disclosed := results[0].Item.Location
	assert.NotEqual(t, trueLocation, disclosed, "exact item coordinate must not be disclosed")
	// Jitter stays within the quantization cell and its neighbors.
	grid := entities.PrivacyLevelZipCode.GridSize()
	assert.InDelta(t, trueLocation.Latitude, disclosed.Latitude, 2*grid)
	assert.InDelta(t, trueLocation.Longitude, disclosed.Longitude, 2*grid)
}

func TestFindNearbyItems_InvalidInputs(t *testing.T) {
	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(),
		mocks.NewMockItemRepository(t), nil, nil, nil)

	t.Run("out of range coordinates", func(t *testing.T) {
		_, err := service.FindNearbyItems(context.Background(), services.NearbySearchParams{
			Center:     entities.Coordinate{Latitude: 91, Longitude: 0},
			RadiusKm:   10,
			SearchType: entities.SearchTypeItem,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("non-positive radius", func(t *testing.T) {
		_, err := service.FindNearbyItems(context.Background(), services.NearbySearchParams{
			Center:     entities.Coordinate{Latitude: 33.9519, Longitude: -83.3576},
			RadiusKm:   0,
			SearchType: entities.SearchTypeItem,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestFindNearbyItems_RateLimitedUserRefused(t *testing.T) {
	cfg := securityConfig()

	repo := mocks.NewMockSearchAuditRepository(t)
	repo.On("CountByUserSince", mock.Anything, "user-1", mock.Anything).Return(cfg.MaxSearchesPerHour, nil)
	security := services.NewLocationSecurityService(repo, cfg, nil)

	service := services.NewProximitySearchService(
		security, geocoding.NewMockProvider(), mocks.NewMockItemRepository(t), nil, nil, nil)

	_, err := service.FindNearbyItems(context.Background(), services.NearbySearchParams{
		Center:     entities.Coordinate{Latitude: 33.9519, Longitude: -83.3576},
		RadiusKm:   10,
		SearchType: entities.SearchTypeItem,
		UserID:     strPtr("user-1"),
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRateLimited))
}

func TestFindNearbyItems_TriangulationPatternRefusedAndLogged(t *testing.T) {
	now := time.Now().UTC()
	history := []*entities.SearchAuditEntry{
		coordEntry("user-1", "target-1", 33.90, -83.40, now.Add(-2*time.Hour)),
		coordEntry("user-1", "target-1", 34.00, -83.30, now.Add(-time.Hour)),
	}

	repo := mocks.NewMockSearchAuditRepository(t)
	repo.On("CountByUserSince", mock.Anything, "user-1", mock.Anything).Return(0, nil)
	repo.On("CountByUserTargetSince", mock.Anything, "user-1", "target-1", mock.Anything).Return(0, nil)
	repo.On("ListWithCoordinatesSince", mock.Anything, mock.Anything, mock.Anything).Return(history, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(entry *entities.SearchAuditEntry) bool {
		return entry.IsSuspicious
	})).Return(nil)

	security := services.NewLocationSecurityService(repo, securityConfig(), nil)
	service := services.NewProximitySearchService(
		security, geocoding.NewMockProvider(), mocks.NewMockItemRepository(t), nil, nil, nil)

	_, err := service.FindNearbyItems(context.Background(), services.NearbySearchParams{
		Center:     entities.Coordinate{Latitude: 33.90, Longitude: -83.20},
		RadiusKm:   10,
		SearchType: entities.SearchTypeItem,
		UserID:     strPtr("user-1"),
		TargetID:   strPtr("target-1"),
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeSuspiciousPattern))
	// The refusal message must not reveal what tripped the detection.
	assert.NotContains(t, err.Error(), "triangulation")
}

func TestFindNearbyItems_AuditWriteFailureAbortsSearch(t *testing.T) {
	cfg := securityConfig()
	cfg.EnableTriangulationDetection = false

	repo := mocks.NewMockSearchAuditRepository(t)
	repo.On("CountByUserSince", mock.Anything, "user-1", mock.Anything).Return(0, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)
	security := services.NewLocationSecurityService(repo, cfg, nil)

	itemRepo := mocks.NewMockItemRepository(t)
	itemRepo.On("FindInBoundingBox", mock.Anything, mock.Anything, entities.SearchTypeItem).
		Return([]*entities.Item{}, nil)

	service := services.NewProximitySearchService(
		security, geocoding.NewMockProvider(), itemRepo, nil, nil, nil)

	_, err := service.FindNearbyItems(context.Background(), services.NearbySearchParams{
		Center:     entities.Coordinate{Latitude: 33.9519, Longitude: -83.3576},
		RadiusKm:   10,
		SearchType: entities.SearchTypeItem,
		UserID:     strPtr("user-1"),
	})

	require.Error(t, err)
}

func TestFindNearbyItems_SearchIndexPreferredWithDatabaseFallback(t *testing.T) {
	item := athensItem("item-1", "Drill", 33.9520, -83.3575)
	params := services.NearbySearchParams{
		Center:     entities.Coordinate{Latitude: 33.9519, Longitude: -83.3576},
		RadiusKm:   10,
		SearchType: entities.SearchTypeItem,
		UserID:     strPtr("user-1"),
	}

	t.Run("index answers and the database is not touched", func(t *testing.T) {
		itemSearch := mocks.NewMockItemSearchRepository(t)
		itemSearch.On("SearchNearby", mock.Anything, params.Center, params.RadiusKm, entities.SearchTypeItem).
			Return([]*entities.Item{item}, nil)
		itemRepo := mocks.NewMockItemRepository(t)

		service := services.NewProximitySearchService(
			newQuietSecurityService(t), geocoding.NewMockProvider(), itemRepo, itemSearch, nil, nil)

		results, err := service.FindNearbyItems(context.Background(), params)
		require.NoError(t, err)
		require.Len(t, results, 1)
		itemRepo.AssertNotCalled(t, "FindInBoundingBox", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("index failure falls back to the database", func(t *testing.T) {
		itemSearch := mocks.NewMockItemSearchRepository(t)
		itemSearch.On("SearchNearby", mock.Anything, params.Center, params.RadiusKm, entities.SearchTypeItem).
			Return(nil, assert.AnError)
		itemRepo := mocks.NewMockItemRepository(t)
		itemRepo.On("FindInBoundingBox", mock.Anything, mock.Anything, entities.SearchTypeItem).
			Return([]*entities.Item{item}, nil)

		service := services.NewProximitySearchService(
			newQuietSecurityService(t), geocoding.NewMockProvider(), itemRepo, itemSearch, nil, nil)

		results, err := service.FindNearbyItems(context.Background(), params)
		require.NoError(t, err)
		require.Len(t, results, 1)
	})
}

func TestSearchLocations_ResolvesKnownCity(t *testing.T) {
	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(),
		mocks.NewMockItemRepository(t), nil, nil, nil)

	options := service.SearchLocations(context.Background(), "Athens, GA", 5, "us", strPtr("user-1"))

	require.NotEmpty(t, options)
	assert.Equal(t, "Athens", options[0].City)
	require.NotNil(t, options[0].Location)
	assert.InDelta(t, 33.9519, options[0].Location.Latitude, 0.001)
}

func TestSearchLocations_UnknownQueryYieldsEmptyList(t *testing.T) {
	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(),
		mocks.NewMockItemRepository(t), nil, nil, nil)

	options := service.SearchLocations(context.Background(), "Nonexistent Place Xyz123", 5, "", nil)

	assert.NotNil(t, options)
	assert.Empty(t, options)
}

func TestSearchLocations_ProviderFailureDegradesToEmpty(t *testing.T) {
	provider := mocks.NewMockGeocodingProvider(t)
	provider.On("SearchLocations", mock.Anything, "Athens", mock.Anything, "").
		Return(nil, assert.AnError)

	service := services.NewProximitySearchService(
		newQuietSecurityService(t), provider, mocks.NewMockItemRepository(t), nil, nil, nil)

	options := service.SearchLocations(context.Background(), "Athens", 5, "", nil)

	assert.Empty(t, options)
}

func TestSearchLocations_ClampsLimitToProviderCap(t *testing.T) {
	provider := mocks.NewMockGeocodingProvider(t)
	provider.On("SearchLocations", mock.Anything, "Athens", 20, "").
		Return([]*entities.LocationOption{}, nil)

	service := services.NewProximitySearchService(
		newQuietSecurityService(t), provider, mocks.NewMockItemRepository(t), nil, nil, nil)

	service.SearchLocations(context.Background(), "Athens", 500, "", nil)
	service.SearchLocations(context.Background(), "Athens", -1, "", nil)
}

func TestReverseGeocode_KnownCoordinateAndInvalidInput(t *testing.T) {
	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(),
		mocks.NewMockItemRepository(t), nil, nil, nil)

	option := service.ReverseGeocode(context.Background(),
		entities.Coordinate{Latitude: 33.9519, Longitude: -83.3576}, strPtr("user-1"))
	require.NotNil(t, option)
	assert.Equal(t, "Athens", option.City)

	assert.Nil(t, service.ReverseGeocode(context.Background(),
		entities.Coordinate{Latitude: 120, Longitude: 10}, nil))
}

func TestParseCoordinates(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ok    bool
		lat   float64
		lng   float64
	}{
		{"plain pair", "33.9519, -83.3576", true, 33.9519, -83.3576},
		{"no space", "33.9519,-83.3576", true, 33.9519, -83.3576},
		{"latitude out of range", "91.0, 10.0", false, 0, 0},
		{"longitude out of range", "45.0, 181.0", false, 0, 0},
		{"not a number", "foo, bar", false, 0, 0},
		{"three parts", "1.0, 2.0, 3.0", false, 0, 0},
		{"single value", "33.9519", false, 0, 0},
		{"empty", "", false, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			coordinate, ok := services.ParseCoordinates(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.lat, coordinate.Latitude, 1e-9)
				assert.InDelta(t, tc.lng, coordinate.Longitude, 1e-9)
			}
		})
	}
}

func TestProcessLocationInput(t *testing.T) {
	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(),
		mocks.NewMockItemRepository(t), nil, nil, nil)

	t.Run("coordinate string reverse geocodes", func(t *testing.T) {
		option := service.ProcessLocationInput(context.Background(), "33.9519, -83.3576", "")
		require.NotNil(t, option)
		assert.Equal(t, "Athens", option.City)
		require.NotNil(t, option.Location)
		assert.InDelta(t, 33.9519, option.Location.Latitude, 1e-4)
		assert.InDelta(t, -83.3576, option.Location.Longitude, 1e-4)
	})

	t.Run("address text geocodes", func(t *testing.T) {
		option := service.ProcessLocationInput(context.Background(), "Atlanta, GA", "")
		require.NotNil(t, option)
		assert.Equal(t, "Atlanta", option.City)
	})

	t.Run("fallback used when primary resolves nothing", func(t *testing.T) {
		option := service.ProcessLocationInput(context.Background(), "Nonexistent Place Xyz123", "Savannah, GA")
		require.NotNil(t, option)
		assert.Equal(t, "Savannah", option.City)
	})

	t.Run("nothing resolves", func(t *testing.T) {
		assert.Nil(t, service.ProcessLocationInput(context.Background(), "Nonexistent Place Xyz123", ""))
	})

	t.Run("unresolvable coordinate still yields a minimal option", func(t *testing.T) {
		provider := mocks.NewMockGeocodingProvider(t)
		provider.On("ReverseGeocode", mock.Anything, 10.5, 20.5).Return(nil, assert.AnError)
		failing := services.NewProximitySearchService(
			newQuietSecurityService(t), provider, mocks.NewMockItemRepository(t), nil, nil, nil)

		option := failing.ProcessLocationInput(context.Background(), "10.5, 20.5", "")
		require.NotNil(t, option)
		assert.Equal(t, "10.5000, 20.5000", option.DisplayName)
		require.NotNil(t, option.Location)
		assert.InDelta(t, 10.5, option.Location.Latitude, 1e-9)
	})
}

func TestAnalyzeGeographicClusters(t *testing.T) {
	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(),
		mocks.NewMockItemRepository(t), nil, nil, nil)

	athens := &entities.LocationOption{
		DisplayName: "Athens, GA", City: "Athens", State: "GA",
		Location: &entities.Coordinate{Latitude: 33.9519, Longitude: -83.3576},
	}
	athensEast := &entities.LocationOption{
		DisplayName: "Winterville, GA", City: "Winterville", State: "GA",
		Location: &entities.Coordinate{Latitude: 33.9668, Longitude: -83.2779},
	}
	nashville := &entities.LocationOption{
		DisplayName: "Nashville, TN", City: "Nashville", State: "TN",
		Location: &entities.Coordinate{Latitude: 36.1627, Longitude: -86.7816},
	}
	noCoordinate := &entities.LocationOption{DisplayName: "somewhere"}

	clusters := service.AnalyzeGeographicClusters(
		[]*entities.LocationOption{athens, athensEast, nashville, noCoordinate}, 50)

	require.Len(t, clusters, 2)
	assert.Equal(t, 2, clusters[0].MemberCount)
	assert.Equal(t, "Athens, GA", clusters[0].Label)
	assert.Equal(t, 1, clusters[1].MemberCount)
	assert.Equal(t, "Nashville, TN", clusters[1].Label)
	require.NotNil(t, clusters[0].Centroid)
	assert.InDelta(t, (33.9519+33.9668)/2, clusters[0].Centroid.Latitude, 1e-6)
}

func TestAnalyzeGeographicClusters_UnlabeledMembers(t *testing.T) {
	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(),
		mocks.NewMockItemRepository(t), nil, nil, nil)

	clusters := service.AnalyzeGeographicClusters([]*entities.LocationOption{
		{DisplayName: "pin", Location: &entities.Coordinate{Latitude: 10, Longitude: 10}},
	}, 0)

	require.Len(t, clusters, 1)
	assert.Equal(t, "Unknown area", clusters[0].Label)
}

func TestGetPopularLocations_CacheMissThenPopulates(t *testing.T) {
	cities := []repositories.CityCount{
		{City: "Athens", State: "GA", ItemCount: 12, Centroid: entities.Coordinate{Latitude: 33.95, Longitude: -83.36}},
		{City: "Atlanta", State: "GA", ItemCount: 9, Centroid: entities.Coordinate{Latitude: 33.75, Longitude: -84.39}},
	}

	cache := mocks.NewMockCacheProvider(t)
	cache.On("Get", mock.Anything, "locations:popular:v1:5").Return(nil, assert.AnError)
	cache.On("Set", mock.Anything, "locations:popular:v1:5", mock.Anything, 300).Return(nil)

	itemRepo := mocks.NewMockItemRepository(t)
	itemRepo.On("ListCities", mock.Anything, 5).Return(cities, nil)

	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(), itemRepo, nil, cache, nil)

	options, err := service.GetPopularLocations(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "Athens, GA", options[0].DisplayName)
	require.NotNil(t, options[0].Location)
	assert.InDelta(t, 33.95, options[0].Location.Latitude, 1e-9)
}

func TestGetPopularLocations_CacheHitSkipsDatabase(t *testing.T) {
	cached := []byte(`[{"display_name":"Athens, GA","city":"Athens","state":"GA"}]`)

	cache := mocks.NewMockCacheProvider(t)
	cache.On("Get", mock.Anything, "locations:popular:v1:5").Return(cached, nil)

	itemRepo := mocks.NewMockItemRepository(t)

	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(), itemRepo, nil, cache, nil)

	options, err := service.GetPopularLocations(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "Athens, GA", options[0].DisplayName)
	itemRepo.AssertNotCalled(t, "ListCities", mock.Anything, mock.Anything)
}

func TestCalculateDistance_MatchesHaversine(t *testing.T) {
	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(),
		mocks.NewMockItemRepository(t), nil, nil, nil)

	athens := entities.Coordinate{Latitude: 33.9519, Longitude: -83.3576}
	atlanta := entities.Coordinate{Latitude: 33.7490, Longitude: -84.3880}

	assert.InDelta(t, 98, service.CalculateDistance(athens, atlanta), 5)
	assert.Equal(t, 0.0, service.CalculateDistance(athens, athens))
}

func TestFindNearbyItems_AnonymousSearchAllowed(t *testing.T) {
	item := athensItem("item-1", "Drill", 33.9520, -83.3575)

	itemRepo := mocks.NewMockItemRepository(t)
	itemRepo.On("FindInBoundingBox", mock.Anything, mock.Anything, entities.SearchTypeItem).
		Return([]*entities.Item{item}, nil)

	service := services.NewProximitySearchService(
		newQuietSecurityService(t), geocoding.NewMockProvider(), itemRepo, nil, nil, nil)

	results, err := service.FindNearbyItems(context.Background(), services.NearbySearchParams{
		Center:     entities.Coordinate{Latitude: 33.9519, Longitude: -83.3576},
		RadiusKm:   10,
		SearchType: entities.SearchTypeItem,
	})

	require.NoError(t, err)
	assert.Len(t, results, 1)
}
