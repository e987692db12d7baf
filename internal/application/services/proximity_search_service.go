package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/providers"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/repositories"
	"github.com/nickprotop/NeighborTools-sub004/internal/geoprivacy"
	"github.com/nickprotop/NeighborTools-sub004/internal/infrastructure/observability"
	apperrors "github.com/nickprotop/NeighborTools-sub004/pkg/errors"
)

const (
	// maxProviderResults caps how many candidates a single text search may request
	maxProviderResults = 20

	defaultClusterRadiusKm = 50.0

	popularLocationsCacheTTL = 300
	popularLocationsCacheKey = "locations:popular:v1"
)

// Shown to callers when abuse detection refuses a search. Deliberately
// generic: naming the detection would help an attacker evade it.
const suspiciousSearchMessage = "unable to complete this search"

// Item coordinates disclosed in search results are jittered at this
// privacy level; callers never see a listing's exact position.
const disclosurePrivacyLevel = entities.PrivacyLevelZipCode

// ProximitySearchService is the top-level location search API consumed
// by the rest of the marketplace. It owns no persistent state; it
// coordinates the security engine, the geocoding provider and the
// read-only item store.
type ProximitySearchService struct {
	security   *LocationSecurityService
	provider   providers.GeocodingProvider
	itemRepo   repositories.ItemRepository
	itemSearch repositories.ItemSearchRepository
	cache      providers.CacheProvider
	metrics    *observability.Metrics
}

// NewProximitySearchService creates a new proximity search service.
// itemSearch, cache and metrics may be nil; the service degrades to the
// database store and uncached aggregates.
func NewProximitySearchService(
	security *LocationSecurityService,
	provider providers.GeocodingProvider,
	itemRepo repositories.ItemRepository,
	itemSearch repositories.ItemSearchRepository,
	cache providers.CacheProvider,
	metrics *observability.Metrics,
) *ProximitySearchService {
	return &ProximitySearchService{
		security:   security,
		provider:   provider,
		itemRepo:   itemRepo,
		itemSearch: itemSearch,
		cache:      cache,
		metrics:    metrics,
	}
}

// SearchLocations resolves a free-text query to candidate locations.
// Provider failures degrade to an empty list; location search must never
// crash the caller.
func (s *ProximitySearchService) SearchLocations(ctx context.Context, query string, limit int, countryCode string, userID *string) []*entities.LocationOption {
	if strings.TrimSpace(query) == "" {
		return []*entities.LocationOption{}
	}
	if limit <= 0 || limit > maxProviderResults {
		limit = maxProviderResults
	}

	options, err := s.provider.SearchLocations(ctx, query, limit, countryCode)
	if err != nil {
		s.countProviderFailure(ctx)
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("provider", s.provider.ProviderName()).
			Msg("geocoding search failed, returning empty result")
		return []*entities.LocationOption{}
	}
	if options == nil {
		options = []*entities.LocationOption{}
	}

	s.logTextSearch(ctx, userID, query, len(options))

	return options
}

// ReverseGeocode resolves a coordinate to a display address. Invalid
// coordinates and provider failures both yield nil.
func (s *ProximitySearchService) ReverseGeocode(ctx context.Context, coordinate entities.Coordinate, userID *string) *entities.LocationOption {
	if !coordinate.Valid() {
		return nil
	}

	option, err := s.provider.ReverseGeocode(ctx, coordinate.Latitude, coordinate.Longitude)
	if err != nil {
		s.countProviderFailure(ctx)
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("provider", s.provider.ProviderName()).
			Msg("reverse geocoding failed, returning nil")
		return nil
	}
	if option == nil {
		return nil
	}

	s.logCoordinateResolution(ctx, userID, coordinate)

	return option
}

// ProcessLocationInput accepts either a "lat, lng" decimal string or a
// free-text address and resolves it to a location. If the primary text
// yields nothing and a fallback was supplied, the fallback is tried the
// same way before giving up.
func (s *ProximitySearchService) ProcessLocationInput(ctx context.Context, primaryText, fallbackText string) *entities.LocationOption {
	if option := s.resolveOne(ctx, primaryText); option != nil {
		return option
	}
	if strings.TrimSpace(fallbackText) != "" {
		return s.resolveOne(ctx, fallbackText)
	}
	return nil
}

func (s *ProximitySearchService) resolveOne(ctx context.Context, text string) *entities.LocationOption {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if coordinate, ok := ParseCoordinates(text); ok {
		if option := s.ReverseGeocode(ctx, coordinate, nil); option != nil {
			return option
		}
		// The coordinate itself is usable even when the provider is not.
		return &entities.LocationOption{
			DisplayName: fmt.Sprintf("%.4f, %.4f", coordinate.Latitude, coordinate.Longitude),
			Location:    &coordinate,
		}
	}

	options := s.SearchLocations(ctx, text, 1, "", nil)
	if len(options) == 0 {
		return nil
	}
	return options[0]
}

// ParseCoordinates parses a "lat, lng" decimal degree string. Anything
// that is not exactly two in-range comma-separated numbers fails.
func ParseCoordinates(text string) (entities.Coordinate, bool) {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return entities.Coordinate{}, false
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		return entities.Coordinate{}, false
	}

	coordinate := entities.Coordinate{Latitude: lat, Longitude: lng}
	if !coordinate.Valid() {
		return entities.Coordinate{}, false
	}
	return coordinate, true
}

// ValidateCoordinates checks latitude/longitude ranges
func ValidateCoordinates(lat, lng float64) bool {
	return entities.Coordinate{Latitude: lat, Longitude: lng}.Valid()
}

// NearbySearchParams describes one nearby-item search request
type NearbySearchParams struct {
	Center     entities.Coordinate
	RadiusKm   float64
	SearchType entities.SearchType
	UserID     *string
	TargetID   *string
	UserAgent  string
	IPAddress  string
	SessionID  string

	// IncludeFuzzedKm attaches a fuzzed kilometre value to each result
	// in addition to its distance band.
	IncludeFuzzedKm bool
}

// FindNearbyItems runs the gated nearby-item search: validation, rate
// limit, triangulation check, geometric query, privacy-safe distances,
// audit logging. Results are sorted ascending by true distance with ties
// broken by item id.
func (s *ProximitySearchService) FindNearbyItems(ctx context.Context, params NearbySearchParams) ([]entities.ItemWithDistance, error) {
	started := time.Now()

	if !params.Center.Valid() {
		return nil, apperrors.NewValidationError("invalid search coordinates")
	}
	if params.RadiusKm <= 0 {
		return nil, apperrors.NewValidationError("search radius must be positive")
	}

	allowed, err := s.security.ValidateLocationSearch(ctx, params.UserID, params.TargetID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NewRateLimitedError("too many location searches, try again later")
	}

	suspicious, err := s.security.IsTriangulationAttempt(ctx, params.UserID, params.TargetID, params.SearchType, params.Center)
	if err != nil {
		return nil, err
	}
	if suspicious {
		// The refused attempt still goes on the audit trail for review.
		if _, logErr := s.security.LogSearch(ctx, s.auditParams(params, 0, started)); logErr != nil {
			observability.LoggerFromContext(ctx).Warn().Err(logErr).
				Msg("failed to log refused search attempt")
		}
		return nil, apperrors.NewSuspiciousPatternError(suspiciousSearchMessage)
	}

	items, err := s.queryItems(ctx, params)
	if err != nil {
		return nil, err
	}

	results := make([]entities.ItemWithDistance, 0, len(items))
	for _, item := range items {
		distance := geoprivacy.GreatCircleDistance(params.Center, item.Location)
		if distance > params.RadiusKm {
			continue
		}

		band := geoprivacy.DistanceBandOf(distance)
		var fuzzedKm *float64
		if params.IncludeFuzzedKm {
			fuzzed := geoprivacy.FuzzedDistance(distance)
			fuzzedKm = &fuzzed
		}

		disclosed := *item
		disclosed.Location = geoprivacy.JitteredLocation(item.Location, disclosurePrivacyLevel)

		results = append(results, entities.NewItemWithDistance(disclosed, distance, band, geoprivacy.BandText(band), fuzzedKm))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].SortKey() != results[j].SortKey() {
			return results[i].SortKey() < results[j].SortKey()
		}
		return results[i].Item.ID < results[j].Item.ID
	})

	if _, err := s.security.LogSearch(ctx, s.auditParams(params, len(results), started)); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *ProximitySearchService) queryItems(ctx context.Context, params NearbySearchParams) ([]*entities.Item, error) {
	if s.itemSearch != nil {
		items, err := s.itemSearch.SearchNearby(ctx, params.Center, params.RadiusKm, params.SearchType)
		if err == nil {
			return items, nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Msg("item search index unavailable, falling back to database")
	}

	box := geoprivacy.BoundingBoxAround(params.Center, params.RadiusKm)
	return s.itemRepo.FindInBoundingBox(ctx, box, params.SearchType)
}

func (s *ProximitySearchService) auditParams(params NearbySearchParams, resultCount int, started time.Time) LogSearchParams {
	center := params.Center
	radius := params.RadiusKm
	return LogSearchParams{
		UserID:         params.UserID,
		TargetID:       params.TargetID,
		SearchType:     params.SearchType,
		Coordinate:     &center,
		RadiusKm:       &radius,
		UserAgent:      params.UserAgent,
		IPAddress:      params.IPAddress,
		SessionID:      params.SessionID,
		ResultCount:    resultCount,
		ResponseTimeMs: int(time.Since(started).Milliseconds()),
	}
}

// AnalyzeGeographicClusters groups location options by greedy
// single-link clustering within radiusKm (default 50). Deterministic
// given input order; options without coordinates are skipped.
func (s *ProximitySearchService) AnalyzeGeographicClusters(locations []*entities.LocationOption, radiusKm float64) []entities.GeographicCluster {
	if radiusKm <= 0 {
		radiusKm = defaultClusterRadiusKm
	}

	type cluster struct {
		members  []*entities.LocationOption
		centroid entities.Coordinate
	}

	var clusters []*cluster
	for _, location := range locations {
		if location == nil || location.Location == nil {
			continue
		}

		var home *cluster
		for _, c := range clusters {
			if geoprivacy.GreatCircleDistance(c.centroid, *location.Location) <= radiusKm {
				home = c
				break
			}
			for _, member := range c.members {
				if geoprivacy.GreatCircleDistance(*member.Location, *location.Location) <= radiusKm {
					home = c
					break
				}
			}
			if home != nil {
				break
			}
		}

		if home == nil {
			clusters = append(clusters, &cluster{
				members:  []*entities.LocationOption{location},
				centroid: *location.Location,
			})
			continue
		}

		home.members = append(home.members, location)
		home.centroid = meanCoordinate(home.members)
	}

	result := make([]entities.GeographicCluster, 0, len(clusters))
	for _, c := range clusters {
		centroid := c.centroid
		result = append(result, entities.GeographicCluster{
			Label:       clusterLabel(c.members),
			MemberCount: len(c.members),
			Centroid:    &centroid,
		})
	}
	return result
}

func meanCoordinate(members []*entities.LocationOption) entities.Coordinate {
	var latSum, lngSum float64
	var n int
	for _, m := range members {
		if m.Location == nil {
			continue
		}
		latSum += m.Location.Latitude
		lngSum += m.Location.Longitude
		n++
	}
	if n == 0 {
		return entities.Coordinate{}
	}
	return entities.Coordinate{Latitude: latSum / float64(n), Longitude: lngSum / float64(n)}
}

func clusterLabel(members []*entities.LocationOption) string {
	counts := map[string]int{}
	var best string
	var bestCount int
	for _, m := range members {
		if m.City == "" {
			continue
		}
		key := m.City
		if m.State != "" {
			key = m.City + ", " + m.State
		}
		counts[key]++
		if counts[key] > bestCount {
			best = key
			bestCount = counts[key]
		}
	}
	if best == "" {
		return "Unknown area"
	}
	return best
}

// CalculateDistance returns the great-circle distance in kilometers
func (s *ProximitySearchService) CalculateDistance(a, b entities.Coordinate) float64 {
	return geoprivacy.GreatCircleDistance(a, b)
}

// GetPopularLocations aggregates the cities items are listed in, cached
// with a short TTL. The cache only speeds up resolution; it never feeds
// the security gate.
func (s *ProximitySearchService) GetPopularLocations(ctx context.Context, limit int) ([]*entities.LocationOption, error) {
	if limit <= 0 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("%s:%d", popularLocationsCacheKey, limit)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var options []*entities.LocationOption
			if err := json.Unmarshal(cached, &options); err == nil {
				return options, nil
			}
		}
	}

	cities, err := s.itemRepo.ListCities(ctx, limit)
	if err != nil {
		return nil, err
	}

	options := make([]*entities.LocationOption, 0, len(cities))
	for _, city := range cities {
		centroid := city.Centroid
		label := city.City
		if city.State != "" {
			label = city.City + ", " + city.State
		}
		options = append(options, &entities.LocationOption{
			DisplayName: label,
			City:        city.City,
			State:       city.State,
			Location:    &centroid,
		})
	}

	if s.cache != nil {
		if payload, err := json.Marshal(options); err == nil {
			_ = s.cache.Set(ctx, cacheKey, payload, popularLocationsCacheTTL)
		}
	}

	return options, nil
}

func (s *ProximitySearchService) logTextSearch(ctx context.Context, userID *string, query string, resultCount int) {
	q := query
	if _, err := s.security.LogSearch(ctx, LogSearchParams{
		UserID:      userID,
		SearchType:  entities.SearchTypeItem,
		Query:       &q,
		ResultCount: resultCount,
	}); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to log location text search")
	}
}

func (s *ProximitySearchService) logCoordinateResolution(ctx context.Context, userID *string, coordinate entities.Coordinate) {
	if _, err := s.security.LogSearch(ctx, LogSearchParams{
		UserID:      userID,
		SearchType:  entities.SearchTypeItem,
		Coordinate:  &coordinate,
		ResultCount: 1,
	}); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to log reverse geocode")
	}
}

func (s *ProximitySearchService) countProviderFailure(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.ProviderFailures.Add(ctx, 1)
	}
}
