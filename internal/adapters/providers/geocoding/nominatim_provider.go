package geocoding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/providers"
)

const (
	defaultNominatimURL  = "https://nominatim.openstreetmap.org"
	defaultSearchTTL     = 60 * 60 * 24 * 30
	defaultReverseTTL    = 60 * 60 * 24 * 30
	defaultHTTPTimeout   = 8 * time.Second
	maxNominatimResults  = 20
	nominatimResponseFmt = "jsonv2"
)

// NominatimProvider implements GeocodingProvider using the OpenStreetMap
// Nominatim API.
type NominatimProvider struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      providers.CacheProvider
}

// NewNominatimProvider creates a new Nominatim geocoding provider
func NewNominatimProvider(baseURL, userAgent string, cache providers.CacheProvider) providers.GeocodingProvider {
	return NewNominatimProviderWithClient(baseURL, userAgent, cache, nil)
}

// NewNominatimProviderWithClient allows overriding the HTTP client (used for tests)
func NewNominatimProviderWithClient(baseURL, userAgent string, cache providers.CacheProvider, httpClient *http.Client) providers.GeocodingProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultNominatimURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &NominatimProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
		cache:      cache,
	}
}

// ProviderName identifies the upstream service
func (p *NominatimProvider) ProviderName() string {
	return "nominatim"
}

// SearchLocations resolves a free-text query to candidate locations
func (p *NominatimProvider) SearchLocations(ctx context.Context, query string, limit int, countryCode string) ([]*entities.LocationOption, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, fmt.Errorf("query is required")
	}
	if limit <= 0 || limit > maxNominatimResults {
		limit = maxNominatimResults
	}

	cacheKey := "geo:v1:search:" + hashKey(fmt.Sprintf("%s|%d|%s", strings.ToLower(trimmed), limit, countryCode))
	if p.cache != nil {
		if cached, err := p.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var options []*entities.LocationOption
			if err := json.Unmarshal(cached, &options); err == nil {
				return options, nil
			}
		}
	}

	params := url.Values{}
	params.Set("q", trimmed)
	params.Set("format", nominatimResponseFmt)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("addressdetails", "1")
	if countryCode != "" {
		params.Set("countrycodes", strings.ToLower(countryCode))
	}

	var results []nominatimResult
	if err := p.doRequest(ctx, "/search", params, &results); err != nil {
		return nil, err
	}

	options := make([]*entities.LocationOption, 0, len(results))
	for _, result := range results {
		if option := result.toLocationOption(); option != nil {
			options = append(options, option)
		}
	}

	if p.cache != nil {
		if payload, err := json.Marshal(options); err == nil {
			_ = p.cache.Set(ctx, cacheKey, payload, defaultSearchTTL)
		}
	}

	return options, nil
}

// ReverseGeocode resolves a coordinate to a display address
func (p *NominatimProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*entities.LocationOption, error) {
	cacheKey := "geo:v1:reverse:" + hashKey(fmt.Sprintf("%.5f,%.5f", lat, lng))
	if p.cache != nil {
		if cached, err := p.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var option entities.LocationOption
			if err := json.Unmarshal(cached, &option); err == nil && option.Location != nil {
				return &option, nil
			}
		}
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', 6, 64))
	params.Set("format", nominatimResponseFmt)
	params.Set("addressdetails", "1")

	var result nominatimResult
	if err := p.doRequest(ctx, "/reverse", params, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		// Nominatim reports "unable to geocode" for open ocean; not a failure.
		return nil, nil
	}

	option := result.toLocationOption()
	if option == nil {
		return nil, nil
	}

	if p.cache != nil {
		if payload, err := json.Marshal(option); err == nil {
			_ = p.cache.Set(ctx, cacheKey, payload, defaultReverseTTL)
		}
	}

	return option, nil
}

func (p *NominatimProvider) doRequest(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", p.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("geocoding request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	return nil
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

type nominatimResult struct {
	DisplayName string           `json:"display_name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Importance  *float64         `json:"importance,omitempty"`
	Address     nominatimAddress `json:"address"`
	Error       string           `json:"error,omitempty"`
}

type nominatimAddress struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	County  string `json:"county"`
	State   string `json:"state"`
	Country string `json:"country"`
}

func (r nominatimResult) toLocationOption() *entities.LocationOption {
	if r.DisplayName == "" {
		return nil
	}

	option := &entities.LocationOption{
		DisplayName: r.DisplayName,
		City:        r.Address.locality(),
		State:       r.Address.State,
		Country:     r.Address.Country,
	}

	lat, latErr := strconv.ParseFloat(r.Lat, 64)
	lng, lngErr := strconv.ParseFloat(r.Lon, 64)
	if latErr == nil && lngErr == nil {
		option.Location = &entities.Coordinate{Latitude: lat, Longitude: lng}
	}

	if r.Importance != nil {
		confidence := *r.Importance
		if confidence > 1 {
			confidence = 1
		}
		if confidence < 0 {
			confidence = 0
		}
		option.Confidence = &confidence
	}

	return option
}

func (a nominatimAddress) locality() string {
	for _, candidate := range []string{a.City, a.Town, a.Village, a.County} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}
