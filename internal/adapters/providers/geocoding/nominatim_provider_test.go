package geocoding_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickprotop/NeighborTools-sub004/internal/adapters/providers/geocoding"
)

const athensSearchResponse = `[{
  "display_name": "Athens, Clarke County, Georgia, United States",
  "lat": "33.9519",
  "lon": "-83.3576",
  "importance": 0.72,
  "address": {
    "city": "Athens",
    "state": "Georgia",
    "country": "United States"
  }
}]`

const athensReverseResponse = `{
  "display_name": "College Avenue, Athens, Clarke County, Georgia, United States",
  "lat": "33.9519",
  "lon": "-83.3576",
  "address": {
    "city": "Athens",
    "state": "Georgia",
    "country": "United States"
  }
}`

func newNominatimTestServer(t *testing.T, searchCalls, reverseCalls *int32) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			atomic.AddInt32(searchCalls, 1)
			if r.URL.Query().Get("q") == "Nonexistent Place Xyz123" {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			_, _ = w.Write([]byte(athensSearchResponse))
		case "/reverse":
			atomic.AddInt32(reverseCalls, 1)
			if r.URL.Query().Get("lat") == "0.000000" {
				_, _ = w.Write([]byte(`{"error": "Unable to geocode"}`))
				return
			}
			_, _ = w.Write([]byte(athensReverseResponse))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNominatimProvider_SearchLocations(t *testing.T) {
	var searchCalls, reverseCalls int32
	server := newNominatimTestServer(t, &searchCalls, &reverseCalls)

	provider := geocoding.NewNominatimProviderWithClient(server.URL, "test-agent", nil, server.Client())

	options, err := provider.SearchLocations(context.Background(), "Athens, GA", 5, "us")

	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "Athens", options[0].City)
	assert.Equal(t, "Georgia", options[0].State)
	require.NotNil(t, options[0].Location)
	assert.InDelta(t, 33.9519, options[0].Location.Latitude, 1e-9)
	require.NotNil(t, options[0].Confidence)
	assert.InDelta(t, 0.72, *options[0].Confidence, 1e-9)
}

func TestNominatimProvider_SearchLocations_NoResults(t *testing.T) {
	var searchCalls, reverseCalls int32
	server := newNominatimTestServer(t, &searchCalls, &reverseCalls)

	provider := geocoding.NewNominatimProviderWithClient(server.URL, "test-agent", nil, server.Client())

	options, err := provider.SearchLocations(context.Background(), "Nonexistent Place Xyz123", 5, "")

	require.NoError(t, err, "no results is not a provider failure")
	assert.Empty(t, options)
}

func TestNominatimProvider_ReverseGeocode(t *testing.T) {
	var searchCalls, reverseCalls int32
	server := newNominatimTestServer(t, &searchCalls, &reverseCalls)

	provider := geocoding.NewNominatimProviderWithClient(server.URL, "test-agent", nil, server.Client())

	option, err := provider.ReverseGeocode(context.Background(), 33.9519, -83.3576)

	require.NoError(t, err)
	require.NotNil(t, option)
	assert.Equal(t, "Athens", option.City)
}

func TestNominatimProvider_ReverseGeocode_Unmappable(t *testing.T) {
	var searchCalls, reverseCalls int32
	server := newNominatimTestServer(t, &searchCalls, &reverseCalls)

	provider := geocoding.NewNominatimProviderWithClient(server.URL, "test-agent", nil, server.Client())

	option, err := provider.ReverseGeocode(context.Background(), 0, 0)

	require.NoError(t, err, "open ocean is a nil result, not an error")
	assert.Nil(t, option)
}

func TestNominatimProvider_SearchUsesCache(t *testing.T) {
	var searchCalls, reverseCalls int32
	server := newNominatimTestServer(t, &searchCalls, &reverseCalls)

	cache := newMemoryCache()
	provider := geocoding.NewNominatimProviderWithClient(server.URL, "test-agent", cache, server.Client())

	for i := 0; i < 3; i++ {
		options, err := provider.SearchLocations(context.Background(), "Athens, GA", 5, "us")
		require.NoError(t, err)
		require.Len(t, options, 1)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&searchCalls), "repeated queries should hit the cache")
}

func TestNominatimProvider_UpstreamErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	provider := geocoding.NewNominatimProviderWithClient(server.URL, "test-agent", nil, server.Client())

	_, err := provider.SearchLocations(context.Background(), "Athens, GA", 5, "")
	require.Error(t, err)

	_, err = provider.ReverseGeocode(context.Background(), 33.9519, -83.3576)
	require.Error(t, err)
}

// memoryCache is a minimal in-process CacheProvider for provider tests
type memoryCache struct {
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := c.data[key]
	if !ok {
		return nil, assert.AnError
	}
	return value, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.data[key]
	return ok, nil
}
