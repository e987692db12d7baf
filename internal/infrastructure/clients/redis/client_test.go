package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nickprotop/NeighborTools-sub004/pkg/config"
)

func TestOptions_SizedForCacheWorkload(t *testing.T) {
	cfg := &config.RedisConfig{
		Host:     "cache.internal",
		Port:     6380,
		Password: "secret",
		DB:       2,
	}

	opts := options(cfg)

	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	// Reads dominate and must fail fast enough for the search path to
	// fall through to the geocoding provider or database.
	assert.Equal(t, 300*time.Millisecond, opts.ReadTimeout)
	assert.LessOrEqual(t, opts.ReadTimeout, opts.WriteTimeout)
	assert.Equal(t, 16, opts.PoolSize)
	assert.Equal(t, 2, opts.MinIdleConns)
}
