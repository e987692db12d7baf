package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nickprotop/NeighborTools-sub004/pkg/config"
)

// Cache traffic is many small geocode and popular-location lookups on
// the search hot path. Timeouts stay tight so a degraded Redis turns
// into provider or database lookups instead of stalled searches.
const (
	dialTimeout  = 2 * time.Second
	readTimeout  = 300 * time.Millisecond
	writeTimeout = 500 * time.Millisecond
	poolSize     = 16
	minIdleConns = 2
	pingTimeout  = 3 * time.Second
)

// Client wraps the Redis connection used by the location cache
type Client struct {
	client *redis.Client
}

func options(cfg *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		PoolSize:     poolSize,
		MinIdleConns: minIdleConns,
	}
}

// NewClient connects to Redis and verifies the connection before use
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(options(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// Client returns the underlying Redis client
func (c *Client) Client() *redis.Client {
	return c.client
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// Ping verifies the connection to Redis
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
