package kv

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// Option is a functional option for configuring a store.
type Option func(*storeConfig)

type storeConfig struct {
	path        string
	keyPrefix   string
	redisClient *redis.Client
	redisTTL    time.Duration
	supabaseURL string
	supabaseKey string
}

// WithPath sets the database or JSON file location for the file and sqlite stores.
func WithPath(path string) Option {
	return func(c *storeConfig) {
		c.path = path
	}
}

// WithKeyPrefix namespaces keys in shared backends (redis, supabase).
func WithKeyPrefix(prefix string) Option {
	return func(c *storeConfig) {
		c.keyPrefix = prefix
	}
}

// WithRedisClient sets the Redis client for the Redis store.
func WithRedisClient(client *redis.Client) Option {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithRedisTTL sets the TTL for Redis keys. Zero keeps keys forever.
func WithRedisTTL(ttl time.Duration) Option {
	return func(c *storeConfig) {
		c.redisTTL = ttl
	}
}

// WithSupabase sets the project URL and API key for the Supabase store.
func WithSupabase(url, apiKey string) Option {
	return func(c *storeConfig) {
		c.supabaseURL = url
		c.supabaseKey = apiKey
	}
}
