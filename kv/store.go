// Package kv provides the string key-value backends that hold every
// persisted multiai value.
package kv

import (
	"context"
	"errors"
)

var (
	// ErrInvalidConfig is returned when a driver is missing a required option.
	ErrInvalidConfig = errors.New("kv: invalid store configuration")
	// ErrInvalidStoreType is returned for an unknown backend name.
	ErrInvalidStoreType = errors.New("kv: invalid store type")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("kv: store closed")
)

// Store defines a flat string key-value store.
type Store interface {
	// Get returns the value for key. A missing key is reported with
	// found=false and a nil error.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// StoreType names a backend driver.
type StoreType string

const (
	StoreTypeMemory   StoreType = "memory"
	StoreTypeFile     StoreType = "file"
	StoreTypeSQLite   StoreType = "sqlite"
	StoreTypeRedis    StoreType = "redis"
	StoreTypeSupabase StoreType = "supabase"
)

// NewStore creates a Store of the given type.
// File and sqlite stores require WithPath, redis requires WithRedisClient
// and supabase requires WithSupabase.
func NewStore(storeType StoreType, opts ...Option) (Store, error) {
	cfg := &storeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeMemory:
		return NewMemoryStore(), nil

	case StoreTypeFile:
		if cfg.path == "" {
			return nil, ErrInvalidConfig
		}
		return NewFileStore(cfg.path)

	case StoreTypeSQLite:
		if cfg.path == "" {
			return nil, ErrInvalidConfig
		}
		return NewSQLiteStore(cfg.path)

	case StoreTypeRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return NewRedisStore(cfg.redisClient, cfg.keyPrefix, cfg.redisTTL), nil

	case StoreTypeSupabase:
		if cfg.supabaseURL == "" || cfg.supabaseKey == "" {
			return nil, ErrInvalidConfig
		}
		return NewSupabaseStore(cfg.supabaseURL, cfg.supabaseKey, cfg.keyPrefix)

	default:
		return nil, ErrInvalidStoreType
	}
}
