package kv

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"multiai/config"
)

// Open builds the store selected in the user config.
func Open(ctx context.Context, cfg config.StorageConfig, dataDir string) (Store, error) {
	storeType := StoreType(cfg.Backend)
	if storeType == "" {
		storeType = StoreTypeFile
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[kv] Opening %s store (data dir %s)", storeType, dataDir)
	}

	switch storeType {
	case StoreTypeFile:
		return NewStore(storeType, WithPath(filepath.Join(dataDir, "store.json")))

	case StoreTypeSQLite:
		return NewStore(storeType, WithPath(filepath.Join(dataDir, "kv.db")))

	case StoreTypeRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis backend requires redis_addr: %w", ErrInvalidConfig)
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return NewStore(storeType, WithRedisClient(client), WithKeyPrefix(cfg.KeyPrefix))

	case StoreTypeSupabase:
		return NewStore(storeType,
			WithSupabase(cfg.SupabaseURL, cfg.SupabaseKey),
			WithKeyPrefix(cfg.KeyPrefix))

	default:
		return NewStore(storeType)
	}
}
