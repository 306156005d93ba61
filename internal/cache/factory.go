package cache

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/at-ishikawa/pokedex/internal/config"
)

// NewBackend builds the backend selected by cfg. It returns nil for "none".
func NewBackend(cfg config.CacheConfig, db *sqlx.DB) (Backend, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryBackend(MemoryConfig{
			Capacity:           cfg.Capacity,
			NumShards:          cfg.NumShards,
			TTL:                max(cfg.TTL, cfg.PayloadTTL),
			EvictionPercentage: cfg.EvictionPercentage,
		}), nil
	case "redis":
		return NewRedisBackend(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})), nil
	case "sql":
		if db == nil {
			return nil, fmt.Errorf("sql cache backend requires a database")
		}
		return NewSQLBackend(db), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
