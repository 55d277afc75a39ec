package seen

import (
	"context"
	"fmt"

	"jobalert/internal/config"
	"jobalert/internal/logger"
)

// Store persists a Cache between runs. Open holds whatever lock the backend
// uses until Close.
type Store interface {
	Load(ctx context.Context) (*Cache, error)
	Save(ctx context.Context, c *Cache) error
	Close() error
}

// Open returns the store the cache config selects.
func Open(ctx context.Context, cfg config.Cache, log logger.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return OpenFile(ctx, cfg.Path, log)
	case "redis":
		return OpenRedis(ctx, cfg.RedisURL, cfg.RedisKey, log)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
