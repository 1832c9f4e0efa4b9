package bootstrap

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/contoso-university-api/internal/repository"
	"github.com/noah-isme/contoso-university-api/internal/service"
	"github.com/noah-isme/contoso-university-api/pkg/cache"
	"github.com/noah-isme/contoso-university-api/pkg/config"
)

// Cache is the redis backed list cache with its lifecycle hooks.
type Cache struct {
	*service.CacheService
	Ping  func(ctx context.Context) error
	Close func() error
}

// OpenCache connects redis when cfg enables caching. It returns nil without an
// error when caching is off.
func OpenCache(ctx context.Context, cfg config.CacheConfig, redisCfg config.RedisConfig, metrics *service.MetricsService, logger *zap.Logger) (*Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client, err := cache.NewRedis(ctx, redisCfg)
	if err != nil {
		return nil, err
	}
	repo := repository.NewCacheRepository(client, logger)
	return &Cache{
		CacheService: service.NewCacheService(repo, metrics, cfg.TTL, logger, true),
		Ping:         func(ctx context.Context) error { return cache.Ping(ctx, client) },
		Close:        repo.Close,
	}, nil
}

// InvalidateStudents drops cached student lists. It is safe on a nil Cache.
func (c *Cache) InvalidateStudents(ctx context.Context) {
	if c == nil {
		return
	}
	c.Invalidate(ctx, service.CachePatternStudents)
}

// Service returns the cache service, or nil when caching is off.
func (c *Cache) Service() *service.CacheService {
	if c == nil {
		return nil
	}
	return c.CacheService
}
