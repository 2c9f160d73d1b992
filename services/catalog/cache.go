package catalog

import (
	"context"
	"encoding/json"
	"time"

	"slotbook/models"
	"slotbook/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	publicServicesKey   = "catalog:public"
	publicGenerationKey = "catalog:gen"
)

// PublicCache holds the client-facing service listing between writes.
// Cache failures are never fatal: a miss falls through to the store.
//
// Every invalidation bumps a generation. A reader takes the generation
// before it queries the store and SetPublic drops the listing when the
// generation has moved since, so a read racing a write cannot put the
// pre-write listing back.
type PublicCache interface {
	GetPublic(ctx context.Context) ([]models.PublicService, bool)
	Generation(ctx context.Context) (int64, bool)
	SetPublic(ctx context.Context, generation int64, services []models.PublicService)
	InvalidatePublic(ctx context.Context)
}

// RedisCache stores the listing as one JSON value with a TTL.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

func (c *RedisCache) GetPublic(ctx context.Context) ([]models.PublicService, bool) {
	raw, err := c.Client.Get(ctx, publicServicesKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			utils.GetLogger().Warn("Catalog cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var services []models.PublicService
	if err := json.Unmarshal(raw, &services); err != nil {
		utils.GetLogger().Warn("Catalog cache entry is corrupt", zap.Error(err))
		return nil, false
	}
	return services, true
}

// Generation reports the current invalidation count. An unset counter is
// generation 0.
func (c *RedisCache) Generation(ctx context.Context) (int64, bool) {
	gen, err := c.Client.Get(ctx, publicGenerationKey).Int64()
	if err == redis.Nil {
		return 0, true
	}
	if err != nil {
		utils.GetLogger().Warn("Catalog cache generation read failed", zap.Error(err))
		return 0, false
	}
	return gen, true
}

// SetPublic stores the listing only while the generation still equals the
// one the caller read. The generation key is watched, so an invalidation
// landing between the check and the write aborts the write.
func (c *RedisCache) SetPublic(ctx context.Context, generation int64, services []models.PublicService) {
	if services == nil {
		services = []models.PublicService{}
	}
	raw, err := json.Marshal(services)
	if err != nil {
		return
	}
	err = c.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, publicGenerationKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, publicServicesKey, raw, c.TTL)
			return nil
		})
		return err
	}, publicGenerationKey)
	switch {
	case err == nil, err == redis.TxFailedErr:
	default:
		utils.GetLogger().Warn("Catalog cache write failed", zap.Error(err))
	}
}

func (c *RedisCache) InvalidatePublic(ctx context.Context) {
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, publicGenerationKey)
		pipe.Del(ctx, publicServicesKey)
		return nil
	})
	if err != nil {
		utils.GetLogger().Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}
