package patient

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardiosense-ai/platform/pkg/common/logger"
	"github.com/cardiosense-ai/platform/pkg/common/models"
)

const latestCacheKey = "patients:latest"

// LatestCache is a read-through Redis cache for the latest patient record.
// Every write path invalidates it; any cache failure degrades to a store
// read. A nil client disables caching entirely.
type LatestCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLatestCache(client *redis.Client, ttl time.Duration) *LatestCache {
	return &LatestCache{client: client, ttl: ttl}
}

func (c *LatestCache) Get(ctx context.Context) (models.PatientRecord, bool) {
	if c == nil || c.client == nil {
		return models.PatientRecord{}, false
	}
	payload, err := c.client.Get(ctx, latestCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).Debug("latest-patient cache read failed")
		}
		return models.PatientRecord{}, false
	}
	var record models.PatientRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return models.PatientRecord{}, false
	}
	return record, true
}

func (c *LatestCache) Set(ctx context.Context, record models.PatientRecord) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, latestCacheKey, payload, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).Debug("latest-patient cache write failed")
	}
}

func (c *LatestCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, latestCacheKey).Err(); err != nil {
		logger.Log.WithError(err).Warn("latest-patient cache invalidation failed")
	}
}
