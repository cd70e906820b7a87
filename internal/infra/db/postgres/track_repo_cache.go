package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/repository"
	"audio-track-subscription/internal/infra/metrics"
	red "audio-track-subscription/internal/infra/redis"
)

var _ repository.TrackRepository = (*trackRepoCacheDecorator)(nil)

// trackRepoCacheDecorator is a cache-aside layer over the track repository.
// Track reads dominate the public API (every status resolution and catalog hit
// needs the row) while writes happen only through the admin surface, so a
// short TTL is enough.
type trackRepoCacheDecorator struct {
	inner repository.TrackRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewTrackRepoCacheDecorator(inner repository.TrackRepository, cache red.RedisClient, ttl time.Duration) repository.TrackRepository {
	return &trackRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *trackRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Track, error) {
	key := fmt.Sprintf("track:%d", id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var t model.Track
		if json.Unmarshal([]byte(val), &t) == nil {
			metrics.IncCacheRequest("track", "hit")
			return &t, nil
		}
	}

	metrics.IncCacheRequest("track", "miss")
	t, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(t); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return t, nil
}

// List paths skip the cache; they are admin/browse traffic.
func (d *trackRepoCacheDecorator) ListByCategory(ctx context.Context, tx repository.Tx, categoryID int64) ([]*model.Track, error) {
	return d.inner.ListByCategory(ctx, tx, categoryID)
}

func (d *trackRepoCacheDecorator) ListByIDs(ctx context.Context, tx repository.Tx, ids []int64) ([]*model.Track, error) {
	return d.inner.ListByIDs(ctx, tx, ids)
}
