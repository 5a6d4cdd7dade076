package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smallsteps/backend/internal/cache"
	"github.com/smallsteps/backend/internal/logger"
	"github.com/smallsteps/backend/internal/models"
)

// cachedActivityRepository serves catalog reads from the cache. Cache
// failures are logged and fall through to the inner repository.
type cachedActivityRepository struct {
	inner ActivityRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedActivityRepository wraps inner with a read-through cache
func NewCachedActivityRepository(inner ActivityRepository, c cache.Cache, ttl time.Duration) ActivityRepository {
	return &cachedActivityRepository{inner: inner, cache: c, ttl: ttl}
}

func (r *cachedActivityRepository) List(ctx context.Context, filters *models.ActivityFilters) ([]models.Activity, error) {
	key := "activities:list:" + activityFiltersKey(filters)
	return readThrough(ctx, r.cache, key, r.ttl, func() ([]models.Activity, error) {
		return r.inner.List(ctx, filters)
	})
}

func (r *cachedActivityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	return readThrough(ctx, r.cache, "activities:id:"+id, r.ttl, func() (*models.Activity, error) {
		return r.inner.GetByID(ctx, id)
	})
}

type cachedInsightRepository struct {
	inner InsightRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedInsightRepository wraps inner with a read-through cache
func NewCachedInsightRepository(inner InsightRepository, c cache.Cache, ttl time.Duration) InsightRepository {
	return &cachedInsightRepository{inner: inner, cache: c, ttl: ttl}
}

func (r *cachedInsightRepository) List(ctx context.Context, filter InsightFilter) ([]models.Insight, error) {
	ranges := make([]string, len(filter.AgeRanges))
	for i, ar := range filter.AgeRanges {
		ranges[i] = string(ar)
	}
	key := fmt.Sprintf("insights:list:%s:%s:%s",
		filter.Category, strings.Join(ranges, ","), strings.ToLower(strings.TrimSpace(filter.Search)))

	return readThrough(ctx, r.cache, key, r.ttl, func() ([]models.Insight, error) {
		return r.inner.List(ctx, filter)
	})
}

func (r *cachedInsightRepository) GetByID(ctx context.Context, id string) (*models.Insight, error) {
	return readThrough(ctx, r.cache, "insights:id:"+id, r.ttl, func() (*models.Insight, error) {
		return r.inner.GetByID(ctx, id)
	})
}

func readThrough[T any](ctx context.Context, c cache.Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	found, err := c.Get(ctx, key, &cached)
	if err != nil {
		logger.Ctx(ctx).Warn("cache read failed", logger.String("key", key), logger.Err(err))
	}
	if found {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		logger.Ctx(ctx).Warn("cache write failed", logger.String("key", key), logger.Err(err))
	}
	return value, nil
}

func activityFiltersKey(f *models.ActivityFilters) string {
	if f == nil {
		return "all"
	}
	part := func(v *int) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprint(*v)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s",
		part(f.AgeMin), part(f.AgeMax), f.Category, part(f.DifficultyLevel), part(f.DurationMax))
}
