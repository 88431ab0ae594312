package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
	"github.com/noah-isme/innouni-api/pkg/logger"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// Dashboard cache key families.
const (
	cacheKindStats           = "stats"
	cacheKindRecommendations = "recommendations"
	cacheKindStudent         = "student"
	cacheKindTeacher         = "teacher"
)

var dashboardKinds = []string{cacheKindStats, cacheKindRecommendations, cacheKindStudent, cacheKindTeacher}

// dashboardKey builds keys of the form dash:<kind>:<userID>.
func dashboardKey(kind string, userID int64) string {
	return fmt.Sprintf("dash:%s:%d", kind, userID)
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get loads key into dest and reports whether it was a hit. Redis failures count as
// misses so callers fall through to the database.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.ObserveCacheLookup(err == nil, time.Since(start))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, appErrors.ErrCacheMiss):
		return false, nil
	default:
		logger.FromContext(ctx, s.logger).Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheStore(time.Since(start))
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes the given keys.
func (s *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	if err := s.repo.Delete(ctx, keys...); err != nil {
		logger.FromContext(ctx, s.logger).Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
		return err
	}
	return nil
}

// InvalidateUser drops every cached dashboard view of the users. Failures are logged only.
func (s *CacheService) InvalidateUser(ctx context.Context, userIDs ...int64) {
	if !s.Enabled() || len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs)*len(dashboardKinds))
	for _, id := range userIDs {
		for _, kind := range dashboardKinds {
			keys = append(keys, dashboardKey(kind, id))
		}
	}
	_ = s.Invalidate(ctx, keys...)
}
