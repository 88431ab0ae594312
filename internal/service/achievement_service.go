package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/pkg/jobs"
)

type achievementStore interface {
	CompletionCounts(ctx context.Context, userID int64) (models.CompletionCounts, error)
	Award(ctx context.Context, userID int64, achievementIDs []int64) (int, error)
}

// CheckAchievements awards every rule whose threshold the user has reached.
// Awards already held are skipped by the store, so repeated checks are safe.
func CheckAchievements(ctx context.Context, store achievementStore, logger *zap.Logger, userID int64, rules []models.AchievementRule) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	counts, err := store.CompletionCounts(ctx, userID)
	if err != nil {
		logger.Warn("achievement check failed", zap.Int64("user_id", userID), zap.Error(err))
		return 0, fmt.Errorf("load completion counts: %w", err)
	}

	var earned []int64
	for _, rule := range rules {
		if rule.Metric == nil {
			continue
		}
		if rule.Metric(counts) >= rule.Threshold {
			earned = append(earned, rule.AchievementID)
		}
	}
	if len(earned) == 0 {
		return 0, nil
	}

	awarded, err := store.Award(ctx, userID, earned)
	if err != nil {
		logger.Warn("achievement award failed", zap.Int64("user_id", userID), zap.Int64s("achievement_ids", earned), zap.Error(err))
		return 0, fmt.Errorf("award achievements: %w", err)
	}
	if awarded > 0 {
		logger.Info("achievements awarded", zap.Int64("user_id", userID), zap.Int("count", awarded))
	}
	return awarded, nil
}

// AchievementChecker runs achievement checks inline or through a background queue.
type AchievementChecker struct {
	store   achievementStore
	rules   []models.AchievementRule
	metrics *MetricsService
	cache   *CacheService
	logger  *zap.Logger
	queue   *jobs.Queue[int64]
}

// NewAchievementChecker builds a checker; nil rules fall back to the default award table.
func NewAchievementChecker(store achievementStore, rules []models.AchievementRule, metrics *MetricsService, cache *CacheService, logger *zap.Logger) *AchievementChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rules == nil {
		rules = models.DefaultAchievementRules
	}
	return &AchievementChecker{store: store, rules: rules, metrics: metrics, cache: cache, logger: logger}
}

// Queue switches the checker to asynchronous mode and returns the queue for the caller to start and stop.
func (c *AchievementChecker) Queue(cfg jobs.Config) *jobs.Queue[int64] {
	if cfg.Logger == nil {
		cfg.Logger = c.logger
	}
	c.queue = jobs.New("achievements", c.run, cfg)
	return c.queue
}

// Trigger schedules a check for the user. Failures never reach the caller.
func (c *AchievementChecker) Trigger(ctx context.Context, userID int64) {
	if c == nil || c.store == nil {
		return
	}
	if c.queue != nil {
		err := c.queue.TryEnqueue(userID)
		if err == nil {
			return
		}
		if !errors.Is(err, jobs.ErrQueueFull) {
			c.logger.Warn("achievement queue unavailable, checking inline", zap.Error(err))
		}
	}
	_ = c.run(ctx, userID)
}

func (c *AchievementChecker) run(ctx context.Context, userID int64) error {
	awarded, err := CheckAchievements(ctx, c.store, c.logger, userID, c.rules)
	if err != nil {
		return err
	}
	if awarded > 0 {
		c.metrics.RecordAchievements(awarded)
		c.cache.InvalidateUser(ctx, userID)
	}
	return nil
}
