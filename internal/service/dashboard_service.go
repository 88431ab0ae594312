package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/internal/repository"
	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 50
	defaultWindowDays    = 30
	maxWindowDays        = 365
	recommendationLimit  = 3
)

type dashboardRepository interface {
	CourseStats(ctx context.Context, userID int64) (dto.CourseStats, error)
	TaskStats(ctx context.Context, userID int64) (dto.TaskStats, error)
	GroupStats(ctx context.Context, userID int64) (dto.GroupStats, error)
	LearningStats(ctx context.Context, userID int64) (dto.LearningStats, error)
	AchievementStats(ctx context.Context, userID int64) (dto.AchievementStats, error)
	RecentActivity(ctx context.Context, userID int64, kind dto.ActivityKind, limit int) ([]dto.ActivityItem, error)
	Progress(ctx context.Context, userID int64, days int) ([]dto.ProgressPoint, error)
	OverdueTasks(ctx context.Context, userID int64, limit int) ([]dto.OverdueTask, error)
	SuggestCourses(ctx context.Context, userID int64, order repository.SuggestionOrder, limit int) ([]dto.CourseSuggestion, error)
	SuggestGroups(ctx context.Context, userID int64, order repository.SuggestionOrder, limit int) ([]dto.GroupSuggestion, error)
}

type activityStyle struct {
	icon  string
	color string
}

var activityKinds = []dto.ActivityKind{dto.ActivityCourse, dto.ActivityTask, dto.ActivityGroup, dto.ActivityAchievement}

var activityStyles = map[dto.ActivityKind]activityStyle{
	dto.ActivityCourse:      {icon: "fa-graduation-cap", color: "blue"},
	dto.ActivityTask:        {icon: "fa-check-circle", color: "green"},
	dto.ActivityGroup:       {icon: "fa-user-plus", color: "purple"},
	dto.ActivityAchievement: {icon: "fa-trophy", color: "yellow"},
}

// DashboardService computes per-user dashboard aggregates.
type DashboardService struct {
	repo    dashboardRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	ttl     time.Duration
}

// NewDashboardService constructs the service. Cache and metrics are optional.
func NewDashboardService(repo dashboardRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, ttl time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, metrics: metrics, logger: logger, ttl: ttl}
}

// Stats returns the aggregate statistics for a user and whether they came from cache.
func (s *DashboardService) Stats(ctx context.Context, userID int64) (*dto.DashboardStats, bool, error) {
	key := dashboardKey(cacheKindStats, userID)
	var cached dto.DashboardStats
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	start := time.Now()
	stats := &dto.DashboardStats{}
	var err error
	if stats.Courses, err = s.repo.CourseStats(ctx, userID); err != nil {
		return nil, false, s.internal(err, "failed to load course statistics")
	}
	if stats.Tasks, err = s.repo.TaskStats(ctx, userID); err != nil {
		return nil, false, s.internal(err, "failed to load task statistics")
	}
	if stats.Groups, err = s.repo.GroupStats(ctx, userID); err != nil {
		return nil, false, s.internal(err, "failed to load group statistics")
	}
	if stats.Learning, err = s.repo.LearningStats(ctx, userID); err != nil {
		return nil, false, s.internal(err, "failed to load learning statistics")
	}
	if stats.Achievements, err = s.repo.AchievementStats(ctx, userID); err != nil {
		return nil, false, s.internal(err, "failed to load achievement statistics")
	}
	s.metrics.ObserveDashboardBuild("stats", time.Since(start))

	_ = s.cache.Set(ctx, key, stats, s.ttl)
	return stats, false, nil
}

// Activity merges the newest entries of every activity kind, newest first, truncated to limit.
func (s *DashboardService) Activity(ctx context.Context, userID int64, limit int) ([]dto.ActivityItem, error) {
	limit = clampInt(limit, defaultActivityLimit, 1, maxActivityLimit)

	start := time.Now()
	merged := make([]dto.ActivityItem, 0, limit*len(activityKinds))
	for _, kind := range activityKinds {
		items, err := s.repo.RecentActivity(ctx, userID, kind, limit)
		if err != nil {
			return nil, s.internal(err, "failed to load recent activity")
		}
		style := activityStyles[kind]
		for _, item := range items {
			item.Type = kind
			item.Icon = style.icon
			item.Color = style.color
			merged = append(merged, item)
		}
	}
	s.metrics.ObserveDashboardBuild("activity", time.Since(start))

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// Progress returns the enrollment time series over the trailing window.
func (s *DashboardService) Progress(ctx context.Context, userID int64, days int) ([]dto.ProgressPoint, error) {
	days = clampInt(days, defaultWindowDays, 1, maxWindowDays)
	points, err := s.repo.Progress(ctx, userID, days)
	if err != nil {
		return nil, s.internal(err, "failed to load progress")
	}
	if points == nil {
		points = []dto.ProgressPoint{}
	}
	return points, nil
}

// Recommendations suggests overdue work, unjoined courses and groups with free seats.
func (s *DashboardService) Recommendations(ctx context.Context, userID int64) (*dto.Recommendations, bool, error) {
	key := dashboardKey(cacheKindRecommendations, userID)
	var cached dto.Recommendations
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	overdue, err := s.repo.OverdueTasks(ctx, userID, recommendationLimit)
	if err != nil {
		return nil, false, s.internal(err, "failed to load overdue tasks")
	}
	courses, err := s.repo.SuggestCourses(ctx, userID, repository.SuggestRandom, recommendationLimit)
	if err != nil {
		return nil, false, s.internal(err, "failed to load course suggestions")
	}
	groups, err := s.repo.SuggestGroups(ctx, userID, repository.SuggestPopular, recommendationLimit)
	if err != nil {
		return nil, false, s.internal(err, "failed to load group suggestions")
	}

	recs := &dto.Recommendations{
		OverdueTasks:       overdue,
		RecommendedCourses: courses,
		AvailableGroups:    groups,
	}
	if recs.OverdueTasks == nil {
		recs.OverdueTasks = []dto.OverdueTask{}
	}
	if recs.RecommendedCourses == nil {
		recs.RecommendedCourses = []dto.CourseSuggestion{}
	}
	if recs.AvailableGroups == nil {
		recs.AvailableGroups = []dto.GroupSuggestion{}
	}

	_ = s.cache.Set(ctx, key, recs, s.ttl)
	return recs, false, nil
}

// Route resolves which dashboard the caller lands on.
func (s *DashboardService) Route(claims *models.JWTClaims) dto.DashboardRoute {
	return dto.DashboardRoute{
		UserID:    claims.UserID,
		Role:      string(claims.Role),
		Dashboard: claims.Role.DashboardKind(),
	}
}

func (s *DashboardService) internal(err error, message string) error {
	s.logger.Error(message, zap.Error(err))
	return appErrors.ErrInternal.Wrap(err, message)
}

// clampInt applies a default to non-positive values and bounds the result.
func clampInt(value, fallback, min, max int) int {
	if value <= 0 {
		value = fallback
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
