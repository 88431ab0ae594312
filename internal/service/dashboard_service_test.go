package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/internal/repository"
	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
)

type memoryCacheRepo struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{data: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryCacheRepo) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

type fakeDashboardRepo struct {
	statsCalls  int
	courseStats dto.CourseStats
	statsErr    error
	activity    map[dto.ActivityKind][]dto.ActivityItem
	limits      []int
	progressDay int
	overdue     []dto.OverdueTask
	courseOrder repository.SuggestionOrder
	groupOrder  repository.SuggestionOrder
}

func (f *fakeDashboardRepo) CourseStats(context.Context, int64) (dto.CourseStats, error) {
	f.statsCalls++
	return f.courseStats, f.statsErr
}

func (f *fakeDashboardRepo) TaskStats(context.Context, int64) (dto.TaskStats, error) {
	return dto.TaskStats{}, nil
}

func (f *fakeDashboardRepo) GroupStats(context.Context, int64) (dto.GroupStats, error) {
	return dto.GroupStats{}, nil
}

func (f *fakeDashboardRepo) LearningStats(context.Context, int64) (dto.LearningStats, error) {
	return dto.LearningStats{}, nil
}

func (f *fakeDashboardRepo) AchievementStats(context.Context, int64) (dto.AchievementStats, error) {
	return dto.AchievementStats{}, nil
}

func (f *fakeDashboardRepo) RecentActivity(_ context.Context, _ int64, kind dto.ActivityKind, limit int) ([]dto.ActivityItem, error) {
	f.limits = append(f.limits, limit)
	items := f.activity[kind]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (f *fakeDashboardRepo) Progress(_ context.Context, _ int64, days int) ([]dto.ProgressPoint, error) {
	f.progressDay = days
	return nil, nil
}

func (f *fakeDashboardRepo) OverdueTasks(context.Context, int64, int) ([]dto.OverdueTask, error) {
	return f.overdue, nil
}

func (f *fakeDashboardRepo) SuggestCourses(_ context.Context, _ int64, order repository.SuggestionOrder, _ int) ([]dto.CourseSuggestion, error) {
	f.courseOrder = order
	return nil, nil
}

func (f *fakeDashboardRepo) SuggestGroups(_ context.Context, _ int64, order repository.SuggestionOrder, _ int) ([]dto.GroupSuggestion, error) {
	f.groupOrder = order
	return nil, nil
}

func newCachedDashboardService(repo *fakeDashboardRepo) (*DashboardService, *memoryCacheRepo) {
	store := newMemoryCacheRepo()
	cache := NewCacheService(store, nil, time.Minute, nil, true)
	return NewDashboardService(repo, cache, nil, nil, time.Minute), store
}

func TestDashboardStatsUsesCache(t *testing.T) {
	repo := &fakeDashboardRepo{courseStats: dto.CourseStats{Active: 2, AvgProgress: 37.5}}
	svc, store := newCachedDashboardService(repo)

	stats, hit, err := svc.Stats(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, stats.Courses.Active)
	assert.True(t, store.has("dash:stats:7"))

	stats, hit, err = svc.Stats(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 37.5, stats.Courses.AvgProgress)
	assert.Equal(t, 1, repo.statsCalls)
}

func TestDashboardStatsInvalidatedForUser(t *testing.T) {
	repo := &fakeDashboardRepo{}
	svc, store := newCachedDashboardService(repo)

	_, _, err := svc.Stats(context.Background(), 7)
	require.NoError(t, err)
	_, _, err = svc.Stats(context.Background(), 8)
	require.NoError(t, err)

	svc.cache.InvalidateUser(context.Background(), 7)
	assert.False(t, store.has("dash:stats:7"))
	assert.True(t, store.has("dash:stats:8"))
}

func TestDashboardStatsFailure(t *testing.T) {
	svc := NewDashboardService(&fakeDashboardRepo{statsErr: errors.New("db down")}, nil, nil, nil, 0)

	_, _, err := svc.Stats(context.Background(), 1)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}

func TestDashboardActivityMergesNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeDashboardRepo{activity: map[dto.ActivityKind][]dto.ActivityItem{
		dto.ActivityCourse:      {{Title: "Go", Timestamp: base.Add(-time.Hour)}},
		dto.ActivityTask:        {{Title: "Essay", Timestamp: base}},
		dto.ActivityAchievement: {{Title: "First Course", Timestamp: base.Add(-2 * time.Hour)}},
	}}
	svc := NewDashboardService(repo, nil, nil, nil, 0)

	items, err := svc.Activity(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, dto.ActivityTask, items[0].Type)
	assert.Equal(t, "fa-check-circle", items[0].Icon)
	assert.Equal(t, "green", items[0].Color)
	assert.Equal(t, dto.ActivityCourse, items[1].Type)
	assert.Equal(t, "blue", items[1].Color)
}

func TestDashboardActivityClampsLimit(t *testing.T) {
	repo := &fakeDashboardRepo{}
	svc := NewDashboardService(repo, nil, nil, nil, 0)

	items, err := svc.Activity(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, []int{10, 10, 10, 10}, repo.limits)

	repo.limits = nil
	_, err = svc.Activity(context.Background(), 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 50, repo.limits[0])
}

func TestDashboardProgressWindow(t *testing.T) {
	repo := &fakeDashboardRepo{}
	svc := NewDashboardService(repo, nil, nil, nil, 0)

	points, err := svc.Progress(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Equal(t, 30, repo.progressDay)

	_, err = svc.Progress(context.Background(), 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 365, repo.progressDay)
}

func TestDashboardRecommendations(t *testing.T) {
	repo := &fakeDashboardRepo{overdue: []dto.OverdueTask{{ID: 3, Title: "Report"}}}
	svc, _ := newCachedDashboardService(repo)

	recs, hit, err := svc.Recommendations(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, recs.OverdueTasks, 1)
	assert.NotNil(t, recs.RecommendedCourses)
	assert.NotNil(t, recs.AvailableGroups)
	assert.Equal(t, repository.SuggestRandom, repo.courseOrder)
	assert.Equal(t, repository.SuggestPopular, repo.groupOrder)

	_, hit, err = svc.Recommendations(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestDashboardRoute(t *testing.T) {
	svc := NewDashboardService(&fakeDashboardRepo{}, nil, nil, nil, 0)

	route := svc.Route(&models.JWTClaims{UserID: 5, Role: models.RoleAdmin})
	assert.Equal(t, "teacher", route.Dashboard)
	assert.Equal(t, int64(5), route.UserID)

	route = svc.Route(&models.JWTClaims{UserID: 6, Role: models.RoleStudent})
	assert.Equal(t, "student", route.Dashboard)
}
