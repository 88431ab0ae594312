package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/pkg/jobs"
)

type fakeAchievementStore struct {
	mu        sync.Mutex
	counts    models.CompletionCounts
	countsErr error
	awardErr  error
	held      map[int64]bool
	calls     int
	awarded   chan int64
}

func newFakeAchievementStore(counts models.CompletionCounts) *fakeAchievementStore {
	return &fakeAchievementStore{counts: counts, held: map[int64]bool{}}
}

func (f *fakeAchievementStore) CompletionCounts(context.Context, int64) (models.CompletionCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.counts, f.countsErr
}

func (f *fakeAchievementStore) Award(_ context.Context, _ int64, ids []int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.awardErr != nil {
		return 0, f.awardErr
	}
	inserted := 0
	for _, id := range ids {
		if f.held[id] {
			continue
		}
		f.held[id] = true
		inserted++
		if f.awarded != nil {
			f.awarded <- id
		}
	}
	return inserted, nil
}

func TestCheckAchievementsThresholds(t *testing.T) {
	ctx := context.Background()

	store := newFakeAchievementStore(models.CompletionCounts{CompletedCourses: 9, CompletedTasks: 99})
	awarded, err := CheckAchievements(ctx, store, nil, 1, models.DefaultAchievementRules)
	require.NoError(t, err)
	assert.Zero(t, awarded)

	store = newFakeAchievementStore(models.CompletionCounts{CompletedCourses: 10, CompletedTasks: 100})
	awarded, err = CheckAchievements(ctx, store, nil, 1, models.DefaultAchievementRules)
	require.NoError(t, err)
	assert.Equal(t, 2, awarded)
	assert.True(t, store.held[models.AchievementCertified])
	assert.True(t, store.held[models.AchievementCodeMaster])
}

func TestCheckAchievementsAwardsOnce(t *testing.T) {
	store := newFakeAchievementStore(models.CompletionCounts{CompletedCourses: 12})

	total := 0
	for i := 0; i < 5; i++ {
		awarded, err := CheckAchievements(context.Background(), store, nil, 1, models.DefaultAchievementRules)
		require.NoError(t, err)
		total += awarded
	}
	assert.Equal(t, 1, total)
	assert.Len(t, store.held, 1)
}

func TestAchievementCheckerSwallowsFailures(t *testing.T) {
	store := newFakeAchievementStore(models.CompletionCounts{})
	store.countsErr = errors.New("db down")
	checker := NewAchievementChecker(store, nil, nil, nil, nil)

	assert.NotPanics(t, func() { checker.Trigger(context.Background(), 1) })
	assert.Equal(t, 1, store.calls)
}

func TestAchievementCheckerQueuesChecks(t *testing.T) {
	store := newFakeAchievementStore(models.CompletionCounts{CompletedTasks: 100})
	store.awarded = make(chan int64, 1)
	metrics := NewMetricsService()
	checker := NewAchievementChecker(store, nil, metrics, nil, nil)

	queue := checker.Queue(jobs.Config{Workers: 1, BufferSize: 4, Backoff: time.Millisecond})
	queue.Start(context.Background())
	defer func() { _ = queue.Stop(context.Background()) }()

	checker.Trigger(context.Background(), 7)

	select {
	case id := <-store.awarded:
		assert.Equal(t, models.AchievementCodeMaster, id)
	case <-time.After(2 * time.Second):
		t.Fatal("achievement check was not processed")
	}
	require.Eventually(t, func() bool {
		return metrics.Snapshot().AchievementsAwarded == 1
	}, time.Second, 5*time.Millisecond)
}
