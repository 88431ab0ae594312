package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/models"
)

func TestDashboardRepositoryTaskStats(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	columns := []string{"total", "pending", "overdue", "in_progress", "completed", "completed_this_week", "due_this_week"}
	mock.ExpectQuery(regexp.QuoteMeta("status = 'pending' AND due_date <= CURRENT_DATE")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(6, 3, 1, 1, 2, 1, 2))

	stats, err := repo.TaskStats(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, dto.TaskStats{Total: 6, Pending: 3, Overdue: 1, InProgress: 1, Completed: 2, CompletedThisWeek: 1, DueThisWeek: 2}, stats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepositoryLearningStatsWithoutActivity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WITH activity AS")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"current_streak", "estimated_hours", "last_study_date"}).AddRow(0, 0, nil))

	stats, err := repo.LearningStats(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, stats.CurrentStreak)
	assert.Nil(t, stats.LastStudyDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepositoryRecentActivity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM group_members gm JOIN groups g")).
		WithArgs(int64(7), 5).
		WillReturnRows(sqlmock.NewRows([]string{"type", "title", "action", "timestamp"}).AddRow("group", "Go Club", "Joined group", now))

	items, err := repo.RecentActivity(context.Background(), 7, dto.ActivityGroup, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, dto.ActivityGroup, items[0].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepositoryRecentActivityUnknownKind(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	_, err := repo.RecentActivity(context.Background(), 7, dto.ActivityKind("project"), 5)
	require.Error(t, err)
}

func TestDashboardRepositorySuggestGroupsExcludesFullGroups(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("HAVING COUNT(gm.id) < $2\nORDER BY member_count ASC")).
		WithArgs(int64(7), models.MaxGroupMembers, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "member_count"}).AddRow(int64(1), "Go Club", nil, 2))

	groups, err := repo.SuggestGroups(context.Background(), 7, SuggestSmallest, 5)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepositorySuggestCoursesFallsBackToPopular(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	columns := []string{"id", "title", "description", "category", "teacher_name", "enrolled_students"}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY enrolled_students DESC")).
		WithArgs(int64(7), 3).
		WillReturnRows(sqlmock.NewRows(columns))

	courses, err := repo.SuggestCourses(context.Background(), 7, SuggestionOrder("bogus"), 3)
	require.NoError(t, err)
	assert.Empty(t, courses)
	require.NoError(t, mock.ExpectationsWereMet())
}
