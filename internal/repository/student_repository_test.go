package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentRepositoryTasksOrderedByUrgency(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	columns := []string{"id", "title", "description", "priority", "status", "due_date", "course_title", "days_until_due"}
	due := time.Now().AddDate(0, 0, -1)
	mock.ExpectQuery(regexp.QuoteMeta("WHEN t.due_date < CURRENT_DATE THEN 0")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), "Late essay", nil, "low", "pending", due, "Writing", -1).
			AddRow(int64(2), "Open reading", nil, "high", "in_progress", nil, "Reading", nil))

	tasks, err := repo.Tasks(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.NotNil(t, tasks[0].DaysUntilDue)
	assert.Equal(t, -1, *tasks[0].DaysUntilDue)
	assert.Nil(t, tasks[1].DaysUntilDue)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryAchievementsLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_achievements ua")).
		WithArgs(int64(7), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "icon", "type", "earned_at"}).
			AddRow(int64(4), "Certified", nil, "fa-certificate", "course", time.Now()))

	items, err := repo.Achievements(context.Background(), 7, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Certified", items[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}
