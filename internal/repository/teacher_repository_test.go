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

func TestTeacherRepositoryEnrollmentTrendsScopedToCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	courseID := int64(9)
	mock.ExpectQuery(regexp.QuoteMeta("AND c.id = $3")).
		WithArgs(int64(5), 30, courseID).
		WillReturnRows(sqlmock.NewRows([]string{"date", "count"}).AddRow(time.Now(), 4))

	points, err := repo.EnrollmentTrends(context.Background(), 5, &courseID, 30)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 4, points[0].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryCoursePerformanceAllCourses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	columns := []string{"id", "title", "total_enrollments", "completions", "avg_progress", "recent_completions"}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.teacher_id = $1\nGROUP BY c.id, c.title")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), "Go 101", 12, 4, 55.5, 2).
			AddRow(int64(2), "SQL", 3, 0, 10.0, 0))

	rows, err := repo.CoursePerformance(context.Background(), 5, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 55.5, rows[0].AvgProgress)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryTaskStatusCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks t\nJOIN courses c ON c.id = t.course_id")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "in_progress", "completed", "overdue"}).AddRow(10, 4, 2, 4, 1))

	counts, err := repo.TaskStatusCounts(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 10, counts.Total)
	assert.Equal(t, 1, counts.Overdue)
	require.NoError(t, mock.ExpectationsWereMet())
}
