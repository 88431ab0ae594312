package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/innouni-api/internal/models"
)

func TestAchievementRepositoryCompletionCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AS completed_courses")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"completed_courses", "completed_tasks"}).AddRow(10, 3))

	counts, err := repo.CompletionCounts(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.CompletionCounts{CompletedCourses: 10, CompletedTasks: 3}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementRepositoryAwardSkipsHeld(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	insert := regexp.QuoteMeta("INSERT INTO user_achievements (user_id, achievement_id) VALUES ($1, $2) ON CONFLICT (user_id, achievement_id) DO NOTHING")
	mock.ExpectBegin()
	mock.ExpectExec(insert).WithArgs(int64(7), models.AchievementCertified).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).WithArgs(int64(7), models.AchievementCodeMaster).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	awarded, err := repo.Award(context.Background(), 7, []int64{models.AchievementCertified, models.AchievementCodeMaster})
	require.NoError(t, err)
	assert.Equal(t, 1, awarded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementRepositoryAwardNothing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	awarded, err := repo.Award(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Zero(t, awarded)
	require.NoError(t, mock.ExpectationsWereMet())
}
