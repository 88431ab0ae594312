package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innouni-api/internal/models"
)

// AchievementRepository reads completion counters and records awards.
type AchievementRepository struct {
	db *sqlx.DB
}

// NewAchievementRepository constructs the repository.
func NewAchievementRepository(db *sqlx.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// CompletionCounts returns the user's completed course and task totals.
func (r *AchievementRepository) CompletionCounts(ctx context.Context, userID int64) (models.CompletionCounts, error) {
	const query = `
SELECT
	(SELECT COUNT(*) FROM course_enrollments WHERE user_id = $1 AND status = 'completed') AS completed_courses,
	(SELECT COUNT(*) FROM tasks WHERE assigned_to = $1 AND status = 'completed') AS completed_tasks`
	var counts models.CompletionCounts
	if err := r.db.GetContext(ctx, &counts, query, userID); err != nil {
		return models.CompletionCounts{}, fmt.Errorf("completion counts: %w", err)
	}
	return counts, nil
}

// Award grants the achievements in one transaction, skipping those already held.
// It returns how many awards were newly recorded.
func (r *AchievementRepository) Award(ctx context.Context, userID int64, achievementIDs []int64) (awarded int, err error) {
	if len(achievementIDs) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin award: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO user_achievements (user_id, achievement_id) VALUES ($1, $2) ON CONFLICT (user_id, achievement_id) DO NOTHING`
	for _, id := range achievementIDs {
		res, execErr := tx.ExecContext(ctx, query, userID, id)
		if execErr != nil {
			return 0, fmt.Errorf("award achievement %d: %w", id, execErr)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			awarded += int(n)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit award: %w", err)
	}
	return awarded, nil
}
