package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/models"
)

// SuggestionOrder selects how suggestion lists are ranked.
type SuggestionOrder string

const (
	// SuggestRandom shuffles candidates.
	SuggestRandom SuggestionOrder = "random"
	// SuggestPopular ranks by enrollment or member count, largest first.
	SuggestPopular SuggestionOrder = "popular"
	// SuggestSmallest ranks groups by member count, smallest first.
	SuggestSmallest SuggestionOrder = "smallest"
)

var courseSuggestionOrders = map[SuggestionOrder]string{
	SuggestRandom:  "RANDOM()",
	SuggestPopular: "enrolled_students DESC, c.created_at DESC",
}

var groupSuggestionOrders = map[SuggestionOrder]string{
	SuggestRandom:   "RANDOM()",
	SuggestPopular:  "member_count DESC, g.created_at DESC",
	SuggestSmallest: "member_count ASC, g.created_at DESC",
}

var activityQueries = map[dto.ActivityKind]string{
	dto.ActivityCourse: `SELECT 'course' AS type, c.title, 'Enrolled in course' AS action, ce.enrolled_at AS timestamp
FROM course_enrollments ce JOIN courses c ON c.id = ce.course_id
WHERE ce.user_id = $1 ORDER BY ce.enrolled_at DESC LIMIT $2`,
	dto.ActivityTask: `SELECT 'task' AS type, t.title, 'Completed task' AS action, t.updated_at AS timestamp
FROM tasks t
WHERE t.assigned_to = $1 AND t.status = 'completed' ORDER BY t.updated_at DESC LIMIT $2`,
	dto.ActivityGroup: `SELECT 'group' AS type, g.name AS title, 'Joined group' AS action, gm.joined_at AS timestamp
FROM group_members gm JOIN groups g ON g.id = gm.group_id
WHERE gm.user_id = $1 ORDER BY gm.joined_at DESC LIMIT $2`,
	dto.ActivityAchievement: `SELECT 'achievement' AS type, a.title, 'Earned achievement' AS action, ua.earned_at AS timestamp
FROM user_achievements ua JOIN achievements a ON a.id = ua.achievement_id
WHERE ua.user_id = $1 ORDER BY ua.earned_at DESC LIMIT $2`,
}

// DashboardRepository runs the read-only aggregates behind the dashboard endpoints.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// CourseStats summarises a user's enrollments.
func (r *DashboardRepository) CourseStats(ctx context.Context, userID int64) (dto.CourseStats, error) {
	const query = `
SELECT
	COUNT(*) FILTER (WHERE status = 'active') AS active,
	COUNT(*) FILTER (WHERE status = 'completed') AS completed,
	COALESCE(ROUND(AVG(progress) FILTER (WHERE status = 'active'), 2), 0)::float8 AS avg_progress,
	COUNT(*) FILTER (WHERE enrolled_at >= NOW() - INTERVAL '7 days') AS new_this_week
FROM course_enrollments
WHERE user_id = $1`
	var stats dto.CourseStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return dto.CourseStats{}, fmt.Errorf("course stats: %w", err)
	}
	return stats, nil
}

// TaskStats summarises tasks assigned to a user.
func (r *DashboardRepository) TaskStats(ctx context.Context, userID int64) (dto.TaskStats, error) {
	const query = `
SELECT
	COUNT(*) AS total,
	COUNT(*) FILTER (WHERE status = 'pending') AS pending,
	COUNT(*) FILTER (WHERE status = 'pending' AND due_date <= CURRENT_DATE) AS overdue,
	COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
	COUNT(*) FILTER (WHERE status = 'completed') AS completed,
	COUNT(*) FILTER (WHERE status = 'completed' AND updated_at >= NOW() - INTERVAL '7 days') AS completed_this_week,
	COUNT(*) FILTER (WHERE status <> 'completed' AND due_date BETWEEN CURRENT_DATE AND CURRENT_DATE + 7) AS due_this_week
FROM tasks
WHERE assigned_to = $1`
	var stats dto.TaskStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return dto.TaskStats{}, fmt.Errorf("task stats: %w", err)
	}
	return stats, nil
}

// GroupStats summarises memberships in active groups.
func (r *DashboardRepository) GroupStats(ctx context.Context, userID int64) (dto.GroupStats, error) {
	const query = `
SELECT
	COUNT(*) AS active,
	COUNT(*) FILTER (WHERE gm.role = 'leader') AS leading,
	COUNT(*) FILTER (WHERE gm.joined_at >= NOW() - INTERVAL '30 days') AS new_this_month
FROM group_members gm
JOIN groups g ON g.id = gm.group_id
WHERE gm.user_id = $1 AND g.status = 'active'`
	var stats dto.GroupStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return dto.GroupStats{}, fmt.Errorf("group stats: %w", err)
	}
	return stats, nil
}

// LearningStats counts distinct study days over the trailing window and estimates hours spent.
func (r *DashboardRepository) LearningStats(ctx context.Context, userID int64) (dto.LearningStats, error) {
	const query = `
WITH activity AS (
	SELECT DATE(enrolled_at) AS day FROM course_enrollments
	WHERE user_id = $1 AND enrolled_at >= NOW() - INTERVAL '30 days'
	UNION
	SELECT DATE(updated_at) AS day FROM course_enrollments
	WHERE user_id = $1 AND updated_at >= NOW() - INTERVAL '30 days'
)
SELECT
	(SELECT COUNT(*) FROM activity WHERE day >= CURRENT_DATE - 28) AS current_streak,
	(SELECT COALESCE(ROUND(SUM(progress * 2)), 0)::int FROM course_enrollments WHERE user_id = $1 AND status = 'active') AS estimated_hours,
	(SELECT MAX(day) FROM activity) AS last_study_date`
	var stats dto.LearningStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return dto.LearningStats{}, fmt.Errorf("learning stats: %w", err)
	}
	return stats, nil
}

// AchievementStats counts a user's awards.
func (r *DashboardRepository) AchievementStats(ctx context.Context, userID int64) (dto.AchievementStats, error) {
	const query = `
SELECT
	COUNT(*) AS total,
	COUNT(*) FILTER (WHERE earned_at >= DATE_TRUNC('month', NOW())) AS earned_this_month
FROM user_achievements
WHERE user_id = $1`
	var stats dto.AchievementStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return dto.AchievementStats{}, fmt.Errorf("achievement stats: %w", err)
	}
	return stats, nil
}

// RecentActivity returns the newest limit entries of one activity kind.
func (r *DashboardRepository) RecentActivity(ctx context.Context, userID int64, kind dto.ActivityKind, limit int) ([]dto.ActivityItem, error) {
	query, ok := activityQueries[kind]
	if !ok {
		return nil, fmt.Errorf("unknown activity kind %q", kind)
	}
	var items []dto.ActivityItem
	if err := r.db.SelectContext(ctx, &items, query, userID, limit); err != nil {
		return nil, fmt.Errorf("recent %s activity: %w", kind, err)
	}
	return items, nil
}

// Progress returns per-day enrollment counts and average progress over the last days.
func (r *DashboardRepository) Progress(ctx context.Context, userID int64, days int) ([]dto.ProgressPoint, error) {
	const query = `
SELECT
	DATE(enrolled_at) AS date,
	COUNT(*) AS courses_enrolled,
	COALESCE(ROUND(AVG(progress), 2), 0)::float8 AS avg_progress
FROM course_enrollments
WHERE user_id = $1 AND enrolled_at >= NOW() - ($2 * INTERVAL '1 day')
GROUP BY DATE(enrolled_at)
ORDER BY date ASC`
	var points []dto.ProgressPoint
	if err := r.db.SelectContext(ctx, &points, query, userID, days); err != nil {
		return nil, fmt.Errorf("progress series: %w", err)
	}
	return points, nil
}

// OverdueTasks lists pending tasks whose due date has passed, oldest first.
func (r *DashboardRepository) OverdueTasks(ctx context.Context, userID int64, limit int) ([]dto.OverdueTask, error) {
	const query = `
SELECT t.id, t.title, t.due_date, c.title AS course_title
FROM tasks t
JOIN courses c ON c.id = t.course_id
WHERE t.assigned_to = $1 AND t.status = 'pending' AND t.due_date < CURRENT_DATE
ORDER BY t.due_date ASC
LIMIT $2`
	var tasks []dto.OverdueTask
	if err := r.db.SelectContext(ctx, &tasks, query, userID, limit); err != nil {
		return nil, fmt.Errorf("overdue tasks: %w", err)
	}
	return tasks, nil
}

// SuggestCourses lists active courses the user is not enrolled in.
func (r *DashboardRepository) SuggestCourses(ctx context.Context, userID int64, order SuggestionOrder, limit int) ([]dto.CourseSuggestion, error) {
	orderBy, ok := courseSuggestionOrders[order]
	if !ok {
		orderBy = courseSuggestionOrders[SuggestPopular]
	}
	query := fmt.Sprintf(`
SELECT
	c.id, c.title, c.description, c.category, u.full_name AS teacher_name,
	(SELECT COUNT(*) FROM course_enrollments e WHERE e.course_id = c.id) AS enrolled_students
FROM courses c
JOIN users u ON u.id = c.teacher_id
WHERE c.status = 'active'
	AND NOT EXISTS (SELECT 1 FROM course_enrollments ce WHERE ce.course_id = c.id AND ce.user_id = $1)
ORDER BY %s
LIMIT $2`, orderBy)
	var courses []dto.CourseSuggestion
	if err := r.db.SelectContext(ctx, &courses, query, userID, limit); err != nil {
		return nil, fmt.Errorf("suggest courses: %w", err)
	}
	return courses, nil
}

// SuggestGroups lists active groups with free seats that the user has not joined.
func (r *DashboardRepository) SuggestGroups(ctx context.Context, userID int64, order SuggestionOrder, limit int) ([]dto.GroupSuggestion, error) {
	orderBy, ok := groupSuggestionOrders[order]
	if !ok {
		orderBy = groupSuggestionOrders[SuggestPopular]
	}
	query := fmt.Sprintf(`
SELECT g.id, g.name, g.description, COUNT(gm.id) AS member_count
FROM groups g
LEFT JOIN group_members gm ON gm.group_id = g.id
WHERE g.status = 'active'
	AND NOT EXISTS (SELECT 1 FROM group_members x WHERE x.group_id = g.id AND x.user_id = $1)
GROUP BY g.id
HAVING COUNT(gm.id) < $2
ORDER BY %s
LIMIT $3`, orderBy)
	var groups []dto.GroupSuggestion
	if err := r.db.SelectContext(ctx, &groups, query, userID, models.MaxGroupMembers, limit); err != nil {
		return nil, fmt.Errorf("suggest groups: %w", err)
	}
	return groups, nil
}
