package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innouni-api/internal/dto"
)

// StudentRepository reads the composite student dashboard.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Courses lists active enrollments with the student's pending and overdue task counts.
func (r *StudentRepository) Courses(ctx context.Context, userID int64) ([]dto.StudentCourse, error) {
	const query = `
SELECT
	c.id, c.title, c.description, c.category, c.avatar, u.full_name AS teacher_name,
	ce.progress::float8 AS progress, ce.enrolled_at,
	(SELECT COUNT(*) FROM tasks t WHERE t.course_id = c.id AND t.assigned_to = $1 AND t.status = 'pending') AS pending_tasks,
	(SELECT COUNT(*) FROM tasks t WHERE t.course_id = c.id AND t.assigned_to = $1 AND t.status = 'pending' AND t.due_date < CURRENT_DATE) AS overdue_tasks
FROM course_enrollments ce
JOIN courses c ON c.id = ce.course_id
JOIN users u ON u.id = c.teacher_id
WHERE ce.user_id = $1 AND ce.status = 'active'
ORDER BY ce.enrolled_at DESC`
	var courses []dto.StudentCourse
	if err := r.db.SelectContext(ctx, &courses, query, userID); err != nil {
		return nil, fmt.Errorf("student courses: %w", err)
	}
	return courses, nil
}

// Groups lists memberships with member and active project counts.
func (r *StudentRepository) Groups(ctx context.Context, userID int64) ([]dto.StudentGroup, error) {
	const query = `
SELECT
	g.id, g.name, g.description, g.logo, g.status, gm.role, gm.joined_at,
	(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id) AS total_members,
	(SELECT COUNT(*) FROM projects p WHERE p.group_id = g.id AND p.status IN ('active', 'in_progress')) AS active_projects
FROM group_members gm
JOIN groups g ON g.id = gm.group_id
WHERE gm.user_id = $1
ORDER BY gm.joined_at DESC`
	var groups []dto.StudentGroup
	if err := r.db.SelectContext(ctx, &groups, query, userID); err != nil {
		return nil, fmt.Errorf("student groups: %w", err)
	}
	return groups, nil
}

// Tasks lists open tasks, overdue first, then high priority, then by due date.
func (r *StudentRepository) Tasks(ctx context.Context, userID int64) ([]dto.StudentTask, error) {
	const query = `
SELECT
	t.id, t.title, t.description, t.priority, t.status, t.due_date, c.title AS course_title,
	(t.due_date - CURRENT_DATE) AS days_until_due
FROM tasks t
JOIN courses c ON c.id = t.course_id
WHERE t.assigned_to = $1 AND t.status <> 'completed'
ORDER BY
	CASE
		WHEN t.due_date < CURRENT_DATE THEN 0
		WHEN t.priority = 'high' THEN 1
		WHEN t.priority = 'medium' THEN 2
		ELSE 3
	END,
	t.due_date ASC NULLS LAST`
	var tasks []dto.StudentTask
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("student tasks: %w", err)
	}
	return tasks, nil
}

// Achievements lists the most recent awards.
func (r *StudentRepository) Achievements(ctx context.Context, userID int64, limit int) ([]dto.EarnedAchievement, error) {
	const query = `
SELECT a.id, a.title, a.description, a.icon, a.type, ua.earned_at
FROM user_achievements ua
JOIN achievements a ON a.id = ua.achievement_id
WHERE ua.user_id = $1
ORDER BY ua.earned_at DESC
LIMIT $2`
	var items []dto.EarnedAchievement
	if err := r.db.SelectContext(ctx, &items, query, userID, limit); err != nil {
		return nil, fmt.Errorf("student achievements: %w", err)
	}
	return items, nil
}

// Stats returns the headline counters of the student dashboard.
func (r *StudentRepository) Stats(ctx context.Context, userID int64) (dto.StudentStats, error) {
	const query = `
SELECT
	(SELECT COUNT(*) FROM course_enrollments WHERE user_id = $1 AND status = 'active') AS enrolled_courses,
	(SELECT COUNT(*) FROM course_enrollments WHERE user_id = $1 AND status = 'completed') AS completed_courses,
	(SELECT COALESCE(ROUND(AVG(progress), 2), 0)::float8 FROM course_enrollments WHERE user_id = $1 AND status = 'active') AS avg_progress,
	(SELECT COUNT(*) FROM group_members gm JOIN groups g ON g.id = gm.group_id WHERE gm.user_id = $1 AND g.status = 'active') AS active_groups,
	(SELECT COUNT(*) FROM user_achievements WHERE user_id = $1) AS achievements,
	(SELECT COALESCE(ROUND(SUM(progress * 2)), 0)::int FROM course_enrollments WHERE user_id = $1 AND status = 'active') AS estimated_hours,
	(SELECT COUNT(*) FROM (
		SELECT DATE(enrolled_at) AS day FROM course_enrollments WHERE user_id = $1
		UNION
		SELECT DATE(updated_at) AS day FROM course_enrollments WHERE user_id = $1
	) days WHERE day >= CURRENT_DATE - 28) AS current_streak`
	var stats dto.StudentStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return dto.StudentStats{}, fmt.Errorf("student stats: %w", err)
	}
	return stats, nil
}
