package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innouni-api/internal/dto"
)

// TeacherRepository reads dashboard and analytics aggregates over a teacher's courses.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// DashboardCourses lists owned courses with enrollment counters.
func (r *TeacherRepository) DashboardCourses(ctx context.Context, teacherID int64) ([]dto.TeacherCourseSummary, error) {
	const query = `
SELECT
	c.id, c.title, c.category, c.status, c.created_at,
	COUNT(ce.id) AS enrolled_students,
	COALESCE(ROUND(AVG(ce.progress), 2), 0)::float8 AS avg_progress,
	COUNT(ce.id) FILTER (WHERE ce.status = 'completed') AS completed_students,
	COUNT(ce.id) FILTER (WHERE ce.enrolled_at >= NOW() - INTERVAL '7 days') AS new_enrollments_this_week
FROM courses c
LEFT JOIN course_enrollments ce ON ce.course_id = c.id
WHERE c.teacher_id = $1
GROUP BY c.id
ORDER BY c.created_at DESC`
	var courses []dto.TeacherCourseSummary
	if err := r.db.SelectContext(ctx, &courses, query, teacherID); err != nil {
		return nil, fmt.Errorf("teacher dashboard courses: %w", err)
	}
	return courses, nil
}

// DashboardStats totals courses and students across the teacher's courses.
func (r *TeacherRepository) DashboardStats(ctx context.Context, teacherID int64) (dto.TeacherStats, error) {
	const query = `
SELECT
	COUNT(DISTINCT c.id) AS total_courses,
	COUNT(DISTINCT c.id) FILTER (WHERE c.status = 'active') AS active_courses,
	COUNT(DISTINCT ce.user_id) AS total_students,
	COALESCE(ROUND(AVG(ce.progress), 2), 0)::float8 AS avg_progress,
	COUNT(ce.id) FILTER (WHERE ce.status = 'completed') AS completed_count
FROM courses c
LEFT JOIN course_enrollments ce ON ce.course_id = c.id
WHERE c.teacher_id = $1`
	var stats dto.TeacherStats
	if err := r.db.GetContext(ctx, &stats, query, teacherID); err != nil {
		return dto.TeacherStats{}, fmt.Errorf("teacher dashboard stats: %w", err)
	}
	return stats, nil
}

// RecentEnrollments lists the newest enrollments into the teacher's courses.
func (r *TeacherRepository) RecentEnrollments(ctx context.Context, teacherID int64, limit int) ([]dto.EnrollmentActivity, error) {
	const query = `
SELECT u.full_name AS student_name, c.title AS course_title, ce.progress::float8 AS progress, ce.status, ce.enrolled_at
FROM course_enrollments ce
JOIN courses c ON c.id = ce.course_id
JOIN users u ON u.id = ce.user_id
WHERE c.teacher_id = $1
ORDER BY ce.enrolled_at DESC
LIMIT $2`
	var items []dto.EnrollmentActivity
	if err := r.db.SelectContext(ctx, &items, query, teacherID, limit); err != nil {
		return nil, fmt.Errorf("teacher recent enrollments: %w", err)
	}
	return items, nil
}

// TaskStatusCounts tallies tasks across the teacher's courses.
func (r *TeacherRepository) TaskStatusCounts(ctx context.Context, teacherID int64) (dto.TaskStatusCounts, error) {
	const query = `
SELECT
	COUNT(t.id) AS total,
	COUNT(t.id) FILTER (WHERE t.status = 'pending') AS pending,
	COUNT(t.id) FILTER (WHERE t.status = 'in_progress') AS in_progress,
	COUNT(t.id) FILTER (WHERE t.status = 'completed') AS completed,
	COUNT(t.id) FILTER (WHERE t.status <> 'completed' AND t.due_date < CURRENT_DATE) AS overdue
FROM tasks t
JOIN courses c ON c.id = t.course_id
WHERE c.teacher_id = $1`
	var counts dto.TaskStatusCounts
	if err := r.db.GetContext(ctx, &counts, query, teacherID); err != nil {
		return dto.TaskStatusCounts{}, fmt.Errorf("teacher task counts: %w", err)
	}
	return counts, nil
}

// EnrollmentTrends counts enrollments per day over the last days, optionally for one course.
func (r *TeacherRepository) EnrollmentTrends(ctx context.Context, teacherID int64, courseID *int64, days int) ([]dto.TrendPoint, error) {
	query := `
SELECT DATE(ce.enrolled_at) AS date, COUNT(*) AS count
FROM course_enrollments ce
JOIN courses c ON c.id = ce.course_id
WHERE c.teacher_id = $1 AND ce.enrolled_at >= NOW() - ($2 * INTERVAL '1 day')`
	args := []interface{}{teacherID, days}
	query, args = scopeToCourse(query, args, courseID)
	query += `
GROUP BY DATE(ce.enrolled_at)
ORDER BY date ASC`
	var points []dto.TrendPoint
	if err := r.db.SelectContext(ctx, &points, query, args...); err != nil {
		return nil, fmt.Errorf("enrollment trends: %w", err)
	}
	return points, nil
}

// CompletionTrends counts course completions per day over the last days, optionally for one course.
func (r *TeacherRepository) CompletionTrends(ctx context.Context, teacherID int64, courseID *int64, days int) ([]dto.TrendPoint, error) {
	query := `
SELECT DATE(ce.updated_at) AS date, COUNT(*) AS count
FROM course_enrollments ce
JOIN courses c ON c.id = ce.course_id
WHERE c.teacher_id = $1 AND ce.status = 'completed' AND ce.updated_at >= NOW() - ($2 * INTERVAL '1 day')`
	args := []interface{}{teacherID, days}
	query, args = scopeToCourse(query, args, courseID)
	query += `
GROUP BY DATE(ce.updated_at)
ORDER BY date ASC`
	var points []dto.TrendPoint
	if err := r.db.SelectContext(ctx, &points, query, args...); err != nil {
		return nil, fmt.Errorf("completion trends: %w", err)
	}
	return points, nil
}

// CoursePerformance summarises each owned course, optionally only one.
func (r *TeacherRepository) CoursePerformance(ctx context.Context, teacherID int64, courseID *int64) ([]dto.CoursePerformance, error) {
	query := `
SELECT
	c.id, c.title,
	COUNT(ce.id) AS total_enrollments,
	COUNT(ce.id) FILTER (WHERE ce.status = 'completed') AS completions,
	COALESCE(ROUND(AVG(ce.progress), 2), 0)::float8 AS avg_progress,
	COUNT(ce.id) FILTER (WHERE ce.status = 'completed' AND ce.updated_at >= NOW() - INTERVAL '30 days') AS recent_completions
FROM courses c
LEFT JOIN course_enrollments ce ON ce.course_id = c.id
WHERE c.teacher_id = $1`
	args := []interface{}{teacherID}
	query, args = scopeToCourse(query, args, courseID)
	query += `
GROUP BY c.id, c.title
ORDER BY total_enrollments DESC, c.id ASC`
	var rows []dto.CoursePerformance
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("course performance: %w", err)
	}
	return rows, nil
}

func scopeToCourse(query string, args []interface{}, courseID *int64) (string, []interface{}) {
	if courseID == nil {
		return query, args
	}
	args = append(args, *courseID)
	return query + fmt.Sprintf(" AND c.id = $%d", len(args)), args
}
