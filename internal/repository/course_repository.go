package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/models"
)

// CourseRepository manages courses and their rosters.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT id, title, description, category, teacher_id, avatar, status, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// Create inserts a course and populates generated columns.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.Status == "" {
		course.Status = models.CourseStatusActive
	}
	const query = `INSERT INTO courses (title, description, category, teacher_id, avatar, status) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query, course.Title, course.Description, course.Category, course.TeacherID, course.Avatar, course.Status)
	if err := row.Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update changes only the non-nil fields of a course.
func (r *CourseRepository) Update(ctx context.Context, id int64, req models.UpdateCourseRequest) error {
	const query = `UPDATE courses SET title = COALESCE($2, title), description = COALESCE($3, description), category = COALESCE($4, category), status = COALESCE($5, status), updated_at = $6 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, req.Title, req.Description, req.Category, req.Status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return expectAffected(res)
}

// ListByTeacher returns the teacher's courses with enrollment and task analytics.
func (r *CourseRepository) ListByTeacher(ctx context.Context, filter models.CourseFilter) ([]dto.TeacherCourse, error) {
	conditions := []string{"c.teacher_id = $1"}
	args := []interface{}{filter.TeacherID}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("c.category = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)))
	}

	query := fmt.Sprintf(`
SELECT
	c.id, c.title, c.description, c.category, c.status, c.created_at,
	(SELECT COUNT(*) FROM course_enrollments ce WHERE ce.course_id = c.id) AS enrolled_students,
	(SELECT COALESCE(ROUND(AVG(ce.progress), 2), 0) FROM course_enrollments ce WHERE ce.course_id = c.id) AS avg_progress,
	(SELECT COUNT(*) FROM tasks t WHERE t.course_id = c.id) AS total_tasks,
	(SELECT COUNT(*) FROM tasks t WHERE t.course_id = c.id AND t.status = 'completed') AS completed_tasks
FROM courses c
WHERE %s
ORDER BY c.created_at DESC`, strings.Join(conditions, " AND "))

	var courses []dto.TeacherCourse
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	return courses, nil
}

// Students returns the enrollment roster for a course.
func (r *CourseRepository) Students(ctx context.Context, courseID int64) ([]dto.CourseStudent, error) {
	const query = `
SELECT u.id, u.full_name, u.email, u.avatar, ce.progress, ce.status, ce.enrolled_at
FROM course_enrollments ce
JOIN users u ON u.id = ce.user_id
WHERE ce.course_id = $1
ORDER BY ce.enrolled_at DESC`
	var students []dto.CourseStudent
	if err := r.db.SelectContext(ctx, &students, query, courseID); err != nil {
		return nil, fmt.Errorf("list course students: %w", err)
	}
	return students, nil
}
