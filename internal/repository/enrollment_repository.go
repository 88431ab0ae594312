package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innouni-api/internal/models"
)

// EnrollmentRepository persists course enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Find returns the enrollment of a user in a course.
func (r *EnrollmentRepository) Find(ctx context.Context, courseID, userID int64) (*models.Enrollment, error) {
	const query = `SELECT id, course_id, user_id, enrolled_at, progress, status, updated_at FROM course_enrollments WHERE course_id = $1 AND user_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, courseID, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// Create enrolls a user with zero progress.
func (r *EnrollmentRepository) Create(ctx context.Context, courseID, userID int64) error {
	const query = `INSERT INTO course_enrollments (course_id, user_id, progress, status) VALUES ($1, $2, 0, $3)`
	if _, err := r.db.ExecContext(ctx, query, courseID, userID, models.EnrollmentActive); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateProgress stores a new progress value and the status it implies.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, courseID, userID int64, progress float64, status models.EnrollmentStatus) error {
	const query = `UPDATE course_enrollments SET progress = $3, status = $4, updated_at = $5 WHERE course_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, courseID, userID, progress, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return expectAffected(res)
}

// IsEnrolled reports whether the user holds any enrollment in the course.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM course_enrollments WHERE course_id = $1 AND user_id = $2)`
	var enrolled bool
	if err := r.db.GetContext(ctx, &enrolled, query, courseID, userID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return enrolled, nil
}
