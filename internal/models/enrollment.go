package models

import "time"

// EnrollmentStatus enumerates the enrollment lifecycle.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

// MaxProgress marks a finished course.
const MaxProgress = 100.0

// Enrollment links one student to one course.
type Enrollment struct {
	ID         int64            `db:"id" json:"id"`
	CourseID   int64            `db:"course_id" json:"course_id"`
	UserID     int64            `db:"user_id" json:"user_id"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
	Progress   float64          `db:"progress" json:"progress"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// StatusForProgress derives the enrollment status implied by a progress value.
func StatusForProgress(progress float64) EnrollmentStatus {
	if progress >= MaxProgress {
		return EnrollmentCompleted
	}
	return EnrollmentActive
}

// UpdateProgressRequest carries a new progress percentage.
type UpdateProgressRequest struct {
	Progress *float64 `json:"progress" validate:"required,gte=0,lte=100"`
}
