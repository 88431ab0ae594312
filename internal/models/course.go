package models

import "time"

// CourseStatus enumerates course availability.
type CourseStatus string

const (
	CourseStatusActive   CourseStatus = "active"
	CourseStatusInactive CourseStatus = "inactive"
)

// Course is owned by exactly one teacher.
type Course struct {
	ID          int64        `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description *string      `db:"description" json:"description,omitempty"`
	Category    string       `db:"category" json:"category"`
	TeacherID   int64        `db:"teacher_id" json:"teacher_id"`
	Avatar      *string      `db:"avatar" json:"avatar,omitempty"`
	Status      CourseStatus `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// CreateCourseRequest is the payload for opening a new course.
type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	Category    string  `json:"category" validate:"required,max=100"`
	Avatar      *string `json:"avatar" validate:"omitempty,max=500"`
}

// UpdateCourseRequest changes only the supplied fields of a course.
type UpdateCourseRequest struct {
	Title       *string       `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string       `json:"description"`
	Category    *string       `json:"category" validate:"omitempty,min=1,max=100"`
	Status      *CourseStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

// CourseFilter narrows a teacher's course listing.
type CourseFilter struct {
	TeacherID int64
	Category  string
	Status    CourseStatus
}
