package models

import "time"

// TaskPriority enumerates task urgency.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// TaskStatus enumerates task progress states.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// DateLayout is the wire format for due dates.
const DateLayout = "2006-01-02"

// Task is assigned to one user within a course.
type Task struct {
	ID          int64        `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description *string      `db:"description" json:"description,omitempty"`
	CourseID    int64        `db:"course_id" json:"course_id"`
	AssignedTo  int64        `db:"assigned_to" json:"assigned_to"`
	Priority    TaskPriority `db:"priority" json:"priority"`
	Status      TaskStatus   `db:"status" json:"status"`
	DueDate     *time.Time   `db:"due_date" json:"due_date,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// CreateTaskRequest is the payload teachers use to assign work.
type CreateTaskRequest struct {
	Title       string       `json:"title" validate:"required,max=255"`
	Description *string      `json:"description"`
	CourseID    int64        `json:"course_id" validate:"required,gt=0"`
	AssignedTo  int64        `json:"assigned_to" validate:"required,gt=0"`
	Priority    TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string       `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// GradeTaskRequest carries a grade that is acknowledged but not stored.
type GradeTaskRequest struct {
	Grade    string `json:"grade" validate:"required,max=20"`
	Feedback string `json:"feedback" validate:"max=2000"`
}

// GradeTaskResult echoes the accepted grade.
type GradeTaskResult struct {
	TaskID   int64  `json:"task_id"`
	Grade    string `json:"grade"`
	Feedback string `json:"feedback"`
}

// TaskFilter narrows a teacher's task listing.
type TaskFilter struct {
	TeacherID int64
	Status    TaskStatus
	CourseID  int64
}
