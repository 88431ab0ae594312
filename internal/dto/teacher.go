package dto

import (
	"time"

	"github.com/noah-isme/innouni-api/internal/models"
)

// TeacherDashboard is the composite view returned to teachers.
type TeacherDashboard struct {
	Courses          []TeacherCourseSummary `json:"courses"`
	Stats            TeacherStats           `json:"stats"`
	RecentActivities []EnrollmentActivity   `json:"recentActivities"`
	TaskStats        TaskStatusCounts       `json:"taskStats"`
}

// TeacherCourseSummary is an owned course with enrollment counters.
type TeacherCourseSummary struct {
	ID                     int64     `db:"id" json:"id"`
	Title                  string    `db:"title" json:"title"`
	Category               string    `db:"category" json:"category"`
	Status                 string    `db:"status" json:"status"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	EnrolledStudents       int       `db:"enrolled_students" json:"enrolled_students"`
	AvgProgress            float64   `db:"avg_progress" json:"avg_progress"`
	CompletedStudents      int       `db:"completed_students" json:"completed_students"`
	NewEnrollmentsThisWeek int       `db:"new_enrollments_this_week" json:"new_enrollments_this_week"`
}

// TeacherStats are the headline numbers on the teacher dashboard.
type TeacherStats struct {
	TotalCourses   int     `db:"total_courses" json:"total_courses"`
	ActiveCourses  int     `db:"active_courses" json:"active_courses"`
	TotalStudents  int     `db:"total_students" json:"total_students"`
	AvgProgress    float64 `db:"avg_progress" json:"avg_progress"`
	CompletedCount int     `db:"completed_count" json:"completed_count"`
}

// EnrollmentActivity is a recent enrollment into one of the teacher's courses.
type EnrollmentActivity struct {
	StudentName string    `db:"student_name" json:"student_name"`
	CourseTitle string    `db:"course_title" json:"course_title"`
	Progress    float64   `db:"progress" json:"progress"`
	Status      string    `db:"status" json:"status"`
	EnrolledAt  time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// TaskStatusCounts tallies tasks across the teacher's courses.
type TaskStatusCounts struct {
	Total      int `db:"total" json:"total"`
	Pending    int `db:"pending" json:"pending"`
	InProgress int `db:"in_progress" json:"in_progress"`
	Completed  int `db:"completed" json:"completed"`
	Overdue    int `db:"overdue" json:"overdue"`
}

// TeacherCourse is a course listing row with task analytics.
type TeacherCourse struct {
	ID               int64     `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	Description      *string   `db:"description" json:"description,omitempty"`
	Category         string    `db:"category" json:"category"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	EnrolledStudents int       `db:"enrolled_students" json:"enrolled_students"`
	AvgProgress      float64   `db:"avg_progress" json:"avg_progress"`
	TotalTasks       int       `db:"total_tasks" json:"total_tasks"`
	CompletedTasks   int       `db:"completed_tasks" json:"completed_tasks"`
}

// TeacherTask is a task listing row.
type TeacherTask struct {
	ID           int64      `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Description  *string    `db:"description" json:"description,omitempty"`
	Priority     string     `db:"priority" json:"priority"`
	Status       string     `db:"status" json:"status"`
	DueDate      *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	CourseID     int64      `db:"course_id" json:"course_id"`
	CourseTitle  string     `db:"course_title" json:"course_title"`
	AssigneeName string     `db:"assignee_name" json:"assignee_name"`
}

// CourseStudent is a roster row.
type CourseStudent struct {
	ID         int64     `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	Avatar     *string   `db:"avatar" json:"avatar,omitempty"`
	Progress   float64   `db:"progress" json:"progress"`
	Status     string    `db:"status" json:"status"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// TeacherAnalytics holds trend series and per-course performance.
type TeacherAnalytics struct {
	Period            int                 `json:"period"`
	CourseID          *int64              `json:"courseId,omitempty"`
	EnrollmentTrends  []TrendPoint        `json:"enrollmentTrends"`
	CompletionTrends  []TrendPoint        `json:"completionTrends"`
	CoursePerformance []CoursePerformance `json:"coursePerformance"`
}

// TrendPoint is a per-day count.
type TrendPoint struct {
	Date  time.Time `db:"date" json:"date"`
	Count int       `db:"count" json:"count"`
}

// CoursePerformance summarises one course.
type CoursePerformance struct {
	ID                int64   `db:"id" json:"id"`
	Title             string  `db:"title" json:"title"`
	TotalEnrollments  int     `db:"total_enrollments" json:"total_enrollments"`
	Completions       int     `db:"completions" json:"completions"`
	AvgProgress       float64 `db:"avg_progress" json:"avg_progress"`
	RecentCompletions int     `db:"recent_completions" json:"recent_completions"`
}

// LibraryView lists a teacher's uploaded materials with category counts.
type LibraryView struct {
	Categories []LibraryCategory       `json:"categories"`
	Items      []models.CourseMaterial `json:"items"`
}

// LibraryCategory counts materials of one category.
type LibraryCategory struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
