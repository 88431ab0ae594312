package dto

import "time"

// StudentDashboard is the composite view returned to students.
type StudentDashboard struct {
	Courses            []StudentCourse     `json:"courses"`
	Groups             []StudentGroup      `json:"groups"`
	Tasks              []StudentTask       `json:"tasks"`
	Achievements       []EarnedAchievement `json:"achievements"`
	Stats              StudentStats        `json:"stats"`
	RecommendedCourses []CourseSuggestion  `json:"recommendedCourses"`
	AvailableGroups    []GroupSuggestion   `json:"availableGroups"`
}

// StudentCourse is an active enrollment with task counters.
type StudentCourse struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Category     string    `db:"category" json:"category"`
	Avatar       *string   `db:"avatar" json:"avatar,omitempty"`
	TeacherName  string    `db:"teacher_name" json:"teacher_name"`
	Progress     float64   `db:"progress" json:"progress"`
	EnrolledAt   time.Time `db:"enrolled_at" json:"enrolled_at"`
	PendingTasks int       `db:"pending_tasks" json:"pending_tasks"`
	OverdueTasks int       `db:"overdue_tasks" json:"overdue_tasks"`
}

// StudentGroup is a membership with group counters.
type StudentGroup struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Description    *string   `db:"description" json:"description,omitempty"`
	Logo           *string   `db:"logo" json:"logo,omitempty"`
	Status         string    `db:"status" json:"status"`
	Role           string    `db:"role" json:"role"`
	JoinedAt       time.Time `db:"joined_at" json:"joined_at"`
	TotalMembers   int       `db:"total_members" json:"total_members"`
	ActiveProjects int       `db:"active_projects" json:"active_projects"`
}

// StudentTask is an open task ordered by urgency.
type StudentTask struct {
	ID           int64      `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Description  *string    `db:"description" json:"description,omitempty"`
	Priority     string     `db:"priority" json:"priority"`
	Status       string     `db:"status" json:"status"`
	DueDate      *time.Time `db:"due_date" json:"due_date,omitempty"`
	CourseTitle  string     `db:"course_title" json:"course_title"`
	DaysUntilDue *int       `db:"days_until_due" json:"days_until_due,omitempty"`
}

// EarnedAchievement is an awarded catalog badge.
type EarnedAchievement struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Icon        *string   `db:"icon" json:"icon,omitempty"`
	Type        string    `db:"type" json:"type"`
	EarnedAt    time.Time `db:"earned_at" json:"earned_at"`
}

// StudentStats are the headline numbers on the student dashboard.
type StudentStats struct {
	EnrolledCourses  int     `db:"enrolled_courses" json:"enrolled_courses"`
	CompletedCourses int     `db:"completed_courses" json:"completed_courses"`
	AvgProgress      float64 `db:"avg_progress" json:"avg_progress"`
	ActiveGroups     int     `db:"active_groups" json:"active_groups"`
	Achievements     int     `db:"achievements" json:"achievements"`
	EstimatedHours   int     `db:"estimated_hours" json:"estimated_hours"`
	CurrentStreak    int     `db:"current_streak" json:"current_streak"`
}

// CreatedID acknowledges a created resource.
type CreatedID struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
