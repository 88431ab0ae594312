package dto

import "time"

// DashboardStats aggregates a user's learning state.
type DashboardStats struct {
	Courses      CourseStats      `json:"courses"`
	Tasks        TaskStats        `json:"tasks"`
	Groups       GroupStats       `json:"groups"`
	Learning     LearningStats    `json:"learning"`
	Achievements AchievementStats `json:"achievements"`
}

// CourseStats summarises enrollments.
type CourseStats struct {
	Active      int     `db:"active" json:"active"`
	Completed   int     `db:"completed" json:"completed"`
	AvgProgress float64 `db:"avg_progress" json:"avg_progress"`
	NewThisWeek int     `db:"new_this_week" json:"new_this_week"`
}

// TaskStats summarises assigned tasks. Overdue counts pending tasks due today or earlier.
type TaskStats struct {
	Total             int `db:"total" json:"total"`
	Pending           int `db:"pending" json:"pending"`
	Overdue           int `db:"overdue" json:"overdue"`
	InProgress        int `db:"in_progress" json:"in_progress"`
	Completed         int `db:"completed" json:"completed"`
	CompletedThisWeek int `db:"completed_this_week" json:"completed_this_week"`
	DueThisWeek       int `db:"due_this_week" json:"due_this_week"`
}

// GroupStats summarises memberships in active groups.
type GroupStats struct {
	Active       int `db:"active" json:"active"`
	Leading      int `db:"leading" json:"leading"`
	NewThisMonth int `db:"new_this_month" json:"new_this_month"`
}

// LearningStats holds the streak and the estimated-hours heuristic.
type LearningStats struct {
	CurrentStreak  int        `db:"current_streak" json:"current_streak"`
	EstimatedHours int        `db:"estimated_hours" json:"estimated_hours"`
	LastStudyDate  *time.Time `db:"last_study_date" json:"last_study_date"`
}

// AchievementStats counts awards.
type AchievementStats struct {
	Total           int `db:"total" json:"total"`
	EarnedThisMonth int `db:"earned_this_month" json:"earned_this_month"`
}

// ActivityKind tags an activity feed entry.
type ActivityKind string

const (
	ActivityCourse      ActivityKind = "course"
	ActivityTask        ActivityKind = "task"
	ActivityGroup       ActivityKind = "group"
	ActivityAchievement ActivityKind = "achievement"
)

// ActivityItem is one entry of the merged activity feed.
type ActivityItem struct {
	Type      ActivityKind `db:"type" json:"type"`
	Title     string       `db:"title" json:"title"`
	Action    string       `db:"action" json:"action"`
	Timestamp time.Time    `db:"timestamp" json:"timestamp"`
	Icon      string       `db:"-" json:"icon"`
	Color     string       `db:"-" json:"color"`
}

// ProgressPoint is one day of the enrollment time series.
type ProgressPoint struct {
	Date            time.Time `db:"date" json:"date"`
	CoursesEnrolled int       `db:"courses_enrolled" json:"courses_enrolled"`
	AvgProgress     float64   `db:"avg_progress" json:"avg_progress"`
}

// Recommendations groups next-step suggestions for a user.
type Recommendations struct {
	OverdueTasks       []OverdueTask      `json:"overdue_tasks"`
	RecommendedCourses []CourseSuggestion `json:"recommended_courses"`
	AvailableGroups    []GroupSuggestion  `json:"available_groups"`
}

// OverdueTask is a pending task past its due date.
type OverdueTask struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	CourseTitle string    `db:"course_title" json:"course_title"`
}

// CourseSuggestion is an active course the user has not joined.
type CourseSuggestion struct {
	ID               int64   `db:"id" json:"id"`
	Title            string  `db:"title" json:"title"`
	Description      *string `db:"description" json:"description,omitempty"`
	Category         string  `db:"category" json:"category"`
	TeacherName      string  `db:"teacher_name" json:"teacher_name"`
	EnrolledStudents int     `db:"enrolled_students" json:"enrolled_students"`
}

// GroupSuggestion is an active group with room for new members.
type GroupSuggestion struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
	MemberCount int     `db:"member_count" json:"member_count"`
}

// DashboardRoute tells a client which dashboard a user lands on.
type DashboardRoute struct {
	UserID    int64  `json:"userId"`
	Role      string `json:"role"`
	Dashboard string `json:"dashboard"`
}
