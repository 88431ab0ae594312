package models

import "time"

// AchievementType enumerates catalog categories.
type AchievementType string

const (
	AchievementTypeCourse   AchievementType = "course"
	AchievementTypeTeam     AchievementType = "team"
	AchievementTypePersonal AchievementType = "personal"
)

// Catalog identifiers seeded by migration.
const (
	AchievementFirstSteps int64 = 1
	AchievementCodeMaster int64 = 2
	AchievementTeamPlayer int64 = 3
	AchievementCertified  int64 = 4
)

// Achievement is a fixed catalog badge.
type Achievement struct {
	ID          int64           `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Description *string         `db:"description" json:"description,omitempty"`
	Icon        *string         `db:"icon" json:"icon,omitempty"`
	Type        AchievementType `db:"type" json:"type"`
}

// UserAchievement records an award.
type UserAchievement struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	AchievementID int64     `db:"achievement_id" json:"achievement_id"`
	EarnedAt      time.Time `db:"earned_at" json:"earned_at"`
}

// CompletionCounts are the inputs to achievement rules.
type CompletionCounts struct {
	CompletedCourses int `db:"completed_courses" json:"completed_courses"`
	CompletedTasks   int `db:"completed_tasks" json:"completed_tasks"`
}

// AchievementRule awards AchievementID once Metric reaches Threshold.
type AchievementRule struct {
	AchievementID int64
	Threshold     int
	Metric        func(CompletionCounts) int
}

// DefaultAchievementRules is the built-in award table.
var DefaultAchievementRules = []AchievementRule{
	{
		AchievementID: AchievementCertified,
		Threshold:     10,
		Metric:        func(c CompletionCounts) int { return c.CompletedCourses },
	},
	{
		AchievementID: AchievementCodeMaster,
		Threshold:     100,
		Metric:        func(c CompletionCounts) int { return c.CompletedTasks },
	},
}
