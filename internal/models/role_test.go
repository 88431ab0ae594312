package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	for _, r := range Roles {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, UserRole("superuser").Valid())
	assert.False(t, UserRole("Student").Valid())
}

func TestCapabilities(t *testing.T) {
	assert.Equal(t, Capabilities{Learn: true}, CapabilitiesOf(RoleStudent))
	assert.Equal(t, Capabilities{Teach: true}, CapabilitiesOf(RoleTeacher))
	assert.Equal(t, Capabilities{Teach: true, Administer: true}, CapabilitiesOf(RoleAdmin))
	assert.Equal(t, Capabilities{}, CapabilitiesOf("guest"))

	assert.Equal(t, "student", RoleStudent.DashboardKind())
	assert.Equal(t, "teacher", RoleTeacher.DashboardKind())
	assert.Equal(t, "teacher", RoleAdmin.DashboardKind())
	assert.Equal(t, "", UserRole("guest").DashboardKind())
}

func TestClaimsOwns(t *testing.T) {
	student := &JWTClaims{UserID: 7, Role: RoleStudent}
	assert.True(t, student.Owns(7))
	assert.False(t, student.Owns(8))

	admin := &JWTClaims{UserID: 1, Role: RoleAdmin}
	assert.True(t, admin.Owns(8))

	var nilClaims *JWTClaims
	assert.False(t, nilClaims.Owns(7))
}

func TestStatusForProgress(t *testing.T) {
	assert.Equal(t, EnrollmentActive, StatusForProgress(0))
	assert.Equal(t, EnrollmentActive, StatusForProgress(99))
	assert.Equal(t, EnrollmentActive, StatusForProgress(99.99))
	assert.Equal(t, EnrollmentCompleted, StatusForProgress(100))
}

func TestDefaultAchievementRules(t *testing.T) {
	counts := CompletionCounts{CompletedCourses: 10, CompletedTasks: 99}
	var reached []int64
	for _, rule := range DefaultAchievementRules {
		if rule.Metric(counts) >= rule.Threshold {
			reached = append(reached, rule.AchievementID)
		}
	}
	assert.Equal(t, []int64{AchievementCertified}, reached)
}
