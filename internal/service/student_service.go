package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/internal/repository"
	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
)

const (
	studentAchievementLimit = 10
	studentSuggestionLimit  = 5
)

type courseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

type studentEnrollmentStore interface {
	Find(ctx context.Context, courseID, userID int64) (*models.Enrollment, error)
	Create(ctx context.Context, courseID, userID int64) error
	UpdateProgress(ctx context.Context, courseID, userID int64, progress float64, status models.EnrollmentStatus) error
}

type studentGroupStore interface {
	FindByID(ctx context.Context, id int64) (*models.Group, error)
	CreateWithLeader(ctx context.Context, group *models.Group) error
	FindMembership(ctx context.Context, groupID, userID int64) (*models.GroupMember, error)
	CountMembers(ctx context.Context, groupID int64) (int, error)
	CountLeaders(ctx context.Context, groupID int64) (int, error)
	AddMember(ctx context.Context, groupID, userID int64, capacity int) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
}

type studentTaskStore interface {
	CompleteForAssignee(ctx context.Context, taskID, userID int64) error
}

type studentViewReader interface {
	Courses(ctx context.Context, userID int64) ([]dto.StudentCourse, error)
	Groups(ctx context.Context, userID int64) ([]dto.StudentGroup, error)
	Tasks(ctx context.Context, userID int64) ([]dto.StudentTask, error)
	Achievements(ctx context.Context, userID int64, limit int) ([]dto.EarnedAchievement, error)
	Stats(ctx context.Context, userID int64) (dto.StudentStats, error)
}

type suggestionReader interface {
	SuggestCourses(ctx context.Context, userID int64, order repository.SuggestionOrder, limit int) ([]dto.CourseSuggestion, error)
	SuggestGroups(ctx context.Context, userID int64, order repository.SuggestionOrder, limit int) ([]dto.GroupSuggestion, error)
}

type achievementTrigger interface {
	Trigger(ctx context.Context, userID int64)
}

// StudentStores bundles the persistence dependencies of StudentService.
type StudentStores struct {
	Courses     courseReader
	Enrollments studentEnrollmentStore
	Groups      studentGroupStore
	Tasks       studentTaskStore
	Views       studentViewReader
	Suggestions suggestionReader
}

// StudentService implements the student write endpoints and the student dashboard.
type StudentService struct {
	stores       StudentStores
	achievements achievementTrigger
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	ttl          time.Duration
}

// NewStudentService constructs the student service.
func NewStudentService(stores StudentStores, achievements achievementTrigger, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, ttl time.Duration) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		stores:       stores,
		achievements: achievements,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		ttl:          ttl,
	}
}

// Dashboard returns the composite student view and whether it came from cache.
func (s *StudentService) Dashboard(ctx context.Context, userID int64) (*dto.StudentDashboard, bool, error) {
	key := dashboardKey(cacheKindStudent, userID)
	var cached dto.StudentDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	start := time.Now()
	view := &dto.StudentDashboard{}
	var err error
	if view.Courses, err = s.stores.Views.Courses(ctx, userID); err != nil {
		return nil, false, s.internal(err, "failed to load courses")
	}
	if view.Groups, err = s.stores.Views.Groups(ctx, userID); err != nil {
		return nil, false, s.internal(err, "failed to load groups")
	}
	if view.Tasks, err = s.stores.Views.Tasks(ctx, userID); err != nil {
		return nil, false, s.internal(err, "failed to load tasks")
	}
	if view.Achievements, err = s.stores.Views.Achievements(ctx, userID, studentAchievementLimit); err != nil {
		return nil, false, s.internal(err, "failed to load achievements")
	}
	if view.Stats, err = s.stores.Views.Stats(ctx, userID); err != nil {
		return nil, false, s.internal(err, "failed to load statistics")
	}
	if view.RecommendedCourses, err = s.stores.Suggestions.SuggestCourses(ctx, userID, repository.SuggestPopular, studentSuggestionLimit); err != nil {
		return nil, false, s.internal(err, "failed to load course suggestions")
	}
	if view.AvailableGroups, err = s.stores.Suggestions.SuggestGroups(ctx, userID, repository.SuggestSmallest, studentSuggestionLimit); err != nil {
		return nil, false, s.internal(err, "failed to load group suggestions")
	}
	s.metrics.ObserveDashboardBuild("student", time.Since(start))

	fillStudentDashboard(view)
	_ = s.cache.Set(ctx, key, view, s.ttl)
	return view, false, nil
}

// Enroll registers the student in an active course. An existing enrollment is a
// conflict even when the course has since been deactivated.
func (s *StudentService) Enroll(ctx context.Context, userID, courseID int64) error {
	if _, err := s.stores.Enrollments.Find(ctx, courseID, userID); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "already enrolled in this course")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return s.internal(err, "failed to check enrollment")
	}

	course, err := s.stores.Courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found or inactive")
		}
		return s.internal(err, "failed to load course")
	}
	if course.Status != models.CourseStatusActive {
		return appErrors.Clone(appErrors.ErrNotFound, "course not found or inactive")
	}

	if err := s.stores.Enrollments.Create(ctx, courseID, userID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return appErrors.Clone(appErrors.ErrConflict, "already enrolled in this course")
		}
		return s.internal(err, "failed to enroll")
	}

	s.metrics.RecordEvent("enrollment")
	s.cache.InvalidateUser(ctx, userID, course.TeacherID)
	return nil
}

// UpdateProgress stores new course progress and derives the enrollment status.
func (s *StudentService) UpdateProgress(ctx context.Context, userID, courseID int64, req models.UpdateProgressRequest) (models.EnrollmentStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.ErrValidation.Wrap(err, "progress must be a number between 0 and 100")
	}

	if _, err := s.stores.Enrollments.Find(ctx, courseID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotEnrolled, "")
		}
		return "", s.internal(err, "failed to load enrollment")
	}

	progress := *req.Progress
	status := models.StatusForProgress(progress)
	if err := s.stores.Enrollments.UpdateProgress(ctx, courseID, userID, progress, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotEnrolled, "")
		}
		return "", s.internal(err, "failed to update progress")
	}

	s.cache.InvalidateUser(ctx, userID)
	s.triggerAchievements(ctx, userID)
	return status, nil
}

// CreateGroup opens a group led by the caller.
func (s *StudentService) CreateGroup(ctx context.Context, userID int64, req models.CreateGroupRequest) (*models.Group, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err, "group name is required")
	}

	group := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.GroupStatusActive,
		CreatedBy:   userID,
	}
	if err := s.stores.Groups.CreateWithLeader(ctx, group); err != nil {
		return nil, s.internal(err, "failed to create group")
	}

	s.metrics.RecordEvent("group_created")
	s.cache.InvalidateUser(ctx, userID)
	return group, nil
}

// JoinGroup adds the caller to an active group with free seats.
func (s *StudentService) JoinGroup(ctx context.Context, userID, groupID int64) error {
	if _, err := s.stores.Groups.FindMembership(ctx, groupID, userID); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "already a member of this group")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return s.internal(err, "failed to check membership")
	}

	group, err := s.stores.Groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "group not found or inactive")
		}
		return s.internal(err, "failed to load group")
	}
	if group.Status != models.GroupStatusActive {
		return appErrors.Clone(appErrors.ErrNotFound, "group not found or inactive")
	}

	if err := s.stores.Groups.AddMember(ctx, groupID, userID, models.MaxGroupMembers); err != nil {
		switch {
		case errors.Is(err, repository.ErrCapacityReached):
			return appErrors.Clone(appErrors.ErrGroupFull, "")
		case errors.Is(err, repository.ErrDuplicate):
			return appErrors.Clone(appErrors.ErrConflict, "already a member of this group")
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "group not found or inactive")
		}
		return s.internal(err, "failed to join group")
	}

	s.metrics.RecordEvent("group_join")
	s.cache.InvalidateUser(ctx, userID)
	return nil
}

// LeaveGroup removes the caller's membership. The only leader may not leave while others remain.
func (s *StudentService) LeaveGroup(ctx context.Context, userID, groupID int64) error {
	member, err := s.stores.Groups.FindMembership(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotMember, "")
		}
		return s.internal(err, "failed to check membership")
	}

	if member.Role == models.MemberRoleLeader {
		leaders, err := s.stores.Groups.CountLeaders(ctx, groupID)
		if err != nil {
			return s.internal(err, "failed to count leaders")
		}
		members, err := s.stores.Groups.CountMembers(ctx, groupID)
		if err != nil {
			return s.internal(err, "failed to count members")
		}
		if leaders <= 1 && members > 1 {
			return appErrors.Clone(appErrors.ErrLeaderCannotLeave, "")
		}
	}

	if err := s.stores.Groups.RemoveMember(ctx, groupID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotMember, "")
		}
		return s.internal(err, "failed to leave group")
	}

	s.metrics.RecordEvent("group_leave")
	s.cache.InvalidateUser(ctx, userID)
	return nil
}

// CompleteTask marks a task assigned to the caller as completed.
func (s *StudentService) CompleteTask(ctx context.Context, userID, taskID int64) error {
	if err := s.stores.Tasks.CompleteForAssignee(ctx, taskID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return s.internal(err, "failed to complete task")
	}

	s.metrics.RecordEvent("task_completed")
	s.cache.InvalidateUser(ctx, userID)
	s.triggerAchievements(ctx, userID)
	return nil
}

func (s *StudentService) triggerAchievements(ctx context.Context, userID int64) {
	if s.achievements == nil {
		return
	}
	s.achievements.Trigger(ctx, userID)
}

func (s *StudentService) internal(err error, message string) error {
	s.logger.Error(message, zap.Error(err))
	return appErrors.ErrInternal.Wrap(err, message)
}

func fillStudentDashboard(view *dto.StudentDashboard) {
	if view.Courses == nil {
		view.Courses = []dto.StudentCourse{}
	}
	if view.Groups == nil {
		view.Groups = []dto.StudentGroup{}
	}
	if view.Tasks == nil {
		view.Tasks = []dto.StudentTask{}
	}
	if view.Achievements == nil {
		view.Achievements = []dto.EarnedAchievement{}
	}
	if view.RecommendedCourses == nil {
		view.RecommendedCourses = []dto.CourseSuggestion{}
	}
	if view.AvailableGroups == nil {
		view.AvailableGroups = []dto.GroupSuggestion{}
	}
}
