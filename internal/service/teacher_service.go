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
	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
)

const teacherRecentEnrollments = 10

type teacherCourseStore interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, id int64, req models.UpdateCourseRequest) error
	ListByTeacher(ctx context.Context, filter models.CourseFilter) ([]dto.TeacherCourse, error)
	Students(ctx context.Context, courseID int64) ([]dto.CourseStudent, error)
}

type teacherTaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	CourseOwner(ctx context.Context, taskID int64) (int64, error)
	ListByTeacher(ctx context.Context, filter models.TaskFilter) ([]dto.TeacherTask, error)
}

type teacherViewReader interface {
	DashboardCourses(ctx context.Context, teacherID int64) ([]dto.TeacherCourseSummary, error)
	DashboardStats(ctx context.Context, teacherID int64) (dto.TeacherStats, error)
	RecentEnrollments(ctx context.Context, teacherID int64, limit int) ([]dto.EnrollmentActivity, error)
	TaskStatusCounts(ctx context.Context, teacherID int64) (dto.TaskStatusCounts, error)
	EnrollmentTrends(ctx context.Context, teacherID int64, courseID *int64, days int) ([]dto.TrendPoint, error)
	CompletionTrends(ctx context.Context, teacherID int64, courseID *int64, days int) ([]dto.TrendPoint, error)
	CoursePerformance(ctx context.Context, teacherID int64, courseID *int64) ([]dto.CoursePerformance, error)
}

type userExistence interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// TeacherStores bundles the persistence dependencies of TeacherService.
type TeacherStores struct {
	Courses teacherCourseStore
	Tasks   teacherTaskStore
	Views   teacherViewReader
	Users   userExistence
}

// TeacherService implements course management and teacher analytics.
type TeacherService struct {
	stores    TeacherStores
	exporter  *ExportService
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(stores TeacherStores, exporter *ExportService, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, ttl time.Duration) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = NewExportService(logger, nil, nil)
	}
	return &TeacherService{
		stores:    stores,
		exporter:  exporter,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		ttl:       ttl,
	}
}

// Dashboard returns the composite teacher view and whether it came from cache.
func (s *TeacherService) Dashboard(ctx context.Context, teacherID int64) (*dto.TeacherDashboard, bool, error) {
	key := dashboardKey(cacheKindTeacher, teacherID)
	var cached dto.TeacherDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	start := time.Now()
	view := &dto.TeacherDashboard{}
	var err error
	if view.Courses, err = s.stores.Views.DashboardCourses(ctx, teacherID); err != nil {
		return nil, false, s.internal(err, "failed to load courses")
	}
	if view.Stats, err = s.stores.Views.DashboardStats(ctx, teacherID); err != nil {
		return nil, false, s.internal(err, "failed to load statistics")
	}
	if view.RecentActivities, err = s.stores.Views.RecentEnrollments(ctx, teacherID, teacherRecentEnrollments); err != nil {
		return nil, false, s.internal(err, "failed to load recent enrollments")
	}
	if view.TaskStats, err = s.stores.Views.TaskStatusCounts(ctx, teacherID); err != nil {
		return nil, false, s.internal(err, "failed to load task statistics")
	}
	s.metrics.ObserveDashboardBuild("teacher", time.Since(start))

	if view.Courses == nil {
		view.Courses = []dto.TeacherCourseSummary{}
	}
	if view.RecentActivities == nil {
		view.RecentActivities = []dto.EnrollmentActivity{}
	}
	_ = s.cache.Set(ctx, key, view, s.ttl)
	return view, false, nil
}

// Analytics returns trend series and course performance over the trailing period.
func (s *TeacherService) Analytics(ctx context.Context, teacherID int64, courseID *int64, period int) (*dto.TeacherAnalytics, error) {
	period = clampInt(period, defaultWindowDays, 1, maxWindowDays)
	if courseID != nil {
		course, err := s.stores.Courses.FindByID(ctx, *courseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
			}
			return nil, s.internal(err, "failed to load course")
		}
		if course.TeacherID != teacherID {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
	}

	result := &dto.TeacherAnalytics{Period: period, CourseID: courseID}
	var err error
	if result.EnrollmentTrends, err = s.stores.Views.EnrollmentTrends(ctx, teacherID, courseID, period); err != nil {
		return nil, s.internal(err, "failed to load enrollment trends")
	}
	if result.CompletionTrends, err = s.stores.Views.CompletionTrends(ctx, teacherID, courseID, period); err != nil {
		return nil, s.internal(err, "failed to load completion trends")
	}
	if result.CoursePerformance, err = s.stores.Views.CoursePerformance(ctx, teacherID, courseID); err != nil {
		return nil, s.internal(err, "failed to load course performance")
	}
	if result.EnrollmentTrends == nil {
		result.EnrollmentTrends = []dto.TrendPoint{}
	}
	if result.CompletionTrends == nil {
		result.CompletionTrends = []dto.TrendPoint{}
	}
	if result.CoursePerformance == nil {
		result.CoursePerformance = []dto.CoursePerformance{}
	}
	return result, nil
}

// ListCourses returns the caller's courses with task analytics.
func (s *TeacherService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]dto.TeacherCourse, error) {
	courses, err := s.stores.Courses.ListByTeacher(ctx, filter)
	if err != nil {
		return nil, s.internal(err, "failed to list courses")
	}
	if courses == nil {
		courses = []dto.TeacherCourse{}
	}
	return courses, nil
}

// ListTasks returns tasks across the caller's courses.
func (s *TeacherService) ListTasks(ctx context.Context, filter models.TaskFilter) ([]dto.TeacherTask, error) {
	tasks, err := s.stores.Tasks.ListByTeacher(ctx, filter)
	if err != nil {
		return nil, s.internal(err, "failed to list tasks")
	}
	if tasks == nil {
		tasks = []dto.TeacherTask{}
	}
	return tasks, nil
}

// CreateCourse opens a new active course owned by the caller.
func (s *TeacherService) CreateCourse(ctx context.Context, teacherID int64, req models.CreateCourseRequest) (*models.Course, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err, "title and category are required")
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		TeacherID:   teacherID,
		Avatar:      req.Avatar,
		Status:      models.CourseStatusActive,
	}
	if err := s.stores.Courses.Create(ctx, course); err != nil {
		return nil, s.internal(err, "failed to create course")
	}

	s.metrics.RecordEvent("course_created")
	s.cache.InvalidateUser(ctx, teacherID)
	return course, nil
}

// UpdateCourse changes the supplied fields of a course the caller owns.
func (s *TeacherService) UpdateCourse(ctx context.Context, actor *models.JWTClaims, courseID int64, req models.UpdateCourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.ErrValidation.Wrap(err, "invalid course payload")
	}

	course, err := s.writableCourse(ctx, actor, courseID)
	if err != nil {
		return err
	}

	if err := s.stores.Courses.Update(ctx, courseID, req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return s.internal(err, "failed to update course")
	}

	s.cache.InvalidateUser(ctx, course.TeacherID)
	return nil
}

// CourseStudents returns the roster of a course the caller owns. Admins see every roster.
func (s *TeacherService) CourseStudents(ctx context.Context, actor *models.JWTClaims, courseID int64) (*models.Course, []dto.CourseStudent, error) {
	course, err := s.ownedCourse(ctx, actor, courseID)
	if err != nil {
		return nil, nil, err
	}
	students, err := s.stores.Courses.Students(ctx, courseID)
	if err != nil {
		return nil, nil, s.internal(err, "failed to load students")
	}
	if students == nil {
		students = []dto.CourseStudent{}
	}
	return course, students, nil
}

// ExportRoster renders the roster of an owned course as CSV or PDF.
func (s *TeacherService) ExportRoster(ctx context.Context, actor *models.JWTClaims, courseID int64, format ExportFormat) (*ExportFile, error) {
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	course, students, err := s.CourseStudents(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	file, err := s.exporter.Roster(course, students, format)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err, "failed to render roster")
	}
	return file, nil
}

// CreateTask assigns work to an existing user inside a course the caller owns.
func (s *TeacherService) CreateTask(ctx context.Context, actor *models.JWTClaims, req models.CreateTaskRequest) (*models.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err, taskValidationMessage(err))
	}

	if _, err := s.writableCourse(ctx, actor, req.CourseID); err != nil {
		return nil, err
	}

	exists, err := s.stores.Users.Exists(ctx, req.AssignedTo)
	if err != nil {
		return nil, s.internal(err, "failed to check assignee")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignee not found")
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		CourseID:    req.CourseID,
		AssignedTo:  req.AssignedTo,
		Priority:    req.Priority,
		Status:      models.TaskStatusPending,
	}
	if req.DueDate != "" {
		due, err := time.Parse(models.DateLayout, req.DueDate)
		if err != nil {
			return nil, appErrors.ErrValidation.Wrap(err, "due_date must use YYYY-MM-DD")
		}
		task.DueDate = &due
	}
	if err := s.stores.Tasks.Create(ctx, task); err != nil {
		return nil, s.internal(err, "failed to create task")
	}

	s.metrics.RecordEvent("task_created")
	s.cache.InvalidateUser(ctx, req.AssignedTo, actor.UserID)
	return task, nil
}

// GradeTask acknowledges a grade for a task in a course the caller owns. Grades are not stored.
func (s *TeacherService) GradeTask(ctx context.Context, actor *models.JWTClaims, taskID int64, req models.GradeTaskRequest) (*models.GradeTaskResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err, "grade is required")
	}

	ownerID, err := s.stores.Tasks.CourseOwner(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, s.internal(err, "failed to load task")
	}
	if !actor.Owns(ownerID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not own this task")
	}

	s.logger.Info("task graded", zap.Int64("task_id", taskID), zap.Int64("teacher_id", actor.UserID))
	return &models.GradeTaskResult{TaskID: taskID, Grade: req.Grade, Feedback: req.Feedback}, nil
}

func (s *TeacherService) loadCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	course, err := s.stores.Courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, s.internal(err, "failed to load course")
	}
	return course, nil
}

// ownedCourse hides courses the caller does not own behind NotFound.
func (s *TeacherService) ownedCourse(ctx context.Context, actor *models.JWTClaims, courseID int64) (*models.Course, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(course.TeacherID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course, nil
}

// writableCourse rejects writes to another teacher's course with Forbidden.
func (s *TeacherService) writableCourse(ctx context.Context, actor *models.JWTClaims, courseID int64) (*models.Course, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(course.TeacherID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not own this course")
	}
	return course, nil
}

func (s *TeacherService) internal(err error, message string) error {
	s.logger.Error(message, zap.Error(err))
	return appErrors.ErrInternal.Wrap(err, message)
}

func taskValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid task payload"
	}
	switch verrs[0].Field() {
	case "Title":
		return "title is required"
	case "CourseID":
		return "course_id is required"
	case "AssignedTo":
		return "assigned_to is required"
	case "Priority":
		return "priority must be one of low, medium, high"
	case "DueDate":
		return "due_date must use YYYY-MM-DD"
	}
	return "invalid task payload"
}
