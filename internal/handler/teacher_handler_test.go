package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/internal/service"
	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
)

var teacherClaims = &models.JWTClaims{UserID: 50, Email: "teacher@innouni.test", Role: models.RoleTeacher}

type fakeTeacherSrv struct {
	err           error
	analyticsArgs struct {
		courseID *int64
		period   int
	}
	courseFilter models.CourseFilter
	taskFilter   models.TaskFilter
	exportFormat service.ExportFormat
	grade        models.GradeTaskRequest
}

func (f *fakeTeacherSrv) Dashboard(context.Context, int64) (*dto.TeacherDashboard, bool, error) {
	return &dto.TeacherDashboard{}, true, f.err
}

func (f *fakeTeacherSrv) Analytics(_ context.Context, _ int64, courseID *int64, period int) (*dto.TeacherAnalytics, error) {
	f.analyticsArgs.courseID = courseID
	f.analyticsArgs.period = period
	return &dto.TeacherAnalytics{Period: 30}, f.err
}

func (f *fakeTeacherSrv) ListCourses(_ context.Context, filter models.CourseFilter) ([]dto.TeacherCourse, error) {
	f.courseFilter = filter
	return []dto.TeacherCourse{}, f.err
}

func (f *fakeTeacherSrv) ListTasks(_ context.Context, filter models.TaskFilter) ([]dto.TeacherTask, error) {
	f.taskFilter = filter
	return []dto.TeacherTask{}, f.err
}

func (f *fakeTeacherSrv) CreateCourse(_ context.Context, teacherID int64, req models.CreateCourseRequest) (*models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Course{ID: 8, Title: req.Title, TeacherID: teacherID}, nil
}

func (f *fakeTeacherSrv) UpdateCourse(context.Context, *models.JWTClaims, int64, models.UpdateCourseRequest) error {
	return f.err
}

func (f *fakeTeacherSrv) CourseStudents(context.Context, *models.JWTClaims, int64) (*models.Course, []dto.CourseStudent, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return &models.Course{ID: 8}, []dto.CourseStudent{{ID: 7, FullName: "Ada"}}, nil
}

func (f *fakeTeacherSrv) ExportRoster(_ context.Context, _ *models.JWTClaims, _ int64, format service.ExportFormat) (*service.ExportFile, error) {
	f.exportFormat = format
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportFile{Filename: "roster.csv", ContentType: "text/csv", Payload: []byte("Student ID\n7\n")}, nil
}

func (f *fakeTeacherSrv) CreateTask(_ context.Context, _ *models.JWTClaims, req models.CreateTaskRequest) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Task{ID: 90, Title: req.Title, CourseID: req.CourseID}, nil
}

func (f *fakeTeacherSrv) GradeTask(_ context.Context, _ *models.JWTClaims, taskID int64, req models.GradeTaskRequest) (*models.GradeTaskResult, error) {
	f.grade = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.GradeTaskResult{TaskID: taskID, Grade: req.Grade, Feedback: req.Feedback}, nil
}

func TestTeacherHandlerAnalyticsQuery(t *testing.T) {
	srv := &fakeTeacherSrv{}
	handler := NewTeacherHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/teacher/analytics/50?courseId=8&period=90", teacherClaims, gin.Params{{Key: "userId", Value: "50"}})
	handler.Analytics(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, srv.analyticsArgs.courseID) {
		assert.Equal(t, int64(8), *srv.analyticsArgs.courseID)
	}
	assert.Equal(t, 90, srv.analyticsArgs.period)

	c, rec = newTestContext(http.MethodGet, "/teacher/analytics/50?courseId=x", teacherClaims, gin.Params{{Key: "userId", Value: "50"}})
	handler.Analytics(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTeacherHandlerListFilters(t *testing.T) {
	srv := &fakeTeacherSrv{}
	handler := NewTeacherHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/teacher/courses?category=Science&status=active", teacherClaims, nil)
	handler.ListCourses(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CourseFilter{TeacherID: 50, Category: "Science", Status: models.CourseStatusActive}, srv.courseFilter)

	c, rec = newTestContext(http.MethodGet, "/teacher/tasks?status=pending&courseId=8", teacherClaims, nil)
	handler.ListTasks(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TaskFilter{TeacherID: 50, Status: models.TaskStatusPending, CourseID: 8}, srv.taskFilter)
}

func TestTeacherHandlerCreateCourseAndTask(t *testing.T) {
	handler := NewTeacherHandler(&fakeTeacherSrv{})

	c, rec := newTestContext(http.MethodPost, "/teacher/courses", teacherClaims, nil)
	withJSONBody(c, http.MethodPost, "/teacher/courses", `{"title":"Algebra","category":"Math"}`)
	handler.CreateCourse(c)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(8), decodeEnvelope(t, rec).Data["id"])

	c, rec = newTestContext(http.MethodPost, "/teacher/tasks", teacherClaims, nil)
	withJSONBody(c, http.MethodPost, "/teacher/tasks", `{"title":"Worksheet","course_id":8,"assigned_to":7,"due_date":"2026-11-01"}`)
	handler.CreateTask(c)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(90), decodeEnvelope(t, rec).Data["id"])
}

func TestTeacherHandlerUpdateCourseForbidden(t *testing.T) {
	handler := NewTeacherHandler(&fakeTeacherSrv{err: appErrors.Clone(appErrors.ErrForbidden, "you do not own this course")})

	c, rec := newTestContext(http.MethodPut, "/teacher/courses/8", teacherClaims, gin.Params{{Key: "courseId", Value: "8"}})
	withJSONBody(c, http.MethodPut, "/teacher/courses/8", `{"status":"inactive"}`)
	handler.UpdateCourse(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeEnvelope(t, rec).Error.Code)
}

func TestTeacherHandlerCourseStudentsNotFound(t *testing.T) {
	handler := NewTeacherHandler(&fakeTeacherSrv{err: appErrors.Clone(appErrors.ErrNotFound, "course not found")})

	c, rec := newTestContext(http.MethodGet, "/teacher/courses/8/students", teacherClaims, gin.Params{{Key: "courseId", Value: "8"}})
	handler.CourseStudents(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeacherHandlerExportRoster(t *testing.T) {
	srv := &fakeTeacherSrv{}
	handler := NewTeacherHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/teacher/courses/8/students/export?format=CSV", teacherClaims, gin.Params{{Key: "courseId", Value: "8"}})
	handler.ExportRoster(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ExportFormatCSV, srv.exportFormat)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "roster.csv")
	assert.Equal(t, "Student ID\n7\n", rec.Body.String())
}

func TestTeacherHandlerGradeTaskEcho(t *testing.T) {
	srv := &fakeTeacherSrv{}
	handler := NewTeacherHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/teacher/tasks/90/grade", teacherClaims, gin.Params{{Key: "taskId", Value: "90"}})
	withJSONBody(c, http.MethodPost, "/teacher/tasks/90/grade", `{"grade":"A","feedback":"Great work"}`)
	handler.GradeTask(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	result := decodeEnvelope(t, rec).Data["result"].(map[string]interface{})
	assert.Equal(t, float64(90), result["task_id"])
	assert.Equal(t, "A", result["grade"])
	assert.Equal(t, "Great work", srv.grade.Feedback)
}
