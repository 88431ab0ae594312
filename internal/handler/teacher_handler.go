package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/middleware"
	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/internal/service"
	"github.com/noah-isme/innouni-api/pkg/response"
)

type teacherService interface {
	Dashboard(ctx context.Context, teacherID int64) (*dto.TeacherDashboard, bool, error)
	Analytics(ctx context.Context, teacherID int64, courseID *int64, period int) (*dto.TeacherAnalytics, error)
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]dto.TeacherCourse, error)
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]dto.TeacherTask, error)
	CreateCourse(ctx context.Context, teacherID int64, req models.CreateCourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, actor *models.JWTClaims, courseID int64, req models.UpdateCourseRequest) error
	CourseStudents(ctx context.Context, actor *models.JWTClaims, courseID int64) (*models.Course, []dto.CourseStudent, error)
	ExportRoster(ctx context.Context, actor *models.JWTClaims, courseID int64, format service.ExportFormat) (*service.ExportFile, error)
	CreateTask(ctx context.Context, actor *models.JWTClaims, req models.CreateTaskRequest) (*models.Task, error)
	GradeTask(ctx context.Context, actor *models.JWTClaims, taskID int64, req models.GradeTaskRequest) (*models.GradeTaskResult, error)
}

// TeacherHandler exposes teacher dashboards, course management and task endpoints.
type TeacherHandler struct {
	service teacherService
}

// NewTeacherHandler constructs a teacher handler.
func NewTeacherHandler(svc teacherService) *TeacherHandler {
	return &TeacherHandler{service: svc}
}

// Dashboard godoc
// @Summary Teacher dashboard
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} response.Envelope
// @Router /teacher/dashboard/{userId} [get]
func (h *TeacherHandler) Dashboard(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	view, hit, err := h.service.Dashboard(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, view, middleware.ExtractMeta(c))
}

// Analytics godoc
// @Summary Teacher analytics
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param courseId query int false "Restrict to one owned course"
// @Param period query int false "Trailing window in days (1-365, default 30)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/analytics/{userId} [get]
func (h *TeacherHandler) Analytics(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	courseID, ok := queryID(c, "courseId")
	if !ok {
		return
	}
	analytics, err := h.service.Analytics(c.Request.Context(), userID, courseID, queryInt(c, "period"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analytics)
}

// ListCourses godoc
// @Summary List the caller's courses
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Param category query string false "Category filter"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /teacher/courses [get]
func (h *TeacherHandler) ListCourses(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	filter := models.CourseFilter{
		TeacherID: claims.UserID,
		Category:  strings.TrimSpace(c.Query("category")),
		Status:    models.CourseStatus(strings.TrimSpace(c.Query("status"))),
	}
	courses, err := h.service.ListCourses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags Teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/courses [post]
func (h *TeacherHandler) CreateCourse(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var req models.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid course payload"))
		return
	}
	course, err := h.service.CreateCourse(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, course.ID)
	response.Created(c, dto.CreatedID{Message: "Course created successfully", ID: course.ID})
}

// UpdateCourse godoc
// @Summary Update an owned course
// @Tags Teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param payload body models.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /teacher/courses/{courseId} [put]
func (h *TeacherHandler) UpdateCourse(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	var req models.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid course payload"))
		return
	}
	if err := h.service.UpdateCourse(c.Request.Context(), claims, courseID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Course updated successfully")
}

// CourseStudents godoc
// @Summary Students enrolled in an owned course
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/courses/{courseId}/students [get]
func (h *TeacherHandler) CourseStudents(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	_, students, err := h.service.CourseStudents(c.Request.Context(), claims, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// ExportRoster godoc
// @Summary Export a course roster
// @Tags Teacher
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /teacher/courses/{courseId}/students/export [get]
func (h *TeacherHandler) ExportRoster(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	format := service.ExportFormat(strings.ToLower(strings.TrimSpace(c.Query("format"))))
	file, err := h.service.ExportRoster(c.Request.Context(), claims, courseID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}

// ListTasks godoc
// @Summary List tasks across the caller's courses
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param courseId query int false "Course filter"
// @Success 200 {object} response.Envelope
// @Router /teacher/tasks [get]
func (h *TeacherHandler) ListTasks(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	courseID, ok := queryID(c, "courseId")
	if !ok {
		return
	}
	filter := models.TaskFilter{
		TeacherID: claims.UserID,
		Status:    models.TaskStatus(strings.TrimSpace(c.Query("status"))),
	}
	if courseID != nil {
		filter.CourseID = *courseID
	}
	tasks, err := h.service.ListTasks(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks)
}

// CreateTask godoc
// @Summary Assign a task
// @Tags Teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/tasks [post]
func (h *TeacherHandler) CreateTask(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid task payload"))
		return
	}
	task, err := h.service.CreateTask(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, task.ID)
	response.Created(c, dto.CreatedID{Message: "Task created successfully", ID: task.ID})
}

// GradeTask godoc
// @Summary Grade a task
// @Description The grade is acknowledged and echoed back; it is not stored.
// @Tags Teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskId path int true "Task ID"
// @Param payload body models.GradeTaskRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /teacher/tasks/{taskId}/grade [post]
func (h *TeacherHandler) GradeTask(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}
	var req models.GradeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid grade payload"))
		return
	}
	result, err := h.service.GradeTask(c.Request.Context(), claims, taskID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Task graded successfully", "result": result})
}
