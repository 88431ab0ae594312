package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/middleware"
	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/pkg/response"
)

type studentService interface {
	Dashboard(ctx context.Context, userID int64) (*dto.StudentDashboard, bool, error)
	Enroll(ctx context.Context, userID, courseID int64) error
	UpdateProgress(ctx context.Context, userID, courseID int64, req models.UpdateProgressRequest) (models.EnrollmentStatus, error)
	CreateGroup(ctx context.Context, userID int64, req models.CreateGroupRequest) (*models.Group, error)
	JoinGroup(ctx context.Context, userID, groupID int64) error
	LeaveGroup(ctx context.Context, userID, groupID int64) error
	CompleteTask(ctx context.Context, userID, taskID int64) error
}

// StudentHandler exposes the student dashboard and student write endpoints.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(service studentService) *StudentHandler {
	return &StudentHandler{service: service}
}

// Dashboard godoc
// @Summary Student dashboard
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /student/dashboard/{userId} [get]
func (h *StudentHandler) Dashboard(c *gin.Context) {
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

// Enroll godoc
// @Summary Enroll in a course
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/courses/{courseId}/enroll [post]
func (h *StudentHandler) Enroll(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	if err := h.service.Enroll(c.Request.Context(), claims.UserID, courseID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "Successfully enrolled in course")
}

// UpdateProgress godoc
// @Summary Update course progress
// @Tags Student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param payload body models.UpdateProgressRequest true "Progress between 0 and 100"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /student/courses/{courseId}/progress [put]
func (h *StudentHandler) UpdateProgress(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	var req models.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "progress must be a number between 0 and 100"))
		return
	}
	status, err := h.service.UpdateProgress(c.Request.Context(), claims.UserID, courseID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"message":  "Progress updated successfully",
		"progress": *req.Progress,
		"status":   status,
	})
}

// CreateGroup godoc
// @Summary Create a study group
// @Tags Student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /student/groups [post]
func (h *StudentHandler) CreateGroup(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid group payload"))
		return
	}
	group, err := h.service.CreateGroup(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.CreatedID{Message: "Group created successfully", ID: group.ID})
}

// JoinGroup godoc
// @Summary Join a study group
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/groups/{groupId}/join [post]
func (h *StudentHandler) JoinGroup(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "groupId")
	if !ok {
		return
	}
	if err := h.service.JoinGroup(c.Request.Context(), claims.UserID, groupID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Successfully joined group")
}

// LeaveGroup godoc
// @Summary Leave a study group
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /student/groups/{groupId}/leave [post]
func (h *StudentHandler) LeaveGroup(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "groupId")
	if !ok {
		return
	}
	if err := h.service.LeaveGroup(c.Request.Context(), claims.UserID, groupID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Successfully left group")
}

// CompleteTask godoc
// @Summary Mark an assigned task completed
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Param taskId path int true "Task ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/tasks/{taskId}/complete [put]
func (h *StudentHandler) CompleteTask(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}
	if err := h.service.CompleteTask(c.Request.Context(), claims.UserID, taskID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Task marked as completed")
}
