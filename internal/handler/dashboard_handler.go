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

type dashboardService interface {
	Stats(ctx context.Context, userID int64) (*dto.DashboardStats, bool, error)
	Activity(ctx context.Context, userID int64, limit int) ([]dto.ActivityItem, error)
	Progress(ctx context.Context, userID int64, days int) ([]dto.ProgressPoint, error)
	Recommendations(ctx context.Context, userID int64) (*dto.Recommendations, bool, error)
	Route(claims *models.JWTClaims) dto.DashboardRoute
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats godoc
// @Summary Dashboard statistics
// @Description Course, task, group, learning and achievement aggregates for a user
// @Tags Dashboard
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/stats/{userId} [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	stats, hit, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, stats, middleware.ExtractMeta(c))
}

// Activity godoc
// @Summary Recent activity
// @Description Newest enrollments, completed tasks, group joins and achievements
// @Tags Dashboard
// @Produce json
// @Param userId path int true "User ID"
// @Param limit query int false "Maximum entries (1-50, default 10)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/activity/{userId} [get]
func (h *DashboardHandler) Activity(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	items, err := h.service.Activity(c.Request.Context(), userID, queryInt(c, "limit"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Progress godoc
// @Summary Progress time series
// @Tags Dashboard
// @Produce json
// @Param userId path int true "User ID"
// @Param days query int false "Trailing window in days (1-365, default 30)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/progress/{userId} [get]
func (h *DashboardHandler) Progress(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	points, err := h.service.Progress(c.Request.Context(), userID, queryInt(c, "days"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, points)
}

// Recommendations godoc
// @Summary Recommendations
// @Description Overdue tasks, courses to join and groups with free seats
// @Tags Dashboard
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} response.Envelope
// @Router /dashboard/recommendations/{userId} [get]
func (h *DashboardHandler) Recommendations(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	recs, hit, err := h.service.Recommendations(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, recs, middleware.ExtractMeta(c))
}

// Route godoc
// @Summary Dashboard route
// @Description Which dashboard the caller lands on
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} response.Envelope
// @Router /dashboard/{userId}/route [get]
func (h *DashboardHandler) Route(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.service.Route(claims))
}
