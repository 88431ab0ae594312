package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/middleware"
	"github.com/noah-isme/innouni-api/internal/models"
	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
	"github.com/noah-isme/innouni-api/pkg/response"
)

// multipart headers and form fields ride on top of the file itself
const multipartOverhead = 1 << 20

type materialService interface {
	MaxFileSize() int64
	Upload(ctx context.Context, actor *models.JWTClaims, courseID int64, req models.UploadMaterialRequest, filename string, body io.Reader) (*models.CourseMaterial, error)
	Library(ctx context.Context, userID int64, category models.MaterialCategory) (*dto.LibraryView, error)
	CourseMaterials(ctx context.Context, actor *models.JWTClaims, courseID int64) ([]models.MaterialLink, error)
	Download(ctx context.Context, materialID int64, token string) (*models.CourseMaterial, *os.File, error)
}

// MaterialHandler exposes course material upload, listing and signed downloads.
type MaterialHandler struct {
	service materialService
}

// NewMaterialHandler constructs a material handler.
func NewMaterialHandler(service materialService) *MaterialHandler {
	return &MaterialHandler{service: service}
}

// Upload godoc
// @Summary Upload course material
// @Tags Materials
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param title formData string true "Title"
// @Param category formData string true "Documents, Videos, Images or Audio"
// @Param file formData file true "Material file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /teacher/courses/{courseId}/materials [post]
func (h *MaterialHandler) Upload(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxFileSize()+multipartOverhead)

	var req models.UploadMaterialRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, uploadBindError(err, "invalid material payload"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, uploadBindError(err, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.ErrInternal.Wrap(err, "failed to open file"))
		return
	}
	defer src.Close()

	material, err := h.service.Upload(c.Request.Context(), claims, courseID, req, fileHeader.Filename, src)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, material.ID)
	response.Created(c, material)
}

// Library godoc
// @Summary Caller's material library
// @Tags Materials
// @Produce json
// @Security BearerAuth
// @Param category query string false "Category filter"
// @Success 200 {object} response.Envelope
// @Router /teacher/library [get]
func (h *MaterialHandler) Library(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	category := models.MaterialCategory(strings.TrimSpace(c.Query("category")))
	view, err := h.service.Library(c.Request.Context(), claims.UserID, category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// CourseMaterials godoc
// @Summary Materials of a course with signed download links
// @Tags Materials
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses/{courseId}/materials [get]
func (h *MaterialHandler) CourseMaterials(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	links, err := h.service.CourseMaterials(c.Request.Context(), claims, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links)
}

// Download godoc
// @Summary Download a material through a signed link
// @Tags Materials
// @Produce octet-stream
// @Param materialId path int true "Material ID"
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /materials/{materialId}/download [get]
func (h *MaterialHandler) Download(c *gin.Context) {
	materialID, ok := pathID(c, "materialId")
	if !ok {
		return
	}
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	material, file, err := h.service.Download(c.Request.Context(), materialID, token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", material.FileName))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, material.SizeBytes, material.MimeType, file, nil)
}

func uploadBindError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.ErrValidation.Wrap(err, "file exceeds maximum size")
	}
	return bindError(err, message)
}
