package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/models"
	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
	"github.com/noah-isme/innouni-api/pkg/storage"
)

const sniffLength = 512

type materialStore interface {
	Create(ctx context.Context, m *models.CourseMaterial) error
	FindByID(ctx context.Context, id int64) (*models.CourseMaterial, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.CourseMaterial, error)
	ListByUploader(ctx context.Context, userID int64, category models.MaterialCategory) ([]models.CourseMaterial, error)
}

type materialFiles interface {
	Put(name string, r io.Reader, limit int64) (storage.Object, error)
	Open(name string) (*os.File, error)
	Remove(name string) error
}

type enrollmentChecker interface {
	IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error)
}

// MaterialConfig tunes upload validation and download links.
type MaterialConfig struct {
	APIPrefix    string
	MaxFileSize  int64
	AllowedMIMEs []string
}

// MaterialService stores course files and hands out signed download links.
type MaterialService struct {
	materials   materialStore
	courses     courseReader
	enrollments enrollmentChecker
	files       materialFiles
	signer      *storage.DownloadSigner
	cfg         MaterialConfig
	allowed     map[string]bool
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
}

// NewMaterialService constructs the service.
func NewMaterialService(materials materialStore, courses courseReader, enrollments enrollmentChecker, files materialFiles, signer *storage.DownloadSigner, cfg MaterialConfig, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *MaterialService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 20 << 20
	}
	allowed := make(map[string]bool, len(cfg.AllowedMIMEs))
	for _, mime := range cfg.AllowedMIMEs {
		allowed[strings.ToLower(strings.TrimSpace(mime))] = true
	}
	return &MaterialService{
		materials:   materials,
		courses:     courses,
		enrollments: enrollments,
		files:       files,
		signer:      signer,
		cfg:         cfg,
		allowed:     allowed,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
	}
}

// MaxFileSize reports the upload limit in bytes.
func (s *MaterialService) MaxFileSize() int64 {
	return s.cfg.MaxFileSize
}

// Upload validates and stores a file for a course the caller owns.
func (s *MaterialService) Upload(ctx context.Context, actor *models.JWTClaims, courseID int64, req models.UploadMaterialRequest, filename string, body io.Reader) (*models.CourseMaterial, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err, "title and a valid category are required")
	}

	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(course.TeacherID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not own this course")
	}

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, s.internal(err, "failed to read upload")
	}
	head = head[:n]
	if n == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	mime := detectMIME(head)
	if len(s.allowed) > 0 && !s.allowed[mime] {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file type %s is not allowed", mime))
	}

	original := filepath.Base(filename)
	storedName := fmt.Sprintf("courses/%d/%s_%s", courseID, uuid.NewString(), sanitizeFilename(original))
	obj, err := s.files.Put(storedName, io.MultiReader(bytes.NewReader(head), body), s.cfg.MaxFileSize)
	if errors.Is(err, storage.ErrTooLarge) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxFileSize))
	}
	if err != nil {
		return nil, s.internal(err, "failed to store file")
	}

	material := &models.CourseMaterial{
		CourseID:    courseID,
		UploadedBy:  actor.UserID,
		Title:       req.Title,
		Category:    req.Category,
		FileName:    original,
		StoragePath: obj.Name,
		MimeType:    mime,
		SizeBytes:   obj.Size,
		Checksum:    obj.Checksum,
		CourseTitle: course.Title,
	}
	if err := s.materials.Create(ctx, material); err != nil {
		s.discard(obj.Name)
		return nil, s.internal(err, "failed to save material")
	}

	s.metrics.RecordEvent("material_uploaded")
	s.logger.Info("material uploaded", zap.Int64("material_id", material.ID), zap.Int64("course_id", courseID), zap.Int64("size", material.SizeBytes))
	return material, nil
}

// Library lists the caller's uploads with per-category counts. Counts ignore the filter.
func (s *MaterialService) Library(ctx context.Context, userID int64, category models.MaterialCategory) (*dto.LibraryView, error) {
	items, err := s.materials.ListByUploader(ctx, userID, "")
	if err != nil {
		return nil, s.internal(err, "failed to load library")
	}

	counts := make(map[models.MaterialCategory]int, len(models.MaterialCategories))
	filtered := make([]models.CourseMaterial, 0, len(items))
	for _, item := range items {
		counts[item.Category]++
		if category == "" || item.Category == category {
			filtered = append(filtered, item)
		}
	}

	view := &dto.LibraryView{Items: filtered, Categories: make([]dto.LibraryCategory, 0, len(models.MaterialCategories))}
	for _, c := range models.MaterialCategories {
		view.Categories = append(view.Categories, dto.LibraryCategory{Name: string(c), Count: counts[c]})
	}
	return view, nil
}

// CourseMaterials returns signed download links for a course. The owner, admins and enrolled students may read.
func (s *MaterialService) CourseMaterials(ctx context.Context, actor *models.JWTClaims, courseID int64) ([]models.MaterialLink, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(course.TeacherID) {
		enrolled, err := s.enrollments.IsEnrolled(ctx, courseID, actor.UserID)
		if err != nil {
			return nil, s.internal(err, "failed to check enrollment")
		}
		if !enrolled {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not enrolled in this course")
		}
	}

	items, err := s.materials.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, s.internal(err, "failed to load materials")
	}
	links := make([]models.MaterialLink, 0, len(items))
	for _, item := range items {
		token, expiresAt, err := s.signer.Sign(item.ID, item.StoragePath)
		if err != nil {
			return nil, s.internal(err, "failed to sign download link")
		}
		links = append(links, models.MaterialLink{
			CourseMaterial: item,
			DownloadURL:    s.downloadURL(item.ID, token),
			ExpiresAt:      expiresAt,
		})
	}
	return links, nil
}

// Download verifies a signed token and opens the stored file. The caller closes the file.
func (s *MaterialService) Download(ctx context.Context, materialID int64, token string) (*models.CourseMaterial, *os.File, error) {
	claims, err := s.signer.Verify(token)
	if err != nil || claims.MaterialID != materialID {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}

	material, err := s.materials.FindByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, nil, s.internal(err, "failed to load material")
	}
	if !claims.Covers(material.StoragePath) {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}

	file, err := s.files.Open(material.StoragePath)
	if err != nil {
		return nil, nil, s.internal(err, "failed to open material")
	}
	return material, file, nil
}

func (s *MaterialService) downloadURL(materialID int64, token string) string {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api"
	}
	return fmt.Sprintf("%s/materials/%d/download?token=%s", prefix, materialID, url.QueryEscape(token))
}

func (s *MaterialService) loadCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, s.internal(err, "failed to load course")
	}
	return course, nil
}

func (s *MaterialService) discard(name string) {
	if err := s.files.Remove(name); err != nil {
		s.logger.Warn("failed to remove stored file", zap.String("path", name), zap.Error(err))
	}
}

func (s *MaterialService) internal(err error, message string) error {
	s.logger.Error(message, zap.Error(err))
	return appErrors.ErrInternal.Wrap(err, message)
}

// detectMIME returns the sniffed media type without parameters.
func detectMIME(head []byte) string {
	mime := http.DetectContentType(head)
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}
