package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innouni-api/internal/models"
)

const materialColumns = `m.id, m.course_id, m.uploaded_by, m.title, m.category, m.file_name, m.storage_path,
	m.mime_type, m.size_bytes, m.checksum, m.created_at, c.title AS course_title`

// MaterialRepository persists course material metadata. File bytes live in pkg/storage.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository constructs the repository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create stores metadata for an uploaded file.
func (r *MaterialRepository) Create(ctx context.Context, m *models.CourseMaterial) error {
	const query = `INSERT INTO course_materials
	(course_id, uploaded_by, title, category, file_name, storage_path, mime_type, size_bytes, checksum)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, m.CourseID, m.UploadedBy, m.Title, m.Category, m.FileName, m.StoragePath, m.MimeType, m.SizeBytes, m.Checksum)
	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("create course material: %w", err)
	}
	return nil
}

// FindByID retrieves one material with its course title.
func (r *MaterialRepository) FindByID(ctx context.Context, id int64) (*models.CourseMaterial, error) {
	query := `SELECT ` + materialColumns + ` FROM course_materials m JOIN courses c ON c.id = m.course_id WHERE m.id = $1`
	var m models.CourseMaterial
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course material: %w", err)
	}
	return &m, nil
}

// ListByCourse returns a course's materials, newest first.
func (r *MaterialRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.CourseMaterial, error) {
	query := `SELECT ` + materialColumns + ` FROM course_materials m JOIN courses c ON c.id = m.course_id WHERE m.course_id = $1 ORDER BY m.created_at DESC`
	var items []models.CourseMaterial
	if err := r.db.SelectContext(ctx, &items, query, courseID); err != nil {
		return nil, fmt.Errorf("list course materials: %w", err)
	}
	return items, nil
}

// ListByUploader returns everything a teacher has uploaded, optionally narrowed to one category.
func (r *MaterialRepository) ListByUploader(ctx context.Context, userID int64, category models.MaterialCategory) ([]models.CourseMaterial, error) {
	query := `SELECT ` + materialColumns + ` FROM course_materials m JOIN courses c ON c.id = m.course_id WHERE m.uploaded_by = $1`
	args := []interface{}{userID}
	if category != "" {
		query += ` AND m.category = $2`
		args = append(args, category)
	}
	query += ` ORDER BY m.created_at DESC`

	var items []models.CourseMaterial
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list uploaded materials: %w", err)
	}
	return items, nil
}
