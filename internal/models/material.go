package models

import "time"

// MaterialCategory groups library items.
type MaterialCategory string

const (
	MaterialDocuments MaterialCategory = "Documents"
	MaterialVideos    MaterialCategory = "Videos"
	MaterialImages    MaterialCategory = "Images"
	MaterialAudio     MaterialCategory = "Audio"
)

// MaterialCategories lists library categories in display order.
var MaterialCategories = []MaterialCategory{MaterialDocuments, MaterialVideos, MaterialImages, MaterialAudio}

// CourseMaterial is an uploaded file attached to a course.
type CourseMaterial struct {
	ID          int64            `db:"id" json:"id"`
	CourseID    int64            `db:"course_id" json:"course_id"`
	UploadedBy  int64            `db:"uploaded_by" json:"uploaded_by"`
	Title       string           `db:"title" json:"title"`
	Category    MaterialCategory `db:"category" json:"category"`
	FileName    string           `db:"file_name" json:"file_name"`
	StoragePath string           `db:"storage_path" json:"-"`
	MimeType    string           `db:"mime_type" json:"mime_type"`
	SizeBytes   int64            `db:"size_bytes" json:"size_bytes"`
	Checksum    string           `db:"checksum" json:"checksum"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	CourseTitle string           `db:"course_title" json:"course_title,omitempty"`
}

// UploadMaterialRequest carries multipart form fields for an upload.
type UploadMaterialRequest struct {
	Title    string           `form:"title" validate:"required,max=255"`
	Category MaterialCategory `form:"category" validate:"required,oneof=Documents Videos Images Audio"`
}

// MaterialLink pairs material metadata with a signed download URL.
type MaterialLink struct {
	CourseMaterial
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
