package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered document ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

var rosterColumns = []export.Column{
	{Header: "Student ID", Align: export.AlignRight, Weight: 0.8},
	{Header: "Full Name", Weight: 2},
	{Header: "Email", Weight: 2.4},
	{Header: "Progress (%)", Align: export.AlignRight},
	{Header: "Status", Align: export.AlignCenter},
	{Header: "Enrolled At", Weight: 1.6},
}

// ExportService renders tabular course data to downloadable documents.
type ExportService struct {
	csv    tableRenderer
	pdf    tableRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(logger *zap.Logger, csv, pdf tableRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

// Roster renders the enrollment roster of a course.
func (s *ExportService) Roster(course *models.Course, students []dto.CourseStudent, format ExportFormat) (*ExportFile, error) {
	table := rosterTable(course, students, time.Now().UTC())

	file := &ExportFile{Filename: rosterFilename(course, format)}
	var err error
	switch format {
	case ExportFormatCSV:
		file.ContentType = "text/csv"
		file.Payload, err = s.csv.Render(table)
	case ExportFormatPDF:
		file.ContentType = "application/pdf"
		file.Payload, err = s.pdf.Render(table)
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		s.logger.Error("failed to render roster", zap.Int64("course_id", course.ID), zap.String("format", string(format)), zap.Error(err))
		return nil, err
	}
	return file, nil
}

func rosterTable(course *models.Course, students []dto.CourseStudent, generatedAt time.Time) export.Table {
	rows := make([][]string, 0, len(students))
	for _, st := range students {
		rows = append(rows, []string{
			strconv.FormatInt(st.ID, 10),
			st.FullName,
			st.Email,
			fmt.Sprintf("%.2f", st.Progress),
			st.Status,
			st.EnrolledAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Table{
		Title:    fmt.Sprintf("Roster: %s", course.Title),
		Subtitle: fmt.Sprintf("%s | %d students | generated %s", course.Category, len(students), generatedAt.Format("2006-01-02 15:04 MST")),
		Columns:  rosterColumns,
		Rows:     rows,
	}
}

func rosterFilename(course *models.Course, format ExportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("roster_%d_%s_%s.%s", course.ID, sanitizeFilename(course.Title), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
