package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/innouni-api/internal/dto"
	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/pkg/export"
)

type failingPDF struct{}

func (failingPDF) Render(export.Table) ([]byte, error) {
	return nil, errors.New("font missing")
}

func rosterFixture() (*models.Course, []dto.CourseStudent) {
	course := &models.Course{ID: 12, Title: "Go / Basics"}
	students := []dto.CourseStudent{
		{ID: 7, FullName: "Ada Lovelace", Email: "ada@example.com", Progress: 42.5, Status: "active", EnrolledAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)},
		{ID: 8, FullName: "Alan Turing", Email: "alan@example.com", Progress: 100, Status: "completed", EnrolledAt: time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)},
	}
	return course, students
}

func TestExportServiceRosterCSV(t *testing.T) {
	svc := NewExportService(nil, nil, nil)
	course, students := rosterFixture()

	file, err := svc.Roster(course, students, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasPrefix(file.Filename, "roster_12_Go_-_Basics_"))
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(file.Payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student ID,Full Name,Email,Progress (%),Status,Enrolled At", lines[0])
	assert.Equal(t, "7,Ada Lovelace,ada@example.com,42.50,active,2024-03-01T08:00:00Z", lines[1])
}

func TestExportServiceRosterPDF(t *testing.T) {
	svc := NewExportService(nil, nil, nil)
	course, students := rosterFixture()

	file, err := svc.Roster(course, students, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Payload, []byte("%PDF")))
}

func TestExportServiceRosterErrors(t *testing.T) {
	course, students := rosterFixture()

	_, err := NewExportService(nil, nil, nil).Roster(course, students, ExportFormat("xlsx"))
	require.Error(t, err)

	_, err = NewExportService(nil, nil, failingPDF{}).Roster(course, students, ExportFormatPDF)
	require.Error(t, err)
}

func TestRosterTableSubtitle(t *testing.T) {
	course, students := rosterFixture()
	course.Category = "Programming"

	table := rosterTable(course, students, time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC))
	assert.Equal(t, "Roster: Go / Basics", table.Title)
	assert.Equal(t, "Programming | 2 students | generated 2024-03-05 09:30 UTC", table.Subtitle)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"8", "Alan Turing", "alan@example.com", "100.00", "completed", "2024-03-02T08:00:00Z"}, table.Rows[1])
}
