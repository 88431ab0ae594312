package export

import (
	"bytes"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterTable() Table {
	return Table{
		Title:    "Course roster",
		Subtitle: "Generated 2024-03-01",
		Columns: []Column{
			{Header: "Name", Weight: 2},
			{Header: "Email", Weight: 2},
			{Header: "Progress", Align: AlignRight},
		},
		Rows: [][]string{
			{"Ada", "ada@example.com", "75.00"},
			{"Linus, Jr.", "linus@example.com", "100.00"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(rosterTable())
	require.NoError(t, err)
	assert.Equal(t, "Name,Email,Progress\nAda,ada@example.com,75.00\n\"Linus, Jr.\",linus@example.com,100.00\n", string(out))
}

func TestCSVExporterBOM(t *testing.T) {
	out, err := (&CSVExporter{BOM: true}).Render(rosterTable())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("\xef\xbb\xbfName,")))
}

func TestTableValidation(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{})
	require.Error(t, err)

	table := rosterTable()
	table.Rows = append(table.Rows, []string{"short"})
	_, err = NewPDFExporter().Render(table)
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	table := rosterTable()
	for i := 0; i < 80; i++ {
		table.Rows = append(table.Rows, []string{"Student", "student@example.com", "10.00"})
	}
	out, err := NewPDFExporter().Render(table)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidthsFollowWeights(t *testing.T) {
	widths := columnWidths(rosterTable().Columns, 100)
	assert.InDelta(t, 40, widths[0], 0.001)
	assert.InDelta(t, 40, widths[1], 0.001)
	assert.InDelta(t, 20, widths[2], 0.001)
}

func TestFitTextTruncates(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 9)
	assert.Equal(t, "short", fitText(pdf, "short", 50))
	long := fitText(pdf, "a very long cell value that cannot fit in a narrow column", 20)
	assert.True(t, len(long) < 30)
	assert.Contains(t, long, "...")
}
