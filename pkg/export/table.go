package export

import "fmt"

// Align controls horizontal placement of a column in rendered documents.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Column describes one table column.
type Column struct {
	Header string
	Align  Align
	// Weight sets the relative PDF column width. Zero counts as 1.
	Weight float64
}

// Table is the renderer-independent shape of an export.
type Table struct {
	Title    string
	Subtitle string
	Columns  []Column
	Rows     [][]string
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table requires at least one column")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}

func (t Table) headers() []string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = col.Header
	}
	return out
}
