package dataset

import (
	"strings"
)

// Table is a raw dataset: a header and string cells, one slice per row.
// Rows are padded to the header width and cells are trimmed.
type Table struct {
	Name    string
	Path    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a table, normalizing header names and row widths
func NewTable(name string, columns []string, rows [][]string) *Table {
	t := &Table{
		Name:    name,
		Columns: make([]string, len(columns)),
		Rows:    make([][]string, 0, len(rows)),
		index:   make(map[string]int, len(columns)),
	}

	for i, c := range columns {
		c = strings.TrimSpace(c)
		t.Columns[i] = c
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}

	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		cells := make([]string, len(columns))
		for i := 0; i < len(columns) && i < len(row); i++ {
			cells[i] = strings.TrimSpace(row[i])
		}
		t.Rows = append(t.Rows, cells)
	}

	return t
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Len returns the number of data rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether the header contains name
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// MissingColumns returns the required columns absent from the header, in the given order
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, c := range required {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Column returns every cell of a column, or nil when the column is absent
func (t *Table) Column(name string) []string {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Value returns a single cell. ok is false when the column is absent.
func (t *Table) Value(row int, column string) (string, bool) {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.Rows) {
		return "", false
	}
	return t.Rows[row][i], true
}

// IsMissing reports whether a cell counts as a missing value
func IsMissing(cell string) bool {
	switch strings.ToLower(cell) {
	case "", "nan", "na", "n/a", "null", "none":
		return true
	}
	return false
}
