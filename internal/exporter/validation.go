package exporter

import (
	"fmt"
	"log/slog"
	"sort"

	"maizeintel/internal/validation"
)

// Message levels of an exported validation row
const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// ValidationHeaders are the columns of an exported validation report
var ValidationHeaders = []string{"dataset", "level", "message"}

// ValidationRows flattens results into (dataset, level, message) rows, datasets
// in name order, then errors, warnings and info as recorded
func ValidationRows(results map[string]*validation.Result) [][]string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var rows [][]string
	for _, name := range names {
		r := results[name]
		if r == nil {
			continue
		}
		for _, msg := range r.Errors {
			rows = append(rows, []string{name, LevelError, msg})
		}
		for _, msg := range r.Warnings {
			rows = append(rows, []string{name, LevelWarning, msg})
		}
		for _, msg := range r.Info {
			rows = append(rows, []string{name, LevelInfo, msg})
		}
	}
	return rows
}

// ExportValidation writes results to path. The extension selects the format:
// .xlsx for a workbook, anything else for CSV.
func ExportValidation(path string, results map[string]*validation.Result, logger *slog.Logger) error {
	w := WriterFor(path, "validation", logger)
	if err := w.Write(path, ValidationHeaders, ValidationRows(results)); err != nil {
		return fmt.Errorf("export validation report: %w", err)
	}
	return nil
}
