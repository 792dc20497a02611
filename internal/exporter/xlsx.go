package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXWriter writes tabular rows into a single worksheet
type XLSXWriter struct {
	sheet  string
	logger *slog.Logger
}

// NewXLSXWriter creates a writer naming its worksheet sheet
func NewXLSXWriter(sheet string, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if sheet == "" {
		sheet = defaultSheet
	}
	return &XLSXWriter{
		sheet:  sheet,
		logger: logger.With(slog.String("component", "xlsx_writer")),
	}
}

// Write saves headers and records to path as an .xlsx workbook
func (w *XLSXWriter) Write(path string, headers []string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if w.sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, w.sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	if err := w.writeRow(f, 1, headers); err != nil {
		return err
	}
	for i, record := range records {
		if err := w.writeRow(f, i+2, record); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("wrote workbook",
		slog.String("file_path", path),
		slog.String("sheet", w.sheet),
		slog.Int("record_count", len(records)))
	return nil
}

func (w *XLSXWriter) writeRow(f *excelize.File, row int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("invalid cell at row %d: %w", row, err)
		}
		if err := f.SetCellValue(w.sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", cell, err)
		}
	}
	return nil
}
