package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// utf8BOM lets Excel detect UTF-8 in exported CSV files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TableWriter saves a header row and records to a file
type TableWriter interface {
	Write(path string, headers []string, records [][]string) error
}

var (
	_ TableWriter = (*CSVWriter)(nil)
	_ TableWriter = (*XLSXWriter)(nil)
)

// WriterFor picks the writer matching the extension of path: a workbook for
// .xlsx, CSV for anything else
func WriterFor(path, sheet string, logger *slog.Logger) TableWriter {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return NewXLSXWriter(sheet, logger)
	}
	return NewCSVWriter(logger)
}

// CSVWriter writes UTF-8 CSV files with a byte order mark
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// Write replaces path with headers followed by records. Empty headers are skipped.
func (w *CSVWriter) Write(path string, headers []string, records [][]string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	if _, err := file.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := cw.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	w.logger.Info("wrote CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", len(records)))
	return nil
}
