// Package exporter writes validation reports to disk.
//
// CSVWriter is the core writer with support for headers, streaming and a
// UTF-8 BOM for Excel compatibility. XLSXWriter writes the same rows into a
// single worksheet. ExportValidation picks the writer from the file extension:
//
//	results := validator.ValidateAll(loader)
//	err := exporter.ExportValidation("reports/validation.xlsx", results, logger)
package exporter
