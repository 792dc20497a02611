package services

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"maizeintel/internal/dataset"
	"maizeintel/internal/exporter"
	"maizeintel/internal/infrastructure"
	"maizeintel/internal/validation"
)

// ValidationService runs dataset validation batches and exports their findings
type ValidationService struct {
	validator *validation.Validator
	loader    *dataset.Loader
	tracer    trace.Tracer
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NewValidationService creates a validation service over loader
func NewValidationService(validator *validation.Validator, loader *dataset.Loader, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ValidationService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &ValidationService{
		validator: validator,
		loader:    loader,
		tracer:    tracer,
		metrics:   metrics,
		logger:    logger.With(slog.String("service", "validation")),
	}
}

// ValidateAll validates the raw production, price and storage datasets
func (s *ValidationService) ValidateAll(ctx context.Context) (map[string]*validation.Result, error) {
	return s.run(ctx, "validation.datasets", s.validator.ValidateAll)
}

// ValidateForecasts validates the forecast summaries and per-region series
func (s *ValidationService) ValidateForecasts(ctx context.Context) (map[string]*validation.Result, error) {
	return s.run(ctx, "validation.forecasts", s.validator.ValidateForecasts)
}

// Export validates the raw datasets, or the forecasts when forecasts is set,
// and writes one row per message to path
func (s *ValidationService) Export(ctx context.Context, path string, forecasts bool) (map[string]*validation.Result, error) {
	validate := s.ValidateAll
	if forecasts {
		validate = s.ValidateForecasts
	}

	results, err := validate(ctx)
	if err != nil {
		return nil, err
	}
	if err := exporter.ExportValidation(path, results, s.logger); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "validation report exported",
		slog.String("path", path),
		slog.Int("datasets", len(results)))
	return results, nil
}

func (s *ValidationService) run(ctx context.Context, spanName string, batch func(*dataset.Loader) map[string]*validation.Result) (map[string]*validation.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()

	results := batch(s.loader)
	if results == nil {
		err := fmt.Errorf("%s returned no results", spanName)
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	invalid := 0
	for _, name := range slices.Sorted(maps.Keys(results)) {
		r := results[name]
		infrastructure.RecordValidationMetrics(ctx, s.metrics, name, len(r.Errors), len(r.Warnings))
		if !r.IsValid() {
			invalid++
			s.logger.WarnContext(ctx, "dataset failed validation",
				slog.String("dataset", name),
				slog.Int("errors", len(r.Errors)),
				slog.Int("warnings", len(r.Warnings)))
		}
	}

	s.logger.InfoContext(ctx, "validation completed",
		slog.String("batch", spanName),
		slog.Int("datasets", len(results)),
		slog.Int("invalid", invalid))
	return results, nil
}
