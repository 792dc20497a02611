package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"maizeintel/internal/analytics"
	apperrors "maizeintel/internal/errors"
	"maizeintel/internal/infrastructure"
	api "maizeintel/pkg/contracts/api/v1"
)

const tracerName = "maizeintel/services"

// ReportParams carries the optional filters of every report.
// Each report reads only the fields it understands.
type ReportParams struct {
	Period    string
	Region    string
	Market    string
	Grade     string
	Warehouse string
	Crop      string
}

// Dashboard bundles all reports generated for one request
type Dashboard struct {
	RunID               string                         `json:"run_id"`
	NationalSummary     *analytics.NationalSummary     `json:"national_summary"`
	ProductionSummary   *analytics.ProductionSummary   `json:"production_summary"`
	PriceAnalysis       *analytics.PriceAnalysis       `json:"price_analysis"`
	StorageStatus       *analytics.StorageStatus       `json:"storage_status"`
	SeasonalPattern     *analytics.SeasonalPattern     `json:"seasonal_pattern"`
	ForecastAccuracy    *analytics.ForecastAccuracy    `json:"forecast_accuracy"`
	SupplyDemandBalance *analytics.SupplyDemandBalance `json:"supply_demand_balance"`
	MarketOpportunities *analytics.MarketOpportunities `json:"market_opportunities"`
}

// AnalyticsService wraps the report engine with tracing, metrics and
// request cancellation
type AnalyticsService struct {
	engine        *analytics.Engine
	tracer        trace.Tracer
	metrics       *infrastructure.BusinessMetrics
	defaultPeriod string
	logger        *slog.Logger
}

// NewAnalyticsService creates an analytics service. A nil tracer falls back to the global provider.
func NewAnalyticsService(engine *analytics.Engine, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, defaultPeriod string, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &AnalyticsService{
		engine:        engine,
		tracer:        tracer,
		metrics:       metrics,
		defaultPeriod: defaultPeriod,
		logger:        logger.With(slog.String("service", "analytics")),
	}
}

func (s *AnalyticsService) period(p string) string {
	if p == "" {
		return s.defaultPeriod
	}
	return p
}

// NationalSummary returns country-wide headline figures
func (s *AnalyticsService) NationalSummary(ctx context.Context, period string) (*analytics.NationalSummary, error) {
	period = s.period(period)
	return generate(ctx, s, api.ReportNationalSummary, map[string]string{"period": period},
		func() (*analytics.NationalSummary, error) { return s.engine.NationalSummary(period) })
}

// ProductionSummary returns production statistics for a region or all regions
func (s *AnalyticsService) ProductionSummary(ctx context.Context, region, period string) (*analytics.ProductionSummary, error) {
	period = s.period(period)
	return generate(ctx, s, api.ReportProductionSummary, map[string]string{"region": region, "period": period},
		func() (*analytics.ProductionSummary, error) { return s.engine.ProductionSummary(region, period) })
}

// PriceAnalysis returns current prices, market ranking and grade premiums
func (s *AnalyticsService) PriceAnalysis(ctx context.Context, market, grade string) (*analytics.PriceAnalysis, error) {
	return generate(ctx, s, api.ReportPriceAnalysis, map[string]string{"market": market, "grade": grade},
		func() (*analytics.PriceAnalysis, error) { return s.engine.PriceAnalysis(market, grade) })
}

// StorageStatus returns utilization and alerts for one or all warehouses
func (s *AnalyticsService) StorageStatus(ctx context.Context, warehouse string) (*analytics.StorageStatus, error) {
	return generate(ctx, s, api.ReportStorageStatus, map[string]string{"warehouse": warehouse},
		func() (*analytics.StorageStatus, error) { return s.engine.StorageStatus(warehouse) })
}

// SeasonalPattern returns monthly averages and season labels
func (s *AnalyticsService) SeasonalPattern(ctx context.Context, crop string) (*analytics.SeasonalPattern, error) {
	return generate(ctx, s, api.ReportSeasonalPattern, map[string]string{"crop": crop},
		func() (*analytics.SeasonalPattern, error) { return s.engine.SeasonalPattern(crop) })
}

// ForecastAccuracy returns the state of the trained forecast models
func (s *AnalyticsService) ForecastAccuracy(ctx context.Context) (*analytics.ForecastAccuracy, error) {
	return generate(ctx, s, api.ReportForecastAccuracy, nil, s.engine.ForecastAccuracy)
}

// SupplyDemandBalance returns the monthly production against price balance
func (s *AnalyticsService) SupplyDemandBalance(ctx context.Context) (*analytics.SupplyDemandBalance, error) {
	return generate(ctx, s, api.ReportSupplyDemandBalance, nil, s.engine.SupplyDemandBalance)
}

// MarketOpportunities returns arbitrage, premium and timing signals
func (s *AnalyticsService) MarketOpportunities(ctx context.Context) (*analytics.MarketOpportunities, error) {
	return generate(ctx, s, api.ReportMarketOpportunities, nil, s.engine.MarketOpportunities)
}

// Report generates a report by name. Unknown names are validation errors.
func (s *AnalyticsService) Report(ctx context.Context, name string, p ReportParams) (any, error) {
	switch name {
	case api.ReportNationalSummary:
		return s.NationalSummary(ctx, p.Period)
	case api.ReportProductionSummary:
		return s.ProductionSummary(ctx, p.Region, p.Period)
	case api.ReportPriceAnalysis:
		return s.PriceAnalysis(ctx, p.Market, p.Grade)
	case api.ReportStorageStatus:
		return s.StorageStatus(ctx, p.Warehouse)
	case api.ReportSeasonalPattern:
		return s.SeasonalPattern(ctx, p.Crop)
	case api.ReportForecastAccuracy:
		return s.ForecastAccuracy(ctx)
	case api.ReportSupplyDemandBalance:
		return s.SupplyDemandBalance(ctx)
	case api.ReportMarketOpportunities:
		return s.MarketOpportunities(ctx)
	}
	return nil, &apperrors.AppError{
		Type:    apperrors.ErrTypeValidation,
		Message: fmt.Sprintf("unknown report %q, expected one of %s", name, strings.Join(api.ReportNames, ", ")),
		Cause:   ErrUnknownReport,
	}
}

// Dashboard generates every report with default filters concurrently.
// The first failure cancels the remaining reports.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	runID := uuid.New().String()
	ctx, span := s.tracer.Start(ctx, "analytics.dashboard")
	defer span.End()
	infrastructure.SetSpanAttributes(ctx, map[string]string{"run_id": runID})

	start := time.Now()
	d := &Dashboard{RunID: runID}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { d.NationalSummary, err = s.NationalSummary(gctx, ""); return })
	g.Go(func() (err error) { d.ProductionSummary, err = s.ProductionSummary(gctx, "", ""); return })
	g.Go(func() (err error) { d.PriceAnalysis, err = s.PriceAnalysis(gctx, "", ""); return })
	g.Go(func() (err error) { d.StorageStatus, err = s.StorageStatus(gctx, ""); return })
	g.Go(func() (err error) { d.SeasonalPattern, err = s.SeasonalPattern(gctx, ""); return })
	g.Go(func() (err error) { d.ForecastAccuracy, err = s.ForecastAccuracy(gctx); return })
	g.Go(func() (err error) { d.SupplyDemandBalance, err = s.SupplyDemandBalance(gctx); return })
	g.Go(func() (err error) { d.MarketOpportunities, err = s.MarketOpportunities(gctx); return })

	if err := g.Wait(); err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "dashboard failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.InfoContext(ctx, "dashboard generated",
		slog.String("run_id", runID),
		slog.Int("reports", len(api.ReportNames)),
		slog.Duration("duration", time.Since(start)))
	return d, nil
}

// generate runs one report inside a span and records its metrics.
// A cancelled context is reported before any file is read.
func generate[T any](ctx context.Context, s *AnalyticsService, report string, attrs map[string]string, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	ctx, span := s.tracer.Start(ctx, "analytics."+report)
	defer span.End()
	infrastructure.SetSpanAttributes(ctx, attrs)

	start := time.Now()
	out, err := fn()
	elapsed := time.Since(start)
	infrastructure.RecordReportMetrics(ctx, s.metrics, report, elapsed, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "report failed",
			slog.String("report", report),
			slog.String("error", err.Error()))
		return zero, fmt.Errorf("%s: %w", report, err)
	}

	s.logger.DebugContext(ctx, "report generated",
		slog.String("report", report),
		slog.Duration("duration", elapsed))
	return out, nil
}
