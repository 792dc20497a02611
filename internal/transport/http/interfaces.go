package http

import (
	"context"

	"maizeintel/internal/analytics"
	"maizeintel/internal/services"
	"maizeintel/internal/validation"
	api "maizeintel/pkg/contracts/api/v1"
)

// AnalyticsServiceInterface defines the report operations served over HTTP
type AnalyticsServiceInterface interface {
	NationalSummary(ctx context.Context, period string) (*analytics.NationalSummary, error)
	ProductionSummary(ctx context.Context, region, period string) (*analytics.ProductionSummary, error)
	PriceAnalysis(ctx context.Context, market, grade string) (*analytics.PriceAnalysis, error)
	StorageStatus(ctx context.Context, warehouse string) (*analytics.StorageStatus, error)
	SeasonalPattern(ctx context.Context, crop string) (*analytics.SeasonalPattern, error)
	ForecastAccuracy(ctx context.Context) (*analytics.ForecastAccuracy, error)
	SupplyDemandBalance(ctx context.Context) (*analytics.SupplyDemandBalance, error)
	MarketOpportunities(ctx context.Context) (*analytics.MarketOpportunities, error)
	Dashboard(ctx context.Context) (*services.Dashboard, error)
}

// ValidationServiceInterface defines the validation operations served over HTTP
type ValidationServiceInterface interface {
	ValidateAll(ctx context.Context) (map[string]*validation.Result, error)
	ValidateForecasts(ctx context.Context) (map[string]*validation.Result, error)
	Export(ctx context.Context, path string, forecasts bool) (map[string]*validation.Result, error)
}

// HealthServiceInterface defines liveness and readiness
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) api.HealthResponse
	ReadinessCheck(ctx context.Context) (api.HealthResponse, bool)
}

var (
	_ AnalyticsServiceInterface  = (*services.AnalyticsService)(nil)
	_ ValidationServiceInterface = (*services.ValidationService)(nil)
	_ HealthServiceInterface     = (*services.HealthService)(nil)
)
