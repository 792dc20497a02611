package api

import "time"

// HealthResponse is returned by the health endpoints
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Report names used by the dashboard, metrics and the CLI
const (
	ReportNationalSummary     = "national_summary"
	ReportProductionSummary   = "production_summary"
	ReportPriceAnalysis       = "price_analysis"
	ReportStorageStatus       = "storage_status"
	ReportSeasonalPattern     = "seasonal_pattern"
	ReportForecastAccuracy    = "forecast_accuracy"
	ReportSupplyDemandBalance = "supply_demand_balance"
	ReportMarketOpportunities = "market_opportunities"
)

// ReportNames lists the analytics reports in dashboard order
var ReportNames = []string{
	ReportNationalSummary,
	ReportProductionSummary,
	ReportPriceAnalysis,
	ReportStorageStatus,
	ReportSeasonalPattern,
	ReportForecastAccuracy,
	ReportSupplyDemandBalance,
	ReportMarketOpportunities,
}

// ValidationResponse wraps a validation batch keyed by dataset
type ValidationResponse struct {
	Valid   bool `json:"valid"`
	Results any  `json:"results"`
}
