// Package api contains the HTTP API contract of the maize market intelligence service.
// Version v1 represents the current stable API version.
package api

// Analytics query parameters. Free-text dimensions are bounded; enumerations
// are checked against the domain registry by the "period" and "grade" rules.

// NationalSummaryRequest selects the period of the national summary
type NationalSummaryRequest struct {
	Period string `json:"period" query:"period" validate:"omitempty,period"`
}

// ProductionSummaryRequest scopes the production summary
type ProductionSummaryRequest struct {
	Region string `json:"region" query:"region" validate:"omitempty,max=64"`
	Period string `json:"period" query:"period" validate:"omitempty,period"`
}

// PriceAnalysisRequest scopes the price analysis
type PriceAnalysisRequest struct {
	Market string `json:"market" query:"market" validate:"omitempty,max=64"`
	Grade  string `json:"grade" query:"grade" validate:"omitempty,grade"`
}

// StorageStatusRequest selects a single warehouse
type StorageStatusRequest struct {
	Warehouse string `json:"warehouse" query:"warehouse" validate:"omitempty,max=64"`
}

// SeasonalPatternRequest names the crop
type SeasonalPatternRequest struct {
	Crop string `json:"crop" query:"crop" validate:"omitempty,max=32,alpha"`
}

// ValidationExportRequest selects the export format of a validation report
type ValidationExportRequest struct {
	Format    string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
	Forecasts string `json:"forecasts" query:"forecasts" validate:"omitempty,boolean"`
}
