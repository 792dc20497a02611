package domain

import (
	"time"
)

// Season identifies a maize growing season
type Season string

const (
	SeasonMasika Season = "Masika"
	SeasonVuli   Season = "Vuli"
)

// QualityGrade is a maize quality grade as traded in markets
type QualityGrade string

const (
	GradeA QualityGrade = "A"
	GradeB QualityGrade = "B"
	GradeC QualityGrade = "C"
)

// ProductionRecord represents one production observation for a region
type ProductionRecord struct {
	Date             time.Time `json:"date"`
	Region           string    `json:"region"`
	Season           Season    `json:"season,omitempty"`
	QuantityTons     float64   `json:"quantity_tons"`
	FarmAreaHectares float64   `json:"farm_area_hectares,omitempty"`
}

// PriceRecord represents a wholesale price observation in a market
type PriceRecord struct {
	Date          time.Time    `json:"date"`
	Market        string       `json:"market"`
	Region        string       `json:"region,omitempty"`
	QualityGrade  QualityGrade `json:"quality_grade"`
	PricePerKgTZS float64      `json:"price_per_kg_tzs"`
}

// StorageRecord represents a warehouse stock snapshot
type StorageRecord struct {
	Date               time.Time `json:"date"`
	WarehouseID        string    `json:"warehouse_id"`
	Region             string    `json:"region,omitempty"`
	QuantityStoredTons float64   `json:"quantity_stored_tons"`
	CapacityTons       float64   `json:"capacity_tons"`
}

// UtilizationPercent returns stored/capacity as a percentage, 0 when capacity is not positive
func (s StorageRecord) UtilizationPercent() float64 {
	if s.CapacityTons <= 0 {
		return 0
	}
	return s.QuantityStoredTons / s.CapacityTons * 100
}

// ForecastRecord is a single point of a trained forecast series.
// Region is set for production series, Market and Grade for price series.
type ForecastRecord struct {
	TimeBucket time.Time    `json:"ds"`
	Yhat       float64      `json:"yhat"`
	YhatLower  float64      `json:"yhat_lower"`
	YhatUpper  float64      `json:"yhat_upper"`
	Region     string       `json:"region,omitempty"`
	Market     string       `json:"market,omitempty"`
	Grade      QualityGrade `json:"grade,omitempty"`
}

// WithinInterval reports whether yhat lies inside its own confidence interval.
// A NaN bound or yhat never counts as outside.
func (f ForecastRecord) WithinInterval() bool {
	return !(f.Yhat < f.YhatLower || f.Yhat > f.YhatUpper)
}

// RegionForecastSummary is one row of the production forecast summary written by the trainer
type RegionForecastSummary struct {
	Region          string   `json:"region"`
	HistoricalAvg   float64  `json:"historical_avg"`
	ForecastAvg     float64  `json:"forecast_avg"`
	GrowthPct       float64  `json:"growth_pct"`
	ForecastMin     float64  `json:"forecast_min,omitempty"`
	ForecastMax     float64  `json:"forecast_max,omitempty"`
	TrainingTimeSec float64  `json:"training_time_sec,omitempty"`
	MAPE            *float64 `json:"mape,omitempty"`
}
