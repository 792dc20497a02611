package analytics

import (
	"fmt"

	"maizeintel/internal/config"
)

// Model statuses and quality bands
const (
	ModelStatusActive = "active"

	QualityExcellent  = "excellent"
	QualityGood       = "good"
	QualityAcceptable = "acceptable"
	QualityPoor       = "poor"
)

// ForecastAccuracy is the inventory of trained forecast models
type ForecastAccuracy struct {
	ProductionModels   *ProductionModels  `json:"production_models,omitempty"`
	PriceModels        *PriceModels       `json:"price_models,omitempty"`
	OverallPerformance OverallPerformance `json:"overall_performance"`
	GeneratedAt        string             `json:"generated_at"`
}

// ProductionModels lists one model per region
type ProductionModels struct {
	ByRegion    map[string]RegionModel `json:"by_region"`
	ModelType   string                 `json:"model_type"`
	Status      string                 `json:"status"`
	TotalModels int                    `json:"total_models"`
}

// RegionModel is the summary of one regional production model.
// MAPE and Quality are set only when the trainer recorded an error metric.
type RegionModel struct {
	ForecastAvgTons   float64  `json:"forecast_avg_tons"`
	HistoricalAvgTons float64  `json:"historical_avg_tons"`
	GrowthPercent     float64  `json:"growth_percent"`
	Status            string   `json:"status"`
	MAPE              *float64 `json:"mape,omitempty"`
	Quality           string   `json:"quality,omitempty"`
}

// PriceModels counts the market and grade models
type PriceModels struct {
	TotalModels int    `json:"total_models"`
	ModelType   string `json:"model_type"`
	Status      string `json:"status"`
}

// OverallPerformance summarizes both inventories
type OverallPerformance struct {
	ProductionModelsActive int    `json:"production_models_active"`
	PriceModelsActive      int    `json:"price_models_active"`
	LastEvaluation         string `json:"last_evaluation"`
	Status                 string `json:"status"`
}

// ForecastAccuracy reshapes the forecast summaries into a model inventory
func (e *Engine) ForecastAccuracy() (*ForecastAccuracy, error) {
	regional, prodFound, err := e.source.ProductionForecasts()
	if err != nil {
		return nil, fmt.Errorf("forecast accuracy: %w", err)
	}
	priceRows, priceFound, err := e.source.PriceForecasts()
	if err != nil {
		return nil, fmt.Errorf("forecast accuracy: %w", err)
	}
	now := e.now()

	report := &ForecastAccuracy{GeneratedAt: isoformat(now)}

	if prodFound {
		byRegion := make(map[string]RegionModel, len(regional))
		for _, r := range regional {
			m := RegionModel{
				ForecastAvgTons:   e.quantity(r.ForecastAvg),
				HistoricalAvgTons: e.quantity(r.HistoricalAvg),
				GrowthPercent:     e.percent(r.GrowthPct),
				Status:            ModelStatusActive,
			}
			if r.MAPE != nil {
				mape := e.percent(*r.MAPE)
				m.MAPE = &mape
				m.Quality = e.mapeQuality(*r.MAPE)
			}
			byRegion[r.Region] = m
		}
		report.ProductionModels = &ProductionModels{
			ByRegion:    byRegion,
			ModelType:   config.ForecastModelType,
			Status:      ModelStatusActive,
			TotalModels: len(byRegion),
		}
	}

	priceModels := config.DefaultPriceModelCount
	if priceFound {
		type key struct{ market, grade string }
		seen := make(map[key]struct{})
		for _, f := range priceRows {
			if f.Market == "" && f.Grade == "" {
				continue
			}
			seen[key{f.Market, string(f.Grade)}] = struct{}{}
		}
		if len(seen) > 0 {
			priceModels = len(seen)
		}
		report.PriceModels = &PriceModels{
			TotalModels: priceModels,
			ModelType:   config.ForecastModelType,
			Status:      ModelStatusActive,
		}
	}

	active := 0
	if report.ProductionModels != nil {
		active = report.ProductionModels.TotalModels
	}
	report.OverallPerformance = OverallPerformance{
		ProductionModelsActive: active,
		PriceModelsActive:      priceModels,
		LastEvaluation:         isoformat(now),
		Status:                 "All models operational",
	}
	return report, nil
}

func (e *Engine) mapeQuality(mape float64) string {
	bands := e.registry.MAPE
	switch {
	case mape < bands.Excellent:
		return QualityExcellent
	case mape < bands.Good:
		return QualityGood
	case mape < bands.Acceptable:
		return QualityAcceptable
	default:
		return QualityPoor
	}
}
