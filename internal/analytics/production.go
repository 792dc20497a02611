package analytics

import (
	"fmt"

	"maizeintel/internal/config"
	"maizeintel/pkg/contracts/domain"
)

// NationalRegion labels an unscoped production summary
const NationalRegion = "National"

// Market roles of a region
const (
	RoleProductionCenter  = "production_center"
	RoleConsumptionCenter = "consumption_center"
)

// ProductionSummary reports production for a region or the whole country
type ProductionSummary struct {
	Region             string                `json:"region"`
	ProductionTier     config.ProductionTier `json:"production_tier,omitempty"`
	MarketRole         string                `json:"market_role,omitempty"`
	Period             string                `json:"period"`
	CurrentPeriod      ProductionPeriod      `json:"current_period"`
	RegionalBreakdown  map[string]float64    `json:"regional_breakdown,omitempty"`
	ForecastComparison *ForecastComparison   `json:"forecast_comparison,omitempty"`
	GeneratedAt        string                `json:"generated_at"`
}

// ProductionPeriod holds the windowed production figures
type ProductionPeriod struct {
	TotalProductionTons float64 `json:"total_production_tons"`
	AvgMonthlyTons      float64 `json:"avg_monthly_tons"`
	YoYGrowthPercent    float64 `json:"yoy_growth_percent"`
}

// ForecastComparison contrasts the trainer's forecast with the historical average
type ForecastComparison struct {
	ForecastAvgTons   float64 `json:"forecast_avg_tons"`
	HistoricalAvgTons float64 `json:"historical_avg_tons"`
	GrowthPercent     float64 `json:"growth_percent"`
}

// ProductionSummary reports windowed production, YoY growth and the forecast
// outlook. An empty region means national scope.
func (e *Engine) ProductionSummary(region, period string) (*ProductionSummary, error) {
	production, err := e.source.Production()
	if err != nil {
		return nil, fmt.Errorf("production summary: %w", err)
	}
	forecasts, found, err := e.source.ProductionForecasts()
	if err != nil {
		return nil, fmt.Errorf("production summary: %w", err)
	}

	now := e.now()
	period, _, cutoff := e.window(now, period)
	priorCutoff := daysBefore(cutoff, 365)

	var total, prior float64
	monthly := grouped{}
	byRegion := grouped{}
	for _, r := range production {
		if region != "" && r.Region != region {
			continue
		}
		switch {
		case !r.Date.Before(cutoff):
			total += r.QuantityTons
			monthly.add(monthKey(r.Date), r.QuantityTons)
			if r.Region != "" {
				byRegion.add(r.Region, r.QuantityTons)
			}
		case !r.Date.Before(priorCutoff):
			prior += r.QuantityTons
		}
	}

	monthlyTotals := make([]float64, 0, len(monthly))
	for _, key := range sortedKeys(monthly) {
		monthlyTotals = append(monthlyTotals, sum(monthly[key]))
	}

	summary := &ProductionSummary{
		Region: region,
		Period: period,
		CurrentPeriod: ProductionPeriod{
			TotalProductionTons: e.quantity(total),
			AvgMonthlyTons:      e.quantity(mean(monthlyTotals)),
			YoYGrowthPercent:    e.percent(ratioPercent(total, prior)),
		},
		GeneratedAt: isoformat(now),
	}

	if region == "" {
		summary.Region = NationalRegion
		summary.RegionalBreakdown = make(map[string]float64, len(byRegion))
		for name, tons := range byRegion.sums() {
			summary.RegionalBreakdown[name] = e.quantity(tons)
		}
	} else {
		summary.ProductionTier = e.registry.Tier(region)
		summary.MarketRole = e.marketRole(region)
	}

	if found {
		summary.ForecastComparison = e.forecastComparison(forecasts, region)
	} else {
		e.logger.Debug("production forecast summary not available")
	}

	return summary, nil
}

// marketRole is empty for regions that are neither surplus producers nor
// major consumption areas
func (e *Engine) marketRole(region string) string {
	switch {
	case e.registry.IsProductionCenter(region):
		return RoleProductionCenter
	case e.registry.IsConsumptionCenter(region):
		return RoleConsumptionCenter
	}
	return ""
}

// forecastComparison joins the summary on region, or aggregates every region
// when unscoped. It returns nil when nothing matches.
func (e *Engine) forecastComparison(rows []domain.RegionForecastSummary, region string) *ForecastComparison {
	if region != "" {
		for _, row := range rows {
			if row.Region == region {
				return &ForecastComparison{
					ForecastAvgTons:   e.quantity(row.ForecastAvg),
					HistoricalAvgTons: e.quantity(row.HistoricalAvg),
					GrowthPercent:     e.percent(row.GrowthPct),
				}
			}
		}
		return nil
	}

	if len(rows) == 0 {
		return nil
	}
	var forecast, historical float64
	for _, row := range rows {
		forecast += row.ForecastAvg
		historical += row.HistoricalAvg
	}
	return &ForecastComparison{
		ForecastAvgTons:   e.quantity(forecast),
		HistoricalAvgTons: e.quantity(historical),
		GrowthPercent:     e.percent(ratioPercent(forecast, historical)),
	}
}
