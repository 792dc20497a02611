package analytics

import (
	"fmt"
	"time"

	"maizeintel/internal/config"
)

// DefaultCrop is the only crop with seasonal data
const DefaultCrop = "maize"

// SeasonalPattern reports monthly production and price shapes against the calendar
type SeasonalPattern struct {
	Crop             string                   `json:"crop"`
	SeasonalPatterns SeasonalPatterns         `json:"seasonal_patterns"`
	MonthlyAverages  MonthlyAverages          `json:"monthly_averages"`
	Insights         SeasonalInsights         `json:"insights"`
	Calendar         map[string]CalendarMonth `json:"seasonal_calendar"`
	GeneratedAt      string                   `json:"generated_at"`
}

// SeasonalPatterns describes the harvest seasons and the lean season
type SeasonalPatterns struct {
	Masika HarvestSeason `json:"masika_season"`
	Vuli   HarvestSeason `json:"vuli_season"`
	Lean   LeanSeason    `json:"lean_season"`
}

// HarvestSeason is a rainy season with its static share of annual production
type HarvestSeason struct {
	PlantingMonths         []string `json:"planting_months"`
	HarvestMonths          []string `json:"harvest_months"`
	ProductionSharePercent float64  `json:"production_share_percent"`
	Characteristics        string   `json:"characteristics"`
}

// LeanSeason is the pre-harvest period
type LeanSeason struct {
	Months          []string `json:"months"`
	Characteristics string   `json:"characteristics"`
}

// MonthlyAverages are means over all history keyed by month number
type MonthlyAverages struct {
	Production map[int]float64 `json:"production"`
	Prices     map[int]float64 `json:"prices"`
}

// SeasonalInsights name the extreme months. Fields are empty without data.
type SeasonalInsights struct {
	PeakProductionMonth string `json:"peak_production_month,omitempty"`
	LowProductionMonth  string `json:"low_production_month,omitempty"`
	PeakPriceMonth      string `json:"peak_price_month,omitempty"`
	LowPriceMonth       string `json:"low_price_month,omitempty"`
}

// CalendarMonth is one month of the seasonal calendar
type CalendarMonth struct {
	MonthNumber       int               `json:"month_number"`
	SeasonType        config.SeasonType `json:"season_type"`
	AvgProductionTons float64           `json:"avg_production_tons"`
	AvgPriceTZS       float64           `json:"avg_price_tzs"`
}

// SeasonalPattern computes monthly means over the full history
func (e *Engine) SeasonalPattern(crop string) (*SeasonalPattern, error) {
	production, err := e.source.Production()
	if err != nil {
		return nil, fmt.Errorf("seasonal pattern: %w", err)
	}
	prices, err := e.source.Prices()
	if err != nil {
		return nil, fmt.Errorf("seasonal pattern: %w", err)
	}
	if crop == "" {
		crop = DefaultCrop
	}
	now := e.now()

	prodByMonth := make(map[time.Month][]float64)
	for _, p := range production {
		prodByMonth[p.Date.Month()] = append(prodByMonth[p.Date.Month()], p.QuantityTons)
	}
	priceByMonth := make(map[time.Month][]float64)
	for _, p := range prices {
		priceByMonth[p.Date.Month()] = append(priceByMonth[p.Date.Month()], p.PricePerKgTZS)
	}

	monthlyProd := e.monthlyMeans(prodByMonth, config.MetricQuantity)
	monthlyPrice := e.monthlyMeans(priceByMonth, config.MetricPrice)

	var insights SeasonalInsights
	insights.PeakProductionMonth, insights.LowProductionMonth = extremeMonths(monthlyProd)
	insights.PeakPriceMonth, insights.LowPriceMonth = extremeMonths(monthlyPrice)

	cal := e.registry.Calendar()
	calendar := make(map[string]CalendarMonth, 12)
	for m := time.January; m <= time.December; m++ {
		calendar[config.MonthAbbrev(m)] = CalendarMonth{
			MonthNumber:       int(m),
			SeasonType:        e.registry.SeasonOf(m),
			AvgProductionTons: monthlyProd[int(m)],
			AvgPriceTZS:       monthlyPrice[int(m)],
		}
	}

	return &SeasonalPattern{
		Crop: crop,
		SeasonalPatterns: SeasonalPatterns{
			Masika: HarvestSeason{
				PlantingMonths:         monthNames(cal.MasikaPlanting),
				HarvestMonths:          monthNames(cal.MasikaHarvest),
				ProductionSharePercent: e.percent(cal.MasikaShare * 100),
				Characteristics:        "Main harvest - highest production, lowest prices",
			},
			Vuli: HarvestSeason{
				PlantingMonths:         monthNames(cal.VuliPlanting),
				HarvestMonths:          monthNames(cal.VuliHarvest),
				ProductionSharePercent: e.percent(cal.VuliShare * 100),
				Characteristics:        "Secondary harvest - moderate production and prices",
			},
			Lean: LeanSeason{
				Months:          monthNames(cal.LeanSeason),
				Characteristics: "Pre-harvest period - low production, high prices",
			},
		},
		MonthlyAverages: MonthlyAverages{Production: monthlyProd, Prices: monthlyPrice},
		Insights:        insights,
		Calendar:        calendar,
		GeneratedAt:     isoformat(now),
	}, nil
}

func (e *Engine) monthlyMeans(byMonth map[time.Month][]float64, class config.MetricClass) map[int]float64 {
	out := make(map[int]float64, len(byMonth))
	for m, vals := range byMonth {
		out[int(m)] = e.registry.Round(class, mean(vals))
	}
	return out
}

// extremeMonths returns the first month holding the max and the min, scanning January to December
func extremeMonths(byMonth map[int]float64) (string, string) {
	peak, low := 0, 0
	for m := 1; m <= 12; m++ {
		v, ok := byMonth[m]
		if !ok {
			continue
		}
		if peak == 0 || v > byMonth[peak] {
			peak = m
		}
		if low == 0 || v < byMonth[low] {
			low = m
		}
	}
	if peak == 0 {
		return "", ""
	}
	return config.MonthAbbrev(time.Month(peak)), config.MonthAbbrev(time.Month(low))
}

func monthNames(months []time.Month) []string {
	names := make([]string, len(months))
	for i, m := range months {
		names[i] = config.MonthAbbrev(m)
	}
	return names
}
