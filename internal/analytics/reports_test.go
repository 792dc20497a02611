package analytics

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maizeintel/internal/config"
	"maizeintel/pkg/contracts/domain"
)

func price(date time.Time, market string, grade domain.QualityGrade, tzs float64) domain.PriceRecord {
	return domain.PriceRecord{Date: date, Market: market, QualityGrade: grade, PricePerKgTZS: tzs}
}

func stock(id string, stored, capacity float64) domain.StorageRecord {
	return domain.StorageRecord{Date: daysAgo(2), WarehouseID: id, QuantityStoredTons: stored, CapacityTons: capacity}
}

func assertDecimals(t *testing.T, v float64, places int) {
	t.Helper()
	pow := math.Pow(10, float64(places))
	assert.InDelta(t, math.Round(v*pow)/pow, v, 1e-9, "%v has more than %d decimals", v, places)
}

func TestNationalSummary(t *testing.T) {
	src := &memorySource{
		production: []domain.ProductionRecord{
			{Date: daysAgo(1), Region: "Mbeya", QuantityTons: 100.125},
			{Date: daysAgo(10), Region: "Iringa", QuantityTons: 50},
			{Date: daysAgo(45), Region: "Ruvuma", QuantityTons: 999},
		},
		prices: []domain.PriceRecord{
			price(daysAgo(1), "Mbeya Central", domain.GradeA, 1000.123),
			price(daysAgo(2), "Kariakoo", domain.GradeA, 1000.456),
			price(daysAgo(60), "Mwenge", domain.GradeA, 5000),
		},
		storage: []domain.StorageRecord{
			{Date: daysAgo(20), WarehouseID: "WH-001", QuantityStoredTons: 400, CapacityTons: 1000},
			{Date: daysAgo(3), WarehouseID: "WH-001", QuantityStoredTons: 600, CapacityTons: 1000},
			{Date: daysAgo(3), WarehouseID: "WH-002", QuantityStoredTons: 150, CapacityTons: 500},
			{Date: daysAgo(90), WarehouseID: "WH-003", QuantityStoredTons: 250, CapacityTons: 500},
		},
	}

	summary, err := newTestEngine(t, src).NationalSummary("")
	require.NoError(t, err)

	assert.Equal(t, "current", summary.Period)
	assert.Equal(t, 30, summary.PeriodDays)
	assert.Equal(t, 150.12, summary.Production.TotalTons)
	assert.Equal(t, 75.06, summary.Production.AvgPerRegion)
	assert.Equal(t, 2, summary.Production.ActiveRegions)

	assert.Equal(t, 1000.29, summary.Prices.AvgPriceTZS)
	assert.Equal(t, "TZS", summary.Prices.Currency)
	assert.Equal(t, 2, summary.Prices.ActiveMarkets)

	assert.Equal(t, 1000.0, summary.Storage.TotalStoredTons)
	assert.Equal(t, 2000.0, summary.Storage.TotalCapacityTons)
	assert.Equal(t, 50.0, summary.Storage.UtilizationPercent)
	assert.Equal(t, 3, summary.Storage.ActiveWarehouses)
	assert.Equal(t, "2024-06-30T12:00:00", summary.GeneratedAt)
}

func TestNationalSummary_ZeroCapacity(t *testing.T) {
	src := &memorySource{
		storage: []domain.StorageRecord{stock("WH-001", 0, 0)},
	}

	summary, err := newTestEngine(t, src).NationalSummary("")
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.Storage.UtilizationPercent)
	assert.Equal(t, 0.0, summary.Storage.TotalCapacityTons)
	assert.Equal(t, 0.0, summary.Prices.AvgPriceTZS)
	assert.Equal(t, 0.0, summary.Production.AvgPerRegion)
}

func TestProductionSummary(t *testing.T) {
	src := &memorySource{
		production: []domain.ProductionRecord{
			{Date: daysAgo(5), Region: "Mbeya", QuantityTons: 100},
			{Date: daysAgo(20), Region: "Iringa", QuantityTons: 50},
			{Date: daysAgo(370), Region: "Mbeya", QuantityTons: 80},
			{Date: daysAgo(380), Region: "Iringa", QuantityTons: 40},
		},
		regional: []domain.RegionForecastSummary{
			{Region: "Mbeya", HistoricalAvg: 100, ForecastAvg: 120, GrowthPct: 20},
			{Region: "Iringa", HistoricalAvg: 100, ForecastAvg: 80, GrowthPct: -20},
		},
		hasRegional: true,
	}
	e := newTestEngine(t, src)

	t.Run("national", func(t *testing.T) {
		summary, err := e.ProductionSummary("", "")
		require.NoError(t, err)

		assert.Equal(t, NationalRegion, summary.Region)
		assert.Empty(t, summary.ProductionTier)
		assert.Empty(t, summary.MarketRole)
		assert.Equal(t, 150.0, summary.CurrentPeriod.TotalProductionTons)
		assert.Equal(t, 150.0, summary.CurrentPeriod.AvgMonthlyTons)
		assert.Equal(t, 25.0, summary.CurrentPeriod.YoYGrowthPercent)
		assert.Equal(t, map[string]float64{"Mbeya": 100, "Iringa": 50}, summary.RegionalBreakdown)

		require.NotNil(t, summary.ForecastComparison)
		assert.Equal(t, 200.0, summary.ForecastComparison.ForecastAvgTons)
		assert.Equal(t, 200.0, summary.ForecastComparison.HistoricalAvgTons)
		assert.Equal(t, 0.0, summary.ForecastComparison.GrowthPercent)
	})

	t.Run("scoped region", func(t *testing.T) {
		summary, err := e.ProductionSummary("Mbeya", "current")
		require.NoError(t, err)

		assert.Equal(t, "Mbeya", summary.Region)
		assert.Equal(t, config.TierHigh, summary.ProductionTier)
		assert.Equal(t, RoleProductionCenter, summary.MarketRole)
		assert.Nil(t, summary.RegionalBreakdown)
		assert.Equal(t, 100.0, summary.CurrentPeriod.TotalProductionTons)
		assert.Equal(t, 25.0, summary.CurrentPeriod.YoYGrowthPercent)

		require.NotNil(t, summary.ForecastComparison)
		assert.Equal(t, 120.0, summary.ForecastComparison.ForecastAvgTons)
		assert.Equal(t, 20.0, summary.ForecastComparison.GrowthPercent)
	})

	t.Run("region without forecast", func(t *testing.T) {
		summary, err := e.ProductionSummary("Rukwa", "")
		require.NoError(t, err)
		assert.Nil(t, summary.ForecastComparison)
		assert.Equal(t, 0.0, summary.CurrentPeriod.YoYGrowthPercent)
	})

	t.Run("market roles", func(t *testing.T) {
		for region, want := range map[string]string{
			"Rukwa":         RoleProductionCenter,
			"Dar es Salaam": RoleConsumptionCenter,
			"Mwanza":        "",
		} {
			summary, err := e.ProductionSummary(region, "")
			require.NoError(t, err)
			assert.Equal(t, want, summary.MarketRole, region)
		}
	})

	t.Run("no forecast file", func(t *testing.T) {
		noForecast := *src
		noForecast.hasRegional = false
		summary, err := newTestEngine(t, &noForecast).ProductionSummary("", "")
		require.NoError(t, err)
		assert.Nil(t, summary.ForecastComparison)
	})
}

func TestPriceAnalysis_GradePremium(t *testing.T) {
	src := &memorySource{
		prices: []domain.PriceRecord{
			price(daysAgo(1), "Mbeya Central", domain.GradeC, 1000),
			price(daysAgo(2), "Mbeya Central", domain.GradeA, 1250),
			price(daysAgo(30), "Mbeya Central", domain.GradeA, 9000),
		},
	}

	analysis, err := newTestEngine(t, src).PriceAnalysis("", "")
	require.NoError(t, err)

	assert.Equal(t, AllMarkets, analysis.Market)
	assert.Equal(t, AllGrades, analysis.Grade)
	require.NotNil(t, analysis.GradeAnalysis)
	assert.Equal(t, 1250.0, analysis.GradeAnalysis.PricesByGrade[domain.GradeA])
	assert.Equal(t, 1000.0, analysis.GradeAnalysis.PricesByGrade[domain.GradeC])

	premium, ok := analysis.GradeAnalysis.GradePremiums[domain.GradeA]
	require.True(t, ok)
	assert.Equal(t, 25.0, premium.ActualPremiumPercent)
	assert.Equal(t, 25.0, premium.ExpectedPremiumPercent)
	assert.Equal(t, 0.0, premium.DiscrepancyPercent)

	_, hasB := analysis.GradeAnalysis.GradePremiums[domain.GradeB]
	assert.False(t, hasB)
	assert.Equal(t, 0.0, analysis.GradeAnalysis.GradePremiums[domain.GradeC].ActualPremiumPercent)
	assert.Nil(t, analysis.ForecastComparison)
}

func TestPriceAnalysis_CurrentPricesAndRanking(t *testing.T) {
	src := &memorySource{
		prices: []domain.PriceRecord{
			price(daysAgo(1), "Mbeya Central", domain.GradeA, 1000),
			price(daysAgo(2), "Mbeya Central", domain.GradeA, 1100),
			price(daysAgo(1), "Kariakoo", domain.GradeA, 1400),
			price(daysAgo(3), "Arusha Central", domain.GradeA, 1400),
		},
		priceForecasts: []domain.ForecastRecord{
			{TimeBucket: nextMonth(testNow), Yhat: 1155, Market: "Mbeya Central", Grade: domain.GradeA},
			{TimeBucket: monthStart(2024, 8), Yhat: 5000, Market: "Mbeya Central", Grade: domain.GradeA},
		},
		hasPriceForecast: true,
	}
	e := newTestEngine(t, src)

	t.Run("unscoped", func(t *testing.T) {
		analysis, err := e.PriceAnalysis("", "")
		require.NoError(t, err)

		assert.Equal(t, 1225.0, analysis.CurrentPrices.AvgPriceTZS)
		assert.Equal(t, 1000.0, analysis.CurrentPrices.MinPriceTZS)
		assert.Equal(t, 1400.0, analysis.CurrentPrices.MaxPriceTZS)
		assert.Equal(t, 206.16, analysis.CurrentPrices.Volatility)
		assert.Equal(t, []MarketPrice{
			{Market: "Arusha Central", AvgPriceTZS: 1400},
			{Market: "Kariakoo", AvgPriceTZS: 1400},
			{Market: "Mbeya Central", AvgPriceTZS: 1050},
		}, analysis.MarketComparison)
		assert.Nil(t, analysis.GradeAnalysis.GradePremiums)
	})

	t.Run("scoped market and grade", func(t *testing.T) {
		analysis, err := e.PriceAnalysis("Mbeya Central", "A")
		require.NoError(t, err)

		assert.Equal(t, "Mbeya Central", analysis.Market)
		assert.Equal(t, "A", analysis.Grade)
		assert.Nil(t, analysis.MarketComparison)
		assert.Nil(t, analysis.GradeAnalysis)
		assert.Equal(t, 1050.0, analysis.CurrentPrices.AvgPriceTZS)

		require.NotNil(t, analysis.ForecastComparison)
		assert.Equal(t, "2024-07", analysis.ForecastComparison.Month)
		assert.Equal(t, 1155.0, analysis.ForecastComparison.ForecastNextMonth)
		assert.Equal(t, 10.0, analysis.ForecastComparison.VsCurrent)
	})

	t.Run("scope without forecast rows", func(t *testing.T) {
		analysis, err := e.PriceAnalysis("Kariakoo", "")
		require.NoError(t, err)
		assert.Nil(t, analysis.ForecastComparison)
	})
}

func monthStart(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

func TestStorageStatus_Categories(t *testing.T) {
	src := &memorySource{
		storage: []domain.StorageRecord{
			stock("WH-001", 95, 100),
			stock("WH-002", 5, 100),
			stock("WH-003", 60, 100),
		},
	}
	e := newTestEngine(t, src)

	status, err := e.StorageStatus("")
	require.NoError(t, err)

	assert.Equal(t, AllWarehouses, status.Warehouse)
	assert.Equal(t, StorageCategories{Optimal: 1, Overstocked: 1, Understocked: 1}, status.UtilizationCategories)
	require.Len(t, status.Warehouses, 3)
	assert.Nil(t, status.Selected)

	require.Len(t, status.Alerts, 2)
	assert.Equal(t, StorageAlert{
		Type:       "overstocked",
		Severity:   SeverityHigh,
		Message:    "1 warehouse(s) over 90% capacity",
		Warehouses: []string{"WH-001"},
	}, status.Alerts[0])
	assert.Equal(t, StorageAlert{
		Type:       "understocked",
		Severity:   SeverityMedium,
		Message:    "1 warehouse(s) under 10% capacity",
		Warehouses: []string{"WH-002"},
	}, status.Alerts[1])

	assert.Equal(t, 160.0, status.NationalSummary.TotalStoredTons)
	assert.Equal(t, 53.3, status.NationalSummary.UtilizationPercent)
}

func TestStorageStatus_Scoped(t *testing.T) {
	src := &memorySource{
		storage: []domain.StorageRecord{
			{Date: daysAgo(10), WarehouseID: "WH-001", QuantityStoredTons: 10, CapacityTons: 100},
			{Date: daysAgo(1), WarehouseID: "WH-001", QuantityStoredTons: 70, CapacityTons: 100},
			stock("WH-002", 5, 100),
		},
	}
	e := newTestEngine(t, src)

	status, err := e.StorageStatus("WH-001")
	require.NoError(t, err)
	assert.Equal(t, "WH-001", status.Warehouse)
	assert.Nil(t, status.Warehouses)
	require.NotNil(t, status.Selected)
	assert.Equal(t, 70.0, status.Selected.UtilizationPercent)
	assert.Empty(t, status.Alerts)
	assert.NotNil(t, status.Alerts)

	status, err = e.StorageStatus("WH-404")
	require.NoError(t, err)
	assert.Nil(t, status.Selected)
	assert.Equal(t, 0, status.NationalSummary.ActiveWarehouses)
}

func TestSeasonalPattern_Labels(t *testing.T) {
	src := &memorySource{}
	for m := time.January; m <= time.December; m++ {
		d := time.Date(2023, m, 15, 0, 0, 0, 0, time.UTC)
		src.production = append(src.production, domain.ProductionRecord{Date: d, Region: "Mbeya", QuantityTons: float64(100 * m)})
		src.prices = append(src.prices, price(d, "Kariakoo", domain.GradeA, float64(2000-50*int(m))))
	}

	pattern, err := newTestEngine(t, src).SeasonalPattern("")
	require.NoError(t, err)

	want := map[string]config.SeasonType{
		"Jan": config.SeasonVuliHarvest, "Feb": config.SeasonVuliHarvest,
		"Mar": config.SeasonLean, "Apr": config.SeasonLean, "May": config.SeasonLean,
		"Jun": config.SeasonMasikaHarvest, "Jul": config.SeasonMasikaHarvest, "Aug": config.SeasonMasikaHarvest,
		"Sep": config.SeasonNormal, "Oct": config.SeasonNormal, "Nov": config.SeasonNormal, "Dec": config.SeasonNormal,
	}
	require.Len(t, pattern.Calendar, 12)
	for name, season := range want {
		assert.Equal(t, season, pattern.Calendar[name].SeasonType, name)
	}

	assert.Equal(t, DefaultCrop, pattern.Crop)
	assert.Equal(t, 6, pattern.Calendar["Jun"].MonthNumber)
	assert.Equal(t, 600.0, pattern.Calendar["Jun"].AvgProductionTons)
	assert.Equal(t, 1700.0, pattern.Calendar["Jun"].AvgPriceTZS)
	assert.Equal(t, SeasonalInsights{
		PeakProductionMonth: "Dec",
		LowProductionMonth:  "Jan",
		PeakPriceMonth:      "Jan",
		LowPriceMonth:       "Dec",
	}, pattern.Insights)

	assert.Equal(t, 65.0, pattern.SeasonalPatterns.Masika.ProductionSharePercent)
	assert.Equal(t, 35.0, pattern.SeasonalPatterns.Vuli.ProductionSharePercent)
	assert.Equal(t, []string{"Jun", "Jul", "Aug"}, pattern.SeasonalPatterns.Masika.HarvestMonths)
	assert.Equal(t, []string{"Mar", "Apr"}, pattern.SeasonalPatterns.Masika.PlantingMonths)
	assert.Equal(t, []string{"Oct", "Nov"}, pattern.SeasonalPatterns.Vuli.PlantingMonths)
	assert.Equal(t, []string{"Mar", "Apr", "May"}, pattern.SeasonalPatterns.Lean.Months)
}

func TestSeasonalPattern_NoData(t *testing.T) {
	pattern, err := newTestEngine(t, &memorySource{}).SeasonalPattern("sorghum")
	require.NoError(t, err)
	assert.Equal(t, "sorghum", pattern.Crop)
	assert.Equal(t, SeasonalInsights{}, pattern.Insights)
	assert.Equal(t, 0.0, pattern.Calendar["Jul"].AvgProductionTons)
}

func TestForecastAccuracy(t *testing.T) {
	mape := 7.25
	src := &memorySource{
		regional: []domain.RegionForecastSummary{
			{Region: "Mbeya", HistoricalAvg: 1000.456, ForecastAvg: 1100, GrowthPct: 9.95, MAPE: &mape},
			{Region: "Iringa", HistoricalAvg: 500, ForecastAvg: 450, GrowthPct: -10},
		},
		hasRegional: true,
		priceForecasts: []domain.ForecastRecord{
			{TimeBucket: nextMonth(testNow), Market: "Kariakoo", Grade: domain.GradeA},
			{TimeBucket: nextMonth(testNow).AddDate(0, 1, 0), Market: "Kariakoo", Grade: domain.GradeA},
			{TimeBucket: nextMonth(testNow), Market: "Kariakoo", Grade: domain.GradeB},
		},
		hasPriceForecast: true,
	}

	report, err := newTestEngine(t, src).ForecastAccuracy()
	require.NoError(t, err)

	require.NotNil(t, report.ProductionModels)
	assert.Equal(t, 2, report.ProductionModels.TotalModels)
	assert.Equal(t, config.ForecastModelType, report.ProductionModels.ModelType)

	mbeya := report.ProductionModels.ByRegion["Mbeya"]
	assert.Equal(t, 1000.46, mbeya.HistoricalAvgTons)
	assert.Equal(t, ModelStatusActive, mbeya.Status)
	require.NotNil(t, mbeya.MAPE)
	assert.Equal(t, 7.2, *mbeya.MAPE)
	assert.Equal(t, QualityGood, mbeya.Quality)
	assert.Nil(t, report.ProductionModels.ByRegion["Iringa"].MAPE)

	require.NotNil(t, report.PriceModels)
	assert.Equal(t, 2, report.PriceModels.TotalModels)
	assert.Equal(t, 2, report.OverallPerformance.ProductionModelsActive)
	assert.Equal(t, 2, report.OverallPerformance.PriceModelsActive)
	assert.Equal(t, "All models operational", report.OverallPerformance.Status)
}

func TestForecastAccuracy_NotTrained(t *testing.T) {
	report, err := newTestEngine(t, &memorySource{}).ForecastAccuracy()
	require.NoError(t, err)
	assert.Nil(t, report.ProductionModels)
	assert.Nil(t, report.PriceModels)
	assert.Equal(t, 0, report.OverallPerformance.ProductionModelsActive)
	assert.Equal(t, config.DefaultPriceModelCount, report.OverallPerformance.PriceModelsActive)
}

func TestMAPEQuality(t *testing.T) {
	e := newTestEngine(t, &memorySource{})
	tests := []struct {
		mape float64
		want string
	}{
		{2, QualityExcellent},
		{5, QualityGood},
		{9.99, QualityGood},
		{10, QualityAcceptable},
		{19.9, QualityAcceptable},
		{20, QualityPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.mapeQuality(tt.mape), "mape %v", tt.mape)
	}
}

func TestSupplyDemandBalance(t *testing.T) {
	src := &memorySource{}
	for i, tons := range []float64{100, 200, 300, 400} {
		d := time.Date(2024, time.Month(i+1), 10, 0, 0, 0, 0, time.UTC)
		src.production = append(src.production, domain.ProductionRecord{Date: d, Region: "Mbeya", QuantityTons: tons})
		src.prices = append(src.prices, price(d, "Kariakoo", domain.GradeA, 1500-tons))
		src.storage = append(src.storage, domain.StorageRecord{Date: d, WarehouseID: "WH-001", QuantityStoredTons: tons / 2, CapacityTons: 1000})
	}

	balance, err := newTestEngine(t, src).SupplyDemandBalance()
	require.NoError(t, err)

	assert.Equal(t, BalanceSurplus, balance.CurrentBalance.Status)
	assert.Equal(t, "Production above average - favorable supply conditions", balance.CurrentBalance.Message)
	assert.Equal(t, 400.0, balance.CurrentBalance.ProductionTons)
	assert.Equal(t, 1100.0, balance.CurrentBalance.AvgPriceTZS)
	assert.Equal(t, 200.0, balance.CurrentBalance.StorageTons)

	require.NotNil(t, balance.CorrelationAnalysis.PriceProductionCorrelation)
	assert.Equal(t, -1.0, *balance.CorrelationAnalysis.PriceProductionCorrelation)
	assert.Contains(t, balance.CorrelationAnalysis.Interpretation, "Negative correlation expected")

	assert.Equal(t, []string{"2024-04"}, balance.HistoricalPatterns.SurplusPeriods)
	assert.Equal(t, []string{"2024-01"}, balance.HistoricalPatterns.ShortagePeriods)
	assert.Equal(t, 250.0, balance.HistoricalPatterns.AvgProduction)
	assert.Equal(t, 129.1, balance.HistoricalPatterns.ProductionVolatility)
}

func TestSupplyDemandBalance_TooFewMonths(t *testing.T) {
	src := &memorySource{
		production: []domain.ProductionRecord{
			{Date: monthStart(2024, 1), QuantityTons: 300},
			{Date: monthStart(2024, 2), QuantityTons: 100},
		},
		prices: []domain.PriceRecord{
			price(monthStart(2024, 1), "Kariakoo", domain.GradeA, 1000),
			price(monthStart(2024, 2), "Kariakoo", domain.GradeA, 1200),
		},
	}

	balance, err := newTestEngine(t, src).SupplyDemandBalance()
	require.NoError(t, err)
	assert.Nil(t, balance.CorrelationAnalysis.PriceProductionCorrelation)
	assert.Equal(t, "Positive correlation indicates other factors at play", balance.CorrelationAnalysis.Interpretation)

	data, err := json.Marshal(balance.CorrelationAnalysis)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.NotContains(t, fields, "price_production_correlation")
	assert.Contains(t, fields, "interpretation")
	assert.Equal(t, BalanceBalanced, balance.CurrentBalance.Status)
	assert.Equal(t, 0.0, balance.CurrentBalance.StorageTons)
	assert.NotNil(t, balance.HistoricalPatterns.SurplusPeriods)
}

func TestMarketOpportunities_Arbitrage(t *testing.T) {
	src := &memorySource{
		prices: []domain.PriceRecord{
			price(daysAgo(1), "Mbeya Central", domain.GradeA, 1000),
			price(daysAgo(2), "Kariakoo", domain.GradeA, 1200),
			price(daysAgo(2), "Kariakoo", domain.GradeC, 880),
		},
	}

	report, err := newTestEngine(t, src).MarketOpportunities()
	require.NoError(t, err)

	assert.Empty(t, report.Message)
	require.NotNil(t, report.Arbitrage)
	assert.Equal(t, ArbitrageOpportunity{
		BuyMarket:           "Mbeya Central",
		BuyPriceTZS:         1000,
		SellMarket:          "Kariakoo",
		SellPriceTZS:        1200,
		PriceGapTZS:         200,
		ProfitMarginPercent: 20.0,
		Recommendation:      "Strong opportunity",
	}, *report.Arbitrage)

	require.NotNil(t, report.QualityPremium)
	assert.Equal(t, 1100.0, report.QualityPremium.GradeAPriceTZS)
	assert.Equal(t, 25.0, report.QualityPremium.PremiumPercent)
	assert.Equal(t, "Invest in quality improvement", report.QualityPremium.Recommendation)

	require.NotNil(t, report.Timing)
	assert.Equal(t, "Masika harvest", report.Timing.CurrentPeriod)
	assert.Equal(t, "HOLD or STORE", report.Timing.Action)
	assert.Nil(t, report.ForecastOpportunities)
}

func TestMarketOpportunities_InsufficientData(t *testing.T) {
	src := &memorySource{
		prices: []domain.PriceRecord{
			price(daysAgo(1), "Mbeya Central", domain.GradeA, 1000),
			price(daysAgo(1), "Kariakoo", domain.GradeB, 1200),
			price(daysAgo(20), "Mwenge", domain.GradeA, 1300),
		},
	}

	report, err := newTestEngine(t, src).MarketOpportunities()
	require.NoError(t, err)
	assert.Equal(t, InsufficientOpportunityData, report.Message)
	assert.Nil(t, report.Arbitrage)
	assert.Nil(t, report.Timing)
}

func TestArbitrageLabels(t *testing.T) {
	e := newTestEngine(t, &memorySource{})
	tests := []struct {
		sell float64
		want string
	}{
		{1160, "Strong opportunity"},
		{1120, "Moderate opportunity"},
		{1090, "Moderate opportunity"},
		{1050, "Limited opportunity"},
	}
	for _, tt := range tests {
		got := e.arbitrage(map[string]float64{"Kariakoo": 1000, "Mwenge": tt.sell})
		assert.Equal(t, tt.want, got.Recommendation, "sell at %v", tt.sell)
	}

	tie := e.arbitrage(map[string]float64{"Mwenge": 1000, "Kariakoo": 1000})
	assert.Equal(t, "Kariakoo", tie.BuyMarket)
	assert.Equal(t, "Kariakoo", tie.SellMarket)
	assert.Equal(t, 0.0, tie.ProfitMarginPercent)
}

func TestTimingAdvice(t *testing.T) {
	e := newTestEngine(t, &memorySource{})
	tests := []struct {
		month  time.Month
		action string
	}{
		{time.January, "SELL MODERATE VOLUMES"},
		{time.April, "SELL NOW"},
		{time.July, "HOLD or STORE"},
		{time.October, "MONITOR"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.action, e.timing(tt.month).Action, tt.month.String())
	}
}

func TestMarketOpportunities_ForecastSignals(t *testing.T) {
	july := nextMonth(testNow)
	src := &memorySource{
		prices: []domain.PriceRecord{
			price(daysAgo(1), "Mbeya Central", domain.GradeA, 1000),
			price(daysAgo(1), "Iringa Central", domain.GradeA, 1000),
			price(daysAgo(1), "Songea Central", domain.GradeA, 1000),
			price(daysAgo(1), "Kariakoo", domain.GradeA, 1000),
		},
		priceForecasts: []domain.ForecastRecord{
			{TimeBucket: july, Yhat: 1100, Market: "Mbeya Central", Grade: domain.GradeA},
			{TimeBucket: july, Yhat: 980, Market: "Iringa Central", Grade: domain.GradeA},
			{TimeBucket: july, Yhat: 900, Market: "Songea Central", Grade: domain.GradeA},
			{TimeBucket: july, Yhat: 2000, Market: "Kariakoo", Grade: domain.GradeA},
			{TimeBucket: july, Yhat: 2000, Market: "Iringa Central", Grade: domain.GradeB},
		},
		hasPriceForecast: true,
	}

	report, err := newTestEngine(t, src).MarketOpportunities()
	require.NoError(t, err)

	assert.Equal(t, []ForecastSignal{
		{Market: "Mbeya Central", CurrentPrice: 1000, ForecastPrice: 1100, ChangePercent: 10, Action: "Consider storing"},
		{Market: "Songea Central", CurrentPrice: 1000, ForecastPrice: 900, ChangePercent: -10, Action: "Consider selling soon"},
	}, report.ForecastOpportunities)
}

func TestReports_RoundedLeaves(t *testing.T) {
	src := &memorySource{
		production: []domain.ProductionRecord{
			{Date: daysAgo(1), Region: "Mbeya", QuantityTons: 10.0049},
			{Date: daysAgo(2), Region: "Iringa", QuantityTons: 1 / 3.0},
		},
		prices: []domain.PriceRecord{
			price(daysAgo(1), "Mbeya Central", domain.GradeA, 1000.333),
			price(daysAgo(1), "Kariakoo", domain.GradeA, 1177.777),
			price(daysAgo(1), "Kariakoo", domain.GradeC, 901.111),
		},
		storage: []domain.StorageRecord{stock("WH-001", 33.333, 99.999)},
	}
	e := newTestEngine(t, src)

	national, err := e.NationalSummary("")
	require.NoError(t, err)
	assertDecimals(t, national.Production.TotalTons, 2)
	assertDecimals(t, national.Production.AvgPerRegion, 2)
	assertDecimals(t, national.Prices.AvgPriceTZS, 2)
	assertDecimals(t, national.Storage.UtilizationPercent, 1)

	prices, err := e.PriceAnalysis("", "")
	require.NoError(t, err)
	assertDecimals(t, prices.CurrentPrices.Volatility, 2)
	for _, p := range prices.GradeAnalysis.GradePremiums {
		assertDecimals(t, p.ActualPremiumPercent, 1)
		assertDecimals(t, p.DiscrepancyPercent, 1)
	}

	opps, err := e.MarketOpportunities()
	require.NoError(t, err)
	assertDecimals(t, opps.Arbitrage.ProfitMarginPercent, 1)
	assertDecimals(t, opps.Arbitrage.PriceGapTZS, 2)
	assertDecimals(t, opps.QualityPremium.PremiumPercent, 1)
}
