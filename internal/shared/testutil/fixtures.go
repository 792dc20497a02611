package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"maizeintel/internal/config"
	"maizeintel/pkg/contracts/domain"
)

// DateLayout is the on-disk date format of every dataset
const DateLayout = "2006-01-02"

// DataFixture lays out datasets in a temporary directory the way a deployment does
type DataFixture struct {
	t     *testing.T
	Dir   string
	Paths *config.Paths
}

// NewDataFixture creates an empty data and forecasts tree under t.TempDir()
func NewDataFixture(t *testing.T) *DataFixture {
	t.Helper()
	dir := t.TempDir()
	return &DataFixture{
		t:     t,
		Dir:   dir,
		Paths: config.NewPaths(config.DataConfig{BaseDir: dir}),
	}
}

// Config returns a DataConfig rooted at the fixture directory
func (f *DataFixture) Config() config.DataConfig {
	return config.DataConfig{BaseDir: f.Dir}
}

// WriteCSV writes header and rows to path, creating directories as needed
func (f *DataFixture) WriteCSV(path string, header []string, rows [][]string) {
	f.t.Helper()
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0755))

	file, err := os.Create(path)
	require.NoError(f.t, err)
	defer file.Close()

	w := csv.NewWriter(file)
	require.NoError(f.t, w.Write(header))
	require.NoError(f.t, w.WriteAll(rows))
}

// Production writes the production dataset
func (f *DataFixture) Production(records ...domain.ProductionRecord) {
	f.t.Helper()
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Date.Format(DateLayout), r.Region, string(r.Season),
			ftoa(r.QuantityTons), ftoa(r.FarmAreaHectares),
		})
	}
	f.WriteCSV(f.Paths.ProductionFile,
		[]string{"date", "region", "season", "quantity_tons", "farm_area_hectares"}, rows)
}

// Prices writes the price dataset
func (f *DataFixture) Prices(records ...domain.PriceRecord) {
	f.t.Helper()
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Date.Format(DateLayout), r.Market, r.Region,
			string(r.QualityGrade), ftoa(r.PricePerKgTZS),
		})
	}
	f.WriteCSV(f.Paths.PriceFile,
		[]string{"date", "market", "region", "quality_grade", "price_per_kg_tzs"}, rows)
}

// Storage writes the storage dataset
func (f *DataFixture) Storage(records ...domain.StorageRecord) {
	f.t.Helper()
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Date.Format(DateLayout), r.WarehouseID, r.Region,
			ftoa(r.QuantityStoredTons), ftoa(r.CapacityTons),
		})
	}
	f.WriteCSV(f.Paths.StorageFile,
		[]string{"date", "warehouse_id", "region", "quantity_stored_tons", "capacity_tons"}, rows)
}

// ProductionForecastSummary writes the trainer's per-region summary
func (f *DataFixture) ProductionForecastSummary(rows ...domain.RegionForecastSummary) {
	f.t.Helper()
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Region, ftoa(r.HistoricalAvg), ftoa(r.ForecastAvg), ftoa(r.GrowthPct),
			ftoa(r.ForecastMin), ftoa(r.ForecastMax), ftoa(r.TrainingTimeSec),
		})
	}
	f.WriteCSV(f.Paths.ProductionForecastSummary,
		[]string{"region", "historical_avg", "forecast_avg", "growth_pct", "forecast_min", "forecast_max", "training_time_sec"}, out)
}

// PriceForecasts writes the price forecast summary with YYYY-MM month periods
func (f *DataFixture) PriceForecasts(rows ...domain.ForecastRecord) {
	f.t.Helper()
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.TimeBucket.Format("2006-01"), ftoa(r.Yhat), ftoa(r.YhatLower), ftoa(r.YhatUpper),
			r.Market, string(r.Grade),
		})
	}
	f.WriteCSV(f.Paths.PriceForecastSummary,
		[]string{"month", "yhat", "yhat_lower", "yhat_upper", "market", "grade"}, out)
}

// ProductionForecastSeries writes a per-region forecast series file
func (f *DataFixture) ProductionForecastSeries(region string, rows ...domain.ForecastRecord) {
	f.t.Helper()
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.TimeBucket.Format(DateLayout), ftoa(r.Yhat), ftoa(r.YhatLower), ftoa(r.YhatUpper),
		})
	}
	f.WriteCSV(f.Paths.ProductionForecastSeriesFile(region),
		[]string{"ds", "yhat", "yhat_lower", "yhat_upper"}, out)
}

// Day returns midnight UTC of the given date
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FixedClock returns a clock function that always reports now
func FixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
