package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"maizeintel/internal/config"
	apperrors "maizeintel/internal/errors"
	"maizeintel/internal/files"
	"maizeintel/pkg/contracts/domain"
)

// Logical dataset names
const (
	Production         = "production"
	Price              = "price"
	Storage            = "storage"
	ProductionForecast = "production_forecast"
	PriceForecast      = "price_forecast"
)

// Names lists every logical dataset name
var Names = []string{Production, Price, Storage, ProductionForecast, PriceForecast}

// ErrDatasetNotFound is wrapped by every missing-file error from the loader
var ErrDatasetNotFound = fmt.Errorf("dataset not found: %w", fs.ErrNotExist)

// Required columns per dataset
var (
	ProductionColumns         = []string{"date", "region", "quantity_tons"}
	PriceColumns              = []string{"date", "market", "price_per_kg_tzs", "quality_grade"}
	StorageColumns            = []string{"date", "warehouse_id", "quantity_stored_tons", "capacity_tons"}
	ProductionForecastColumns = []string{"ds", "yhat", "yhat_lower", "yhat_upper", "region"}
	PriceForecastColumns      = []string{"month", "yhat", "yhat_lower", "yhat_upper", "market", "grade"}

	productionSummaryColumns = []string{"region", "historical_avg", "forecast_avg"}
	forecastValueColumns     = []string{"yhat", "yhat_lower", "yhat_upper"}
)

// Loader reads datasets from the locations in config.Paths
type Loader struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewLoader creates a loader over the given paths
func NewLoader(paths *config.Paths, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		paths:  paths,
		logger: logger.With(slog.String("component", "dataset_loader")),
	}
}

// PathOf returns the configured path of a logical dataset
func (l *Loader) PathOf(name string) (string, error) {
	switch name {
	case Production:
		return l.paths.ProductionFile, nil
	case Price:
		return l.paths.PriceFile, nil
	case Storage:
		return l.paths.StorageFile, nil
	case ProductionForecast:
		return l.paths.ProductionForecastSummary, nil
	case PriceForecast:
		return l.paths.PriceForecastSummary, nil
	}
	return "", apperrors.NewAppValidationError(fmt.Sprintf("unknown dataset %q", name))
}

// Table reads the raw table for a logical dataset name
func (l *Loader) Table(name string) (*Table, error) {
	path, err := l.PathOf(name)
	if err != nil {
		return nil, err
	}
	return l.readPath(name, path)
}

// OptionalTable reads a dataset whose absence is not an error
func (l *Loader) OptionalTable(name string) (*Table, bool, error) {
	t, err := l.Table(name)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("optional dataset absent", slog.String("dataset", name))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func (l *Loader) readPath(name, path string) (*Table, error) {
	resolved, ok := locate(path)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s data at %s", name, path), ErrDatasetNotFound).InFile(path)
	}

	t, err := ReadFile(name, resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s data at %s", name, resolved), ErrDatasetNotFound).InFile(resolved)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("read %s data", name), err).
			InFile(resolved)
	}

	l.logger.Debug("dataset loaded",
		slog.String("dataset", name),
		slog.String("path", resolved),
		slog.Int("rows", t.Len()))

	return t, nil
}

// locate returns path, or its .xlsx sibling when only the workbook exists
func locate(path string) (string, bool) {
	if config.FileExists(path) {
		return path, true
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		alt := strings.TrimSuffix(path, filepath.Ext(path)) + ".xlsx"
		if _, err := os.Stat(alt); err == nil {
			return alt, true
		}
	}
	return "", false
}

// Production loads the production dataset
func (l *Loader) Production() ([]domain.ProductionRecord, error) {
	t, err := l.Table(Production)
	if err != nil {
		return nil, err
	}
	return ParseProduction(t)
}

// Prices loads the price dataset
func (l *Loader) Prices() ([]domain.PriceRecord, error) {
	t, err := l.Table(Price)
	if err != nil {
		return nil, err
	}
	return ParsePrices(t)
}

// Storage loads the storage dataset
func (l *Loader) Storage() ([]domain.StorageRecord, error) {
	t, err := l.Table(Storage)
	if err != nil {
		return nil, err
	}
	return ParseStorage(t)
}

// ProductionForecasts loads the per-region production forecast summary
func (l *Loader) ProductionForecasts() ([]domain.RegionForecastSummary, bool, error) {
	t, found, err := l.OptionalTable(ProductionForecast)
	if err != nil || !found {
		return nil, found, err
	}
	rows, err := ParseProductionSummary(t)
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

// PriceForecasts loads the monthly price forecast summary for all markets
func (l *Loader) PriceForecasts() ([]domain.ForecastRecord, bool, error) {
	t, found, err := l.OptionalTable(PriceForecast)
	if err != nil || !found {
		return nil, found, err
	}
	rows, err := ParseForecastSeries(t, "month", "")
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

// SeriesFile is one per-region production forecast series file
type SeriesFile struct {
	Slug  string
	Name  string
	Table *Table
}

// ProductionForecastSeries reads every forecast_<slug>.csv in the production
// forecast directory, ordered by slug. A missing directory yields no series.
func (l *Loader) ProductionForecastSeries() ([]SeriesFile, error) {
	found, err := files.NewDiscovery(l.paths.BaseDir).
		FindForecastSeries(l.paths.ProductionForecastDir, config.ProductionForecastSeriesPrefix)
	if err != nil {
		return nil, apperrors.NewStorageError("list production forecast series", err).
			InFile(l.paths.ProductionForecastDir)
	}

	series := make([]SeriesFile, 0, len(found))
	for _, slug := range files.SortedKeys(found) {
		file := found[slug]
		t, err := ReadFile(ProductionForecast, file.Path)
		if err != nil {
			return nil, apperrors.NewStorageError("read "+file.Name, err).InFile(file.Path)
		}
		series = append(series, SeriesFile{Slug: slug, Name: file.Name, Table: t})
	}

	l.logger.Debug("forecast series loaded", slog.Int("files", len(series)))
	return series, nil
}

// ParseProduction converts a raw table into production records.
// Rows with a blank date or quantity are skipped.
func ParseProduction(t *Table) ([]domain.ProductionRecord, error) {
	if err := requireColumns(t, ProductionColumns); err != nil {
		return nil, err
	}

	out := make([]domain.ProductionRecord, 0, t.Len())
	for i := range t.Rows {
		r := rowReader{t: t, row: i}
		date, okDate := r.date("date")
		qty, okQty := r.float("quantity_tons")
		area, _ := r.float("farm_area_hectares")
		if r.err != nil {
			return nil, r.err
		}
		if !okDate || !okQty {
			continue
		}
		out = append(out, domain.ProductionRecord{
			Date:             date,
			Region:           r.str("region"),
			Season:           domain.Season(r.str("season")),
			QuantityTons:     qty,
			FarmAreaHectares: area,
		})
	}
	return out, nil
}

// ParsePrices converts a raw table into price records.
// Rows with a blank date or price are skipped.
func ParsePrices(t *Table) ([]domain.PriceRecord, error) {
	if err := requireColumns(t, PriceColumns); err != nil {
		return nil, err
	}

	out := make([]domain.PriceRecord, 0, t.Len())
	for i := range t.Rows {
		r := rowReader{t: t, row: i}
		date, okDate := r.date("date")
		price, okPrice := r.float("price_per_kg_tzs")
		if r.err != nil {
			return nil, r.err
		}
		if !okDate || !okPrice {
			continue
		}
		out = append(out, domain.PriceRecord{
			Date:          date,
			Market:        r.str("market"),
			Region:        r.str("region"),
			QualityGrade:  domain.QualityGrade(r.str("quality_grade")),
			PricePerKgTZS: price,
		})
	}
	return out, nil
}

// ParseStorage converts a raw table into storage records.
// Rows with a blank date, stored quantity or capacity are skipped.
func ParseStorage(t *Table) ([]domain.StorageRecord, error) {
	if err := requireColumns(t, StorageColumns); err != nil {
		return nil, err
	}

	out := make([]domain.StorageRecord, 0, t.Len())
	for i := range t.Rows {
		r := rowReader{t: t, row: i}
		date, okDate := r.date("date")
		stored, okStored := r.float("quantity_stored_tons")
		capacity, okCap := r.float("capacity_tons")
		if r.err != nil {
			return nil, r.err
		}
		if !okDate || !okStored || !okCap {
			continue
		}
		out = append(out, domain.StorageRecord{
			Date:               date,
			WarehouseID:        r.str("warehouse_id"),
			Region:             r.str("region"),
			QuantityStoredTons: stored,
			CapacityTons:       capacity,
		})
	}
	return out, nil
}

// ParseProductionSummary converts the trainer's per-region summary.
// growth_pct is derived from the averages when the column is absent.
func ParseProductionSummary(t *Table) ([]domain.RegionForecastSummary, error) {
	if err := requireColumns(t, productionSummaryColumns); err != nil {
		return nil, err
	}

	out := make([]domain.RegionForecastSummary, 0, t.Len())
	for i := range t.Rows {
		r := rowReader{t: t, row: i}
		hist, okHist := r.float("historical_avg")
		fcst, okFcst := r.float("forecast_avg")
		growth, okGrowth := r.float("growth_pct")
		minV, _ := r.float("forecast_min")
		maxV, _ := r.float("forecast_max")
		train, _ := r.float("training_time_sec")
		mape, okMAPE := r.float("mape")
		if r.err != nil {
			return nil, r.err
		}
		if !okHist || !okFcst {
			continue
		}
		if !okGrowth && hist != 0 {
			growth = (fcst - hist) / hist * 100
		}

		row := domain.RegionForecastSummary{
			Region:          r.str("region"),
			HistoricalAvg:   hist,
			ForecastAvg:     fcst,
			GrowthPct:       growth,
			ForecastMin:     minV,
			ForecastMax:     maxV,
			TrainingTimeSec: train,
		}
		if okMAPE {
			row.MAPE = &mape
		}
		out = append(out, row)
	}
	return out, nil
}

// ParseForecastSeries converts forecast rows keyed by timeColumn (falling back
// to ds). region, when set, overrides a missing region column.
func ParseForecastSeries(t *Table, timeColumn, region string) ([]domain.ForecastRecord, error) {
	if !t.HasColumn(timeColumn) && t.HasColumn("ds") {
		timeColumn = "ds"
	}
	if err := requireColumns(t, append([]string{timeColumn}, forecastValueColumns...)); err != nil {
		return nil, err
	}

	out := make([]domain.ForecastRecord, 0, t.Len())
	for i := range t.Rows {
		r := rowReader{t: t, row: i}
		bucket, okBucket := r.date(timeColumn)
		yhat, okYhat := r.float("yhat")
		lower, _ := r.float("yhat_lower")
		upper, _ := r.float("yhat_upper")
		if r.err != nil {
			return nil, r.err
		}
		if !okBucket || !okYhat {
			continue
		}

		rowRegion := r.str("region")
		if rowRegion == "" {
			rowRegion = region
		}
		out = append(out, domain.ForecastRecord{
			TimeBucket: bucket,
			Yhat:       yhat,
			YhatLower:  lower,
			YhatUpper:  upper,
			Region:     rowRegion,
			Market:     r.str("market"),
			Grade:      domain.QualityGrade(r.str("grade")),
		})
	}
	return out, nil
}

func requireColumns(t *Table, required []string) error {
	if missing := t.MissingColumns(required); len(missing) > 0 {
		return apperrors.NewParsingError(
			fmt.Sprintf("%s data is missing columns %s", t.Name, strings.Join(missing, ", ")), nil).
			InFile(t.Path)
	}
	return nil
}

// rowReader extracts typed cells from one row, keeping the first parse error
type rowReader struct {
	t   *Table
	row int
	err error
}

func (r *rowReader) str(column string) string {
	v, _ := r.t.Value(r.row, column)
	if IsMissing(v) {
		return ""
	}
	return v
}

// float returns false for absent columns and missing cells
func (r *rowReader) float(column string) (float64, bool) {
	v := r.str(column)
	if v == "" {
		return 0, false
	}
	f, err := ParseNumber(v)
	if err != nil {
		r.fail(column, v, err)
		return 0, false
	}
	return f, true
}

func (r *rowReader) date(column string) (time.Time, bool) {
	v := r.str(column)
	if v == "" {
		return time.Time{}, false
	}
	d, err := ParseDate(v)
	if err != nil {
		r.fail(column, v, err)
		return time.Time{}, false
	}
	return d, true
}

func (r *rowReader) fail(column, value string, cause error) {
	if r.err != nil {
		return
	}
	// header is line 1
	r.err = apperrors.NewParsingError(
		fmt.Sprintf("%s data line %d: invalid %s %q", r.t.Name, r.row+2, column, value), cause).
		InFile(r.t.Path)
}
