package validation

import (
	"fmt"
	"log/slog"

	"maizeintel/internal/config"
	"maizeintel/internal/dataset"
)

// Forecast result keys
const (
	ProductionForecastSeries  = "production_forecast"
	ProductionForecastSummary = "production_forecast_summary"
	PriceForecastSummary      = "price_forecast"
)

// ValidateAll validates the three raw datasets independently. A dataset that
// cannot be loaded yields a single error in its own result.
func (v *Validator) ValidateAll(loader *dataset.Loader) map[string]*Result {
	checks := []struct {
		name     string
		validate func(*dataset.Table) *Result
	}{
		{dataset.Production, v.ValidateProduction},
		{dataset.Price, v.ValidatePrices},
		{dataset.Storage, v.ValidateStorage},
	}

	results := make(map[string]*Result, len(checks))
	for _, check := range checks {
		t, err := loader.Table(check.name)
		if err != nil {
			v.logger.Warn("dataset could not be loaded for validation",
				slog.String("dataset", check.name),
				slog.String("error", err.Error()))
			results[check.name] = loadFailure(check.name, err)
			continue
		}
		results[check.name] = check.validate(t)
	}
	return results
}

// ValidateForecasts validates the trainer's artifacts: the per-region
// production series, the production summary and the price summary. Artifacts
// that do not exist yet produce an info-only valid result.
func (v *Validator) ValidateForecasts(loader *dataset.Loader) map[string]*Result {
	results := map[string]*Result{
		ProductionForecastSeries: v.validateProductionSeries(loader),
	}

	summary, found, err := loader.OptionalTable(dataset.ProductionForecast)
	switch {
	case err != nil:
		results[ProductionForecastSummary] = loadFailure(ProductionForecastSummary, err)
	case !found:
		results[ProductionForecastSummary] = notTrained("Production forecast summary")
	default:
		results[ProductionForecastSummary] = v.ValidateForecastSummary(summary)
	}

	prices, found, err := loader.OptionalTable(dataset.PriceForecast)
	switch {
	case err != nil:
		results[PriceForecastSummary] = loadFailure(PriceForecastSummary, err)
	case !found:
		results[PriceForecastSummary] = notTrained("Price forecasts")
	default:
		results[PriceForecastSummary] = v.ValidateForecast(prices, ForecastPrice)
	}

	return results
}

// validateProductionSeries merges every forecast_<region>.csv into one
// production forecast table, taking the region from the file name when the
// column is absent.
func (v *Validator) validateProductionSeries(loader *dataset.Loader) *Result {
	series, err := loader.ProductionForecastSeries()
	if err != nil {
		return loadFailure(ProductionForecastSeries, err)
	}
	if len(series) == 0 {
		return notTrained("Production forecasts")
	}

	columns := dataset.ProductionForecastColumns
	var rows [][]string
	var skipped []string

	for _, file := range series {
		t := file.Table
		region := v.regionForSlug(file.Slug)
		if missing := t.MissingColumns(columns[:4]); len(missing) > 0 {
			skipped = append(skipped, fmt.Sprintf("%s: Missing required columns: %s", file.Name, quoteSet(missing)))
			continue
		}
		for i := range t.Rows {
			row := make([]string, len(columns))
			for c, column := range columns {
				row[c], _ = t.Value(i, column)
			}
			if row[4] == "" {
				row[4] = region
			}
			rows = append(rows, row)
		}
	}

	r := v.ValidateForecast(dataset.NewTable(dataset.ProductionForecast, columns, rows), ForecastProduction)
	for _, msg := range skipped {
		r.AddError("%s", msg)
	}
	r.AddInfo("Series files: %d", len(series))
	return r
}

func (v *Validator) regionForSlug(slug string) string {
	for _, region := range v.registry.Regions() {
		if config.RegionSlug(region) == slug {
			return region
		}
	}
	return slug
}

func notTrained(what string) *Result {
	r := NewResult()
	r.AddInfo("%s not yet trained", what)
	return r
}
