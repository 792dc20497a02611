package validation

import (
	"maizeintel/internal/dataset"
	"maizeintel/pkg/contracts/domain"
)

// ForecastKind selects the forecast column layout
type ForecastKind string

const (
	ForecastProduction ForecastKind = "production"
	ForecastPrice      ForecastKind = "price"
)

var summaryColumns = []string{"region", "historical_avg", "forecast_avg"}

// ValidateForecast checks a forecast series table of the given kind
func (v *Validator) ValidateForecast(t *dataset.Table, kind ForecastKind) *Result {
	r := NewResult()
	name := dataset.ProductionForecast
	required := dataset.ProductionForecastColumns
	if kind == ForecastPrice {
		name = dataset.PriceForecast
		required = dataset.PriceForecastColumns
	}

	if t.Len() == 0 {
		r.AddError("Forecast data is empty")
		return v.done(r, name)
	}
	if missing := t.MissingColumns(required); len(missing) > 0 {
		r.AddError("Missing required columns: %s", quoteSet(missing))
		return v.done(r, name)
	}

	yhat, badYhat := numbers(t, "yhat")
	lower, badLower := numbers(t, "yhat_lower")
	upper, badUpper := numbers(t, "yhat_upper")
	checkNumeric(r, "yhat", badYhat)
	checkNumeric(r, "yhat_lower", badLower)
	checkNumeric(r, "yhat_upper", badUpper)

	if n := countWhere(yhat, func(y float64) bool { return y < 0 }); n > 0 {
		r.AddError("%d forecasts have negative values", n)
	}

	inverted, outsideCI := 0, 0
	for i := range yhat {
		if lower[i] > upper[i] {
			inverted++
		}
		point := domain.ForecastRecord{Yhat: yhat[i], YhatLower: lower[i], YhatUpper: upper[i]}
		if !point.WithinInterval() {
			outsideCI++
		}
	}
	if inverted > 0 {
		r.AddError("%d forecasts have invalid confidence intervals (lower > upper)", inverted)
	}
	if outsideCI > 0 {
		r.AddWarning("%d forecasts fall outside their own confidence intervals", outsideCI)
	}

	r.AddInfo("Total forecasts: %d", t.Len())
	r.AddInfo("Forecast type: %s", kind)
	if kind == ForecastProduction {
		r.AddInfo("Regions covered: %d", len(distinct(t, "region")))
	} else {
		r.AddInfo("Markets covered: %d", len(distinct(t, "market")))
		r.AddInfo("Grades covered: %d", len(distinct(t, "grade")))
	}

	return v.done(r, name)
}

// ValidateForecastSummary checks the trainer's per-region production summary
func (v *Validator) ValidateForecastSummary(t *dataset.Table) *Result {
	r := NewResult()
	const name = "production_forecast_summary"

	if t.Len() == 0 {
		r.AddError("Forecast summary is empty")
		return v.done(r, name)
	}
	if missing := t.MissingColumns(summaryColumns); len(missing) > 0 {
		r.AddError("Missing required columns: %s", quoteSet(missing))
		return v.done(r, name)
	}

	if invalid := outside(t, "region", v.registry.IsRegion); len(invalid) > 0 {
		r.AddError("Invalid regions found: %s", quoteList(invalid))
	}

	hist, badHist := numbers(t, "historical_avg")
	fcst, badFcst := numbers(t, "forecast_avg")
	checkNumeric(r, "historical_avg", badHist)
	checkNumeric(r, "forecast_avg", badFcst)

	if n := countWhere(fcst, func(f float64) bool { return f < 0 }); n > 0 {
		r.AddError("%d forecasts have negative values", n)
	}
	if n := countWhere(hist, func(h float64) bool { return h == 0 }); n > 0 {
		r.AddWarning("%d regions have zero historical average (growth undefined)", n)
	}

	r.AddInfo("Total forecasts: %d", t.Len())
	r.AddInfo("Regions covered: %d", len(distinct(t, "region")))

	return v.done(r, name)
}
