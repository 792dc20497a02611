package validation

import (
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"maizeintel/internal/config"
	"maizeintel/internal/dataset"
	"maizeintel/pkg/contracts/domain"
)

// Validator runs the dataset rule checks against a registry
type Validator struct {
	registry *config.Registry
	now      func() time.Time
	logger   *slog.Logger
}

// NewValidator creates a validator. The clock defaults to the wall clock.
func NewValidator(registry *config.Registry, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		registry: registry,
		now:      dataset.WallClock,
		logger:   logger.With(slog.String("component", "validator")),
	}
}

// WithClock returns a copy of the validator using now for future-date checks
func (v *Validator) WithClock(now func() time.Time) *Validator {
	cp := *v
	cp.now = now
	return &cp
}

// preamble runs the emptiness, required-column and date checks shared by the
// raw datasets. It returns the parsed dates and false when validation must stop.
func (v *Validator) preamble(r *Result, t *dataset.Table, label string, required []string) ([]time.Time, bool) {
	if t.Len() == 0 {
		r.AddError("%s data is empty", label)
		return nil, false
	}

	if missing := t.MissingColumns(required); len(missing) > 0 {
		r.AddError("Missing required columns: %s", quoteSet(missing))
		return nil, false
	}

	ds, err := dates(t, "date")
	if err != nil {
		r.AddError("Invalid date format: %v", err)
		return nil, false
	}

	if n := countFuture(ds, v.now()); n > 0 {
		r.AddWarning("%d records have future dates", n)
	}
	return ds, true
}

// checkNumeric reports non-numeric cells of measure columns
func checkNumeric(r *Result, column string, bad []string) {
	if len(bad) > 0 {
		r.AddError("Column '%s' has non-numeric values: %s", column, quoteList(bad))
	}
}

// checkVolume warns when a dataset is too small for the analytics to be meaningful
func (v *Validator) checkVolume(r *Result, t *dataset.Table) {
	if need := v.registry.Validation.MinDataPoints; t.Len() < need {
		r.AddWarning("Only %d records; at least %d are needed for analysis", t.Len(), need)
	}
}

// auditMissing reports the share of missing cells in every column
func (v *Validator) auditMissing(r *Result, t *dataset.Table) {
	rules := v.registry.Validation
	for _, column := range t.Columns {
		missing := 0
		for _, cell := range t.Column(column) {
			if dataset.IsMissing(cell) {
				missing++
			}
		}
		if missing == 0 {
			continue
		}
		pct := float64(missing) / float64(t.Len()) * 100
		switch {
		case pct > rules.MissingErrorPct:
			r.AddError("Column '%s' has %.1f%% missing values", column, pct)
		case pct > rules.MissingWarnPct:
			r.AddWarning("Column '%s' has %.1f%% missing values", column, pct)
		}
	}
}

// ValidateProduction checks the production dataset
func (v *Validator) ValidateProduction(t *dataset.Table) *Result {
	r := NewResult()
	ds, ok := v.preamble(r, t, "Production", dataset.ProductionColumns)
	if !ok {
		return v.done(r, dataset.Production)
	}

	if invalid := outside(t, "region", v.registry.IsRegion); len(invalid) > 0 {
		r.AddError("Invalid regions found: %s", quoteList(invalid))
	}

	qty, bad := numbers(t, "quantity_tons")
	checkNumeric(r, "quantity_tons", bad)
	if n := countWhere(qty, func(q float64) bool { return q < 0 }); n > 0 {
		r.AddError("%d records have negative quantities", n)
	}
	if n := countWhere(qty, func(q float64) bool { return q == 0 }); n > 0 {
		r.AddWarning("%d records have zero quantities", n)
	}
	if n := countOutliers(qty, v.registry.Validation.OutlierIQRMultiplier); n > 0 {
		r.AddWarning("%d potential outliers detected (extreme values)", n)
	}

	v.checkVolume(r, t)
	v.auditMissing(r, t)

	r.AddInfo("Total records: %d", t.Len())
	r.AddInfo("Date range: %s", dateRange(ds))
	r.AddInfo("Regions: %d", len(distinct(t, "region")))
	r.AddInfo("Total production: %.2f tons", sum(qty))

	return v.done(r, dataset.Production)
}

// ValidatePrices checks the price dataset
func (v *Validator) ValidatePrices(t *dataset.Table) *Result {
	r := NewResult()
	ds, ok := v.preamble(r, t, "Price", dataset.PriceColumns)
	if !ok {
		return v.done(r, dataset.Price)
	}

	if invalid := outside(t, "market", v.registry.IsMarket); len(invalid) > 0 {
		r.AddError("Invalid markets found: %s", quoteList(invalid))
	}
	if invalid := outside(t, "quality_grade", v.registry.IsGrade); len(invalid) > 0 {
		r.AddError("Invalid quality grades found: %s", quoteList(invalid))
	}

	prices, bad := numbers(t, "price_per_kg_tzs")
	checkNumeric(r, "price_per_kg_tzs", bad)
	if n := countWhere(prices, func(p float64) bool { return p <= 0 }); n > 0 {
		r.AddError("%d records have non-positive prices", n)
	}

	band := v.registry.Prices
	if n := countWhere(prices, func(p float64) bool { return p < band.MinNormal }); n > 0 {
		r.AddWarning("%d records have unusually low prices (< %s TZS)", n, formatNumber(band.MinNormal))
	}
	if n := countWhere(prices, func(p float64) bool { return p > band.MaxNormal }); n > 0 {
		r.AddWarning("%d records have unusually high prices (> %s TZS)", n, formatNumber(band.MaxNormal))
	}
	if n := countOutliers(prices, v.registry.Validation.OutlierIQRMultiplier); n > 0 {
		r.AddWarning("%d potential outliers detected (extreme values)", n)
	}

	checkGradeOrdering(r, t, prices)

	v.checkVolume(r, t)
	v.auditMissing(r, t)

	r.AddInfo("Total records: %d", t.Len())
	r.AddInfo("Date range: %s", dateRange(ds))
	r.AddInfo("Markets: %d", len(distinct(t, "market")))
	r.AddInfo("Average price: %.2f TZS", mean(prices))

	return v.done(r, dataset.Price)
}

// checkGradeOrdering warns when a market's mean grade prices are not A >= B >= C
func checkGradeOrdering(r *Result, t *dataset.Table, prices []float64) {
	markets := t.Column("market")
	grades := t.Column("quality_grade")

	for _, market := range distinct(t, "market") {
		byGrade := make(map[domain.QualityGrade][]float64)
		for i, m := range markets {
			if m != market || math.IsNaN(prices[i]) {
				continue
			}
			g := domain.QualityGrade(grades[i])
			byGrade[g] = append(byGrade[g], prices[i])
		}

		gradeMean := func(g domain.QualityGrade) (float64, bool) {
			vals, ok := byGrade[g]
			if !ok {
				return 0, false
			}
			return stat.Mean(vals, nil), true
		}

		a, okA := gradeMean(domain.GradeA)
		b, okB := gradeMean(domain.GradeB)
		c, okC := gradeMean(domain.GradeC)
		if okA && okB && a < b {
			r.AddWarning("%s: Grade A price lower than Grade B (unusual)", market)
		}
		if okB && okC && b < c {
			r.AddWarning("%s: Grade B price lower than Grade C (unusual)", market)
		}
	}
}

// ValidateStorage checks the storage dataset
func (v *Validator) ValidateStorage(t *dataset.Table) *Result {
	r := NewResult()
	ds, ok := v.preamble(r, t, "Storage", dataset.StorageColumns)
	if !ok {
		return v.done(r, dataset.Storage)
	}

	stored, badStored := numbers(t, "quantity_stored_tons")
	capacity, badCapacity := numbers(t, "capacity_tons")
	checkNumeric(r, "quantity_stored_tons", badStored)
	checkNumeric(r, "capacity_tons", badCapacity)

	if n := countWhere(stored, func(q float64) bool { return q < 0 }); n > 0 {
		r.AddError("%d records have negative storage quantities", n)
	}
	if n := countWhere(capacity, func(c float64) bool { return c <= 0 }); n > 0 {
		r.AddError("%d records have non-positive capacity", n)
	}

	utilization := make([]float64, len(stored))
	over := 0
	for i := range stored {
		// NaN operands propagate, so incomplete rows never count
		if stored[i] > capacity[i] {
			over++
		}
		utilization[i] = stored[i] / capacity[i] * 100
	}
	if over > 0 {
		r.AddWarning("%d records exceed warehouse capacity (possible error or real overstocking)", over)
	}

	critical := v.registry.Storage.ValidationCritical
	if n := countWhere(utilization, func(u float64) bool { return u > critical }); n > 0 {
		r.AddWarning("%d records show critical high utilization (>%s%%)", n, formatNumber(critical))
	}

	r.AddInfo("Active warehouses: %d", len(distinct(t, "warehouse_id")))

	v.checkVolume(r, t)
	v.auditMissing(r, t)

	r.AddInfo("Total records: %d", t.Len())
	r.AddInfo("Date range: %s", dateRange(ds))
	r.AddInfo("Total stored: %.2f tons", sum(stored))
	r.AddInfo("Total capacity: %.2f tons", sum(capacity))
	r.AddInfo("Avg utilization: %.1f%%", mean(utilization))

	return v.done(r, dataset.Storage)
}

func (v *Validator) done(r *Result, name string) *Result {
	v.logger.Debug("validation completed",
		slog.String("dataset", name),
		slog.Bool("valid", r.IsValid()),
		slog.Int("errors", len(r.Errors)),
		slog.Int("warnings", len(r.Warnings)))
	return r
}

// loadFailure is the result of a dataset that could not be read
func loadFailure(name string, err error) *Result {
	r := NewResult()
	r.AddError("Failed to load %s data: %s", name, err)
	return r
}
