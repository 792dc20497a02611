package config

import (
	"math"
	"slices"
	"time"

	"maizeintel/pkg/contracts/domain"
)

// SeasonType labels a calendar month for seasonal analysis
type SeasonType string

const (
	SeasonMasikaHarvest SeasonType = "masika_harvest"
	SeasonVuliHarvest   SeasonType = "vuli_harvest"
	SeasonLean          SeasonType = "lean_season"
	SeasonNormal        SeasonType = "normal"
)

// MetricClass selects the rounding precision of a reported number
type MetricClass string

const (
	MetricPrice       MetricClass = "price"
	MetricQuantity    MetricClass = "quantity"
	MetricPercentage  MetricClass = "percentage"
	MetricUtilization MetricClass = "utilization"
	MetricCorrelation MetricClass = "correlation"
)

// ProductionTier classifies regions by typical output
type ProductionTier string

const (
	TierHigh    ProductionTier = "high"
	TierMedium  ProductionTier = "medium"
	TierLow     ProductionTier = "low"
	TierUnknown ProductionTier = "unknown"
)

// SeasonCalendar holds the planting/harvest months of both seasons
type SeasonCalendar struct {
	MasikaPlanting []time.Month
	MasikaHarvest  []time.Month
	VuliPlanting   []time.Month
	VuliHarvest    []time.Month
	LeanSeason     []time.Month

	// Static shares of annual production
	MasikaShare float64
	VuliShare   float64
}

// StorageThresholds are utilization percentages used to categorize warehouses
type StorageThresholds struct {
	CriticalHigh float64
	CriticalLow  float64
	OptimalMin   float64
	OptimalMax   float64
	// Validation warns above this utilization
	ValidationCritical float64
}

// PriceBand is the soft range of plausible prices per kg
type PriceBand struct {
	MinNormal float64
	MaxNormal float64
}

// MAPEBands grade forecast error upper bounds, in percent
type MAPEBands struct {
	Excellent  float64
	Good       float64
	Acceptable float64
}

// ValidationRules are data quality thresholds
type ValidationRules struct {
	OutlierIQRMultiplier float64
	MissingErrorPct      float64
	MissingWarnPct       float64
	MinDataPoints        int
}

// Registry is the immutable domain configuration shared by loaders, validators and analytics.
// Collections are only reachable through accessors returning copies.
type Registry struct {
	regions  []string
	markets  []string
	grades   []domain.QualityGrade
	calendar SeasonCalendar

	periods           map[string]int
	defaultPeriodDays int
	premiums          map[domain.QualityGrade]float64
	decimals          map[MetricClass]int
	tiers             map[string]ProductionTier

	productionCenters  []string
	consumptionCenters []string

	Storage    StorageThresholds
	Prices     PriceBand
	MAPE       MAPEBands
	Validation ValidationRules
	Currency   string
}

// DefaultRegistry builds the registry for the Tanzanian maize market
func DefaultRegistry() *Registry {
	r := &Registry{
		regions: []string{
			"Mbeya", "Iringa", "Ruvuma", "Rukwa", "Morogoro", "Dodoma",
			"Arusha", "Kilimanjaro", "Dar es Salaam", "Mwanza", "Shinyanga",
		},
		markets: []string{
			"Mbeya Central", "Iringa Central", "Songea Central", "Sumbawanga Central",
			"Morogoro Central", "Dodoma Central", "Arusha Central", "Moshi Central",
			"Kariakoo", "Mwenge", "Mwanza Central", "Shinyanga Central",
		},
		grades: []domain.QualityGrade{domain.GradeA, domain.GradeB, domain.GradeC},
		calendar: SeasonCalendar{
			MasikaPlanting: []time.Month{time.March, time.April},
			MasikaHarvest:  []time.Month{time.June, time.July, time.August},
			VuliPlanting:   []time.Month{time.October, time.November},
			VuliHarvest:    []time.Month{time.January, time.February},
			LeanSeason:     []time.Month{time.March, time.April, time.May},
			MasikaShare:    0.65,
			VuliShare:      0.35,
		},
		periods: map[string]int{
			"current": 30,
			"month":   30,
			"quarter": 90,
			"season":  180,
			"year":    365,
		},
		defaultPeriodDays: DefaultPeriodDays,
		premiums: map[domain.QualityGrade]float64{
			domain.GradeA: 0.25,
			domain.GradeB: 0.12,
			domain.GradeC: 0.00,
		},
		decimals: map[MetricClass]int{
			MetricPrice:       2,
			MetricQuantity:    2,
			MetricPercentage:  1,
			MetricUtilization: 1,
			MetricCorrelation: 3,
		},
		productionCenters:  []string{"Mbeya", "Iringa", "Ruvuma", "Rukwa"},
		consumptionCenters: []string{"Dar es Salaam", "Arusha", "Dodoma"},
		Storage: StorageThresholds{
			CriticalHigh:       90,
			CriticalLow:        10,
			OptimalMin:         40,
			OptimalMax:         80,
			ValidationCritical: 95,
		},
		Prices: PriceBand{MinNormal: 800, MaxNormal: 2500},
		MAPE:   MAPEBands{Excellent: 5, Good: 10, Acceptable: 20},
		Validation: ValidationRules{
			OutlierIQRMultiplier: 3,
			MissingErrorPct:      20,
			MissingWarnPct:       5,
			MinDataPoints:        10,
		},
		Currency: Currency,
	}

	r.tiers = make(map[string]ProductionTier, len(r.regions))
	for _, region := range []string{"Mbeya", "Iringa", "Ruvuma", "Shinyanga"} {
		r.tiers[region] = TierHigh
	}
	for _, region := range []string{"Rukwa", "Morogoro", "Dodoma", "Mwanza"} {
		r.tiers[region] = TierMedium
	}
	for _, region := range []string{"Arusha", "Kilimanjaro", "Dar es Salaam"} {
		r.tiers[region] = TierLow
	}

	return r
}

// Regions returns the known regions in canonical order
func (r *Registry) Regions() []string { return slices.Clone(r.regions) }

// Markets returns the known markets in canonical order
func (r *Registry) Markets() []string { return slices.Clone(r.markets) }

// Grades returns the quality grades from best to worst
func (r *Registry) Grades() []domain.QualityGrade { return slices.Clone(r.grades) }

// IsRegion reports whether name is a known region
func (r *Registry) IsRegion(name string) bool { return slices.Contains(r.regions, name) }

// IsMarket reports whether name is a known market
func (r *Registry) IsMarket(name string) bool { return slices.Contains(r.markets, name) }

// IsGrade reports whether g is a known quality grade
func (r *Registry) IsGrade(g string) bool {
	return slices.Contains(r.grades, domain.QualityGrade(g))
}

// Calendar returns a copy of the seasonal calendar
func (r *Registry) Calendar() SeasonCalendar {
	c := r.calendar
	c.MasikaPlanting = slices.Clone(c.MasikaPlanting)
	c.MasikaHarvest = slices.Clone(c.MasikaHarvest)
	c.VuliPlanting = slices.Clone(c.VuliPlanting)
	c.VuliHarvest = slices.Clone(c.VuliHarvest)
	c.LeanSeason = slices.Clone(c.LeanSeason)
	return c
}

// SeasonOf labels a month. Masika harvest wins over vuli harvest, which wins over lean season.
func (r *Registry) SeasonOf(m time.Month) SeasonType {
	switch {
	case slices.Contains(r.calendar.MasikaHarvest, m):
		return SeasonMasikaHarvest
	case slices.Contains(r.calendar.VuliHarvest, m):
		return SeasonVuliHarvest
	case slices.Contains(r.calendar.LeanSeason, m):
		return SeasonLean
	default:
		return SeasonNormal
	}
}

// PeriodDays maps a period token to its length in days; unknown tokens get the default
func (r *Registry) PeriodDays(token string) int {
	if days, ok := r.periods[token]; ok {
		return days
	}
	return r.defaultPeriodDays
}

// IsPeriod reports whether token is a recognised period
func (r *Registry) IsPeriod(token string) bool {
	_, ok := r.periods[token]
	return ok
}

// PeriodTokens returns the recognised period tokens sorted by name
func (r *Registry) PeriodTokens() []string {
	tokens := make([]string, 0, len(r.periods))
	for t := range r.periods {
		tokens = append(tokens, t)
	}
	slices.Sort(tokens)
	return tokens
}

// ExpectedPremium returns the expected premium of a grade over grade C, as a fraction
func (r *Registry) ExpectedPremium(g domain.QualityGrade) float64 {
	return r.premiums[g]
}

// Decimals returns the rounding precision for a metric class
func (r *Registry) Decimals(class MetricClass) int {
	return r.decimals[class]
}

// Round rounds v half to even at the precision of its metric class.
// Non-finite values round to 0 so every report stays serializable.
func (r *Registry) Round(class MetricClass, v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	pow := math.Pow(10, float64(r.decimals[class]))
	return math.RoundToEven(v*pow) / pow
}

// Tier returns the production tier of a region
func (r *Registry) Tier(region string) ProductionTier {
	if t, ok := r.tiers[region]; ok {
		return t
	}
	return TierUnknown
}

// IsProductionCenter reports whether region is a surplus producing area
func (r *Registry) IsProductionCenter(region string) bool {
	return slices.Contains(r.productionCenters, region)
}

// IsConsumptionCenter reports whether region is a major consumption area
func (r *Registry) IsConsumptionCenter(region string) bool {
	return slices.Contains(r.consumptionCenters, region)
}

// MonthAbbrev returns the three letter month name used in reports
func MonthAbbrev(m time.Month) string {
	return m.String()[:3]
}
