package analytics

import (
	"log/slog"
	"time"

	"maizeintel/internal/config"
	"maizeintel/internal/dataset"
	"maizeintel/pkg/contracts/domain"
)

// Source supplies freshly loaded datasets. *dataset.Loader implements it.
type Source interface {
	Production() ([]domain.ProductionRecord, error)
	Prices() ([]domain.PriceRecord, error)
	Storage() ([]domain.StorageRecord, error)
	ProductionForecasts() ([]domain.RegionForecastSummary, bool, error)
	PriceForecasts() ([]domain.ForecastRecord, bool, error)
}

var _ Source = (*dataset.Loader)(nil)

// Engine generates reports. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	source       Source
	registry     *config.Registry
	now          func() time.Time
	trailingDays int
	logger       *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces the wall clock used for windows and timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTrailingDays sets the window of "current" prices
func WithTrailingDays(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.trailingDays = days
		}
	}
}

// NewEngine creates a report engine over source
func NewEngine(source Source, registry *config.Registry, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		source:       source,
		registry:     registry,
		now:          dataset.WallClock,
		trailingDays: config.TrailingPriceDays,
		logger:       logger.With(slog.String("component", "analytics")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the engine's domain configuration
func (e *Engine) Registry() *config.Registry {
	return e.registry
}

// window resolves a period token to its day count and the inclusive cutoff before now
func (e *Engine) window(now time.Time, period string) (string, int, time.Time) {
	if period == "" {
		period = config.DefaultPeriod
	}
	days := e.registry.PeriodDays(period)
	return period, days, daysBefore(now, days)
}

func daysBefore(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// nextMonth returns the first day of the calendar month after now
func nextMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

func (e *Engine) price(v float64) float64    { return e.registry.Round(config.MetricPrice, v) }
func (e *Engine) quantity(v float64) float64 { return e.registry.Round(config.MetricQuantity, v) }
func (e *Engine) percent(v float64) float64  { return e.registry.Round(config.MetricPercentage, v) }
func (e *Engine) util(v float64) float64     { return e.registry.Round(config.MetricUtilization, v) }

// isoformat renders a timestamp without zone, with microseconds only when present
func isoformat(t time.Time) string {
	if t.Nanosecond()/1000 == 0 {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format("2006-01-02T15:04:05.000000")
}
