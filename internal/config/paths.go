package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains every dataset and forecast artifact location.
// This is the single source of truth for file paths used by loaders and validators.
type Paths struct {
	BaseDir      string
	DataDir      string
	ForecastsDir string

	// Raw datasets
	ProductionFile string
	PriceFile      string
	StorageFile    string

	// Trainer outputs
	ProductionForecastDir     string
	PriceForecastDir          string
	ProductionForecastSummary string
	PriceForecastSummary      string
}

// NewPaths resolves a DataConfig into absolute locations
func NewPaths(cfg DataConfig) *Paths {
	base := cfg.BaseDir
	if base == "" {
		base = "."
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	dataDir := resolve(orDefault(cfg.DataDir, DefaultDataDir))
	forecastsDir := resolve(orDefault(cfg.ForecastsDir, DefaultForecastsDir))
	productionForecastDir := filepath.Join(forecastsDir, "production")
	priceForecastDir := filepath.Join(forecastsDir, "prices")

	return &Paths{
		BaseDir:      base,
		DataDir:      dataDir,
		ForecastsDir: forecastsDir,

		ProductionFile: filepath.Join(dataDir, orDefault(cfg.ProductionFile, ProductionFileName)),
		PriceFile:      filepath.Join(dataDir, orDefault(cfg.PriceFile, PriceFileName)),
		StorageFile:    filepath.Join(dataDir, orDefault(cfg.StorageFile, StorageFileName)),

		ProductionForecastDir:     productionForecastDir,
		PriceForecastDir:          priceForecastDir,
		ProductionForecastSummary: filepath.Join(productionForecastDir, ProductionForecastSummaryName),
		PriceForecastSummary:      filepath.Join(priceForecastDir, PriceForecastSummaryName),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// RegionSlug converts a region name into the form used in per-region forecast file names
func RegionSlug(region string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(region)), " ", "_")
}

// ProductionForecastSeriesFile returns the per-region forecast series path
func (p *Paths) ProductionForecastSeriesFile(region string) string {
	return filepath.Join(p.ProductionForecastDir, ProductionForecastSeriesPrefix+RegionSlug(region)+".csv")
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved locations for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("forecasts", p.ForecastsDir),
		),
		slog.Group("datasets",
			slog.String("production", p.ProductionFile),
			slog.String("price", p.PriceFile),
			slog.String("storage", p.StorageFile),
		),
		slog.Group("forecasts",
			slog.String("production_summary", p.ProductionForecastSummary),
			slog.String("price_summary", p.PriceForecastSummary),
		))
}

// ValidateRequiredFiles checks that the mandatory datasets exist
func (p *Paths) ValidateRequiredFiles() error {
	requiredFiles := []struct {
		name string
		path string
	}{
		{"Production", p.ProductionFile},
		{"Price", p.PriceFile},
		{"Storage", p.StorageFile},
	}

	var missingFiles []string
	for _, f := range requiredFiles {
		if !FileExists(f.path) {
			missingFiles = append(missingFiles, fmt.Sprintf("%s (%s)", f.name, f.path))
		}
	}

	if len(missingFiles) > 0 {
		return fmt.Errorf("required files missing: %s", strings.Join(missingFiles, ", "))
	}

	return nil
}
