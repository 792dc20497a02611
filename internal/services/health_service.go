package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"maizeintel/internal/config"
	api "maizeintel/pkg/contracts/api/v1"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	startTime time.Time
	now       func() time.Time
	logger    *slog.Logger
}

// NewHealthService creates a health service reporting on the datasets under paths
func NewHealthService(version string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized", slog.String("version", version))

	return &HealthService{
		version:   version,
		paths:     paths,
		startTime: time.Now(),
		now:       time.Now,
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck reports that the process is serving
func (hs *HealthService) HealthCheck(ctx context.Context) api.HealthResponse {
	return api.HealthResponse{
		Status:    api.StatusHealthy,
		Version:   hs.version,
		Timestamp: hs.now().UTC(),
		Checks: map[string]string{
			"uptime":     time.Since(hs.startTime).Round(time.Second).String(),
			"go_version": runtime.Version(),
		},
	}
}

// ReadinessCheck reports whether every mandatory dataset exists.
// Missing forecasts only degrade the status.
func (hs *HealthService) ReadinessCheck(ctx context.Context) (api.HealthResponse, bool) {
	status := api.HealthResponse{
		Status:    api.StatusHealthy,
		Version:   hs.version,
		Timestamp: hs.now().UTC(),
		Checks:    make(map[string]string, 5),
	}

	ready := true
	for name, path := range map[string]string{
		"production": hs.paths.ProductionFile,
		"prices":     hs.paths.PriceFile,
		"storage":    hs.paths.StorageFile,
	} {
		if config.FileExists(path) {
			status.Checks[name] = "ok"
			continue
		}
		status.Checks[name] = "missing"
		ready = false
	}

	for name, path := range map[string]string{
		"production_forecast": hs.paths.ProductionForecastSummary,
		"price_forecast":      hs.paths.PriceForecastSummary,
	} {
		if config.FileExists(path) {
			status.Checks[name] = "ok"
			continue
		}
		status.Checks[name] = "not_trained"
		if ready {
			status.Status = api.StatusDegraded
		}
	}

	if !ready {
		status.Status = api.StatusUnhealthy
		if err := hs.paths.ValidateRequiredFiles(); err != nil {
			hs.logger.WarnContext(ctx, "readiness check failed", slog.String("error", err.Error()))
		}
	}
	return status, ready
}
