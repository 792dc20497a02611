package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"maizeintel/internal/analytics"
	"maizeintel/internal/config"
	"maizeintel/internal/dataset"
	apierrors "maizeintel/internal/errors"
	"maizeintel/internal/infrastructure"
	customMiddleware "maizeintel/internal/middleware"
	"maizeintel/internal/services"
	handlers "maizeintel/internal/transport/http"
	"maizeintel/internal/validation"
	"maizeintel/pkg/contracts"
)

// AppName is logged at startup
const AppName = "Maize Market Intelligence API"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Analytics  *services.AnalyticsService
	Validation *services.ValidationService
	Health     *services.HealthService
}

// NewApplication loads configuration and the logger, then builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New builds an application from an explicit configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	build := contracts.Build()
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", build.Version),
		slog.String("commit", build.GitCommit),
		slog.String("dataset_layout", build.DatasetLayout))

	paths := cfg.Paths()
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(cfg.OTel, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	a.initializeServices()
	if err := a.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	a.createServer()

	return a, nil
}

// initializeServices wires loader, engine and validator into the services
func (a *Application) initializeServices() {
	registry := config.DefaultRegistry()
	loader := dataset.NewLoader(a.Paths, a.Logger)

	engine := analytics.NewEngine(loader, registry, a.Logger,
		analytics.WithTrailingDays(a.Config.Analytics.TrailingPriceDays))
	validator := validation.NewValidator(registry, a.Logger)

	a.Services = &ServiceContainer{
		Analytics: services.NewAnalyticsService(engine, a.OTelProviders.Tracer, a.Metrics,
			a.Config.Analytics.DefaultPeriod, a.Logger),
		Validation: services.NewValidationService(validator, loader, a.OTelProviders.Tracer, a.Metrics, a.Logger),
		Health:     services.NewHealthService(contracts.Version, a.Paths, a.Logger),
	}
}

// setupRouter configures the HTTP router with all routes.
// Order: RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit → Timeout
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return err
	}
	r.Use(otelMiddleware.Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(errorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(cors.Handler(a.corsOptions()))
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// Prometheus scrapes outside rate limiting and timeouts
	r.Method(http.MethodGet, "/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	r.Route("/api/v1", func(r chi.Router) {
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				errorHandler,
			).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		queryValidator := customMiddleware.NewQueryValidator(config.DefaultRegistry(), a.Logger)

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)

		r.Mount("/analytics", handlers.NewAnalyticsHandler(a.Services.Analytics, queryValidator, errorHandler, a.Logger).Routes())
		r.Mount("/validation", handlers.NewValidationHandler(a.Services.Validation, queryValidator, errorHandler, a.Logger).Routes())
	})

	a.Router = r
	return nil
}

// corsOptions lets the configured dashboard origins read the API.
// Preflights from other origins get no allow headers.
func (a *Application) corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins:   a.Config.Security.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", customMiddleware.RequestIDHeader},
		ExposedHeaders:   []string{customMiddleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}

	a.Logger.Info("CORS configured", slog.Any("allowed_origins", opts.AllowedOrigins))
	return opts
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts serving in the background. A listener failure calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the listener fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.ErrorContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(ctx)
}

// performStartupHealthCheck warns about datasets the reports will need
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	if err := a.Paths.ValidateRequiredFiles(); err != nil {
		return err
	}

	for name, path := range map[string]string{
		"production forecast summary": a.Paths.ProductionForecastSummary,
		"price forecast summary":      a.Paths.PriceForecastSummary,
	} {
		if !config.FileExists(path) {
			a.Logger.InfoContext(ctx, "Forecast artifact not found",
				slog.String("artifact", name),
				slog.String("path", path))
		}
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
