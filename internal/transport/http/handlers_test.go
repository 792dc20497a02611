package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"maizeintel/internal/analytics"
	"maizeintel/internal/config"
	"maizeintel/internal/dataset"
	apierrors "maizeintel/internal/errors"
	"maizeintel/internal/middleware"
	"maizeintel/internal/services"
	"maizeintel/internal/shared/testutil"
	"maizeintel/internal/validation"
	"maizeintel/pkg/contracts/domain"
)

var testNow = time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	d := testNow.AddDate(0, 0, -n)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func seed(fx *testutil.DataFixture) {
	fx.Production(
		domain.ProductionRecord{Date: day(3), Region: "Mbeya", Season: domain.SeasonMasika, QuantityTons: 1200},
		domain.ProductionRecord{Date: day(33), Region: "Iringa", Season: domain.SeasonMasika, QuantityTons: 800},
	)
	fx.Prices(
		domain.PriceRecord{Date: day(1), Market: "Mbeya Central", Region: "Mbeya", QualityGrade: domain.GradeA, PricePerKgTZS: 1000},
		domain.PriceRecord{Date: day(1), Market: "Kariakoo", Region: "Dar es Salaam", QualityGrade: domain.GradeA, PricePerKgTZS: 1200},
		domain.PriceRecord{Date: day(1), Market: "Kariakoo", Region: "Dar es Salaam", QualityGrade: domain.GradeC, PricePerKgTZS: 960},
	)
	fx.Storage(
		domain.StorageRecord{Date: day(2), WarehouseID: "WH-001", Region: "Mbeya", QuantityStoredTons: 950, CapacityTons: 1000},
		domain.StorageRecord{Date: day(2), WarehouseID: "WH-002", Region: "Iringa", QuantityStoredTons: 500, CapacityTons: 1000},
	)
}

// newTestRouter wires the handlers over real services reading fx
func newTestRouter(t *testing.T, fx *testutil.DataFixture) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	registry := config.DefaultRegistry()
	loader := dataset.NewLoader(fx.Paths, logger)

	engine := analytics.NewEngine(loader, registry, logger, analytics.WithClock(testutil.FixedClock(testNow)))
	validator := validation.NewValidator(registry, logger).WithClock(testutil.FixedClock(testNow))

	return newRouter(t,
		services.NewAnalyticsService(engine, nil, nil, config.DefaultPeriod, logger),
		services.NewValidationService(validator, loader, nil, nil, logger),
		services.NewHealthService("test", fx.Paths, logger),
	)
}

func newRouter(t *testing.T, a AnalyticsServiceInterface, v ValidationServiceInterface, h HealthServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	qv := middleware.NewQueryValidator(config.DefaultRegistry(), logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/analytics", NewAnalyticsHandler(a, qv, errorHandler, logger).Routes())
		r.Mount("/validation", NewValidationHandler(v, qv, errorHandler, logger).Routes())
		health := NewHealthHandler(h, logger)
		r.Get("/health", health.HealthCheck)
		r.Get("/health/ready", health.ReadinessCheck)
	})
	return r
}

func get(t *testing.T, h http.Handler, url string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	var body map[string]any
	if ct := rec.Header().Get("Content-Type"); len(ct) >= 16 && ct[:16] == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func TestAnalyticsRoutes(t *testing.T) {
	fx := testutil.NewDataFixture(t)
	seed(fx)
	router := newTestRouter(t, fx)

	tests := []struct {
		url     string
		wantKey string
	}{
		{"/api/v1/analytics/national-summary?period=quarter", "production"},
		{"/api/v1/analytics/production?region=Mbeya", "region"},
		{"/api/v1/analytics/prices?grade=A", "current_prices"},
		{"/api/v1/analytics/storage", "warehouses"},
		{"/api/v1/analytics/storage?warehouse=WH-001", "warehouse_status"},
		{"/api/v1/analytics/seasonal?crop=maize", "seasonal_patterns"},
		{"/api/v1/analytics/forecast-accuracy", "generated_at"},
		{"/api/v1/analytics/supply-demand", "generated_at"},
		{"/api/v1/analytics/opportunities", "generated_at"},
		{"/api/v1/analytics/dashboard", "run_id"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			rec, body := get(t, router, tt.url)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Contains(t, body, tt.wantKey)
		})
	}
}

func TestAnalyticsRoutes_InvalidQuery(t *testing.T) {
	fx := testutil.NewDataFixture(t)
	seed(fx)
	router := newTestRouter(t, fx)

	tests := []struct {
		url   string
		field string
	}{
		{"/api/v1/analytics/national-summary?period=fortnight", "period"},
		{"/api/v1/analytics/production?period=decade", "period"},
		{"/api/v1/analytics/prices?grade=Z", "grade"},
		{"/api/v1/analytics/seasonal?crop=m4ize", "crop"},
		{"/api/v1/validation/export?format=pdf", "format"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			rec, body := get(t, router, tt.url)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, apierrors.TypeValidation, body["type"])
			assert.Equal(t, apierrors.CodeValidation, body["error_code"])

			errs, ok := body["errors"].([]any)
			require.True(t, ok)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].(map[string]any)["field"])
		})
	}
}

func TestAnalyticsRoutes_MissingDataset(t *testing.T) {
	fx := testutil.NewDataFixture(t)
	router := newTestRouter(t, fx)

	for _, url := range []string{
		"/api/v1/analytics/national-summary",
		"/api/v1/analytics/prices",
		"/api/v1/analytics/dashboard",
	} {
		t.Run(url, func(t *testing.T) {
			rec, body := get(t, router, url)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, apierrors.CodeDatasetNotFound, body["error_code"])
			assert.NotEmpty(t, body["trace_id"])
		})
	}
}

// MockAnalyticsService implements AnalyticsServiceInterface for error mapping
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) NationalSummary(ctx context.Context, period string) (*analytics.NationalSummary, error) {
	args := m.Called(ctx, period)
	report, _ := args.Get(0).(*analytics.NationalSummary)
	return report, args.Error(1)
}

func (m *MockAnalyticsService) ProductionSummary(ctx context.Context, region, period string) (*analytics.ProductionSummary, error) {
	args := m.Called(ctx, region, period)
	report, _ := args.Get(0).(*analytics.ProductionSummary)
	return report, args.Error(1)
}

func (m *MockAnalyticsService) PriceAnalysis(ctx context.Context, market, grade string) (*analytics.PriceAnalysis, error) {
	args := m.Called(ctx, market, grade)
	report, _ := args.Get(0).(*analytics.PriceAnalysis)
	return report, args.Error(1)
}

func (m *MockAnalyticsService) StorageStatus(ctx context.Context, warehouse string) (*analytics.StorageStatus, error) {
	args := m.Called(ctx, warehouse)
	report, _ := args.Get(0).(*analytics.StorageStatus)
	return report, args.Error(1)
}

func (m *MockAnalyticsService) SeasonalPattern(ctx context.Context, crop string) (*analytics.SeasonalPattern, error) {
	args := m.Called(ctx, crop)
	report, _ := args.Get(0).(*analytics.SeasonalPattern)
	return report, args.Error(1)
}

func (m *MockAnalyticsService) ForecastAccuracy(ctx context.Context) (*analytics.ForecastAccuracy, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*analytics.ForecastAccuracy)
	return report, args.Error(1)
}

func (m *MockAnalyticsService) SupplyDemandBalance(ctx context.Context) (*analytics.SupplyDemandBalance, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*analytics.SupplyDemandBalance)
	return report, args.Error(1)
}

func (m *MockAnalyticsService) MarketOpportunities(ctx context.Context) (*analytics.MarketOpportunities, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*analytics.MarketOpportunities)
	return report, args.Error(1)
}

func (m *MockAnalyticsService) Dashboard(ctx context.Context) (*services.Dashboard, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).(*services.Dashboard)
	return d, args.Error(1)
}

func TestAnalyticsRoutes_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"deadline", fmt.Errorf("forecast_accuracy: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, apierrors.TypeTimeout},
		{"unreadable", apierrors.NewParsingError("price forecast row 3", fmt.Errorf("bad yhat")), http.StatusUnprocessableEntity, apierrors.TypeDataCorrupted},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, apierrors.TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockAnalyticsService{}
			svc.On("ForecastAccuracy", mock.Anything).Return(nil, tt.err).Once()
			router := newRouter(t, svc, nil, nil)

			rec, body := get(t, router, "/api/v1/analytics/forecast-accuracy")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantType, body["type"])
			svc.AssertExpectations(t)
		})
	}
}

func TestValidationRoutes(t *testing.T) {
	t.Run("valid datasets", func(t *testing.T) {
		fx := testutil.NewDataFixture(t)
		seed(fx)
		rec, body := get(t, newTestRouter(t, fx), "/api/v1/validation")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["valid"])
		results := body["results"].(map[string]any)
		assert.Len(t, results, 3)
	})

	t.Run("missing datasets are reported not raised", func(t *testing.T) {
		fx := testutil.NewDataFixture(t)
		rec, body := get(t, newTestRouter(t, fx), "/api/v1/validation")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, body["valid"])
	})

	t.Run("forecasts not trained", func(t *testing.T) {
		fx := testutil.NewDataFixture(t)
		rec, body := get(t, newTestRouter(t, fx), "/api/v1/validation/forecasts")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["valid"])
	})
}

func TestValidationExport(t *testing.T) {
	fx := testutil.NewDataFixture(t)
	seed(fx)
	router := newTestRouter(t, fx)

	tests := []struct {
		query           string
		wantContentType string
	}{
		{"", contentTypeCSV},
		{"?format=csv&forecasts=true", contentTypeCSV},
		{"?format=xlsx", contentTypeXLSX},
	}

	for _, tt := range tests {
		t.Run("export"+tt.query, func(t *testing.T) {
			rec, _ := get(t, router, "/api/v1/validation/export"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantContentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
			assert.NotZero(t, rec.Body.Len())
		})
	}
}

func TestHealthRoutes(t *testing.T) {
	t.Run("liveness", func(t *testing.T) {
		rec, body := get(t, newTestRouter(t, testutil.NewDataFixture(t)), "/api/v1/health")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("not ready without data", func(t *testing.T) {
		rec, body := get(t, newTestRouter(t, testutil.NewDataFixture(t)), "/api/v1/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "unhealthy", body["status"])
	})

	t.Run("ready with data", func(t *testing.T) {
		fx := testutil.NewDataFixture(t)
		seed(fx)
		rec, body := get(t, newTestRouter(t, fx), "/api/v1/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "degraded", body["status"])
	})
}
