package services

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"maizeintel/internal/analytics"
	"maizeintel/internal/config"
	"maizeintel/internal/dataset"
	apperrors "maizeintel/internal/errors"
	"maizeintel/internal/infrastructure"
	"maizeintel/internal/shared/testutil"
	api "maizeintel/pkg/contracts/api/v1"
	"maizeintel/pkg/contracts/domain"
)

var testNow = time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)

// MockSource implements analytics.Source for failure paths
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Production() ([]domain.ProductionRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]domain.ProductionRecord)
	return records, args.Error(1)
}

func (m *MockSource) Prices() ([]domain.PriceRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]domain.PriceRecord)
	return records, args.Error(1)
}

func (m *MockSource) Storage() ([]domain.StorageRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]domain.StorageRecord)
	return records, args.Error(1)
}

func (m *MockSource) ProductionForecasts() ([]domain.RegionForecastSummary, bool, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]domain.RegionForecastSummary)
	return rows, args.Bool(1), args.Error(2)
}

func (m *MockSource) PriceForecasts() ([]domain.ForecastRecord, bool, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]domain.ForecastRecord)
	return rows, args.Bool(1), args.Error(2)
}

func daysAgo(n int) time.Time {
	d := testNow.AddDate(0, 0, -n)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func writeFixture(fx *testutil.DataFixture) {
	fx.Production(
		domain.ProductionRecord{Date: daysAgo(3), Region: "Mbeya", Season: domain.SeasonMasika, QuantityTons: 1200},
		domain.ProductionRecord{Date: daysAgo(35), Region: "Iringa", Season: domain.SeasonMasika, QuantityTons: 800},
	)
	fx.Prices(
		domain.PriceRecord{Date: daysAgo(1), Market: "Mbeya Central", Region: "Mbeya", QualityGrade: domain.GradeA, PricePerKgTZS: 1000},
		domain.PriceRecord{Date: daysAgo(1), Market: "Kariakoo", Region: "Dar es Salaam", QualityGrade: domain.GradeA, PricePerKgTZS: 1200},
	)
	fx.Storage(
		domain.StorageRecord{Date: daysAgo(2), WarehouseID: "WH-001", Region: "Mbeya", QuantityStoredTons: 600, CapacityTons: 1000},
	)
}

func newMeteredService(t *testing.T, source analytics.Source) (*AnalyticsService, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := infrastructure.CreateBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)

	logger, _ := testutil.NewTestLogger(t)
	engine := analytics.NewEngine(source, config.DefaultRegistry(), logger,
		analytics.WithClock(testutil.FixedClock(testNow)))
	return NewAnalyticsService(engine, nil, metrics, config.DefaultPeriod, logger), reader
}

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestAnalyticsService_Report(t *testing.T) {
	fx := testutil.NewDataFixture(t)
	writeFixture(fx)
	logger, _ := testutil.NewTestLogger(t)
	svc, reader := newMeteredService(t, dataset.NewLoader(fx.Paths, logger))

	for _, name := range api.ReportNames {
		t.Run(name, func(t *testing.T) {
			report, err := svc.Report(context.Background(), name, ReportParams{})
			require.NoError(t, err)
			require.NotNil(t, report)

			data, err := json.Marshal(report)
			require.NoError(t, err)
			assert.Contains(t, string(data), "generated_at")
		})
	}

	assert.Equal(t, int64(len(api.ReportNames)), counterTotal(t, reader, "maize.reports.generated"))
	assert.Zero(t, counterTotal(t, reader, "maize.reports.failed"))
}

func TestAnalyticsService_UnknownReport(t *testing.T) {
	svc, _ := newMeteredService(t, &MockSource{})

	_, err := svc.Report(context.Background(), "weather", ReportParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownReport)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
}

func TestAnalyticsService_LoadFailure(t *testing.T) {
	source := &MockSource{}
	missing := errors.Join(errors.New("storage data"), dataset.ErrDatasetNotFound)
	source.On("Storage").Return(nil, missing).Once()

	svc, reader := newMeteredService(t, source)
	_, err := svc.StorageStatus(context.Background(), "")

	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), api.ReportStorageStatus)
	assert.Equal(t, int64(1), counterTotal(t, reader, "maize.reports.failed"))
	source.AssertExpectations(t)
}

func TestAnalyticsService_CancelledContext(t *testing.T) {
	source := &MockSource{}
	svc, reader := newMeteredService(t, source)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.NationalSummary(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
	source.AssertNotCalled(t, "Production")
	assert.Zero(t, counterTotal(t, reader, "maize.reports.generated"))
}

func TestAnalyticsService_DefaultPeriod(t *testing.T) {
	fx := testutil.NewDataFixture(t)
	writeFixture(fx)
	logger, _ := testutil.NewTestLogger(t)
	engine := analytics.NewEngine(dataset.NewLoader(fx.Paths, logger), config.DefaultRegistry(), logger,
		analytics.WithClock(testutil.FixedClock(testNow)))
	svc := NewAnalyticsService(engine, nil, nil, "quarter", logger)

	summary, err := svc.NationalSummary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "quarter", summary.Period)
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	t.Run("all reports", func(t *testing.T) {
		fx := testutil.NewDataFixture(t)
		writeFixture(fx)
		logger, _ := testutil.NewTestLogger(t)
		svc, reader := newMeteredService(t, dataset.NewLoader(fx.Paths, logger))

		d, err := svc.Dashboard(context.Background())
		require.NoError(t, err)

		assert.Len(t, d.RunID, 36)
		assert.NotNil(t, d.NationalSummary)
		assert.NotNil(t, d.ProductionSummary)
		assert.NotNil(t, d.PriceAnalysis)
		assert.NotNil(t, d.StorageStatus)
		assert.NotNil(t, d.SeasonalPattern)
		assert.NotNil(t, d.ForecastAccuracy)
		assert.NotNil(t, d.SupplyDemandBalance)
		assert.NotNil(t, d.MarketOpportunities)
		assert.Equal(t, int64(len(api.ReportNames)), counterTotal(t, reader, "maize.reports.generated"))
	})

	t.Run("missing dataset fails the dashboard", func(t *testing.T) {
		fx := testutil.NewDataFixture(t)
		logger, _ := testutil.NewTestLogger(t)
		svc, _ := newMeteredService(t, dataset.NewLoader(fx.Paths, logger))

		d, err := svc.Dashboard(context.Background())
		require.Error(t, err)
		assert.Nil(t, d)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}
