package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maizeintel/internal/dataset"
	"maizeintel/internal/shared/testutil"
	"maizeintel/pkg/contracts/domain"
)

func TestValidateAll(t *testing.T) {
	fx := testutil.NewDataFixture(t)
	logger, logs := testutil.NewTestLogger(t)

	fx.Production(domain.ProductionRecord{Date: testutil.Day(2024, 6, 1), Region: "Mbeya", Season: domain.SeasonMasika, QuantityTons: 100, FarmAreaHectares: 20})
	fx.Prices(domain.PriceRecord{Date: testutil.Day(2024, 6, 1), Market: "Kariakoo", Region: "Dar es Salaam", QualityGrade: domain.GradeA, PricePerKgTZS: 1200})

	v := NewValidator(newTestValidator(t).registry, logger).WithClock(testutil.FixedClock(testNow))
	results := v.ValidateAll(dataset.NewLoader(fx.Paths, logger))

	require.Len(t, results, 3)
	assert.True(t, results[dataset.Production].IsValid())
	assert.True(t, results[dataset.Price].IsValid())

	storage := results[dataset.Storage]
	require.Len(t, storage.Errors, 1)
	assert.Contains(t, storage.Errors[0], "Failed to load storage data: ")
	assert.Contains(t, storage.Errors[0], "dataset not found")
	assert.Empty(t, storage.Info)
	assert.False(t, AllValid(results))

	assert.True(t, logs.ContainsMessage("dataset could not be loaded for validation"))
}
