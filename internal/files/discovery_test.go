package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("ds,yhat\n"), 0644))
}

func TestDiscovery_FindCSVFiles(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "forecasts", "b.csv"))
	touch(t, filepath.Join(base, "forecasts", "a.CSV"))
	touch(t, filepath.Join(base, "forecasts", "notes.txt"))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "forecasts", "nested.csv"), 0755))

	d := NewDiscovery(base)

	tests := []struct {
		name string
		dir  string
	}{
		{name: "relative dir", dir: "forecasts"},
		{name: "absolute dir", dir: filepath.Join(base, "forecasts")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := d.FindCSVFiles(tt.dir)
			require.NoError(t, err)
			require.Len(t, files, 2)
			assert.Equal(t, "a.CSV", files[0].Name)
			assert.Equal(t, "b.csv", files[1].Name)
			assert.Equal(t, filepath.Join(base, "forecasts", "b.csv"), files[1].Path)
		})
	}
}

func TestDiscovery_FindCSVFilesMissingDir(t *testing.T) {
	d := NewDiscovery(t.TempDir())

	_, err := d.FindCSVFiles("absent")

	assert.Error(t, err)
}

func TestDiscovery_FindForecastSeries(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "production")
	touch(t, filepath.Join(dir, "forecast_arusha.csv"))
	touch(t, filepath.Join(dir, "forecast_dar_es_salaam.csv"))
	touch(t, filepath.Join(dir, "forecast_summary.csv"))
	touch(t, filepath.Join(dir, "forecast_.csv"))
	touch(t, filepath.Join(dir, "training_log.csv"))

	series, err := NewDiscovery(base).FindForecastSeries("production", "forecast_")

	require.NoError(t, err)
	assert.Equal(t, []string{"arusha", "dar_es_salaam"}, SortedKeys(series))
	assert.Equal(t, "forecast_arusha.csv", series["arusha"].Name)
}

func TestDiscovery_FindForecastSeriesMissingDir(t *testing.T) {
	series, err := NewDiscovery(t.TempDir()).FindForecastSeries("production", "forecast_")

	require.NoError(t, err)
	assert.Empty(t, series)
}
