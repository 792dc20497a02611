package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "maizeintel/internal/errors"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(t *testing.T)
		setupFile   func(t *testing.T) string // returns config file path or ""
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars",
			setupEnv: func(t *testing.T) {
				t.Setenv("MAIZE_DATA_BASE_DIR", t.TempDir())
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 20*time.Second, cfg.Server.RequestTimeout)
				assert.Equal(t, []string{"http://localhost:3000"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 50.0, cfg.Security.RateLimit.RPS)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "data", cfg.Data.DataDir)
				assert.Equal(t, "forecasts", cfg.Data.ForecastsDir)
				assert.Equal(t, "maize_production.csv", cfg.Data.ProductionFile)
				assert.Equal(t, "current", cfg.Analytics.DefaultPeriod)
				assert.Equal(t, 7, cfg.Analytics.TrailingPriceDays)
				assert.True(t, filepath.IsAbs(cfg.Data.BaseDir))
			},
		},
		{
			name: "environment overrides",
			setupEnv: func(t *testing.T) {
				t.Setenv("MAIZE_DATA_BASE_DIR", t.TempDir())
				t.Setenv("MAIZE_SERVER_PORT", "9090")
				t.Setenv("MAIZE_LOGGING_LEVEL", "debug")
				t.Setenv("MAIZE_DATA_DIR", "raw")
				t.Setenv("MAIZE_ANALYTICS_DEFAULT_PERIOD", "quarter")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "raw", cfg.Data.DataDir)
				assert.Equal(t, "quarter", cfg.Analytics.DefaultPeriod)
			},
		},
		{
			name: "yaml file fills values env left unset",
			setupEnv: func(t *testing.T) {
				t.Setenv("MAIZE_DATA_BASE_DIR", t.TempDir())
				t.Setenv("MAIZE_SERVER_PORT", "7070")
			},
			setupFile: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "config.yaml")
				content := `
server:
  port: 6060
logging:
  level: warn
data:
  forecasts_dir: artifacts
analytics:
  default_period: season
`
				require.NoError(t, os.WriteFile(path, []byte(content), 0644))
				return path
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port, "env wins over file")
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "artifacts", cfg.Data.ForecastsDir)
				assert.Equal(t, "season", cfg.Analytics.DefaultPeriod)
			},
		},
		{
			name: "invalid port",
			setupEnv: func(t *testing.T) {
				t.Setenv("MAIZE_DATA_BASE_DIR", t.TempDir())
				t.Setenv("MAIZE_SERVER_PORT", "70000")
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			setupEnv: func(t *testing.T) {
				t.Setenv("MAIZE_DATA_BASE_DIR", t.TempDir())
				t.Setenv("MAIZE_LOGGING_LEVEL", "loud")
			},
			wantErr: true,
		},
		{
			name: "malformed yaml",
			setupEnv: func(t *testing.T) {
				t.Setenv("MAIZE_DATA_BASE_DIR", t.TempDir())
			},
			setupFile: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte("server: [port"), 0644))
				return path
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setupEnv != nil {
				tt.setupEnv(t)
			}
			if tt.setupFile != nil {
				t.Setenv("MAIZE_CONFIG", tt.setupFile(t))
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1<<20, cfg.Server.MaxHeaderBytes)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, DefaultDataDir, cfg.Data.DataDir)
	assert.Equal(t, DefaultPeriod, cfg.Analytics.DefaultPeriod)
	assert.Equal(t, AppName, cfg.OTel.ServiceName)
	assert.NotEmpty(t, cfg.Data.BaseDir)
	assert.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "read timeout"},
		{"zero write timeout", func(c *Config) { c.Server.WriteTimeout = 0 }, "write timeout"},
		{"cors without origins", func(c *Config) { c.Security.AllowedOrigins = nil }, "allowed origin"},
		{"trailing days", func(c *Config) { c.Analytics.TrailingPriceDays = 0 }, "trailing price days"},
		{"text format forced to json", func(c *Config) { c.Logging.Format = "text" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "json", cfg.Logging.Format)
				return
			}
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeConfigs(t *testing.T) {
	fileCfg := Config{
		Server:    ServerConfig{Port: 6000, ReadTimeout: 5 * time.Second},
		Logging:   LoggingConfig{Level: "error"},
		Data:      DataConfig{BaseDir: "/srv/maize"},
		Analytics: AnalyticsConfig{DefaultPeriod: "year"},
	}
	envCfg := *Default()

	t.Setenv("MAIZE_LOGGING_LEVEL", "debug")
	merged := mergeConfigs(fileCfg, envCfg)

	assert.Equal(t, 6000, merged.Server.Port)
	assert.Equal(t, 5*time.Second, merged.Server.ReadTimeout)
	assert.Equal(t, "info", merged.Logging.Level, "explicit env var keeps env value")
	assert.Equal(t, "/srv/maize", merged.Data.BaseDir)
	assert.Equal(t, "year", merged.Analytics.DefaultPeriod)
}
