package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "maizeintel/internal/errors"
)

// EnvPrefix is the namespace for all environment variables (MAIZE_SERVER_PORT etc.)
const EnvPrefix = "MAIZE"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
	OTel      OTelConfig      `yaml:"otel" envconfig:"OTEL"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"20s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"20"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/maizeintel.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// DataConfig locates the datasets and forecast artifacts.
// Relative directories are resolved against BaseDir.
type DataConfig struct {
	BaseDir        string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir        string `yaml:"data_dir" envconfig:"DIR" default:"data"`
	ForecastsDir   string `yaml:"forecasts_dir" envconfig:"FORECASTS_DIR" default:"forecasts"`
	ProductionFile string `yaml:"production_file" envconfig:"PRODUCTION_FILE" default:"maize_production.csv"`
	PriceFile      string `yaml:"price_file" envconfig:"PRICE_FILE" default:"maize_prices.csv"`
	StorageFile    string `yaml:"storage_file" envconfig:"STORAGE_FILE" default:"maize_storage.csv"`
}

// AnalyticsConfig tunes report defaults
type AnalyticsConfig struct {
	DefaultPeriod     string `yaml:"default_period" envconfig:"DEFAULT_PERIOD" default:"current"`
	TrailingPriceDays int    `yaml:"trailing_price_days" envconfig:"TRAILING_PRICE_DAYS" default:"7"`
}

// OTelConfig toggles tracing and metrics export
type OTelConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"maizeintel"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED" default:"false"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from .env, environment variables and an optional YAML file
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs fills fields the environment left at their defaults from the file config.
// An explicitly set environment variable always wins.
func mergeConfigs(fileConfig, envConfig Config) Config {
	setFromFile := func(envKey string) bool {
		_, ok := os.LookupEnv(EnvPrefix + "_" + envKey)
		return !ok
	}

	if setFromFile("SERVER_PORT") && fileConfig.Server.Port != 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if setFromFile("SERVER_READ_TIMEOUT") && fileConfig.Server.ReadTimeout != 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if setFromFile("SERVER_WRITE_TIMEOUT") && fileConfig.Server.WriteTimeout != 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if setFromFile("SERVER_REQUEST_TIMEOUT") && fileConfig.Server.RequestTimeout != 0 {
		envConfig.Server.RequestTimeout = fileConfig.Server.RequestTimeout
	}
	if setFromFile("SECURITY_ALLOWED_ORIGINS") && len(fileConfig.Security.AllowedOrigins) > 0 {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	if setFromFile("LOGGING_LEVEL") && fileConfig.Logging.Level != "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if setFromFile("LOGGING_OUTPUT") && fileConfig.Logging.Output != "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if setFromFile("DATA_BASE_DIR") && fileConfig.Data.BaseDir != "" {
		envConfig.Data.BaseDir = fileConfig.Data.BaseDir
	}
	if setFromFile("DATA_DIR") && fileConfig.Data.DataDir != "" {
		envConfig.Data.DataDir = fileConfig.Data.DataDir
	}
	if setFromFile("DATA_FORECASTS_DIR") && fileConfig.Data.ForecastsDir != "" {
		envConfig.Data.ForecastsDir = fileConfig.Data.ForecastsDir
	}
	if setFromFile("ANALYTICS_DEFAULT_PERIOD") && fileConfig.Analytics.DefaultPeriod != "" {
		envConfig.Analytics.DefaultPeriod = fileConfig.Analytics.DefaultPeriod
	}
	if setFromFile("OTEL_TRACING_ENABLED") && fileConfig.OTel.TracingEnabled {
		envConfig.OTel.TracingEnabled = true
	}

	return envConfig
}

// resolvePaths anchors the data base directory
func (c *Config) resolvePaths() error {
	if c.Data.BaseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		c.Data.BaseDir = wd
	}

	abs, err := filepath.Abs(c.Data.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base dir %s: %w", c.Data.BaseDir, err)
	}
	c.Data.BaseDir = abs

	return nil
}

// Paths returns the resolved dataset and forecast locations
func (c *Config) Paths() *Paths {
	return NewPaths(c.Data)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.NewConfigError(fmt.Sprintf("invalid server port: %d", c.Server.Port), nil)
	}

	if c.Server.ReadTimeout <= 0 {
		return apperrors.NewConfigError("server read timeout must be positive", nil)
	}

	if c.Server.WriteTimeout <= 0 {
		return apperrors.NewConfigError("server write timeout must be positive", nil)
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return apperrors.NewConfigError("at least one allowed origin must be specified", nil)
	}

	if c.Analytics.TrailingPriceDays <= 0 {
		return apperrors.NewConfigError(fmt.Sprintf("trailing price days must be positive: %d", c.Analytics.TrailingPriceDays), nil)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("invalid log level: %s", c.Logging.Level), nil)
	}

	// Logs are always JSON
	c.Logging.Format = "json"

	return nil
}

// getConfigFilePath returns the path to the config file, or "" when none exists
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	if exe, err := os.Executable(); err == nil {
		locations = append(locations, filepath.Join(filepath.Dir(exe), "config.yaml"))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration rooted at the working directory
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  20 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   20,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/maizeintel.log",
		},
		Data: DataConfig{
			DataDir:        DefaultDataDir,
			ForecastsDir:   DefaultForecastsDir,
			ProductionFile: ProductionFileName,
			PriceFile:      PriceFileName,
			StorageFile:    StorageFileName,
		},
		Analytics: AnalyticsConfig{
			DefaultPeriod:     DefaultPeriod,
			TrailingPriceDays: TrailingPriceDays,
		},
		OTel: OTelConfig{
			ServiceName:    AppName,
			Environment:    "development",
			MetricsEnabled: true,
		},
	}
	_ = cfg.resolvePaths()
	return cfg
}
