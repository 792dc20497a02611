// Package config provides configuration loading and the immutable domain registry
// used by loaders, validators and analytics.
//
// # Configuration Sources
//
// Configuration is loaded in order of precedence:
//
//	1. Environment variables (highest priority, MAIZE_* namespace)
//	2. A YAML file (MAIZE_CONFIG, ./config.yaml, ./configs/config.yaml or next to the executable)
//	3. Default values from struct tags
//
// A .env file in the working directory is loaded first when present.
//
// # Environment Variables
//
//	MAIZE_SERVER_PORT=8080
//	MAIZE_LOGGING_LEVEL=debug
//	MAIZE_DATA_BASE_DIR=/srv/maize
//	MAIZE_DATA_DIR=data
//	MAIZE_DATA_FORECASTS_DIR=forecasts
//	MAIZE_ANALYTICS_DEFAULT_PERIOD=quarter
//
// # Registry
//
// Registry holds regions, markets, grades, the seasonal calendar, thresholds,
// period lengths, expected premiums and rounding precision. Build it once with
// DefaultRegistry and pass it to every consumer; it is never mutated.
package config
