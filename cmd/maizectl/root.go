package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"maizeintel/internal/analytics"
	"maizeintel/internal/config"
	"maizeintel/internal/dataset"
	"maizeintel/internal/infrastructure"
	"maizeintel/internal/services"
	"maizeintel/internal/validation"
	"maizeintel/pkg/contracts"
)

// errInvalidData is returned when a validation batch contains errors
var errInvalidData = errors.New("validation failed")

// cli holds what every subcommand needs, built once per invocation
type cli struct {
	out        io.Writer
	configPath string
	logLevel   string

	logger     *slog.Logger
	analytics  *services.AnalyticsService
	validation *services.ValidationService
}

// newRootCmd builds the maizectl command tree writing results to out
func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:   "maizectl",
		Short: "Maize market analytics and dataset validation",
		Long: `maizectl generates maize market reports from the production, price and
storage datasets and validates those datasets and the trained forecasts.

Examples:
  maizectl report national_summary --period quarter
  maizectl report price_analysis --market Kariakoo --grade A
  maizectl validate --forecasts
  maizectl export-validation --out validation.xlsx`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to YAML configuration (sets MAIZE_CONFIG)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.SetVersionTemplate(contracts.Build().String() + "\n")
	root.AddCommand(newReportCmd(c), newValidateCmd(c), newExportValidationCmd(c), newVersionCmd(c))
	return root
}

// setup loads configuration and wires the services. Logs go to stderr so
// stdout carries only JSON.
func (c *cli) setup() error {
	// Flags travel through the environment so config.Load validates them
	overrides := map[string]string{
		config.EnvPrefix + "_CONFIG":        c.configPath,
		config.EnvPrefix + "_LOGGING_LEVEL": c.logLevel,
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Logging.Output != "file" {
		cfg.Logging.Output = "stderr"
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = logger.With(slog.String("component", "maizectl"))

	paths := cfg.Paths()
	registry := config.DefaultRegistry()
	loader := dataset.NewLoader(paths, logger)
	engine := analytics.NewEngine(loader, registry, logger,
		analytics.WithTrailingDays(cfg.Analytics.TrailingPriceDays))

	c.analytics = services.NewAnalyticsService(engine, nil, nil, cfg.Analytics.DefaultPeriod, logger)
	c.validation = services.NewValidationService(validation.NewValidator(registry, logger), loader, nil, nil, logger)
	return nil
}

// printJSON writes v indented to the command output
func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
