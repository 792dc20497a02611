package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"maizeintel/internal/validation"
	api "maizeintel/pkg/contracts/api/v1"
)

func newValidateCmd(c *cli) *cobra.Command {
	var forecasts bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the datasets, or the forecasts with --forecasts",
		Long: `Validate the raw production, price and storage datasets and print the
findings as JSON. With --forecasts the trained forecast summaries and
per-region series are validated instead. Exits non-zero when any dataset
has errors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			validate := c.validation.ValidateAll
			if forecasts {
				validate = c.validation.ValidateForecasts
			}
			return c.report(cmd.Context(), validate)
		},
	}

	cmd.Flags().BoolVar(&forecasts, "forecasts", false, "Validate forecast artifacts instead of raw datasets")
	return cmd
}

func (c *cli) report(ctx context.Context, validate func(context.Context) (map[string]*validation.Result, error)) error {
	results, err := validate(ctx)
	if err != nil {
		return err
	}

	valid := validation.AllValid(results)
	if err := c.printJSON(api.ValidationResponse{Valid: valid, Results: results}); err != nil {
		return err
	}
	if !valid {
		return errInvalidData
	}
	return nil
}

func newExportValidationCmd(c *cli) *cobra.Command {
	var (
		out       string
		forecasts bool
	)

	cmd := &cobra.Command{
		Use:   "export-validation",
		Short: "Write validation findings to a CSV or XLSX file",
		Long: `Validate the datasets (or the forecasts with --forecasts) and write one row
per message with the columns dataset, level and message. The file extension
selects the format: .xlsx for a workbook, .csv otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch ext := strings.ToLower(filepath.Ext(out)); ext {
			case ".csv", ".xlsx":
			default:
				return fmt.Errorf("--out must end in .csv or .xlsx, got %q", ext)
			}

			results, err := c.validation.Export(cmd.Context(), out, forecasts)
			if err != nil {
				return err
			}
			c.logger.Info("validation report written",
				slog.String("path", out),
				slog.Bool("valid", validation.AllValid(results)))
			fmt.Fprintln(c.out, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (.csv or .xlsx)")
	_ = cmd.MarkFlagRequired("out")
	cmd.Flags().BoolVar(&forecasts, "forecasts", false, "Export forecast validation instead of raw datasets")
	return cmd
}
