package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"maizeintel/internal/services"
	api "maizeintel/pkg/contracts/api/v1"
)

func newReportCmd(c *cli) *cobra.Command {
	var p services.ReportParams

	cmd := &cobra.Command{
		Use:   "report <name>",
		Short: "Generate an analytics report as JSON",
		Long: fmt.Sprintf(`Generate one analytics report and print it as JSON.

Reports: %s

Filters apply only to the reports that understand them:
  --period     national_summary, production_summary
  --region     production_summary
  --market     price_analysis
  --grade      price_analysis
  --warehouse  storage_status
  --crop       seasonal_pattern`, strings.Join(api.ReportNames, ", ")),
		Args:      cobra.ExactArgs(1),
		ValidArgs: api.ReportNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.analytics.Report(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			return c.printJSON(report)
		},
	}

	cmd.Flags().StringVar(&p.Period, "period", "", "Period token: current, month, quarter, season, year")
	cmd.Flags().StringVar(&p.Region, "region", "", "Region name")
	cmd.Flags().StringVar(&p.Market, "market", "", "Market name")
	cmd.Flags().StringVar(&p.Grade, "grade", "", "Quality grade: A, B, C")
	cmd.Flags().StringVar(&p.Warehouse, "warehouse", "", "Warehouse id")
	cmd.Flags().StringVar(&p.Crop, "crop", "", "Crop name")
	return cmd
}
