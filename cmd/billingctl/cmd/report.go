package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clubfees/internal/billing"
	"clubfees/internal/services"
	"clubfees/pkg/utils"
)

var reportCmd = &cobra.Command{
	Use:     "report",
	Short:   "Print billed, collected and outstanding totals per period",
	Example: `  billingctl report --from 2025-01 --to 2025-06`,
	RunE:    runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("from", "", "First period (format: YYYY-MM, default: eleven months before --to)")
	reportCmd.Flags().String("to", "", "Last period (format: YYYY-MM, default: current month)")
}

func optionalPeriodFlag(cmd *cobra.Command, name string) (billing.Period, error) {
	raw, _ := cmd.Flags().GetString(name)
	p, err := utils.ParseOptionalPeriod(raw)
	if err != nil {
		return billing.Period{}, fmt.Errorf("invalid --%s. Use YYYY-MM: %w", name, err)
	}
	if p == nil {
		return billing.Period{}, nil
	}
	return *p, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	from, err := optionalPeriodFlag(cmd, "from")
	if err != nil {
		return err
	}
	to, err := optionalPeriodFlag(cmd, "to")
	if err != nil {
		return err
	}

	return withServices(cmd, func(ctx context.Context, d deps) error {
		report, err := d.Report.BuildCollections(ctx, services.ReportRange{From: from, To: to})
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]any{
			"from":        report.From,
			"to":          report.To,
			"periods":     report.Periods,
			"formatted":   report.Formatted,
			"outstanding": report.Outstanding,
		})
	})
}
