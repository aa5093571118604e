package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"clubfees/internal/billing"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one period's charges",
	Long: `Generate the charge for one billing period.

Without --student every active assignment is billed and a run report is printed.
Failures are isolated per student; the command exits non-zero when any student
failed. Re-running the same period is safe: existing rows are reported as
"existing" and never duplicated.`,
	Example: `  # Bill the current month for everyone
  billingctl generate

  # Bill one student for March 2025
  billingctl generate --period 2025-03 --student 7b1c...`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("period", "", "Billing period (format: YYYY-MM, default: current month)")
	generateCmd.Flags().String("student", "", "Only bill this student id")
}

func periodFlag(cmd *cobra.Command, name string) (billing.Period, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return billing.PeriodOf(time.Now()), nil
	}
	p, err := billing.ParsePeriod(raw)
	if err != nil {
		return billing.Period{}, fmt.Errorf("invalid --%s. Use YYYY-MM: %w", name, err)
	}
	return p, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	period, err := periodFlag(cmd, "period")
	if err != nil {
		return err
	}
	studentID, err := studentFlag(cmd, false)
	if err != nil {
		return err
	}

	return withServices(cmd, func(ctx context.Context, d deps) error {
		if studentID != nil {
			result, err := d.Billing.GenerateForStudent(ctx, *studentID, period)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"student_id": result.StudentID,
				"period":     result.Period,
				"outcome":    result.Outcome,
			})
		}

		report, err := d.Billing.RunPeriod(ctx, period)
		if err != nil {
			return err
		}
		if err := printJSON(cmd, report); err != nil {
			return err
		}
		if report.Failed > 0 {
			return fmt.Errorf("%d of %d students failed", report.Failed,
				report.Created+report.Existing+report.Skipped+report.Failed)
		}
		return nil
	})
}
