package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"clubfees/internal/services"
)

var backfillCmd = &cobra.Command{
	Use:     "backfill",
	Short:   "Generate every period in a range for one student",
	Example: `  billingctl backfill --student 7b1c... --from 2025-01 --to 2025-06`,
	RunE:    runBackfill,
}

func init() {
	rootCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().String("student", "", "Student id (required)")
	backfillCmd.Flags().String("from", "", "First period (format: YYYY-MM, required)")
	backfillCmd.Flags().String("to", "", "Last period (format: YYYY-MM, default: current month)")
	_ = backfillCmd.MarkFlagRequired("student")
	_ = backfillCmd.MarkFlagRequired("from")
}

func studentFlag(cmd *cobra.Command, required bool) (*uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("student")
	if raw == "" {
		if required {
			return nil, fmt.Errorf("--student is required")
		}
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --student: %w", err)
	}
	return &id, nil
}

func runBackfill(cmd *cobra.Command, args []string) error {
	studentID, err := studentFlag(cmd, true)
	if err != nil {
		return err
	}
	from, err := periodFlag(cmd, "from")
	if err != nil {
		return err
	}
	to, err := periodFlag(cmd, "to")
	if err != nil {
		return err
	}

	return withServices(cmd, func(ctx context.Context, d deps) error {
		results, err := d.Billing.Backfill(ctx, *studentID, from, to)
		summary := lo.Map(results, func(r services.GenerateResult, _ int) map[string]any {
			return map[string]any{"period": r.Period, "outcome": r.Outcome}
		})
		if perr := printJSON(cmd, summary); perr != nil {
			return perr
		}
		return err
	})
}
