package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileHintsCmd = &cobra.Command{
	Use:   "reconcile-hints",
	Short: "Recompute cached next-period and due-date hints for every active assignment",
	RunE:  runReconcileHints,
}

func init() {
	rootCmd.AddCommand(reconcileHintsCmd)
}

func runReconcileHints(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, d deps) error {
		report, err := d.Billing.ReconcileHints(ctx)
		if err != nil {
			return err
		}
		if err := printJSON(cmd, report); err != nil {
			return err
		}
		if report.Failed > 0 {
			return fmt.Errorf("%d assignments could not be reconciled", report.Failed)
		}
		return nil
	})
}
