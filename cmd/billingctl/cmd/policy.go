package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"clubfees/internal/models/response_models"
)

var policyCmd = &cobra.Command{
	Use:     "policy",
	Short:   "Print a student's effective billing policy",
	Example: `  billingctl policy --student 7b1c...`,
	RunE:    runPolicy,
}

func init() {
	rootCmd.AddCommand(policyCmd)

	policyCmd.Flags().String("student", "", "Student id (required)")
	_ = policyCmd.MarkFlagRequired("student")
}

func runPolicy(cmd *cobra.Command, args []string) error {
	studentID, err := studentFlag(cmd, true)
	if err != nil {
		return err
	}
	return withServices(cmd, func(ctx context.Context, d deps) error {
		resolved, err := d.FeePlan.ResolvePolicy(ctx, *studentID)
		if err != nil {
			return err
		}
		return printJSON(cmd, response_models.FromPolicy(resolved.Policy, resolved.Currency, resolved.Hints))
	})
}
