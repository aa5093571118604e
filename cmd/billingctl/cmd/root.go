package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"clubfees/cmd/fx/core_fx"
	"clubfees/internal/services"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "billingctl",
	Short: "Operate the recurring fee engine from the command line",
	Long: `billingctl runs the same billing operations as the HTTP API against the
configured database: period runs, per-student generation, backfills, hint
reconciliation, policy inspection and collections reports.

Configuration is read from the environment and an optional .env file, exactly
as for the API server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Minute, "Abort the command after this long")
}

// deps is the slice of the service graph the commands use.
type deps struct {
	Billing services.BillingServiceInterface
	FeePlan services.FeePlanServiceInterface
	Report  services.ReportService
}

// withServices builds the service graph without the HTTP server or the billing job,
// starts it, runs fn and stops it again.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, d deps) error) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var d deps
	app := fx.New(
		core_fx.Module,
		fx.Populate(&d.Billing, &d.FeePlan, &d.Report),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
		defer stop()
		_ = app.Stop(stopCtx)
	}()

	return fn(ctx, d)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
