package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joelpate/equipcost/internal/app"
	"github.com/joelpate/equipcost/internal/platformlog"
)

// system holds the components initializeSystem builds once before any
// subcommand runs.
var system *app.System

var rootCmd = &cobra.Command{
	Use:   "equipcostd",
	Short: "Capital-asset cost analytics for a hospital equipment fleet",
	Long: `equipcostd computes per-asset and fleet-level financial decisions
from an equipment registry, maintenance work orders, service contracts,
and preventive-maintenance schedules: monthly cost rollups, total cost
of ownership, depreciation schedules, maintenance-spend forecasts,
failure-rate estimates, and repair-vs-replace recommendations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeSystem(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if system != nil {
			return system.Close()
		}
		return nil
	},
}

func initializeSystem(ctx context.Context) error {
	sys, err := app.Bootstrap(ctx)
	if err != nil {
		return err
	}
	system = sys
	return nil
}

func main() {
	rootCmd.AddCommand(
		initDBCmd,
		generateDataCmd,
		loadDataCmd,
		aggregateCmd,
		forecastCmd,
		analyzeCmd,
		reportCmd,
		serveCmd,
		dashboardCmd,
		versionCmd,
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		platformlog.Error("command failed: %v", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("equipcostd dev")
		return nil
	},
}
