package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joelpate/equipcost/internal/aggregator"
)

var aggregateEquipmentID string

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Recompute monthly cost rollups",
	Long: `Recomputes monthly cost rollups for a single asset (--equipment-id)
or for every asset in the registry when no asset is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		agg := aggregator.New(system.Store)
		count, err := agg.ComputeMonthlyRollups(cmd.Context(), aggregateEquipmentID)
		if err != nil {
			return fmt.Errorf("aggregate: %w", err)
		}
		fmt.Printf("recomputed rollups for %d asset(s)\n", count)
		return nil
	},
}

func init() {
	aggregateCmd.Flags().StringVar(&aggregateEquipmentID, "equipment-id", "", "limit to a single asset tag")
}
