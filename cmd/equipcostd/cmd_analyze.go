package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joelpate/equipcost/internal/bathtub"
	"github.com/joelpate/equipcost/internal/fleet"
	"github.com/joelpate/equipcost/internal/mtbf"
	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/models"
)

var (
	analyzeFacility string
	analyzeBudget   float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Estimate remaining life, failure risk, and replacement priority",
	Long: `Runs the bathtub-curve remaining-useful-life estimate and the
MTBF next-failure prediction over a facility's active fleet, then ranks
replacement candidates against an annual capital budget.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		tx, err := system.Store.BeginTx(ctx)
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		equipment, err := tx.ListEquipment(ctx, store.EquipmentFilter{
			FacilityID: analyzeFacility,
			Status:     models.StatusActive,
		})
		tx.Rollback()
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		if len(equipment) == 0 {
			fmt.Println("no active equipment found")
			return nil
		}

		bt := bathtub.New(system.Store)
		mp := mtbf.New(system.Store)

		fmt.Println("remaining life and failure risk:")
		for _, eq := range equipment {
			life, err := bt.EstimateRemainingUsefulLife(ctx, eq.AssetTag)
			if err != nil {
				fmt.Printf("  %-16s life: skipped (%v)\n", eq.AssetTag, err)
				continue
			}
			fail, err := mp.PredictNextFailure(ctx, eq.AssetTag)
			if err != nil {
				fmt.Printf("  %-16s life: %3d mo (%s, conf %.2f)  failure: skipped (%v)\n",
					eq.AssetTag, life.RemainingMonths, life.Method, life.Confidence, err)
				continue
			}
			fmt.Printf("  %-16s life: %3d mo (%s, conf %.2f)  next failure: %s (p90d=%.2f)\n",
				eq.AssetTag, life.RemainingMonths, life.Method, life.Confidence,
				fail.PredictedNextFailure, fail.ProbabilityWithin90Days)
		}

		opt := fleet.New(system.Store, system.Config.DiscountRate)
		priorities, err := opt.RankReplacementPriorities(ctx, analyzeFacility, models.NewMoney(analyzeBudget))
		if err != nil {
			return fmt.Errorf("analyze: rank replacement priorities: %w", err)
		}

		fmt.Printf("\nreplacement priorities (budget %s):\n", models.NewMoney(analyzeBudget))
		for _, p := range priorities {
			within := "over budget"
			if p.WithinBudget {
				within = "within budget"
			}
			fmt.Printf("  #%-3d %-16s age=%3dmo npv_savings=%-12s action=%-20s %s\n",
				p.Rank, p.AssetTag, p.AgeMonths, p.NPVSavings, p.RecommendedAction, within)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFacility, "facility", "", "limit to a single facility ID")
	analyzeCmd.Flags().Float64Var(&analyzeBudget, "budget", 2_000_000, "annual capital budget for replacement ranking")
}
