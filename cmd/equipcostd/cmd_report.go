package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joelpate/equipcost/internal/report"
	"github.com/joelpate/equipcost/pkg/models"
)

var (
	reportFacility string
	reportOutput   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a shareable fleet cost PDF",
	Long: `Renders a one-page PDF summarizing fleet-wide cost totals, the
top cost-driving equipment classes, and the highest-priority replacement
candidates for a facility.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportOutput == "" {
			timestamp := time.Now().Format("20060102_150405")
			facility := reportFacility
			if facility == "" {
				facility = "all"
			}
			reportOutput = fmt.Sprintf("fleet-report_%s_%s.pdf", facility, timestamp)
		}

		gen := report.New(system.Store, system.Config.DiscountRate)
		budget := models.NewMoney(system.Config.AnnualCapitalBudget)
		if err := gen.GenerateFleetReport(cmd.Context(), reportFacility, budget, reportOutput); err != nil {
			return fmt.Errorf("report: %w", err)
		}

		fmt.Printf("wrote %s\n", reportOutput)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFacility, "facility", "", "limit to a single facility ID")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output PDF path (default: fleet-report_<facility>_<timestamp>.pdf)")
}
