package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/joelpate/equipcost/internal/dashboard"
)

var (
	dashboardFacility string
	dashboardTheme    string
	dashboardPort     int
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Launch the terminal fleet dashboard",
	Long:  `Launches an interactive terminal dashboard over fleet cost summaries, replacement priorities, and per-asset TCO detail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := system.Config
		model := dashboard.New(system.Store, dashboard.Config{
			Theme:              dashboardTheme,
			FacilityID:         dashboardFacility,
			CapitalBudget:      cfg.AnnualCapitalBudget,
			DiscountRate:       cfg.DiscountRate,
			DowntimeHourlyRate: cfg.DowntimeHourlyRate,
		})

		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardFacility, "facility", "", "limit to a single facility ID")
	dashboardCmd.Flags().StringVar(&dashboardTheme, "theme", "dark", "color theme: dark or light")
	// --port is accepted for compatibility with the web dashboard this
	// command replaced; a terminal program has nothing to bind.
	dashboardCmd.Flags().IntVar(&dashboardPort, "port", 8501, "unused, kept for compatibility")
	dashboardCmd.Flags().MarkHidden("port")
}
