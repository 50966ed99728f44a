package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joelpate/equipcost/internal/forecast"
	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/models"
)

var (
	forecastEquipmentID string
	forecastHorizon     int
	forecastMethod      string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast future maintenance spend",
	Long: `Forecasts monthly maintenance spend for a single asset
(--equipment-id) or for every asset in the registry when none is
given, persisting a CostForecast per asset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		method, err := parseForecastMethod(forecastMethod)
		if err != nil {
			return err
		}

		fc := forecast.New(system.Store, system.Config.MinForecastHistoryMonths)
		tags, err := forecastTargets(cmd.Context(), system.Store, forecastEquipmentID)
		if err != nil {
			return fmt.Errorf("forecast: %w", err)
		}
		if len(tags) == 0 {
			fmt.Fprintln(os.Stderr, "forecast: no equipment found")
			os.Exit(1)
		}

		for _, tag := range tags {
			report, err := fc.ForecastEquipment(cmd.Context(), tag, forecastHorizon, method)
			if err != nil {
				fmt.Printf("%s: skipped (%v)\n", tag, err)
				continue
			}
			fmt.Printf("%s: method=%s annual_tco_current_year=%s annual_tco_next_year=%s mae=%.2f\n",
				tag, report.Method, report.AnnualTCOCurrentYear, report.AnnualTCONextYear, report.ModelMetrics.MAE)
		}
		return nil
	},
}

func init() {
	forecastCmd.Flags().StringVar(&forecastEquipmentID, "equipment-id", "", "limit to a single asset tag")
	forecastCmd.Flags().IntVar(&forecastHorizon, "horizon", 36, "number of months to forecast")
	forecastCmd.Flags().StringVar(&forecastMethod, "method", "auto", "forecast method: auto, arima, or exponential_smoothing")
}

func parseForecastMethod(s string) (models.ForecastMethod, error) {
	switch s {
	case "auto":
		return models.MethodAuto, nil
	case "arima":
		return models.MethodARIMA, nil
	case "exponential_smoothing":
		return models.MethodExponentialSmoothing, nil
	default:
		return "", fmt.Errorf("forecast: unknown method %q", s)
	}
}

// forecastTargets returns the asset tag to forecast when one was given, or
// every registry entry's tag otherwise.
func forecastTargets(ctx context.Context, db store.Store, equipmentID string) ([]string, error) {
	if equipmentID != "" {
		return []string{equipmentID}, nil
	}

	tx, err := db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	equipment, err := tx.ListEquipment(ctx, store.EquipmentFilter{})
	if err != nil {
		return nil, err
	}

	tags := make([]string, len(equipment))
	for i, e := range equipment {
		tags[i] = e.AssetTag
	}
	return tags, nil
}
