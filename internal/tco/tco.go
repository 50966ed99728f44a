// Package tco computes total cost of ownership reports and fleet
// comparisons from persisted monthly rollups.
package tco

import (
	"context"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/apperr"
	"github.com/joelpate/equipcost/pkg/models"
)

const defaultDowntimeHourlyRate = 500.0
const minAgeYearsDenominator = 0.5
const daysPerYear = 365.25

// TCOCalculator computes total cost of ownership for one or more assets.
type TCOCalculator struct {
	db               store.Store
	downtimeHourlyRate float64
}

// New builds a TCOCalculator. downtimeHourlyRate <= 0 uses the default
// of 500.
func New(db store.Store, downtimeHourlyRate float64) *TCOCalculator {
	if downtimeHourlyRate <= 0 {
		downtimeHourlyRate = defaultDowntimeHourlyRate
	}
	return &TCOCalculator{db: db, downtimeHourlyRate: downtimeHourlyRate}
}

// CalculateTCO sums rollup history through asOf (nil defaults the reported
// AsOf to today without filtering by month).
func (c *TCOCalculator) CalculateTCO(ctx context.Context, equipmentRef string, asOf *models.CalendarDate) (models.TCOReport, error) {
	tx, err := c.db.BeginTx(ctx)
	if err != nil {
		return models.TCOReport{}, apperr.StoreError(err, "begin transaction")
	}
	defer tx.Rollback()

	eq, err := tx.GetEquipment(ctx, equipmentRef)
	if err != nil {
		return models.TCOReport{}, err
	}

	reportDate := models.Today()
	if asOf != nil {
		reportDate = *asOf
	}

	totals, err := tx.RollupTotalsThrough(ctx, equipmentRef, asOf)
	if err != nil {
		return models.TCOReport{}, apperr.StoreError(err, "rollup totals")
	}

	cumulativeMaintenance := totals.TotalCost
	downtimeCost := models.NewMoney(totals.DowntimeHours * c.downtimeHourlyRate)
	totalTCO := eq.AcquisitionCost.Add(cumulativeMaintenance).Add(downtimeCost)

	ageYears := float64(reportDate.SubDays(eq.AcquisitionDate)) / daysPerYear
	denom := ageYears
	if denom < minAgeYearsDenominator {
		denom = minAgeYearsDenominator
	}
	annualizedTCO := totalTCO.Div(denom)

	ratio := 0.0
	if eq.AcquisitionCost.Float64() > 0 {
		ratio = cumulativeMaintenance.Float64() / eq.AcquisitionCost.Float64()
	}

	return models.TCOReport{
		EquipmentRef:                  equipmentRef,
		AsOf:                          reportDate,
		AcquisitionCost:               eq.AcquisitionCost,
		CumulativeMaintenance:         cumulativeMaintenance,
		DowntimeCost:                  downtimeCost,
		TotalTCO:                      totalTCO,
		AgeYears:                      ageYears,
		AnnualizedTCO:                 annualizedTCO,
		MaintenanceToAcquisitionRatio: ratio,
	}, nil
}

// CompareTCO requires at least two asset tags and returns each report
// alongside the best/worst annualized TCO and the fleet average.
func (c *TCOCalculator) CompareTCO(ctx context.Context, equipmentRefs []string) (models.TCOComparison, error) {
	if len(equipmentRefs) < 2 {
		return models.TCOComparison{}, apperr.InvalidArgument("compare_tco requires at least two equipment references")
	}

	reports := make([]models.TCOReport, 0, len(equipmentRefs))
	for _, ref := range equipmentRefs {
		r, err := c.CalculateTCO(ctx, ref, nil)
		if err != nil {
			return models.TCOComparison{}, err
		}
		reports = append(reports, r)
	}

	best := reports[0]
	worst := reports[0]
	var sum float64
	for _, r := range reports {
		sum += r.AnnualizedTCO.Float64()
		if r.AnnualizedTCO.Float64() < best.AnnualizedTCO.Float64() {
			best = r
		}
		if r.AnnualizedTCO.Float64() > worst.AnnualizedTCO.Float64() {
			worst = r
		}
	}

	return models.TCOComparison{
		Reports:            reports,
		BestAssetTag:       best.EquipmentRef,
		WorstAssetTag:      worst.EquipmentRef,
		FleetAvgAnnualized: models.NewMoney(sum / float64(len(reports))),
	}, nil
}
