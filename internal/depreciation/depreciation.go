// Package depreciation computes straight-line and MACRS depreciation
// schedules for capital equipment.
package depreciation

import (
	"context"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/apperr"
	"github.com/joelpate/equipcost/pkg/models"
)

// macrsTables holds the IRS half-year-convention percentage tables keyed by
// recovery period in years.
var macrsTables = map[int][]float64{
	5: {0.20, 0.32, 0.192, 0.1152, 0.1152, 0.0576},
	7: {0.1429, 0.2449, 0.1749, 0.1249, 0.0893, 0.0892, 0.0893, 0.0446},
}

const defaultSalvageRate = 0.05

// Depreciator computes and persists depreciation schedules.
type Depreciator struct {
	db store.Store
}

// New builds a Depreciator against the given store.
func New(db store.Store) *Depreciator {
	return &Depreciator{db: db}
}

// StraightLineSchedule builds a straight-line depreciation schedule.
// usefulLifeYears must be positive.
func StraightLineSchedule(equipmentRef string, acquisitionCost, salvageValue models.Money, usefulLifeYears int, acquisitionDate models.CalendarDate) []models.DepreciationSchedule {
	annualExpense := acquisitionCost.Sub(salvageValue).Div(float64(usefulLifeYears))
	startFY := acquisitionDate.FiscalYear()

	month := acquisitionDate.Month()
	var firstYearMonths int
	if month >= 10 {
		firstYearMonths = 12 - (month - 10)
	} else {
		firstYearMonths = 10 - month
	}

	var rows []models.DepreciationSchedule
	remaining := acquisitionCost.Sub(salvageValue)
	beginningBV := acquisitionCost
	accumulated := models.Money{}

	fy := startFY
	first := true
	for remaining.Float64() > 0.01 {
		var expense models.Money
		if first {
			expense = annualExpense.Mul(float64(firstYearMonths) / 12.0)
			first = false
		} else {
			expense = annualExpense
		}
		if expense.Float64() > remaining.Float64() {
			expense = remaining
		}

		endingBV := beginningBV.Sub(expense)
		accumulated = accumulated.Add(expense)

		rows = append(rows, models.DepreciationSchedule{
			EquipmentRef:            equipmentRef,
			FiscalYear:              fy,
			Method:                  models.DepStraightLine,
			BeginningBookValue:      beginningBV,
			DepreciationExpense:     expense,
			EndingBookValue:         endingBV,
			AccumulatedDepreciation: accumulated,
		})

		remaining = remaining.Sub(expense)
		beginningBV = endingBV
		fy++

		if len(rows) > usefulLifeYears+2 {
			break // guards against float drift never quite reaching the 0.01 threshold
		}
	}
	return rows
}

// MACRSSchedule builds a schedule using the fixed IRS half-year-convention
// tables. recoveryYears must be 5 or 7.
func MACRSSchedule(equipmentRef string, acquisitionCost models.Money, recoveryYears int, acquisitionDate models.CalendarDate) ([]models.DepreciationSchedule, error) {
	pcts, ok := macrsTables[recoveryYears]
	if !ok {
		return nil, apperr.UnsupportedRecoveryPeriod(recoveryYears)
	}

	startFY := acquisitionDate.FiscalYear()
	var rows []models.DepreciationSchedule
	accumulated := models.Money{}
	beginningBV := acquisitionCost

	for i, pct := range pcts {
		expense := acquisitionCost.Mul(pct)
		endingBV := beginningBV.Sub(expense)
		accumulated = accumulated.Add(expense)

		rows = append(rows, models.DepreciationSchedule{
			EquipmentRef:            equipmentRef,
			FiscalYear:              startFY + i,
			Method:                  models.DepMACRS,
			BeginningBookValue:      beginningBV,
			DepreciationExpense:     expense,
			EndingBookValue:         endingBV,
			AccumulatedDepreciation: accumulated,
		})
		beginningBV = endingBV
	}
	return rows, nil
}

// ComputeBookValue recomputes and persists the schedule for (equipmentRef,
// method), returning the ending book value of the latest fiscal year at or
// before the current fiscal year (or the acquisition cost, when acquisition
// is in a future fiscal year).
func (d *Depreciator) ComputeBookValue(ctx context.Context, equipmentRef string, method models.DepreciationMethod) (models.Money, error) {
	tx, err := d.db.BeginTx(ctx)
	if err != nil {
		return models.Money{}, apperr.StoreError(err, "begin transaction")
	}
	defer tx.Rollback()

	eq, err := tx.GetEquipment(ctx, equipmentRef)
	if err != nil {
		return models.Money{}, err
	}

	if err := tx.DeleteDepreciationSchedule(ctx, equipmentRef, method); err != nil {
		return models.Money{}, apperr.StoreError(err, "delete depreciation schedule")
	}

	var rows []models.DepreciationSchedule
	switch method {
	case models.DepMACRS:
		years := 5
		if eq.UsefulLifeMonths != nil && *eq.UsefulLifeMonths/12 >= 7 {
			years = 7
		}
		rows, err = MACRSSchedule(equipmentRef, eq.AcquisitionCost, years, eq.AcquisitionDate)
		if err != nil {
			return models.Money{}, err
		}
	default:
		usefulLifeYears := 7
		if eq.UsefulLifeMonths != nil {
			usefulLifeYears = *eq.UsefulLifeMonths / 12
			if usefulLifeYears < 1 {
				usefulLifeYears = 1
			}
		}
		salvage := eq.AcquisitionCost.Mul(defaultSalvageRate)
		rows = StraightLineSchedule(equipmentRef, eq.AcquisitionCost, salvage, usefulLifeYears, eq.AcquisitionDate)
	}

	for _, row := range rows {
		if err := tx.InsertDepreciationRow(ctx, row); err != nil {
			return models.Money{}, apperr.StoreError(err, "insert depreciation row")
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Money{}, apperr.StoreError(err, "commit")
	}

	currentFY := models.Today().FiscalYear()
	if len(rows) == 0 || rows[0].FiscalYear > currentFY {
		return eq.AcquisitionCost, nil
	}

	best := rows[0]
	for _, r := range rows {
		if r.FiscalYear <= currentFY && r.FiscalYear >= best.FiscalYear {
			best = r
		}
	}
	return best.EndingBookValue, nil
}
