package depreciation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelpate/equipcost/internal/store/sqlitestore"
	"github.com/joelpate/equipcost/pkg/apperr"
	"github.com/joelpate/equipcost/pkg/models"
)

func TestStraightLineSchedule_EndsAtSalvage(t *testing.T) {
	acq := models.NewCalendarDate(time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC))
	cost := models.NewMoney(10000)
	salvage := models.NewMoney(1000)

	rows := StraightLineSchedule("EQ-1", cost, salvage, 9, acq)
	require.NotEmpty(t, rows)

	last := rows[len(rows)-1]
	assert.InDelta(t, 1000, last.EndingBookValue.Float64(), 0.5)

	accumulated := models.Money{}
	for _, r := range rows {
		accumulated = accumulated.Add(r.DepreciationExpense)
	}
	assert.InDelta(t, 9000, accumulated.Float64(), 0.5)
}

func TestStraightLineSchedule_FirstYearProration(t *testing.T) {
	// October acquisition starts cleanly on the fiscal year boundary.
	acq := models.NewCalendarDate(time.Date(2020, 10, 1, 0, 0, 0, 0, time.UTC))
	cost := models.NewMoney(12000)
	rows := StraightLineSchedule("EQ-2", cost, models.Money{}, 10, acq)
	require.NotEmpty(t, rows)
	assert.InDelta(t, 1200, rows[0].DepreciationExpense.Float64(), 0.5)
}

func TestMACRSSchedule_FiveYear(t *testing.T) {
	acq := models.NewCalendarDate(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC))
	cost := models.NewMoney(100000)
	rows, err := MACRSSchedule("EQ-3", cost, 5, acq)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.InDelta(t, 20000, rows[0].DepreciationExpense.Float64(), 0.01)
	assert.InDelta(t, 5760, rows[5].DepreciationExpense.Float64(), 0.01)
}

func TestMACRSSchedule_SevenYearOnOneMillion(t *testing.T) {
	acq := models.NewCalendarDate(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC))
	cost := models.NewMoney(1000000)
	rows, err := MACRSSchedule("EQ-MACRS7", cost, 7, acq)
	require.NoError(t, err)
	require.Len(t, rows, 8)

	expected := []float64{142900, 244900, 174900, 124900, 89300, 89200, 89300, 44600}
	var sum float64
	for i, row := range rows {
		assert.InDelta(t, expected[i], row.DepreciationExpense.Float64(), 1.0)
		sum += row.DepreciationExpense.Float64()
	}
	assert.InDelta(t, 1000000, sum, 1.0)
}

func TestStraightLineSchedule_LiteralScenario(t *testing.T) {
	acq := models.NewCalendarDate(time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC))
	rows := StraightLineSchedule("EQ-SL1", models.NewMoney(100000), models.NewMoney(10000), 10, acq)
	require.NotEmpty(t, rows)

	assert.Equal(t, 2020, rows[0].FiscalYear)
	assert.InDelta(t, 6750, rows[0].DepreciationExpense.Float64(), 0.5)

	var sum float64
	for _, row := range rows {
		sum += row.DepreciationExpense.Float64()
	}
	assert.InDelta(t, 90000, sum, 0.5)
}

func TestMACRSSchedule_UnsupportedPeriod(t *testing.T) {
	acq := models.NewCalendarDate(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC))
	_, err := MACRSSchedule("EQ-4", models.NewMoney(1000), 3, acq)
	require.Error(t, err)
	code, ok := apperr.Code(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeUnsupportedRecoveryPeriod, code)
}

func TestComputeBookValue_PersistsAndReturnsCurrent(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	lifeMonths := 84
	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertEquipment(ctx, models.EquipmentRegistry{
		AssetTag: "EQ-5", Serial: "SN", Class: "ventilator", Manufacturer: "Acme", Model: "M1",
		FacilityID: "FAC-1", Department: "ICU",
		AcquisitionDate:  models.NewCalendarDate(time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)),
		AcquisitionCost:  models.NewMoney(50000),
		UsefulLifeMonths: &lifeMonths,
		Status:           models.StatusActive,
	}))
	require.NoError(t, tx.Commit())

	dep := New(db)
	bv, err := dep.ComputeBookValue(ctx, "EQ-5", models.DepStraightLine)
	require.NoError(t, err)
	assert.True(t, bv.Float64() <= 50000)

	tx2, err := db.BeginTx(ctx)
	require.NoError(t, err)
	defer tx2.Rollback()
	schedule, err := tx2.GetDepreciationSchedule(ctx, "EQ-5", models.DepStraightLine)
	require.NoError(t, err)
	assert.NotEmpty(t, schedule)
}
