package forecast

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelpate/equipcost/internal/aggregator"
	"github.com/joelpate/equipcost/internal/store/sqlitestore"
	"github.com/joelpate/equipcost/pkg/models"
)

func TestForecastEquipment_InsufficientHistory(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertEquipment(ctx, models.EquipmentRegistry{
		AssetTag: "EQ-1", Serial: "SN", Class: "ventilator", Manufacturer: "Acme", Model: "M1",
		FacilityID: "FAC-1", Department: "ICU",
		AcquisitionDate: models.NewCalendarDate(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)),
		AcquisitionCost: models.NewMoney(20000), Status: models.StatusActive,
	}))
	for i := 0; i < 3; i++ {
		m := models.NewCalendarDate(time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, tx.InsertRollup(ctx, models.MonthlyRollup{
			EquipmentRef: "EQ-1", Month: m, TotalCost: models.NewMoney(100),
		}))
	}
	require.NoError(t, tx.Commit())

	f := New(db, 24)
	_, err = f.ForecastEquipment(ctx, "EQ-1", 6, models.MethodAuto)
	require.Error(t, err)
}

func TestForecastEquipment_ShortHistoryForcesExponentialSmoothing(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertEquipment(ctx, models.EquipmentRegistry{
		AssetTag: "EQ-2", Serial: "SN", Class: "ventilator", Manufacturer: "Acme", Model: "M1",
		FacilityID: "FAC-1", Department: "ICU",
		AcquisitionDate: models.NewCalendarDate(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)),
		AcquisitionCost: models.NewMoney(20000), Status: models.StatusActive,
	}))
	for i := 0; i < 10; i++ {
		m := models.NewCalendarDate(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0))
		require.NoError(t, tx.InsertRollup(ctx, models.MonthlyRollup{
			EquipmentRef: "EQ-2", Month: m, TotalCost: models.NewMoney(100 + float64(i)),
		}))
	}
	require.NoError(t, tx.Commit())

	f := New(db, 24)
	result, err := f.ForecastEquipment(ctx, "EQ-2", 6, models.MethodAuto)
	require.NoError(t, err)
	assert.Equal(t, models.MethodExponentialSmoothing, result.Method)
	assert.Len(t, result.MonthlyForecasts, 6)
}

func TestAggregatorForecasterPipeline_PreservesEscalatingTrend(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertEquipment(ctx, models.EquipmentRegistry{
		AssetTag: "EQ-CT-1", Serial: "SN-CT1", Class: "ct_scanner", Manufacturer: "GE Healthcare",
		Model: "Revolution CT", FacilityID: "FAC-1", Department: "Radiology",
		AcquisitionDate: models.NewCalendarDate(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)),
		AcquisitionCost: models.NewMoney(900000), Status: models.StatusActive,
	}))

	// 28 quarterly corrective repairs from 2018 through late 2025, escalating
	// from $2,500 to $14,000, plus a quarterly $1,200 PM alongside each one.
	const repairs = 28
	for i := 0; i < repairs; i++ {
		opened := models.NewCalendarDate(time.Date(2018, 1, 15, 0, 0, 0, 0, time.UTC).AddDate(0, i*3, 0))
		corrCost := models.NewMoney(2500 + (14000-2500)*float64(i)/float64(repairs-1))
		pmCost := models.NewMoney(1200)
		require.NoError(t, tx.InsertWorkOrder(ctx, models.WorkOrder{
			WONumber: fmt.Sprintf("WO-CORR-%d", i), EquipmentRef: "EQ-CT-1", Type: models.WOCorrectiveRepair,
			Priority: models.PriorityUrgent, OpenedDate: opened, TotalCost: &corrCost, TechnicianType: models.TechInHouse,
		}))
		require.NoError(t, tx.InsertWorkOrder(ctx, models.WorkOrder{
			WONumber: fmt.Sprintf("WO-PM-%d", i), EquipmentRef: "EQ-CT-1", Type: models.WOPreventiveMaintenance,
			Priority: models.PriorityRoutine, OpenedDate: opened.AddDays(5), TotalCost: &pmCost, TechnicianType: models.TechInHouse,
		}))
	}
	require.NoError(t, tx.Commit())

	agg := aggregator.New(db)
	_, err = agg.ComputeMonthlyRollups(ctx, "EQ-CT-1")
	require.NoError(t, err)

	f := New(db, 24)
	result, err := f.ForecastEquipment(ctx, "EQ-CT-1", 12, models.MethodAuto)
	require.NoError(t, err)
	require.Len(t, result.MonthlyForecasts, 12)

	var firstThree, lastThree float64
	for i := 0; i < 3; i++ {
		firstThree += result.MonthlyForecasts[i].PredictedCost.Float64()
	}
	for i := len(result.MonthlyForecasts) - 3; i < len(result.MonthlyForecasts); i++ {
		lastThree += result.MonthlyForecasts[i].PredictedCost.Float64()
	}
	assert.GreaterOrEqual(t, lastThree/3, 0.8*firstThree/3)
}

func TestForecastEquipment_BoundsContainPredictionAndNeverGoNegative(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertEquipment(ctx, models.EquipmentRegistry{
		AssetTag: "EQ-BOUNDS", Serial: "SN", Class: "ventilator", Manufacturer: "Acme", Model: "M1",
		FacilityID: "FAC-1", Department: "ICU",
		AcquisitionDate: models.NewCalendarDate(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)),
		AcquisitionCost: models.NewMoney(20000), Status: models.StatusActive,
	}))
	for i := 0; i < 30; i++ {
		m := models.NewCalendarDate(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0))
		cost := 50.0
		if i%6 == 0 {
			cost = 400
		}
		require.NoError(t, tx.InsertRollup(ctx, models.MonthlyRollup{
			EquipmentRef: "EQ-BOUNDS", Month: m, TotalCost: models.NewMoney(cost),
		}))
	}
	require.NoError(t, tx.Commit())

	f := New(db, 24)
	result, err := f.ForecastEquipment(ctx, "EQ-BOUNDS", 12, models.MethodAuto)
	require.NoError(t, err)

	for _, point := range result.MonthlyForecasts {
		assert.GreaterOrEqual(t, point.PredictedCost.Float64(), 0.0)
		assert.LessOrEqual(t, point.LowerBound.Float64(), point.PredictedCost.Float64())
		assert.LessOrEqual(t, point.PredictedCost.Float64(), point.UpperBound.Float64())
	}
}

func TestComputeHoldoutMetrics_FallsBackToInSampleWhenTestEmpty(t *testing.T) {
	series := []float64{100, 105, 98, 110, 102}
	metrics := computeHoldoutMetrics(series, 24, exponentialSmoothingRefit)
	assert.GreaterOrEqual(t, metrics.MAE, 0.0)
}
