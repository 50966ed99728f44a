package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelpate/equipcost/internal/store/sqlitestore"
	"github.com/joelpate/equipcost/pkg/models"
)

func seedEquipment(t *testing.T, ctx context.Context, tx interface {
	UpsertEquipment(ctx context.Context, e models.EquipmentRegistry) error
}, assetTag string) {
	t.Helper()
	require.NoError(t, tx.UpsertEquipment(ctx, models.EquipmentRegistry{
		AssetTag: assetTag, Serial: "SN", Class: "infusion_pump", Manufacturer: "Acme", Model: "M1",
		FacilityID: "FAC-1", Department: "ICU",
		AcquisitionDate: models.NewCalendarDate(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)),
		AcquisitionCost: models.NewMoney(10000), Status: models.StatusActive,
	}))
}

func TestComputeMonthlyRollups_SplitsPMAndCorrective(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	seedEquipment(t, ctx, tx, "EQ-1")

	pmCost := models.NewMoney(100)
	corrCost := models.NewMoney(250)
	require.NoError(t, tx.InsertWorkOrder(ctx, models.WorkOrder{
		WONumber: "WO-1", EquipmentRef: "EQ-1", Type: models.WOPreventiveMaintenance,
		Priority: models.PriorityRoutine, OpenedDate: models.NewCalendarDate(time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)),
		TotalCost: &pmCost, TechnicianType: models.TechInHouse,
	}))
	require.NoError(t, tx.InsertWorkOrder(ctx, models.WorkOrder{
		WONumber: "WO-2", EquipmentRef: "EQ-1", Type: models.WOCorrectiveRepair,
		Priority: models.PriorityUrgent, OpenedDate: models.NewCalendarDate(time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)),
		TotalCost: &corrCost, TechnicianType: models.TechInHouse,
	}))
	require.NoError(t, tx.Commit())

	agg := New(db)
	count, err := agg.ComputeMonthlyRollups(ctx, "EQ-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	history, err := agg.GetCostHistory(ctx, "EQ-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].PMCost.Cmp(pmCost) == 0)
	assert.True(t, history[0].CorrectiveCost.Cmp(corrCost) == 0)
	assert.True(t, history[0].TotalCost.Cmp(pmCost.Add(corrCost)) == 0)
}

func TestComputeMonthlyRollups_ContractAllocation(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	seedEquipment(t, ctx, tx, "EQ-2")

	require.NoError(t, tx.InsertContract(ctx, models.ServiceContract{
		EquipmentRef: "EQ-2", Type: models.ContractFullService, Provider: "Vendor",
		AnnualCost: models.NewMoney(1200),
		StartDate:  models.NewCalendarDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:    models.NewCalendarDate(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)),
	}))
	require.NoError(t, tx.Commit())

	agg := New(db)
	_, err = agg.ComputeMonthlyRollups(ctx, "EQ-2")
	require.NoError(t, err)

	history, err := agg.GetCostHistory(ctx, "EQ-2")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for _, r := range history {
		assert.True(t, r.ContractCostAllocated.Cmp(models.NewMoney(100)) == 0)
	}
}

func TestComputeMonthlyRollups_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	seedEquipment(t, ctx, tx, "EQ-IDEMPOTENT")

	corrCost := models.NewMoney(400)
	require.NoError(t, tx.InsertWorkOrder(ctx, models.WorkOrder{
		WONumber: "WO-IDEM-1", EquipmentRef: "EQ-IDEMPOTENT", Type: models.WOCorrectiveRepair,
		Priority: models.PriorityUrgent, OpenedDate: models.NewCalendarDate(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)),
		TotalCost: &corrCost, TechnicianType: models.TechInHouse,
	}))
	require.NoError(t, tx.Commit())

	agg := New(db)
	_, err = agg.ComputeMonthlyRollups(ctx, "EQ-IDEMPOTENT")
	require.NoError(t, err)
	first, err := agg.GetCostHistory(ctx, "EQ-IDEMPOTENT")
	require.NoError(t, err)

	_, err = agg.ComputeMonthlyRollups(ctx, "EQ-IDEMPOTENT")
	require.NoError(t, err)
	second, err := agg.GetCostHistory(ctx, "EQ-IDEMPOTENT")
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].Month.Equal(second[i].Month))
		assert.True(t, first[i].TotalCost.Cmp(second[i].TotalCost) == 0)
	}
}

func TestAgeCohortAnalysis_BucketsByAgeAndClass(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertEquipment(ctx, models.EquipmentRegistry{
		AssetTag: "EQ-YOUNG", Serial: "SN-Y", Class: "ventilator", Manufacturer: "Acme", Model: "M1",
		FacilityID: "FAC-1", Department: "ICU",
		AcquisitionDate: models.NewCalendarDate(time.Now().AddDate(-1, 0, 0)),
		AcquisitionCost: models.NewMoney(20000), Status: models.StatusActive,
	}))
	require.NoError(t, tx.UpsertEquipment(ctx, models.EquipmentRegistry{
		AssetTag: "EQ-OLD", Serial: "SN-O", Class: "ct_scanner", Manufacturer: "GE", Model: "M2",
		FacilityID: "FAC-1", Department: "Radiology",
		AcquisitionDate: models.NewCalendarDate(time.Now().AddDate(-14, 0, 0)),
		AcquisitionCost: models.NewMoney(900000), Status: models.StatusActive,
	}))
	require.NoError(t, tx.InsertRollup(ctx, models.MonthlyRollup{
		EquipmentRef: "EQ-YOUNG", Month: models.NewCalendarDate(time.Now().AddDate(0, -1, 0)),
		TotalCost: models.NewMoney(300),
	}))
	require.NoError(t, tx.InsertRollup(ctx, models.MonthlyRollup{
		EquipmentRef: "EQ-OLD", Month: models.NewCalendarDate(time.Now().AddDate(0, -1, 0)),
		TotalCost: models.NewMoney(9000),
	}))
	require.NoError(t, tx.Commit())

	agg := New(db)
	cohorts, err := agg.AgeCohortAnalysis(ctx, "FAC-1")
	require.NoError(t, err)
	require.Len(t, cohorts, 5)

	assert.Equal(t, "0-2 years", cohorts[0].Cohort)
	assert.Equal(t, 1, cohorts[0].Count)
	assert.Equal(t, 1, cohorts[0].EquipmentClasses["ventilator"])
	assert.True(t, cohorts[0].TotalAnnualCost.Cmp(models.NewMoney(300)) == 0)

	assert.Equal(t, "12+ years", cohorts[4].Cohort)
	assert.Equal(t, 1, cohorts[4].Count)
	assert.Equal(t, 1, cohorts[4].EquipmentClasses["ct_scanner"])
	assert.True(t, cohorts[4].TotalAnnualCost.Cmp(models.NewMoney(9000)) == 0)

	assert.Equal(t, 0, cohorts[1].Count)
}

func TestComputeMonthlyRollups_AllAssetsWhenRefEmpty(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	seedEquipment(t, ctx, tx, "EQ-3")
	seedEquipment(t, ctx, tx, "EQ-4")
	require.NoError(t, tx.Commit())

	agg := New(db)
	count, err := agg.ComputeMonthlyRollups(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
