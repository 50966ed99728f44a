package tco

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/internal/store/sqlitestore"
	"github.com/joelpate/equipcost/pkg/models"
)

func seedAssetWithRollup(t *testing.T, ctx context.Context, db store.Store, assetTag string, acqCost float64, totalCost float64, downtimeHours float64) {
	t.Helper()
	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertEquipment(ctx, models.EquipmentRegistry{
		AssetTag: assetTag, Serial: "SN", Class: "ventilator", Manufacturer: "Acme", Model: "M1",
		FacilityID: "FAC-1", Department: "ICU",
		AcquisitionDate: models.NewCalendarDate(time.Now().AddDate(-3, 0, 0)),
		AcquisitionCost: models.NewMoney(acqCost), Status: models.StatusActive,
	}))
	require.NoError(t, tx.InsertRollup(ctx, models.MonthlyRollup{
		EquipmentRef: assetTag, Month: models.NewCalendarDate(time.Now().AddDate(0, -1, 0)),
		TotalCost: models.NewMoney(totalCost), DowntimeHours: downtimeHours,
	}))
	require.NoError(t, tx.Commit())
}

func TestCalculateTCO_SumsComponents(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	seedAssetWithRollup(t, ctx, db, "EQ-1", 20000, 1000, 10)

	calc := New(db, 0)
	report, err := calc.CalculateTCO(ctx, "EQ-1", nil)
	require.NoError(t, err)

	assert.InDelta(t, 5000, report.DowntimeCost.Float64(), 0.01)
	assert.InDelta(t, 26000, report.TotalTCO.Float64(), 0.01)
	assert.Greater(t, report.AgeYears, 2.9)
}

func TestCalculateTCO_NeverFallsBelowAcquisitionCost(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	seedAssetWithRollup(t, ctx, db, "EQ-FLOOR", 20000, 0, 0)

	calc := New(db, 0)
	report, err := calc.CalculateTCO(ctx, "EQ-FLOOR", nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.TotalTCO.Float64(), 20000.0)
}

func TestCompareTCO_RequiresAtLeastTwo(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	calc := New(db, 0)
	_, err = calc.CompareTCO(ctx, []string{"EQ-1"})
	require.Error(t, err)
}

func TestCompareTCO_IdentifiesBestAndWorst(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	seedAssetWithRollup(t, ctx, db, "EQ-LOW", 20000, 100, 0)
	seedAssetWithRollup(t, ctx, db, "EQ-HIGH", 20000, 5000, 50)

	calc := New(db, 0)
	cmp, err := calc.CompareTCO(ctx, []string{"EQ-LOW", "EQ-HIGH"})
	require.NoError(t, err)
	assert.Equal(t, "EQ-LOW", cmp.BestAssetTag)
	assert.Equal(t, "EQ-HIGH", cmp.WorstAssetTag)
}
