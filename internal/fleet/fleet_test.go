package fleet

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

func seedAgingAsset(t *testing.T, ctx context.Context, db store.Store, assetTag, class string, ageYears int, acqCost, monthlyCost float64) {
	t.Helper()
	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertEquipment(ctx, models.EquipmentRegistry{
		AssetTag: assetTag, Serial: "SN-" + assetTag, Class: class, Manufacturer: "Acme", Model: "M1",
		FacilityID: "FAC-1", Department: "ICU",
		AcquisitionDate: models.NewCalendarDate(time.Now().AddDate(-ageYears, 0, 0)),
		AcquisitionCost: models.NewMoney(acqCost), Status: models.StatusActive,
	}))
	for i := 0; i < 3; i++ {
		require.NoError(t, tx.InsertRollup(ctx, models.MonthlyRollup{
			EquipmentRef: assetTag,
			Month:        models.NewCalendarDate(time.Now().AddDate(0, -i-1, 0)),
			TotalCost:    models.NewMoney(monthlyCost),
		}))
	}
	require.NoError(t, tx.Commit())
}

func TestRankReplacementPriorities_OrdersBySavingsThenAge(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	seedAgingAsset(t, ctx, db, "EQ-OLD", "ventilator", 12, 15000, 3000)
	seedAgingAsset(t, ctx, db, "EQ-NEW", "ventilator", 1, 15000, 50)

	opt := New(db, 0)
	priorities, err := opt.RankReplacementPriorities(ctx, "FAC-1", models.NewMoney(1_000_000))
	require.NoError(t, err)
	require.Len(t, priorities, 2)

	for i, p := range priorities {
		assert.Equal(t, i+1, p.Rank)
	}
	assert.Equal(t, "EQ-OLD", priorities[0].AssetTag)
	assert.GreaterOrEqual(t, priorities[0].NPVSavings.Float64(), priorities[1].NPVSavings.Float64())
}

func TestRankReplacementPriorities_WithinBudgetRespectsCapitalLimit(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	seedAgingAsset(t, ctx, db, "EQ-A", "ventilator", 12, 15000, 3000)
	seedAgingAsset(t, ctx, db, "EQ-B", "ventilator", 11, 15000, 2800)

	opt := New(db, 0)
	priorities, err := opt.RankReplacementPriorities(ctx, "FAC-1", models.NewMoney(1))
	require.NoError(t, err)
	for _, p := range priorities {
		if p.NPVSavings.Float64() > 0 {
			assert.False(t, p.WithinBudget)
		}
	}
}

func TestOptimalReplacementSchedule_NeverRevisitsScheduledAsset(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	seedAgingAsset(t, ctx, db, "EQ-X", "infusion_pump", 13, 10000, 2500)
	seedAgingAsset(t, ctx, db, "EQ-Y", "infusion_pump", 12, 10000, 2400)

	opt := New(db, 0)
	schedule, err := opt.OptimalReplacementSchedule(ctx, "FAC-1", models.NewMoney(100_000), 3)
	require.NoError(t, err)
	require.Len(t, schedule.Years, 3)

	seen := map[string]int{}
	for _, y := range schedule.Years {
		for _, r := range y.Replacements {
			seen[r.AssetTag]++
		}
	}
	for tag, count := range seen {
		assert.Equal(t, 1, count, "asset %s scheduled more than once", tag)
	}
}
