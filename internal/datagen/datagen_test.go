package datagen

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

func TestRun_PopulatesFullFleetDeterministically(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	today := models.NewCalendarDate(time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC))
	historyStart := models.NewCalendarDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	g := New(DefaultSeed, today, historyStart)
	summary, err := g.Run(ctx, db)
	require.NoError(t, err)

	assert.Equal(t, 500, summary.Equipment)
	assert.Greater(t, summary.WorkOrders, 0)
	assert.Greater(t, summary.PMSchedules, 0)

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	all, err := tx.ListEquipment(ctx, store.EquipmentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 500)

	ctScanners := 0
	for _, eq := range all {
		if eq.Class == "ct_scanner" {
			ctScanners++
		}
		assert.True(t, eq.AcquisitionCost.Float64() > 0)
	}
	assert.Equal(t, 15, ctScanners)
}

func TestRun_IsDeterministicAcrossRunsWithSameSeed(t *testing.T) {
	ctx := context.Background()
	today := models.NewCalendarDate(time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC))
	historyStart := models.NewCalendarDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	db1, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { db1.Close() })
	db2, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { db2.Close() })

	summary1, err := New(DefaultSeed, today, historyStart).Run(ctx, db1)
	require.NoError(t, err)
	summary2, err := New(DefaultSeed, today, historyStart).Run(ctx, db2)
	require.NoError(t, err)

	assert.Equal(t, summary1, summary2)
}
