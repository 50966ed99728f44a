package dashboard

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/internal/store/sqlitestore"
	"github.com/joelpate/equipcost/pkg/models"
)

func seedDashboardAsset(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertEquipment(ctx, models.EquipmentRegistry{
		AssetTag: "EQ-9", Serial: "SN-9", Class: "infusion_pump", Manufacturer: "Acme", Model: "IP-2",
		FacilityID: "FAC-1", Department: "ICU",
		AcquisitionDate: models.NewCalendarDate(time.Now().AddDate(-3, 0, 0)),
		AcquisitionCost: models.NewMoney(8000), Status: models.StatusActive,
	}))
	require.NoError(t, tx.Commit())
	return db
}

func TestModel_InitReturnsLoadCommand(t *testing.T) {
	db := seedDashboardAsset(t)
	m := New(db, Config{FacilityID: "FAC-1"})

	cmd := m.Init()
	assert.NotNil(t, cmd)
}

func TestModel_WindowSizeMsgBuildsLayout(t *testing.T) {
	db := seedDashboardAsset(t)
	m := New(db, Config{FacilityID: "FAC-1"})

	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Nil(t, cmd)

	next := updated.(Model)
	assert.Equal(t, 100, next.width)
	assert.Equal(t, 40, next.height)
	assert.NotNil(t, next.layout)
}

func TestModel_TabKeyCyclesTabs(t *testing.T) {
	db := seedDashboardAsset(t)
	m := New(db, Config{FacilityID: "FAC-1"})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	next := updated.(Model)
	assert.Equal(t, tabReplacementPriorities, next.selectedTab)

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab})
	next = updated.(Model)
	assert.Equal(t, tabEquipmentDetail, next.selectedTab)
}

func TestModel_CtrlCQuits(t *testing.T) {
	db := seedDashboardAsset(t)
	m := New(db, Config{FacilityID: "FAC-1"})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)
}

func TestModel_FleetSnapshotMsgPopulatesState(t *testing.T) {
	db := seedDashboardAsset(t)
	m := New(db, Config{FacilityID: "FAC-1"})
	m.width, m.height = 100, 40
	m.layout = newLayout(100, 40, m.styles)

	msg := fleetSnapshotMsg{
		summary: models.FleetCostSummary{
			TotalEquipment:  1,
			TotalAnnualCost: models.NewMoney(1200),
		},
		equipment: []models.EquipmentRegistry{{AssetTag: "EQ-9", Status: models.StatusActive}},
	}
	updated, cmd := m.Update(msg)
	assert.Nil(t, cmd)

	next := updated.(Model)
	assert.False(t, next.loading)
	assert.Nil(t, next.err)
	assert.Equal(t, 1, next.summary.TotalEquipment)
	assert.Len(t, next.equipment, 1)

	view := next.View()
	assert.Contains(t, view, "Fleet Overview")
	assert.Contains(t, view, "EQ-9")
}

func TestModel_ErrMsgSwitchesToErrorView(t *testing.T) {
	db := seedDashboardAsset(t)
	m := New(db, Config{FacilityID: "FAC-1"})
	m.width, m.height = 100, 40
	m.layout = newLayout(100, 40, m.styles)

	updated, _ := m.Update(dashboardErrMsg{err: assertErr("boom")})
	next := updated.(Model)
	assert.False(t, next.loading)
	assert.Error(t, next.err)
	assert.Contains(t, next.View(), "boom")
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
