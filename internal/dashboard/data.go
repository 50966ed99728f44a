package dashboard

import (
	"context"
	"fmt"

	"github.com/joelpate/equipcost/internal/aggregator"
	"github.com/joelpate/equipcost/internal/fleet"
	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/internal/tco"
	"github.com/joelpate/equipcost/pkg/models"

	tea "github.com/charmbracelet/bubbletea"
)

// dataService is the dashboard's read path into the analytical core. It
// holds no state of its own, the way tui/services.DataService wraps
// repositories without caching beyond a single load.
type dataService struct {
	db   store.Store
	agg  *aggregator.Aggregator
	tc   *tco.TCOCalculator
	opt  *fleet.FleetOptimizer
}

func newDataService(db store.Store, downtimeHourlyRate, discountRate float64) *dataService {
	return &dataService{
		db:  db,
		agg: aggregator.New(db),
		tc:  tco.New(db, downtimeHourlyRate),
		opt: fleet.New(db, discountRate),
	}
}

// fleetSnapshotMsg carries the data the Fleet Overview tab renders.
type fleetSnapshotMsg struct {
	summary    models.FleetCostSummary
	equipment  []models.EquipmentRegistry
	priorities []models.ReplacementPriority
}

// equipmentDetailMsg carries the data the Equipment Detail tab renders
// for a single asset tag.
type equipmentDetailMsg struct {
	equipment models.EquipmentRegistry
	report    models.TCOReport
}

// dashboardErrMsg wraps a load failure so Update can render it without
// a type switch against the bare error interface.
type dashboardErrMsg struct{ err error }

func (d *dataService) loadFleetSnapshot(facilityID string, budget models.Money) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		summary, err := d.agg.GetFleetCostSummary(ctx, facilityID)
		if err != nil {
			return dashboardErrMsg{err: fmt.Errorf("fleet cost summary: %w", err)}
		}

		tx, err := d.db.BeginTx(ctx)
		if err != nil {
			return dashboardErrMsg{err: fmt.Errorf("begin transaction: %w", err)}
		}
		defer tx.Rollback()

		equipment, err := tx.ListEquipment(ctx, store.EquipmentFilter{FacilityID: facilityID})
		if err != nil {
			return dashboardErrMsg{err: fmt.Errorf("list equipment: %w", err)}
		}

		priorities, err := d.opt.RankReplacementPriorities(ctx, facilityID, budget)
		if err != nil {
			return dashboardErrMsg{err: fmt.Errorf("rank replacement priorities: %w", err)}
		}

		return fleetSnapshotMsg{summary: summary, equipment: equipment, priorities: priorities}
	}
}

func (d *dataService) loadEquipmentDetail(assetTag string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		tx, err := d.db.BeginTx(ctx)
		if err != nil {
			return dashboardErrMsg{err: fmt.Errorf("begin transaction: %w", err)}
		}
		defer tx.Rollback()

		eq, err := tx.GetEquipment(ctx, assetTag)
		if err != nil {
			return dashboardErrMsg{err: fmt.Errorf("get equipment %s: %w", assetTag, err)}
		}

		report, err := d.tc.CalculateTCO(ctx, assetTag, nil)
		if err != nil {
			return dashboardErrMsg{err: fmt.Errorf("calculate tco for %s: %w", assetTag, err)}
		}

		return equipmentDetailMsg{equipment: *eq, report: report}
	}
}
