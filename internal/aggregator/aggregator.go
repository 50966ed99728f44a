// Package aggregator turns raw work orders and service contracts into the
// monthly cost rollups every downstream analytical component reads.
package aggregator

import (
	"context"
	"fmt"

	"github.com/joelpate/equipcost/internal/platformlog"
	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/apperr"
	"github.com/joelpate/equipcost/pkg/models"
)

// Aggregator computes and persists MonthlyRollup rows from the raw work
// order and contract tables.
type Aggregator struct {
	db store.Store
}

// New builds an Aggregator against the given store.
func New(db store.Store) *Aggregator {
	return &Aggregator{db: db}
}

// ComputeMonthlyRollups recomputes rollups for a single asset when
// equipmentRef is non-empty, or for every registry entry when it is empty.
// It returns the number of assets processed.
func (a *Aggregator) ComputeMonthlyRollups(ctx context.Context, equipmentRef string) (int, error) {
	tx, err := a.db.BeginTx(ctx)
	if err != nil {
		return 0, apperr.StoreError(err, "begin transaction")
	}
	defer tx.Rollback()

	var refs []string
	if equipmentRef != "" {
		refs = []string{equipmentRef}
	} else {
		all, err := tx.ListEquipment(ctx, store.EquipmentFilter{})
		if err != nil {
			return 0, apperr.StoreError(err, "list equipment")
		}
		for _, e := range all {
			refs = append(refs, e.AssetTag)
		}
	}

	for _, ref := range refs {
		if err := a.rollupOne(ctx, tx, ref); err != nil {
			return 0, err
		}
		platformlog.Debug("recomputed rollups for %s", ref)
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.StoreError(err, "commit")
	}
	return len(refs), nil
}

// monthBucket accumulates the three cost components for one calendar month
// before they are combined into a MonthlyRollup.
type monthBucket struct {
	month                 models.CalendarDate
	pmCost                models.Money
	correctiveCost        models.Money
	partsCost             models.Money
	contractCostAllocated models.Money
	downtimeHours         float64
	workOrderCount        int
}

func (a *Aggregator) rollupOne(ctx context.Context, tx store.Tx, equipmentRef string) error {
	groups, err := tx.MonthlyWorkOrderGroups(ctx, equipmentRef)
	if err != nil {
		return apperr.StoreError(err, "monthly work order groups")
	}

	buckets := map[string]*monthBucket{}
	get := func(m models.CalendarDate) *monthBucket {
		key := m.String()
		b, ok := buckets[key]
		if !ok {
			b = &monthBucket{month: m}
			buckets[key] = b
		}
		return b
	}

	for _, g := range groups {
		b := get(g.Month.FirstOfMonth())
		b.partsCost = b.partsCost.Add(g.PartsCost)
		b.downtimeHours += g.DowntimeHours
		b.workOrderCount += g.WorkOrderCount
		if g.Type == models.WOCorrectiveRepair {
			b.correctiveCost = b.correctiveCost.Add(g.TotalCost)
		} else {
			b.pmCost = b.pmCost.Add(g.TotalCost)
		}
	}

	contracts, err := tx.ListContracts(ctx, equipmentRef)
	if err != nil {
		return apperr.StoreError(err, "list contracts")
	}
	for _, c := range contracts {
		if c.AnnualCost.IsZero() || c.StartDate.IsZero() || c.EndDate.IsZero() {
			continue
		}
		monthly := c.AnnualCost.Div(12)
		for m := c.StartDate.FirstOfMonth(); !m.After(c.EndDate); m = m.AddMonths(1) {
			b := get(m)
			b.contractCostAllocated = b.contractCostAllocated.Add(monthly)
		}
	}

	if err := tx.DeleteRollups(ctx, equipmentRef); err != nil {
		return apperr.StoreError(err, "delete rollups")
	}

	for _, b := range buckets {
		totalCost := b.pmCost.Add(b.correctiveCost).Add(b.contractCostAllocated)
		row := models.MonthlyRollup{
			EquipmentRef:          equipmentRef,
			Month:                 b.month,
			PMCost:                b.pmCost,
			CorrectiveCost:        b.correctiveCost,
			PartsCost:             b.partsCost,
			ContractCostAllocated: b.contractCostAllocated,
			DowntimeHours:         b.downtimeHours,
			WorkOrderCount:        b.workOrderCount,
			TotalCost:             totalCost,
		}
		if err := tx.InsertRollup(ctx, row); err != nil {
			return apperr.StoreError(err, fmt.Sprintf("insert rollup for %s", equipmentRef))
		}
	}
	return nil
}

// GetCostHistory returns the persisted rollups for an asset ordered by
// month ascending.
func (a *Aggregator) GetCostHistory(ctx context.Context, equipmentRef string) ([]models.MonthlyRollup, error) {
	tx, err := a.db.BeginTx(ctx)
	if err != nil {
		return nil, apperr.StoreError(err, "begin transaction")
	}
	defer tx.Rollback()

	rows, err := tx.GetCostHistory(ctx, equipmentRef)
	if err != nil {
		return nil, apperr.StoreError(err, "get cost history")
	}
	return rows, nil
}

// GetFleetCostSummary aggregates cost and aging statistics across a
// facility (or the whole fleet when facilityID is empty). The underlying
// fleet-wide queries are needed by both the dashboard and the HTTP
// fleet-summary endpoint, so it lives alongside the per-asset rollup
// logic it reads.
func (a *Aggregator) GetFleetCostSummary(ctx context.Context, facilityID string) (models.FleetCostSummary, error) {
	tx, err := a.db.BeginTx(ctx)
	if err != nil {
		return models.FleetCostSummary{}, apperr.StoreError(err, "begin transaction")
	}
	defer tx.Rollback()

	active, err := tx.ListActiveEquipment(ctx, facilityID)
	if err != nil {
		return models.FleetCostSummary{}, apperr.StoreError(err, "list active equipment")
	}

	totalCost, costAssetCount, err := tx.FleetTotalAnnualCost(ctx, facilityID)
	if err != nil {
		return models.FleetCostSummary{}, apperr.StoreError(err, "fleet total annual cost")
	}

	topClasses, err := tx.TopCostClasses(ctx, facilityID, 5)
	if err != nil {
		return models.FleetCostSummary{}, apperr.StoreError(err, "top cost classes")
	}

	agingCount, err := tx.CountAgingAssets(ctx, facilityID)
	if err != nil {
		return models.FleetCostSummary{}, apperr.StoreError(err, "count aging assets")
	}

	avg := models.Money{}
	if costAssetCount > 0 {
		avg = totalCost.Div(float64(costAssetCount))
	}

	return models.FleetCostSummary{
		FacilityID:       facilityID,
		TotalEquipment:   len(active),
		TotalAnnualCost:  totalCost,
		AvgCostPerAsset:  avg,
		TopCostClasses:   topClasses,
		AgingAssetsCount: agingCount,
	}, nil
}

// ageCohortBounds defines the five age bins (in whole years) used by
// AgeCohortAnalysis, in order. The last bin's max is unbounded.
var ageCohortBounds = []struct {
	label    string
	min, max int
}{
	{"0-2 years", 0, 2},
	{"3-5 years", 3, 5},
	{"6-8 years", 6, 8},
	{"9-11 years", 9, 11},
	{"12+ years", 12, -1},
}

const trailingAnnualDays = 365

// AgeCohortAnalysis buckets active equipment into five age cohorts
// (0-2, 3-5, 6-8, 9-11, 12+ years) and reports, per cohort, the per-class
// asset counts and trailing-12-month cost totals.
func (a *Aggregator) AgeCohortAnalysis(ctx context.Context, facilityID string) ([]models.AgeCohort, error) {
	tx, err := a.db.BeginTx(ctx)
	if err != nil {
		return nil, apperr.StoreError(err, "begin transaction")
	}
	defer tx.Rollback()

	active, err := tx.ListActiveEquipment(ctx, facilityID)
	if err != nil {
		return nil, apperr.StoreError(err, "list active equipment")
	}

	today := models.Today()
	cohorts := make([]models.AgeCohort, len(ageCohortBounds))
	for i, b := range ageCohortBounds {
		cohorts[i] = models.AgeCohort{
			Cohort:           b.label,
			EquipmentClasses: map[string]int{},
		}
	}

	for _, eq := range active {
		ageYears := float64(today.SubDays(eq.AcquisitionDate)) / daysPerYear
		idx := cohortIndex(ageYears)
		if idx < 0 {
			continue
		}
		cohorts[idx].Count++
		cohorts[idx].EquipmentClasses[eq.Class]++

		total, _, err := tx.TrailingRollupTotal(ctx, eq.AssetTag, trailingAnnualDays)
		if err != nil {
			return nil, apperr.StoreError(err, fmt.Sprintf("trailing rollup total for %s", eq.AssetTag))
		}
		cohorts[idx].TotalAnnualCost = cohorts[idx].TotalAnnualCost.Add(total)
	}

	for i := range cohorts {
		if cohorts[i].Count > 0 {
			cohorts[i].AvgAnnualCostPerAsset = cohorts[i].TotalAnnualCost.Div(float64(cohorts[i].Count))
		}
	}
	return cohorts, nil
}

func cohortIndex(ageYears float64) int {
	for i, b := range ageCohortBounds {
		if b.max == -1 {
			if ageYears >= float64(b.min) {
				return i
			}
			continue
		}
		if ageYears >= float64(b.min) && ageYears < float64(b.max+1) {
			return i
		}
	}
	return -1
}

const daysPerYear = 365.25
