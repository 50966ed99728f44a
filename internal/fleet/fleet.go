// Package fleet ranks replacement candidates across an entire facility and
// schedules them against a multi-year capital budget.
package fleet

import (
	"context"
	"sort"

	"github.com/joelpate/equipcost/internal/npv"
	"github.com/joelpate/equipcost/internal/platformlog"
	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/apperr"
	"github.com/joelpate/equipcost/pkg/models"
)

const defaultHorizonYears = 5

// FleetOptimizer ranks and schedules asset replacements across a facility.
type FleetOptimizer struct {
	db  store.Store
	npv *npv.NPVAnalyzer
}

// New builds a FleetOptimizer. discountRate <= 0 uses the NPVAnalyzer default.
func New(db store.Store, discountRate float64) *FleetOptimizer {
	return &FleetOptimizer{db: db, npv: npv.New(db, discountRate)}
}

// RankReplacementPriorities runs repair_vs_replace over every active asset
// in the facility (or the whole fleet when facilityID is empty), sorts by
// (-npv_savings, -age_months), and marks within_budget by greedily
// accumulating replacement_cost over positive-savings candidates.
func (o *FleetOptimizer) RankReplacementPriorities(ctx context.Context, facilityID string, annualCapitalBudget models.Money) ([]models.ReplacementPriority, error) {
	tx, err := o.db.BeginTx(ctx)
	if err != nil {
		return nil, apperr.StoreError(err, "begin transaction")
	}
	assets, err := tx.ListActiveEquipment(ctx, facilityID)
	tx.Rollback()
	if err != nil {
		return nil, apperr.StoreError(err, "list active equipment")
	}

	type candidate struct {
		ref       string
		assetTag  string
		ageMonths int
		analysis  models.ReplacementAnalysis
	}

	var candidates []candidate
	for _, eq := range assets {
		analysis, err := o.npv.RepairVsReplace(ctx, eq.AssetTag, nil, defaultHorizonYears)
		if err != nil {
			platformlog.Warn("fleet: skipping asset %s in replacement ranking: %v", eq.AssetTag, err)
			continue
		}
		candidates = append(candidates, candidate{
			ref:       eq.AssetTag,
			assetTag:  eq.AssetTag,
			ageMonths: analysis.CurrentAgeMonths,
			analysis:  analysis,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si := candidates[i].analysis.NPVSavingsIfReplaced.Float64()
		sj := candidates[j].analysis.NPVSavingsIfReplaced.Float64()
		if si != sj {
			return si > sj
		}
		return candidates[i].ageMonths > candidates[j].ageMonths
	})

	budgetRemaining := annualCapitalBudget.Float64()
	priorities := make([]models.ReplacementPriority, 0, len(candidates))
	for i, c := range candidates {
		withinBudget := false
		savings := c.analysis.NPVSavingsIfReplaced.Float64()
		if savings > 0 {
			cost := c.analysis.ReplacementCostEstimate.Float64()
			if cost <= budgetRemaining {
				withinBudget = true
				budgetRemaining -= cost
			}
		}
		priorities = append(priorities, models.ReplacementPriority{
			Rank:              i + 1,
			EquipmentRef:      c.ref,
			AssetTag:          c.assetTag,
			AgeMonths:         c.ageMonths,
			NPVSavings:        c.analysis.NPVSavingsIfReplaced,
			ReplacementCost:   c.analysis.ReplacementCostEstimate,
			RecommendedAction: c.analysis.RecommendedAction,
			WithinBudget:      withinBudget,
		})
	}
	return priorities, nil
}

// OptimalReplacementSchedule walks replacement candidates (already ordered
// by descending savings) year by year, greedily filling each fiscal year's
// budget before moving to the next, never revisiting a scheduled asset.
func (o *FleetOptimizer) OptimalReplacementSchedule(ctx context.Context, facilityID string, annualCapitalBudget models.Money, horizonYears int) (models.ReplacementSchedule, error) {
	if horizonYears <= 0 {
		horizonYears = defaultHorizonYears
	}

	priorities, err := o.RankReplacementPriorities(ctx, facilityID, annualCapitalBudget)
	if err != nil {
		return models.ReplacementSchedule{}, err
	}

	var candidates []models.ReplacementPriority
	for _, p := range priorities {
		if p.RecommendedAction == models.ActionReplaceImmediately || p.RecommendedAction == models.ActionPlanReplacement {
			candidates = append(candidates, p)
		}
	}

	scheduled := make([]bool, len(candidates))
	currentFY := models.Today().FiscalYear()

	var years []models.ReplacementScheduleYear
	var totalSpend, totalSavings models.Money

	for k := 0; k < horizonYears; k++ {
		fy := currentFY + k
		remainingBudget := annualCapitalBudget.Float64()
		var yearReplacements []models.ReplacementPriority
		var yearSpend, yearSavings models.Money

		for i, c := range candidates {
			if scheduled[i] {
				continue
			}
			cost := c.ReplacementCost.Float64()
			if cost <= remainingBudget {
				scheduled[i] = true
				remainingBudget -= cost
				yearReplacements = append(yearReplacements, c)
				yearSpend = yearSpend.Add(c.ReplacementCost)
				yearSavings = yearSavings.Add(c.NPVSavings)
			}
		}

		years = append(years, models.ReplacementScheduleYear{
			FiscalYear:   fy,
			Replacements: yearReplacements,
			YearSpend:    yearSpend,
			YearSavings:  yearSavings,
		})
		totalSpend = totalSpend.Add(yearSpend)
		totalSavings = totalSavings.Add(yearSavings)
	}

	return models.ReplacementSchedule{
		Years:        years,
		TotalSpend:   totalSpend,
		TotalSavings: totalSavings,
	}, nil
}
