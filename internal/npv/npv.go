// Package npv discounts future maintenance cash flows to decide whether an
// asset should continue operating, be scheduled for replacement, or be
// replaced immediately.
package npv

import (
	"context"
	"math"

	"github.com/joelpate/equipcost/internal/depreciation"
	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/apperr"
	"github.com/joelpate/equipcost/pkg/models"
)

const defaultDiscountRate = 0.08
const defaultHorizonYears = 5
const trailingWindowDays = 730
const trailingWindowMonthsCap = 24
const newEquipmentMaintenancePct = 0.03
const newEquipmentEscalationRate = 0.02
const replaceImmediatelyThreshold = 0.10
const irrLower, irrUpper = -0.5, 2.0
const irrMaxIterations = 1000
const irrTolerance = 1e-6

// ComputeNPV returns -initial - Σ cf_t / (1+rate)^t for t=1..n. Costs are
// positive inputs, so the result is typically negative.
func ComputeNPV(cashFlows []float64, rate, initial float64) float64 {
	npv := -initial
	for t, cf := range cashFlows {
		npv -= cf / math.Pow(1+rate, float64(t+1))
	}
	return npv
}

// ComputeIRR bisects for the rate at which the full flow series (including
// the initial outlay at t=0) nets to zero. ok is false when the bisection
// does not converge within tolerance.
func ComputeIRR(cashFlows []float64, initial float64) (rate float64, ok bool) {
	flows := append([]float64{-initial}, cashFlows...)
	npvAt := func(r float64) float64 {
		var total float64
		for t, cf := range flows {
			total += cf / math.Pow(1+r, float64(t))
		}
		return total
	}

	lo, hi := irrLower, irrUpper
	for i := 0; i < irrMaxIterations; i++ {
		mid := (lo + hi) / 2
		v := npvAt(mid)
		if math.Abs(v) < irrTolerance {
			return mid, true
		}
		if (npvAt(lo) > 0) == (v > 0) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0, false
}

// NPVAnalyzer compares the NPV of continuing to operate an asset against
// replacing it now.
type NPVAnalyzer struct {
	db           store.Store
	dep          *depreciation.Depreciator
	discountRate float64
}

// New builds an NPVAnalyzer. discountRate <= 0 uses the default of 0.08.
func New(db store.Store, discountRate float64) *NPVAnalyzer {
	if discountRate <= 0 {
		discountRate = defaultDiscountRate
	}
	return &NPVAnalyzer{db: db, dep: depreciation.New(db), discountRate: discountRate}
}

// NPVContinueOperating projects current annual maintenance forward at an
// 8% nominal escalation rate and discounts it over horizon years, returning
// the NPV alongside the annualized current maintenance figure it used.
func (a *NPVAnalyzer) NPVContinueOperating(ctx context.Context, equipmentRef string, horizonYears int) (npv float64, currentAnnual models.Money, err error) {
	if horizonYears <= 0 {
		horizonYears = defaultHorizonYears
	}
	tx, err := a.db.BeginTx(ctx)
	if err != nil {
		return 0, models.Money{}, apperr.StoreError(err, "begin transaction")
	}
	defer tx.Rollback()

	total, monthCount, err := tx.TrailingRollupTotal(ctx, equipmentRef, trailingWindowDays)
	if err != nil {
		return 0, models.Money{}, apperr.StoreError(err, "trailing rollup total")
	}
	if monthCount > trailingWindowMonthsCap {
		monthCount = trailingWindowMonthsCap
	}
	if monthCount == 0 {
		monthCount = 1
	}
	annual := total.Float64() / float64(monthCount) * 12

	cashFlows := make([]float64, horizonYears)
	for t := 0; t < horizonYears; t++ {
		cashFlows[t] = annual * math.Pow(1.08, float64(t))
	}
	return ComputeNPV(cashFlows, a.discountRate, 0), models.NewMoney(annual), nil
}

// NPVReplaceNow computes the NPV of replacing the asset today: the initial
// outlay is the replacement cost net of remaining book value, and new
// equipment maintenance cost starts at 3% of replacement cost escalating
// 2%/yr.
func (a *NPVAnalyzer) NPVReplaceNow(ctx context.Context, equipmentRef string, replacementCost models.Money, horizonYears int) (npv float64, netInvestment models.Money, firstYearMaintenance models.Money, err error) {
	if horizonYears <= 0 {
		horizonYears = defaultHorizonYears
	}

	bookValue, err := a.dep.ComputeBookValue(ctx, equipmentRef, models.DepStraightLine)
	if err != nil {
		return 0, models.Money{}, models.Money{}, err
	}
	bv := bookValue.Float64()
	if bv < 0 {
		bv = 0
	}
	netInvestmentF := replacementCost.Float64() - bv

	cashFlows := make([]float64, horizonYears)
	for t := 0; t < horizonYears; t++ {
		cashFlows[t] = newEquipmentMaintenancePct * replacementCost.Float64() * math.Pow(1+newEquipmentEscalationRate, float64(t))
	}
	return ComputeNPV(cashFlows, a.discountRate, netInvestmentF), models.NewMoney(netInvestmentF), models.NewMoney(cashFlows[0]), nil
}

// RepairVsReplace runs both scenarios, decides a recommended action, and
// persists the analysis.
func (a *NPVAnalyzer) RepairVsReplace(ctx context.Context, equipmentRef string, replacementCost *models.Money, horizonYears int) (models.ReplacementAnalysis, error) {
	if horizonYears <= 0 {
		horizonYears = defaultHorizonYears
	}

	tx, err := a.db.BeginTx(ctx)
	if err != nil {
		return models.ReplacementAnalysis{}, apperr.StoreError(err, "begin transaction")
	}

	eq, err := tx.GetEquipment(ctx, equipmentRef)
	if err != nil {
		tx.Rollback()
		return models.ReplacementAnalysis{}, err
	}

	resolvedReplacementCost := models.Money{}
	if replacementCost != nil {
		resolvedReplacementCost = *replacementCost
	} else {
		avg, err := tx.ClassAvgAcquisitionCost(ctx, eq.Class, equipmentRef)
		if err != nil {
			tx.Rollback()
			return models.ReplacementAnalysis{}, apperr.StoreError(err, "class avg acquisition cost")
		}
		resolvedReplacementCost = avg
	}
	tx.Rollback()

	npvContinue, currentAnnual, err := a.NPVContinueOperating(ctx, equipmentRef, horizonYears)
	if err != nil {
		return models.ReplacementAnalysis{}, err
	}
	npvReplace, _, firstYearMaintenance, err := a.NPVReplaceNow(ctx, equipmentRef, resolvedReplacementCost, horizonYears)
	if err != nil {
		return models.ReplacementAnalysis{}, err
	}

	savings := npvReplace - npvContinue

	var action models.ReplacementAction
	switch {
	case resolvedReplacementCost.Float64() > 0 && savings > replaceImmediatelyThreshold*resolvedReplacementCost.Float64():
		action = models.ActionReplaceImmediately
	case savings > 0:
		action = models.ActionPlanReplacement
	default:
		action = models.ActionContinueOperating
	}

	bookValue, err := a.dep.ComputeBookValue(ctx, equipmentRef, models.DepStraightLine)
	if err != nil {
		return models.ReplacementAnalysis{}, err
	}

	currentAgeMonths := int(float64(models.Today().SubDays(eq.AcquisitionDate)) / 30.44)

	analysis := models.ReplacementAnalysis{
		EquipmentRef:               equipmentRef,
		AnalysisDate:               models.Today(),
		CurrentAgeMonths:           currentAgeMonths,
		RemainingBookValue:         bookValue,
		AnnualMaintenanceCurrent:   currentAnnual,
		AnnualMaintenanceProjected: firstYearMaintenance,
		ReplacementCostEstimate:    resolvedReplacementCost,
		NPVContinueOperating:       models.NewMoney(npvContinue),
		NPVReplaceNow:              models.NewMoney(npvReplace),
		NPVSavingsIfReplaced:       models.NewMoney(savings),
		RecommendedAction:          action,
		DiscountRate:               models.NewRate(a.discountRate),
		OptimalReplacementDate:     nil,
	}

	tx2, err := a.db.BeginTx(ctx)
	if err != nil {
		return models.ReplacementAnalysis{}, apperr.StoreError(err, "begin transaction")
	}
	defer tx2.Rollback()
	if err := tx2.InsertReplacementAnalysis(ctx, analysis); err != nil {
		return models.ReplacementAnalysis{}, apperr.StoreError(err, "insert replacement analysis")
	}
	if err := tx2.Commit(); err != nil {
		return models.ReplacementAnalysis{}, apperr.StoreError(err, "commit")
	}

	return analysis, nil
}
