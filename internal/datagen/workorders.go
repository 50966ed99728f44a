package datagen

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/models"
)

func specFor(class string) equipmentSpec {
	for _, s := range equipmentSpecs {
		if s.class == class {
			return s
		}
	}
	return equipmentSpecs[0]
}

// bathtubRepairRate mirrors the infant-mortality/wear-out failure-rate
// curve the fixture data is built around, so a generated fleet exercises
// internal/bathtub's fit on realistic shapes.
func bathtubRepairRate(ageYears float64, g *Generator) float64 {
	switch {
	case ageYears < 1:
		return g.uniform(0.5, 1.5)
	case ageYears < 7:
		return g.uniform(0.3, 0.8)
	default:
		escalation := 0.3 * (ageYears - 7)
		return math.Min(1.0+escalation, 4.0)
	}
}

func escalatedLaborCost(lo, hi, ageYears float64, g *Generator) float64 {
	base := g.uniform(lo, hi)
	factor := math.Pow(1+0.08*ageYears, 1.5)
	return round2(base * factor)
}

func escalatedPartsCost(base, ageYears float64, g *Generator) float64 {
	factor := math.Pow(1+0.12*ageYears, 1.3)
	return round2(base * factor)
}

func (g *Generator) generateWorkOrders(ctx context.Context, tx store.Tx, equipment []models.EquipmentRegistry) (int, error) {
	today := g.today.Time()
	historyStart := g.historyStart.Time()
	woCounter := 0

	for _, eq := range equipment {
		spec := specFor(eq.Class)
		repairRange := baseRepairCosts[eq.Class]
		pmRange := basePMCosts[eq.Class]

		start := historyStart
		if eq.InstallationDate != nil && eq.InstallationDate.Time().After(start) {
			start = eq.InstallationDate.Time()
		}

		if err := g.generatePMWorkOrders(ctx, tx, eq, spec, pmRange, start, today, &woCounter); err != nil {
			return 0, err
		}
		if err := g.generateCorrectiveWorkOrders(ctx, tx, eq, repairRange, start, today, &woCounter); err != nil {
			return 0, err
		}
	}

	return woCounter, nil
}

func (g *Generator) generatePMWorkOrders(ctx context.Context, tx store.Tx, eq models.EquipmentRegistry, spec equipmentSpec, pmRange costRange, start, today time.Time, counter *int) error {
	pmDate := start.AddDate(0, 0, spec.pmFreqMonths*30)
	for !pmDate.After(today) {
		*counter++

		pmCost := g.uniform(pmRange.min, pmRange.max)
		parts := round2(pmCost * g.uniform(0.1, 0.4))
		laborHours := round2(g.uniform(1.0, 8.0))
		laborCost := round2(laborHours * g.uniform(75, 150))
		total := round2(laborCost + parts + pmCost)

		completed := models.NewCalendarDate(pmDate.AddDate(0, 0, g.rng.Intn(3)))
		wo := models.WorkOrder{
			WONumber:          fmt.Sprintf("WO-%07d", *counter),
			EquipmentRef:      eq.AssetTag,
			Type:              models.WOPreventiveMaintenance,
			Priority:          models.PriorityScheduled,
			OpenedDate:        models.NewCalendarDate(pmDate),
			CompletedDate:     &completed,
			LaborHours:        ptr(laborHours),
			LaborCost:         moneyPtr(laborCost),
			PartsCost:         moneyPtr(parts),
			VendorServiceCost: moneyPtr(0),
			TotalCost:         moneyPtr(total),
			DowntimeHours:     ptr(round2(g.uniform(1, 8))),
			TechnicianType:    g.technicianType(),
		}
		if err := tx.InsertWorkOrder(ctx, wo); err != nil {
			return fmt.Errorf("insert pm work order %s: %w", wo.WONumber, err)
		}

		pmDate = pmDate.AddDate(0, 0, spec.pmFreqMonths*30)
	}
	return nil
}

func (g *Generator) generateCorrectiveWorkOrders(ctx context.Context, tx store.Tx, eq models.EquipmentRegistry, repairRange costRange, start, today time.Time, counter *int) error {
	current := start
	acqDate := eq.AcquisitionDate.Time()

	for !current.After(today) {
		ageYears := current.Sub(acqDate).Hours() / 24 / 365.25
		annualRate := bathtubRepairRate(ageYears, g)
		if annualRate < 0.1 {
			annualRate = 0.1
		}
		daysToNext := int(365.25/annualRate) + (g.rng.Intn(121) - 60)
		if daysToNext < 30 {
			daysToNext = 30
		}
		current = current.AddDate(0, 0, daysToNext)
		if current.After(today) {
			break
		}

		*counter++
		ageAtRepair := current.Sub(acqDate).Hours() / 24 / 365.25

		laborCost := escalatedLaborCost(repairRange.min/3, repairRange.max/3, ageAtRepair, g)
		partsCost := escalatedPartsCost(g.uniform(repairRange.min*0.3, repairRange.max*0.5), ageAtRepair, g)

		vendorCost := 0.0
		if g.rng.Float64() < 0.3 {
			vendorCost = round2(g.uniform(500, repairRange.max))
		}

		total := round2(laborCost + partsCost + vendorCost)
		laborHours := round2(g.uniform(2, 24))
		priority := g.weightedPriority()
		downtime := round2(g.uniform(2, 72))
		if priority == models.PriorityEmergency {
			downtime = round2(g.uniform(4, 168))
		}

		technicianType := g.technicianType()
		rootCause := rootCauses[g.rng.Intn(len(rootCauses))]
		var rootCausePtr *string
		if rootCause != "" {
			label := rootCause
			if technicianType != models.TechInHouse {
				label = fmt.Sprintf("%s (dispatch %s)", rootCause, technicianDispatchRef())
			}
			rootCausePtr = &label
		}

		completed := models.NewCalendarDate(current.AddDate(0, 0, g.rng.Intn(15)))
		wo := models.WorkOrder{
			WONumber:          fmt.Sprintf("WO-%07d", *counter),
			EquipmentRef:      eq.AssetTag,
			Type:              models.WOCorrectiveRepair,
			Priority:          priority,
			OpenedDate:        models.NewCalendarDate(current),
			CompletedDate:     &completed,
			LaborHours:        ptr(laborHours),
			LaborCost:         moneyPtr(laborCost),
			PartsCost:         moneyPtr(partsCost),
			VendorServiceCost: moneyPtr(vendorCost),
			TotalCost:         moneyPtr(total),
			DowntimeHours:     ptr(downtime),
			TechnicianType:    technicianType,
			RootCause:         rootCausePtr,
		}
		if err := tx.InsertWorkOrder(ctx, wo); err != nil {
			return fmt.Errorf("insert corrective work order %s: %w", wo.WONumber, err)
		}
	}
	return nil
}

func ptr(v float64) *float64 { return &v }

func moneyPtr(v float64) *models.Money {
	m := models.NewMoney(v)
	return &m
}
