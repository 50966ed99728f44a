package datagen

import (
	"context"
	"fmt"
	"time"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/models"
)

func (g *Generator) randomDate(start, end time.Time) time.Time {
	delta := end.Sub(start)
	if delta <= 0 {
		return start
	}
	days := int(delta.Hours() / 24)
	return start.AddDate(0, 0, g.rng.Intn(days+1))
}

func (g *Generator) generateEquipment(ctx context.Context, tx store.Tx) ([]models.EquipmentRegistry, error) {
	today := g.today.Time()
	historyStart := g.historyStart.Time()

	var equipment []models.EquipmentRegistry
	assetCounter := 0

	for _, spec := range equipmentSpecs {
		for i := 0; i < spec.count; i++ {
			assetCounter++

			ageYears := g.uniform(0, 15)
			acqDate := today.AddDate(0, 0, -int(ageYears*365.25))
			if acqDate.Before(historyStart) {
				acqDate = g.randomDate(historyStart, historyStart.AddDate(1, 0, 0))
			}

			acqCost := round2(g.uniform(spec.cost.min, spec.cost.max))
			manufacturer := g.choice(spec.manufacturers)
			modelName := g.choice(spec.models)
			facility := g.choice(facilities)
			department := g.choice(departments)

			installDate := acqDate.AddDate(0, 0, 7+g.rng.Intn(84))
			warrantyYears := []int{1, 2, 3}[g.rng.Intn(3)]
			warrantyExp := acqDate.AddDate(warrantyYears, 0, 0)

			usefulLife := spec.usefulLifeMonths
			ageMonths := int(ageYears * 12)
			status := models.StatusActive
			switch {
			case ageMonths > usefulLife+36:
				status = []models.EquipmentStatus{
					models.StatusActive, models.StatusActive,
					models.StatusInactive, models.StatusPendingReplacement,
				}[g.rng.Intn(4)]
			case ageMonths > usefulLife:
				status = []models.EquipmentStatus{
					models.StatusActive, models.StatusActive, models.StatusPendingReplacement,
				}[g.rng.Intn(3)]
			}

			installCD := models.NewCalendarDate(installDate)
			warrantyCD := models.NewCalendarDate(warrantyExp)
			life := usefulLife

			eq := models.EquipmentRegistry{
				AssetTag:           fmt.Sprintf("EQ-%d-%04d", acqDate.Year(), assetCounter),
				Serial:             fmt.Sprintf("SN-%s%06d", shortCode(manufacturer), g.rng.Intn(900000)+100000),
				Class:              spec.class,
				Manufacturer:       manufacturer,
				Model:              modelName,
				FacilityID:         facility,
				Department:         department,
				AcquisitionDate:    models.NewCalendarDate(acqDate),
				AcquisitionCost:    models.NewMoney(acqCost),
				InstallationDate:   &installCD,
				WarrantyExpiration: &warrantyCD,
				UsefulLifeMonths:   &life,
				Status:             status,
			}

			if err := tx.UpsertEquipment(ctx, eq); err != nil {
				return nil, fmt.Errorf("upsert equipment %s: %w", eq.AssetTag, err)
			}
			equipment = append(equipment, eq)
		}
	}

	return equipment, nil
}

func shortCode(name string) string {
	if len(name) < 2 {
		return "XX"
	}
	return fmt.Sprintf("%c%c", name[0], name[1])
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
