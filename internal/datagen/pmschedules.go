package datagen

import (
	"context"
	"fmt"
	"time"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/models"
)

var pmTypeNames = map[int]string{
	1:  "monthly_inspection",
	3:  "quarterly_calibration",
	6:  "semi_annual_pm",
	12: "annual_pm",
}

func (g *Generator) generatePMSchedules(ctx context.Context, tx store.Tx, equipment []models.EquipmentRegistry) (int, error) {
	today := g.today.Time()
	count := 0

	for _, eq := range equipment {
		spec := specFor(eq.Class)
		pmRange := basePMCosts[eq.Class]

		frequencies := []int{spec.pmFreqMonths}
		if spec.pmFreqMonths != 12 {
			frequencies = append(frequencies, 12)
		}

		for _, freq := range frequencies {
			pmType, ok := pmTypeNames[freq]
			if !ok {
				pmType = fmt.Sprintf("every_%d_months", freq)
			}

			lastDone := today.AddDate(0, 0, -(1 + g.rng.Intn(freq*30)))
			nextDue := lastDone.AddDate(0, 0, freq*30)

			schedule := models.PMSchedule{
				EquipmentRef:           eq.AssetTag,
				PMType:                 pmType,
				FrequencyMonths:        freq,
				EstimatedDurationHours: ptr(round2(g.uniform(1.0, 8.0))),
				EstimatedCost:          moneyPtr(round2(g.uniform(pmRange.min, pmRange.max))),
				LastCompleted:          calendarPtr(lastDone),
				NextDue:                calendarPtr(nextDue),
			}

			if err := tx.InsertPMSchedule(ctx, schedule); err != nil {
				return 0, fmt.Errorf("insert pm schedule for %s: %w", eq.AssetTag, err)
			}
			count++
		}
	}

	return count, nil
}

func calendarPtr(t time.Time) *models.CalendarDate {
	d := models.NewCalendarDate(t)
	return &d
}
