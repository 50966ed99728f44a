package datagen

import (
	"context"
	"fmt"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/models"
)

func (g *Generator) generateServiceContracts(ctx context.Context, tx store.Tx, equipment []models.EquipmentRegistry) (int, error) {
	today := g.today.Time()
	count := 0

	for _, eq := range equipment {
		ageYears := today.Sub(eq.AcquisitionDate.Time()).Hours() / 24 / 365.25
		acqCost := eq.AcquisitionCost.Float64()

		var types []models.ContractType
		var providers []string

		switch {
		case ageYears <= 3:
			types = []models.ContractType{models.ContractFullService}
			providers = []string{eq.Manufacturer}

		case ageYears <= 7:
			if g.rng.Float64() < 0.6 {
				types = []models.ContractType{models.ContractFullService, models.ContractPreventiveOnly}
				providers = []string{eq.Manufacturer, g.choice(thirdPartyVendors)}
			} else {
				types = []models.ContractType{models.ContractPartsOnly}
				providers = []string{g.choice(thirdPartyVendors)}
			}

		default:
			if g.rng.Float64() < 0.3 {
				continue
			}
			if g.rng.Float64() < 0.5 {
				types = []models.ContractType{models.ContractTimeAndMaterials}
			} else {
				types = []models.ContractType{models.ContractPerCall}
			}
			providers = []string{g.choice(thirdPartyVendors)}
		}

		for i, ct := range types {
			provider := providers[i]
			frac := contractFractions[ct]
			annualCost := round2(acqCost * g.uniform(frac.min, frac.max))

			start := today.AddDate(0, 0, -int(ageYears*365.25)+365)
			if eq.WarrantyExpiration != nil {
				start = eq.WarrantyExpiration.Time()
			}
			years := []int{1, 2, 3}[g.rng.Intn(3)]
			end := start.AddDate(years, 0, 0)

			contract := models.ServiceContract{
				EquipmentRef:  eq.AssetTag,
				Type:          ct,
				Provider:      vendorAccountRef(provider),
				AnnualCost:    models.NewMoney(annualCost),
				StartDate:     models.NewCalendarDate(start),
				EndDate:       models.NewCalendarDate(end),
				IncludesParts: ct == models.ContractFullService || ct == models.ContractPartsOnly,
				IncludesLabor: ct == models.ContractFullService,
				IncludesPM:    ct == models.ContractFullService || ct == models.ContractPreventiveOnly,
				ResponseTimeHours: ptr(float64([]int{2, 4, 8, 24}[g.rng.Intn(4)])),
			}
			if ct == models.ContractFullService {
				contract.UptimeGuaranteePct = ptr(round2(g.uniform(95.0, 99.5)))
			}

			if err := tx.InsertContract(ctx, contract); err != nil {
				return 0, fmt.Errorf("insert contract for %s: %w", eq.AssetTag, err)
			}
			count++
		}
	}

	return count, nil
}
