// Package mtbf predicts an asset's next failure date from the intervals
// between its historical corrective repairs.
package mtbf

import (
	"context"
	"math"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/apperr"
	"github.com/joelpate/equipcost/pkg/models"
)

// MTBFPredictor estimates mean-time-between-failures and the probability of
// a near-term failure for an asset.
type MTBFPredictor struct {
	db store.Store
}

// New builds an MTBFPredictor against the given store.
func New(db store.Store) *MTBFPredictor {
	return &MTBFPredictor{db: db}
}

const recentRepairsForCostEstimate = 5
const costEstimateMargin = 1.05

// PredictNextFailure estimates mean time between failures from corrective
// work order history and projects the next expected failure date.
func (p *MTBFPredictor) PredictNextFailure(ctx context.Context, equipmentRef string) (models.FailurePrediction, error) {
	tx, err := p.db.BeginTx(ctx)
	if err != nil {
		return models.FailurePrediction{}, apperr.StoreError(err, "begin transaction")
	}
	defer tx.Rollback()

	repairs, err := tx.ListCorrectiveWorkOrders(ctx, equipmentRef)
	if err != nil {
		return models.FailurePrediction{}, apperr.StoreError(err, "list corrective work orders")
	}
	if len(repairs) < 2 {
		return models.FailurePrediction{}, apperr.InsufficientRepairHistory(equipmentRef, len(repairs))
	}

	var gaps []float64
	for i := 0; i < len(repairs)-1; i++ {
		gap := float64(repairs[i+1].OpenedDate.SubDays(repairs[i].OpenedDate))
		if gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) == 0 {
		return models.FailurePrediction{}, apperr.NoValidIntervals(equipmentRef)
	}

	mtbfDays := mean(gaps)
	var sigma float64
	if len(gaps) == 1 {
		sigma = 0.3 * mtbfDays
	} else {
		sigma = stdev(gaps, mtbfDays)
	}

	lastOpened := repairs[len(repairs)-1].OpenedDate
	predictedNext := lastOpened.AddDays(int(math.Round(mtbfDays)))

	daysSinceLast := float64(models.Today().SubDays(lastOpened))

	var probability float64
	if sigma == 0 {
		if daysSinceLast+90 >= mtbfDays {
			probability = 1.0
		} else {
			probability = 0.0
		}
	} else {
		z := (daysSinceLast + 90 - mtbfDays) / sigma
		probability = standardNormalCDF(z)
	}
	if probability < 0 {
		probability = 0
	}
	if probability > 1 {
		probability = 1
	}

	start := len(repairs) - recentRepairsForCostEstimate
	if start < 0 {
		start = 0
	}
	recent := repairs[start:]
	var totalCost float64
	var costCount int
	for _, r := range recent {
		if r.TotalCost != nil {
			totalCost += r.TotalCost.Float64()
			costCount++
		}
	}
	estimatedCost := models.Money{}
	if costCount > 0 {
		estimatedCost = models.NewMoney((totalCost / float64(costCount)) * costEstimateMargin)
	}

	return models.FailurePrediction{
		EquipmentRef:            equipmentRef,
		MTBFDays:                mtbfDays,
		PredictedNextFailure:    predictedNext,
		ProbabilityWithin90Days: probability,
		EstimatedRepairCost:     estimatedCost,
	}, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdev(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// standardNormalCDF computes Φ(z) via the standard erf identity.
func standardNormalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}
