// Package bathtub fits and evaluates the piecewise bathtub failure-rate
// curve used to estimate remaining useful life for a class of equipment.
package bathtub

import (
	"context"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/apperr"
	"github.com/joelpate/equipcost/pkg/models"
)

// DataPoint is one (age, annual repair count) observation used to fit a
// curve.
type DataPoint struct {
	AgeMonths         float64
	AnnualRepairCount float64
}

type bound struct{ lo, hi, init float64 }

var bounds = [7]bound{
	{0.1, 0.99, 0.5},  // ShapeEarly
	{1, 60, 12},       // ScaleEarly
	{0.01, 5, 0.5},    // RateUseful
	{1.1, 10, 2.5},    // ShapeWear
	{1, 120, 24},      // ScaleWear
	{3, 36, 12},       // TEarly
	{36, 180, 84},     // TWear
}

func defaultParams() models.BathtubCurveParams {
	return models.BathtubCurveParams{
		ShapeEarly: bounds[0].init,
		ScaleEarly: bounds[1].init,
		RateUseful: bounds[2].init,
		ShapeWear:  bounds[3].init,
		ScaleWear:  bounds[4].init,
		TEarly:     bounds[5].init,
		TWear:      bounds[6].init,
	}
}

func weibull(t, shape, scale float64) float64 {
	if t < 0.01 {
		t = 0.01
	}
	return (shape / scale) * math.Pow(t/scale, shape-1)
}

// PredictAnnualRepairs evaluates the bathtub model at the given age.
func PredictAnnualRepairs(ageMonths float64, p models.BathtubCurveParams) float64 {
	t := ageMonths
	if t < 0.01 {
		t = 0.01
	}
	switch {
	case t < p.TEarly:
		return weibull(t, p.ShapeEarly, p.ScaleEarly)
	case t < p.TWear:
		return p.RateUseful
	default:
		return weibull(t-p.TWear+1, p.ShapeWear, p.ScaleWear)
	}
}

// FitBathtubCurve performs bounded nonlinear least squares over data. Empty
// data fails with ErrNoData; on optimisation failure (or any other data
// anomaly), the initial guess is retained rather than propagating an error.
func FitBathtubCurve(equipmentClass string, data []DataPoint) (models.BathtubCurveParams, error) {
	if len(data) == 0 {
		return models.BathtubCurveParams{}, apperr.NoData("bathtub curve fit data for class " + equipmentClass)
	}

	init := defaultParams()
	x0 := paramsToVector(init)

	sse := func(x []float64) float64 {
		for i, b := range bounds {
			if x[i] < b.lo || x[i] > b.hi {
				return 1e12
			}
		}
		p := vectorToParams(equipmentClass, x)
		var total float64
		for _, d := range data {
			pred := PredictAnnualRepairs(d.AgeMonths, p)
			e := d.AnnualRepairCount - pred
			total += e * e
		}
		return total
	}

	problem := optimize.Problem{Func: sse}
	result, err := optimize.Minimize(problem, x0, &optimize.Settings{MajorIterations: 10000}, &optimize.NelderMead{})
	if err != nil || result == nil || result.X == nil {
		return init, nil
	}

	for _, v := range result.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return init, nil
		}
	}
	for i, b := range bounds {
		if result.X[i] < b.lo || result.X[i] > b.hi {
			return init, nil
		}
	}

	return vectorToParams(equipmentClass, result.X), nil
}

func paramsToVector(p models.BathtubCurveParams) []float64 {
	return []float64{p.ShapeEarly, p.ScaleEarly, p.RateUseful, p.ShapeWear, p.ScaleWear, p.TEarly, p.TWear}
}

func vectorToParams(equipmentClass string, x []float64) models.BathtubCurveParams {
	return models.BathtubCurveParams{
		EquipmentClass: equipmentClass,
		ShapeEarly:     x[0],
		ScaleEarly:     x[1],
		RateUseful:     x[2],
		ShapeWear:      x[3],
		ScaleWear:      x[4],
		TEarly:         x[5],
		TWear:          x[6],
	}
}

// BathtubModeler estimates remaining useful life from a fitted class-level
// bathtub curve.
type BathtubModeler struct {
	db store.Store
}

// New builds a BathtubModeler against the given store.
func New(db store.Store) *BathtubModeler {
	return &BathtubModeler{db: db}
}

const minDataPointsForFit = 5
const scanHorizonMonths = 240
const fallbackConfidence = 0.3
const fittedConfidence = 0.6
const noThresholdConfidence = 0.4
const noThresholdRemainingMonths = 120

// EstimateRemainingUsefulLife computes a bathtub-curve remaining life
// estimate, falling back to the asset's nominal useful life when the
// class has too little repair history to fit a curve.
func (m *BathtubModeler) EstimateRemainingUsefulLife(ctx context.Context, equipmentRef string) (models.RemainingLifeEstimate, error) {
	tx, err := m.db.BeginTx(ctx)
	if err != nil {
		return models.RemainingLifeEstimate{}, apperr.StoreError(err, "begin transaction")
	}
	defer tx.Rollback()

	eq, err := tx.GetEquipment(ctx, equipmentRef)
	if err != nil {
		return models.RemainingLifeEstimate{}, err
	}

	currentAgeMonths := float64(models.Today().SubDays(eq.AcquisitionDate)) / 30.44

	usefulLifeMonths := 120
	if eq.UsefulLifeMonths != nil {
		usefulLifeMonths = *eq.UsefulLifeMonths
	}

	counts, err := tx.ClassRepairYearCounts(ctx, eq.Class)
	if err != nil {
		return models.RemainingLifeEstimate{}, apperr.StoreError(err, "class repair year counts")
	}

	if len(counts) < minDataPointsForFit {
		remaining := usefulLifeMonths - int(currentAgeMonths)
		if remaining < 0 {
			remaining = 0
		}
		return models.RemainingLifeEstimate{
			EquipmentRef:    equipmentRef,
			RemainingMonths: remaining,
			Confidence:      fallbackConfidence,
			Method:          models.RLMethodUsefulLifeDefault,
		}, nil
	}

	data := make([]DataPoint, len(counts))
	for i, c := range counts {
		data[i] = DataPoint{AgeMonths: c.AgeMonths, AnnualRepairCount: float64(c.AnnualRepairCount)}
	}
	params, err := FitBathtubCurve(eq.Class, data)
	if err != nil {
		return models.RemainingLifeEstimate{}, err
	}

	threshold := 3 * params.RateUseful
	for offset := 0; offset <= scanHorizonMonths; offset++ {
		age := currentAgeMonths + float64(offset)
		if PredictAnnualRepairs(age, params) > threshold {
			return models.RemainingLifeEstimate{
				EquipmentRef:    equipmentRef,
				RemainingMonths: offset,
				Confidence:      fittedConfidence,
				Method:          models.RLMethodBathtubCurve,
			}, nil
		}
	}

	return models.RemainingLifeEstimate{
		EquipmentRef:    equipmentRef,
		RemainingMonths: noThresholdRemainingMonths,
		Confidence:      noThresholdConfidence,
		Method:          models.RLMethodBathtubCurveNoThreshold,
	}, nil
}
