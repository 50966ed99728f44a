// Package forecast projects future maintenance cost for an asset from its
// monthly rollup history, using ARIMA(1,1,1) or Holt-Winters exponential
// smoothing depending on how much history is available.
package forecast

import (
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/joelpate/equipcost/internal/aggregator"
	"github.com/joelpate/equipcost/internal/platformlog"
	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/apperr"
	"github.com/joelpate/equipcost/pkg/models"
)

var (
	errInsufficientSeries = errors.New("forecast: series too short to fit")
	errOptimizationFailed = errors.New("forecast: optimisation did not converge")
)

const defaultMinHistoryMonths = 24

// Forecaster projects future cost series for an equipment_ref.
type Forecaster struct {
	db               store.Store
	agg              *aggregator.Aggregator
	minHistoryMonths int
}

// New builds a Forecaster. minHistoryMonths <= 0 uses the default of 24.
func New(db store.Store, minHistoryMonths int) *Forecaster {
	if minHistoryMonths <= 0 {
		minHistoryMonths = defaultMinHistoryMonths
	}
	return &Forecaster{db: db, agg: aggregator.New(db), minHistoryMonths: minHistoryMonths}
}

// ForecastEquipment reads history for equipmentRef, fits the requested (or
// auto-selected) model, persists the result, and returns it.
func (f *Forecaster) ForecastEquipment(ctx context.Context, equipmentRef string, horizon int, method models.ForecastMethod) (*models.CostForecast, error) {
	history, err := f.agg.GetCostHistory(ctx, equipmentRef)
	if err != nil {
		return nil, err
	}

	n := len(history)
	if n < 6 {
		return nil, apperr.InsufficientHistory(equipmentRef, n)
	}

	effectiveMethod := method
	if n < f.minHistoryMonths {
		effectiveMethod = models.MethodExponentialSmoothing
	} else if method == models.MethodAuto {
		effectiveMethod = models.MethodARIMA
	}

	series := make([]float64, n)
	for i, r := range history {
		series[i] = r.TotalCost.Float64()
	}

	var meanF, lowerF, upperF []float64
	var metrics models.ModelMetrics
	usedMethod := effectiveMethod

	if effectiveMethod == models.MethodARIMA {
		meanF, lowerF, upperF, err = forecastARIMA111(series, horizon)
		if err != nil {
			platformlog.Warn("arima fit failed for %s, falling back to exponential smoothing: %v", equipmentRef, err)
			usedMethod = models.MethodExponentialSmoothing
			meanF, lowerF, upperF = forecastExponentialSmoothing(series, horizon)
			metrics = computeHoldoutMetrics(series, f.minHistoryMonths, exponentialSmoothingRefit)
		} else {
			metrics = computeHoldoutMetrics(series, f.minHistoryMonths, arimaRefit)
		}
	} else {
		meanF, lowerF, upperF = forecastExponentialSmoothing(series, horizon)
		metrics = computeHoldoutMetrics(series, f.minHistoryMonths, exponentialSmoothingRefit)
	}

	lastMonth := history[n-1].Month
	points := make([]models.MonthlyForecastPoint, horizon)
	for i := 0; i < horizon; i++ {
		predicted := meanF[i]
		if predicted < 0 {
			predicted = 0
		}
		lower := lowerF[i]
		if lower < 0 {
			lower = 0
		}
		points[i] = models.MonthlyForecastPoint{
			Month:         lastMonth.AddMonths(i + 1),
			PredictedCost: models.NewMoney(predicted),
			LowerBound:    models.NewMoney(lower),
			UpperBound:    models.NewMoney(upperF[i]),
		}
	}

	today := models.Today()
	yearStart := models.NewCalendarDate(time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC))
	nextYearStart := models.NewCalendarDate(time.Date(today.Year()+1, 1, 1, 0, 0, 0, 0, time.UTC))
	nextYearEnd := models.NewCalendarDate(time.Date(today.Year()+1, 12, 31, 0, 0, 0, 0, time.UTC))

	annualCurrentYear := models.Money{}
	cumulative := models.Money{}
	for _, r := range history {
		cumulative = cumulative.Add(r.TotalCost)
		if !r.Month.Before(yearStart) {
			annualCurrentYear = annualCurrentYear.Add(r.TotalCost)
		}
	}
	annualNextYear := models.Money{}
	for _, p := range points {
		if !p.Month.Before(nextYearStart) && !p.Month.After(nextYearEnd) {
			annualNextYear = annualNextYear.Add(p.PredictedCost)
		}
	}

	forecast := &models.CostForecast{
		EquipmentRef:         equipmentRef,
		ForecastDate:         today,
		HorizonMonths:        horizon,
		Method:               usedMethod,
		MonthlyForecasts:     points,
		AnnualTCOCurrentYear: annualCurrentYear,
		AnnualTCONextYear:    annualNextYear,
		CumulativeTCOToDate:  cumulative,
		ModelMetrics:         metrics,
	}

	tx, err := f.db.BeginTx(ctx)
	if err != nil {
		return nil, apperr.StoreError(err, "begin transaction")
	}
	defer tx.Rollback()
	if err := tx.InsertCostForecast(ctx, *forecast); err != nil {
		return nil, apperr.StoreError(err, "insert cost forecast")
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.StoreError(err, "commit")
	}

	return forecast, nil
}

func arimaRefit(train []float64, steps int) []float64 {
	mean, _, _, err := forecastARIMA111(train, steps)
	if err != nil {
		avg := stat.Mean(train, nil)
		out := make([]float64, steps)
		for i := range out {
			out[i] = avg
		}
		return out
	}
	return mean
}

func exponentialSmoothingRefit(train []float64, steps int) []float64 {
	mean, _, _ := forecastExponentialSmoothing(train, steps)
	return mean
}

// computeHoldoutMetrics splits series at max(floor(0.8n), minHistoryMonths/2)
// and reports MAE/RMSE/MAPE of a refit against the held-out tail. When the
// split would leave no test data, it scores a persistence forecast instead
// (each observation predicted by its predecessor, skipping the first); the
// model's own fitted values are not used on that path.
func computeHoldoutMetrics(series []float64, minHistoryMonths int, refit func(train []float64, steps int) []float64) models.ModelMetrics {
	n := len(series)
	splitIdx := int(0.8 * float64(n))
	if half := minHistoryMonths / 2; half > splitIdx {
		splitIdx = half
	}

	if splitIdx <= 0 || splitIdx >= n {
		// No held-out tail available; compare a persistence forecast
		// (the previous actual) to actuals, skipping the first point
		// which has no predecessor.
		if n < 2 {
			return models.ModelMetrics{}
		}
		actual := series[1:]
		predicted := series[:n-1]
		return computeErrorMetrics(actual, predicted)
	}

	train := series[:splitIdx]
	test := series[splitIdx:]
	predicted := refit(train, len(test))
	return computeErrorMetrics(test, predicted)
}

func computeErrorMetrics(actual, predicted []float64) models.ModelMetrics {
	n := len(actual)
	if n == 0 || len(predicted) < n {
		return models.ModelMetrics{}
	}
	var sumAbs, sumSq, sumPct float64
	var pctCount int
	for i := 0; i < n; i++ {
		e := actual[i] - predicted[i]
		sumAbs += math.Abs(e)
		sumSq += e * e
		if actual[i] != 0 {
			sumPct += math.Abs(e / actual[i])
			pctCount++
		}
	}
	metrics := models.ModelMetrics{
		MAE:  sumAbs / float64(n),
		RMSE: math.Sqrt(sumSq / float64(n)),
	}
	if pctCount > 0 {
		metrics.MAPE = (sumPct / float64(pctCount)) * 100
	}
	return metrics
}
