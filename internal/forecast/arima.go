package forecast

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// arimaFit holds the fitted ARIMA(1,1,1) parameters and residual variance
// produced by fitARIMA111.
type arimaFit struct {
	phi        float64
	theta      float64
	lastErr    float64
	lastDiff   float64
	lastLevel  float64
	residVar   float64
	fittedDiff []float64 // in-sample one-step-ahead fitted differences
}

// fitARIMA111 fits an ARIMA(1,1,1) model to series using conditional sum of
// squares: the model operates on the first difference of series, with
// e_t = diff_t - phi*diff_{t-1} - theta*e_{t-1}, e_0 = 0.
func fitARIMA111(series []float64) (arimaFit, error) {
	if len(series) < 4 {
		return arimaFit{}, errInsufficientSeries
	}
	diff := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		diff[i-1] = series[i] - series[i-1]
	}

	sse := func(x []float64) float64 {
		phi, theta := x[0], x[1]
		if math.Abs(phi) >= 0.999 || math.Abs(theta) >= 0.999 {
			return 1e12
		}
		var prevErr, total float64
		for i := 1; i < len(diff); i++ {
			pred := phi*diff[i-1] + theta*prevErr
			e := diff[i] - pred
			total += e * e
			prevErr = e
		}
		return total
	}

	problem := optimize.Problem{Func: sse}
	result, err := optimize.Minimize(problem, []float64{0.1, 0.1}, nil, &optimize.NelderMead{})
	if err != nil || result == nil || result.X == nil {
		return arimaFit{}, errOptimizationFailed
	}
	phi, theta := result.X[0], result.X[1]
	if math.IsNaN(phi) || math.IsNaN(theta) {
		return arimaFit{}, errOptimizationFailed
	}

	fitted := make([]float64, len(diff))
	var prevErr float64
	var sumSq float64
	for i := 1; i < len(diff); i++ {
		pred := phi*diff[i-1] + theta*prevErr
		fitted[i] = pred
		e := diff[i] - pred
		sumSq += e * e
		prevErr = e
	}
	resid := 0.0
	if len(diff) > 2 {
		resid = sumSq / float64(len(diff)-2)
	}

	return arimaFit{
		phi: phi, theta: theta,
		lastErr:    prevErr,
		lastDiff:   diff[len(diff)-1],
		lastLevel:  series[len(series)-1],
		residVar:   resid,
		fittedDiff: fitted,
	}, nil
}

// forecastARIMA111 forecasts horizon steps ahead, returning point forecasts,
// the 80% lower bound, and the 95% upper bound per step.
func forecastARIMA111(series []float64, horizon int) (mean, lower80, upper95 []float64, err error) {
	fit, err := fitARIMA111(series)
	if err != nil {
		return nil, nil, nil, err
	}

	mean = make([]float64, horizon)
	lower80 = make([]float64, horizon)
	upper95 = make([]float64, horizon)

	level := fit.lastLevel
	prevDiff := fit.lastDiff
	prevErr := fit.lastErr
	cumVar := 0.0
	// Future innovations are zero in expectation; the MA(1) term only
	// contributes through the first forecast step.
	for i := 0; i < horizon; i++ {
		var dhat float64
		if i == 0 {
			dhat = fit.phi*prevDiff + fit.theta*prevErr
		} else {
			dhat = fit.phi * prevDiff
		}
		level += dhat
		prevDiff = dhat

		// Random-walk-style variance growth approximates the
		// infinite-MA representation of an I(1) ARMA(1,1) process
		// closely enough for interval width purposes.
		cumVar += fit.residVar * (1 + fit.phi*fit.phi)
		se := math.Sqrt(cumVar)

		mean[i] = level
		lower80[i] = level - 1.2816*se
		upper95[i] = level + 1.96*se
	}
	return mean, lower80, upper95, nil
}
