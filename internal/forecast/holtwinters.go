package forecast

import (
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

const minClampedValue = 0.01

// holtWintersFit is the fitted additive-trend, no-seasonal Holt-Winters
// model: level and trend smoothing parameters plus the final level/trend.
type holtWintersFit struct {
	alpha, beta   float64
	level, trend  float64
	fitted        []float64
}

func fitHoltWinters(series []float64) (holtWintersFit, error) {
	n := len(series)
	if n < 2 {
		return holtWintersFit{}, errInsufficientSeries
	}

	sse := func(x []float64) float64 {
		alpha, beta := x[0], x[1]
		if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
			return 1e12
		}
		level := series[0]
		trend := series[1] - series[0]
		var total float64
		for t := 1; t < n; t++ {
			pred := level + trend
			e := series[t] - pred
			total += e * e
			newLevel := alpha*series[t] + (1-alpha)*(level+trend)
			trend = beta*(newLevel-level) + (1-beta)*trend
			level = newLevel
		}
		return total
	}

	problem := optimize.Problem{Func: sse}
	result, err := optimize.Minimize(problem, []float64{0.3, 0.1}, nil, &optimize.NelderMead{})
	if err != nil || result == nil || result.X == nil {
		return holtWintersFit{}, errOptimizationFailed
	}
	alpha, beta := clamp01(result.X[0]), clamp01(result.X[1])
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return holtWintersFit{}, errOptimizationFailed
	}

	level := series[0]
	trend := series[1] - series[0]
	fitted := make([]float64, n)
	for t := 1; t < n; t++ {
		fitted[t] = level + trend
		newLevel := alpha*series[t] + (1-alpha)*(level+trend)
		trend = beta*(newLevel-level) + (1-beta)*trend
		level = newLevel
	}

	return holtWintersFit{alpha: alpha, beta: beta, level: level, trend: trend, fitted: fitted}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// forecastExponentialSmoothing clamps the series to a minimum value, fits
// an additive-trend Holt-Winters model, and returns horizon point forecasts
// with synthetic confidence bands. On optimisation failure it emits a
// constant forecast at the series mean.
func forecastExponentialSmoothing(series []float64, horizon int) (mean, lower, upper []float64) {
	clamped := make([]float64, len(series))
	for i, v := range series {
		if v < minClampedValue {
			v = minClampedValue
		}
		clamped[i] = v
	}

	sigma := stat.StdDev(series, nil)
	mean = make([]float64, horizon)
	lower = make([]float64, horizon)
	upper = make([]float64, horizon)

	fit, err := fitHoltWinters(clamped)
	if err != nil {
		avg := stat.Mean(series, nil)
		for i := range mean {
			mean[i] = avg
			lower[i] = avg
			upper[i] = avg
		}
		return mean, lower, upper
	}

	level, trend := fit.level, fit.trend
	for i := 0; i < horizon; i++ {
		h := float64(i + 1)
		point := level + h*trend
		width := sigma * (1 + 0.1*h)
		lo := point - 1.28*width
		if lo < 0 {
			lo = 0
		}
		mean[i] = point
		lower[i] = lo
		upper[i] = point + 1.96*width
	}
	return mean, lower, upper
}
