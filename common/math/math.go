package math

import (
	"math"
)

// TradingDaysPerYear is the annualisation factor applied to daily ratios
const TradingDaysPerYear = 252

// RoundFloat rounds your floating point number to the desired decimal place
func RoundFloat(x float64, prec int) float64 {
	pow := math.Pow(10, float64(prec))
	return math.Round(x*pow) / pow
}

// ArithmeticAverage is the basic form of calculating an average.
// Divide the sum of all values by the length of values
func ArithmeticAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumOfValues float64
	for x := range values {
		sumOfValues += values[x]
	}
	return sumOfValues / float64(len(values))
}

// PopulationStandardDeviation calculates standard deviation using population based calculation
func PopulationStandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := ArithmeticAverage(values)
	var combined float64
	for x := range values {
		combined += (values[x] - avg) * (values[x] - avg)
	}
	return math.Sqrt(combined / float64(len(values)))
}

// SampleStandardDeviation standard deviation is a statistic that
// measures the dispersion of a dataset relative to its mean and
// is calculated as the square root of the variance
func SampleStandardDeviation(vals []float64) float64 {
	if len(vals) <= 1 {
		return 0
	}
	mean := ArithmeticAverage(vals)
	var combined float64
	for i := range vals {
		combined += (vals[i] - mean) * (vals[i] - mean)
	}
	return math.Sqrt(combined / float64(len(vals)-1))
}

// CalculateSharpeRatio returns the sharpe ratio of a series of period returns
// against a risk-free rate, scaled by the square root of periodsPerYear.
// Fewer than two samples or zero variance returns 0
func CalculateSharpeRatio(movementPerPeriod []float64, riskFreeRate float64, periodsPerYear int) float64 {
	if len(movementPerPeriod) <= 1 {
		return 0
	}
	excessReturns := make([]float64, len(movementPerPeriod))
	for i := range movementPerPeriod {
		excessReturns[i] = movementPerPeriod[i] - riskFreeRate
	}
	standardDeviation := SampleStandardDeviation(excessReturns)
	if standardDeviation == 0 {
		return 0
	}
	ratio := ArithmeticAverage(excessReturns) / standardDeviation
	if periodsPerYear > 0 {
		ratio *= math.Sqrt(float64(periodsPerYear))
	}
	return ratio
}

// SafeRatio returns numerator/denominator. A zero denominator returns +Inf
// when the numerator is positive and 0 otherwise
func SafeRatio(numerator, denominator float64) float64 {
	if denominator == 0 {
		if numerator > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return numerator / denominator
}

// MaxDrawdownOfCumulative walks the running sum of values and returns the
// largest peak-to-trough decline relative to the running peak, as a positive
// fraction, together with the largest absolute decline. Relative drawdowns are
// only measured while the peak is positive
func MaxDrawdownOfCumulative(values []float64) (relative, absolute float64) {
	var cumulative, peak float64
	for i := range values {
		cumulative += values[i]
		if cumulative > peak {
			peak = cumulative
		}
		if decline := peak - cumulative; decline > absolute {
			absolute = decline
		}
		if peak > 0 {
			if dd := (peak - cumulative) / peak; dd > relative {
				relative = dd
			}
		}
	}
	return relative, absolute
}
