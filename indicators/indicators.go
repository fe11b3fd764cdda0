// Package indicators holds the trailing window series used by the scanner.
// Every function is causal: the value at output index j only depends on
// inputs up to the bar it corresponds to. Too little history returns an
// empty slice rather than an error.
package indicators

import (
	"math"

	ta "github.com/thrasher-corp/gct-ta/indicators"
	gctmath "github.com/thrasher-corp/volatilitytrader/common/math"
)

// Bands holds Bollinger band series. Index 0 corresponds to bar period-1
type Bands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// EMA returns one exponential moving average value per input, seeded with
// the first value
func EMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) == 0 {
		return nil
	}
	k := 2 / (float64(period) + 1)
	resp := make([]float64, len(values))
	ema := values[0]
	for i := range values {
		ema = values[i]*k + ema*(1-k)
		resp[i] = ema
	}
	return resp
}

// RSI returns Wilder smoothed relative strength. The first average is taken
// over the first period changes and output index 0 corresponds to bar period+1
func RSI(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period+1 {
		return nil
	}
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := change(values[i-1], values[i])
		avgGain += gain
		avgLoss += loss
	}
	p := float64(period)
	avgGain /= p
	avgLoss /= p
	resp := make([]float64, 0, len(values)-period-1)
	for i := period + 1; i < len(values); i++ {
		gain, loss := change(values[i-1], values[i])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		if avgLoss == 0 {
			resp = append(resp, 100)
			continue
		}
		resp = append(resp, 100-100/(1+avgGain/avgLoss))
	}
	return resp
}

func change(prev, curr float64) (gain, loss float64) {
	d := curr - prev
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

// ATR returns Wilder's average true range. True range starts at bar 1, the
// seed is the simple average of the first period ranges and output index 0
// corresponds to bar period
func ATR(high, low, closes []float64, period int) []float64 {
	if period <= 0 || len(high) != len(low) || len(low) != len(closes) || len(high) < period+1 {
		return nil
	}
	tr := make([]float64, len(high)-1)
	for i := 1; i < len(high); i++ {
		tr[i-1] = math.Max(high[i]-low[i],
			math.Max(math.Abs(high[i]-closes[i-1]), math.Abs(low[i]-closes[i-1])))
	}
	alpha := 1 / float64(period)
	resp := make([]float64, 0, len(tr)-period+1)
	resp = append(resp, gctmath.ArithmeticAverage(tr[:period]))
	for _, r := range tr[period:] {
		resp = append(resp, resp[len(resp)-1]*(1-alpha)+r*alpha)
	}
	return resp
}

// Bollinger returns a simple moving average plus and minus numStd population
// standard deviations for every full window
func Bollinger(values []float64, period int, numStd float64) Bands {
	if period <= 0 || len(values) < period {
		return Bands{}
	}
	sma := ta.SMA(values, period)[period-1:]
	b := Bands{
		Upper:  make([]float64, len(sma)),
		Middle: sma,
		Lower:  make([]float64, len(sma)),
	}
	for j := range sma {
		sd := gctmath.PopulationStandardDeviation(values[j : j+period])
		b.Upper[j] = sma[j] + numStd*sd
		b.Lower[j] = sma[j] - numStd*sd
	}
	return b
}

// RVOL returns each volume divided by the average of the lookback volumes
// before it. Output index 0 corresponds to bar lookback
func RVOL(volumes []float64, lookback int) []float64 {
	if lookback <= 0 || len(volumes) < lookback+1 {
		return nil
	}
	avg := ta.SMA(volumes, lookback)
	resp := make([]float64, 0, len(volumes)-lookback)
	for i := lookback; i < len(volumes); i++ {
		if avg[i-1] <= 0 {
			resp = append(resp, 0)
			continue
		}
		resp = append(resp, volumes[i]/avg[i-1])
	}
	return resp
}

// BandWidth returns the band spread as a percentage of the lower band
func BandWidth(upper, lower float64) float64 {
	if lower == 0 {
		return 0
	}
	return (upper - lower) / lower * 100
}

// BandWidths applies BandWidth across a Bands series
func BandWidths(b Bands) []float64 {
	if len(b.Upper) != len(b.Lower) {
		return nil
	}
	resp := make([]float64, len(b.Upper))
	for i := range b.Upper {
		resp[i] = BandWidth(b.Upper[i], b.Lower[i])
	}
	return resp
}
