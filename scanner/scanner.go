package scanner

import (
	"sync"

	"github.com/thrasher-corp/volatilitytrader/config"
	"github.com/thrasher-corp/volatilitytrader/indicators"
	"github.com/thrasher-corp/volatilitytrader/kline"
	"github.com/thrasher-corp/volatilitytrader/signal"
)

const defaultRSI = 50

// Series holds one symbol's indicator series computed once over its full bar
// history. Because every indicator is causal, the context read at index i is
// identical to one built from bars[:i+1]
type Series struct {
	cfg     config.StrategyConfig
	bars    []kline.Bar
	volume  []float64
	emaFast []float64
	emaSlow []float64
	rsi     []float64
	atr     []float64
	bands   indicators.Bands
	widths  []float64
	rvol    []float64
}

// NewSeries precomputes every indicator for bars
func NewSeries(bars []kline.Bar, cfg config.StrategyConfig) *Series {
	cols := kline.ToSeries(bars)
	s := &Series{
		cfg:     cfg,
		bars:    bars,
		volume:  cols.Volume,
		emaFast: indicators.EMA(cols.Close, cfg.EMAFast),
		emaSlow: indicators.EMA(cols.Close, cfg.EMASlow),
		rsi:     indicators.RSI(cols.Close, cfg.RSIPeriod),
		atr:     indicators.ATR(cols.High, cols.Low, cols.Close, cfg.ATRPeriod),
		bands:   indicators.Bollinger(cols.Close, cfg.BollingerPeriod, cfg.BollingerStdDev),
		rvol:    indicators.RVOL(cols.Volume, cfg.RVOLLookback),
	}
	s.widths = indicators.BandWidths(s.bands)
	return s
}

// Len returns the number of bars in the series
func (s *Series) Len() int {
	return len(s.bars)
}

// At returns the signal context as of bar i. It reports false when fewer
// than MinHistory bars exist up to and including i
func (s *Series) At(i int) (*signal.Context, bool) {
	if i < 0 || i >= len(s.bars) || i+1 < s.cfg.MinHistory {
		return nil, false
	}
	price := s.bars[i].Close
	ctx := &signal.Context{
		Price:                price,
		EMAFast:              valueAt(s.emaFast, i, 0, price),
		EMASlow:              valueAt(s.emaSlow, i, 0, price),
		RSI:                  valueAt(s.rsi, i, s.cfg.RSIPeriod+1, defaultRSI),
		ATR:                  valueAt(s.atr, i, s.cfg.ATRPeriod, 0),
		BBUpper:              valueAt(s.bands.Upper, i, s.cfg.BollingerPeriod-1, price),
		BBLower:              valueAt(s.bands.Lower, i, s.cfg.BollingerPeriod-1, price),
		RVOL:                 valueAt(s.rvol, i, s.cfg.RVOLLookback, 0),
		WidthAtLow:           s.widthAtLow(i),
		VolumeAboveYesterday: i > 0 && s.volume[i] > s.volume[i-1],
	}
	ctx.BBWidth = indicators.BandWidth(ctx.BBUpper, ctx.BBLower)
	if price != 0 {
		ctx.ATRPercent = ctx.ATR / price * 100
	}
	return ctx, true
}

// widthAtLow reports whether the band width of the bar before i is the lowest
// of the WidthLookback bars ending there
func (s *Series) widthAtLow(i int) bool {
	offset := s.cfg.BollingerPeriod - 1
	last := i - 1 - offset
	first := last - s.cfg.WidthLookback + 1
	if first < 0 || last >= len(s.widths) {
		return false
	}
	for j := first; j < last; j++ {
		if s.widths[j] < s.widths[last] {
			return false
		}
	}
	return true
}

// valueAt maps bar index i into a series whose index 0 is bar offset
func valueAt(series []float64, i, offset int, fallback float64) float64 {
	j := i - offset
	if j < 0 || j >= len(series) {
		return fallback
	}
	return series[j]
}

// BuildSignalContext computes a context from the trailing bars only. It
// reports false when there is not enough history
func BuildSignalContext(bars []kline.Bar, cfg config.StrategyConfig) (*signal.Context, bool) {
	return NewSeries(bars, cfg).At(len(bars) - 1)
}

// Precompute builds every symbol's Series concurrently
func Precompute(bars map[string][]kline.Bar, cfg config.StrategyConfig) map[string]*Series {
	resp := make(map[string]*Series, len(bars))
	var (
		wg sync.WaitGroup
		m  sync.Mutex
	)
	for sym, series := range bars {
		wg.Add(1)
		go func(sym string, series []kline.Bar) {
			defer wg.Done()
			s := NewSeries(series, cfg)
			m.Lock()
			resp[sym] = s
			m.Unlock()
		}(sym, series)
	}
	wg.Wait()
	return resp
}
