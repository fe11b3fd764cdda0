// Package synthetic generates deterministic random walk bars for demo runs
package synthetic

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/thrasher-corp/volatilitytrader/kline"
)

// DefaultDays is the number of bars generated when no count is supplied
const DefaultDays = 220

const (
	startPrice    = 100.0
	wickScale     = 1.5
	baseVolume    = 1_000_000
	volumeJitter  = 50_000
	barInterval = 24 * time.Hour
)

var errInvalidDays = errors.New("days must be positive")

// Generator produces seeded bars. Two generators with the same seed produce
// the same series
type Generator struct {
	rng *rand.Rand
}

// New returns a generator seeded with seed
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // simulated data
}

// Bars returns days daily bars for symbol starting at start. Each close
// moves up to one point from the previous close
func (g *Generator) Bars(symbol string, days int, start time.Time) ([]kline.Bar, error) {
	if days <= 0 {
		return nil, errInvalidDays
	}
	bars := make([]kline.Bar, days)
	price := startPrice
	for i := range bars {
		change := g.rng.Float64()*2 - 1
		wick := math.Abs(change) * wickScale
		bars[i] = kline.Bar{
			Symbol:    symbol,
			Timestamp: start.Add(time.Duration(i) * barInterval).UTC(),
			Open:      price,
			High:      price + wick,
			Low:       price - wick,
			Close:     price + change,
			Volume:    float64(baseVolume + g.rng.Intn(2*volumeJitter+1) - volumeJitter),
		}
		price += change
	}
	return bars, nil
}

// Universe generates a series for every symbol in order
func (g *Generator) Universe(symbols []string, days int, start time.Time) (map[string][]kline.Bar, error) {
	resp := make(map[string][]kline.Bar, len(symbols))
	for _, sym := range symbols {
		bars, err := g.Bars(sym, days, start)
		if err != nil {
			return nil, err
		}
		resp[sym] = bars
	}
	return resp, nil
}
