package report

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/volatilitytrader/backtest"
	"github.com/thrasher-corp/volatilitytrader/signal"
	"github.com/thrasher-corp/volatilitytrader/statistics"
)

var generated = time.Date(2024, 1, 5, 21, 0, 0, 0, time.UTC)

func testResult() *backtest.Result {
	entry := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	return &backtest.Result{
		Trades: []backtest.Trade{{
			Symbol:        "AAPL",
			Kind:          signal.Breakout,
			Reason:        backtest.ExitTarget,
			Quantity:      1000,
			EntryPrice:    decimal.NewFromFloat(150.5),
			ExitPrice:     decimal.NewFromFloat(162.25),
			PnL:           decimal.NewFromInt(11750),
			AdheredToPlan: true,
			EntryTime:     entry,
			ExitTime:      entry.Add(48 * time.Hour),
			DurationBars:  2,
		}},
		Dailies: []backtest.Daily{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Equity: decimal.NewFromInt(100000)},
			{Date: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), PnL: decimal.NewFromInt(11750), Trades: 1, Equity: decimal.NewFromInt(111750)},
		},
		Metrics:         statistics.Compute([]statistics.TradeRecord{{PnL: 11750, AdheredToPlan: true, DurationBars: 2}}, []statistics.DailyRecord{{}, {PnL: 11750}}, []float64{5, 7}),
		SlippageSamples: []float64{5, 7},
		LastTrade:       map[string]time.Time{"AAPL": entry},
		FinalEquity:     decimal.NewFromInt(111750),
		FinalCash:       decimal.NewFromInt(111750),
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New(nil, nil, generated)
	require.ErrorIs(t, err, errNilResult)

	d, err := New(testResult(), []string{"AAPL"}, generated)
	require.NoError(t, err)
	require.Len(t, d.Trades, 1)
	assert.Equal(t, "BREAKOUT", d.Trades[0].Kind)
	assert.Equal(t, "target", d.Trades[0].Reason)
	assert.Equal(t, "150.5000", d.Trades[0].EntryPrice)
	assert.Equal(t, "11750.00", d.Trades[0].PnL)
	require.Len(t, d.Dailies, 2)
	assert.Equal(t, "2024-01-04", d.Dailies[1].Date)
	assert.Equal(t, "+Inf", d.Summary["profit_factor"], "no losses")
	assert.Equal(t, 1.0, d.Summary["win_rate"])
	assert.Equal(t, 6.0, d.Slippage["mean_bps"])
	assert.Equal(t, 7.0, d.Slippage["max_bps"])
	assert.Equal(t, "2024-01-02T14:30:00Z", d.LastTrade["AAPL"])
}

func TestEmptyDailyDate(t *testing.T) {
	t.Parallel()
	d, err := New(&backtest.Result{Dailies: []backtest.Daily{{}}}, nil, generated)
	require.NoError(t, err)
	assert.Empty(t, d.Dailies[0].Date)
	assert.Empty(t, d.Summary)
	assert.Zero(t, d.Slippage["samples"])
}

func TestFinite(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "+Inf", finite(math.Inf(1)))
	assert.Equal(t, "-Inf", finite(math.Inf(-1)))
	assert.Nil(t, finite(math.NaN()))
	assert.Equal(t, 1.5, finite(1.5))
}

func TestJSONAndSave(t *testing.T) {
	t.Parallel()
	d, err := New(testResult(), []string{"AAPL"}, generated)
	require.NoError(t, err)
	data, err := d.JSON()
	require.NoError(t, err)
	var decoded Data
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, d.FinalEquity, decoded.FinalEquity)
	assert.Equal(t, "+Inf", decoded.Summary["profit_factor"])

	path := filepath.Join(t.TempDir(), "results", "run.json")
	require.NoError(t, d.Save(path))
	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, saved)
}

func TestPrint(t *testing.T) {
	t.Parallel()
	d, err := New(testResult(), []string{"AAPL"}, generated)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, d.Print(&buf))
	out := buf.String()
	assert.Contains(t, out, "Trades: 1")
	assert.Contains(t, out, "Days: 2")
	assert.Contains(t, out, "11,750.0000", "numbers are grouped")
	assert.Contains(t, out, "+Inf")
	assert.Contains(t, out, "AAPL")
}
