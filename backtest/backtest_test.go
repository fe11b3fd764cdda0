package backtest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/volatilitytrader/config"
	"github.com/thrasher-corp/volatilitytrader/kline"
	"github.com/thrasher-corp/volatilitytrader/signal"
)

var start = time.Date(2023, 1, 2, 15, 0, 0, 0, time.UTC)

// scenarioBars returns 250 daily bars flat at 100 with a breakout at bar 220
// where RVOL is 2 and ATR% is 5. Bars after the breakout close at after
func scenarioBars(sym string, after float64) []kline.Bar {
	bars := make([]kline.Bar, 250)
	for i := range bars {
		c := 100.0
		vol := 1e6
		switch {
		case i == 220:
			bars[i] = kline.Bar{Symbol: sym, Timestamp: start.AddDate(0, 0, i), Open: 100, High: 112, Low: 108, Close: 110, Volume: 2e6}
			continue
		case i > 220:
			c = after
		}
		bars[i] = kline.Bar{
			Symbol:    sym,
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c + 2.5,
			Low:       c - 2.5,
			Close:     c,
			Volume:    vol,
		}
	}
	return bars
}

func newTestBacktester(t *testing.T, mutate func(*config.Config)) *Backtester {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	bt, err := New(cfg)
	require.NoError(t, err)
	return bt
}

func assertEquityInvariant(t *testing.T, bt *Backtester) *int {
	t.Helper()
	calls := new(int)
	bt.OnEquity = func(_ time.Time, cash, equity decimal.Decimal, positions []Position) {
		*calls++
		marked := cash
		for i := range positions {
			marked = marked.Add(positions[i].LastPrice.Mul(decimal.NewFromInt(positions[i].Quantity)))
		}
		assert.True(t, marked.Equal(equity), "cash plus marked positions %s != equity %s", marked, equity)
	}
	return calls
}

func TestBreakoutStopScenario(t *testing.T) {
	t.Parallel()
	bt := newTestBacktester(t, nil)
	calls := assertEquityInvariant(t, bt)
	res, err := bt.Run(map[string][]kline.Bar{"TEST": scenarioBars("TEST", 98)})
	require.NoError(t, err)
	assert.Equal(t, 2*51, *calls, "two recomputes per processed timestamp")

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, signal.Breakout, tr.Kind)
	assert.Equal(t, ExitStop, tr.Reason)
	assert.True(t, tr.AdheredToPlan)
	assert.Equal(t, int64(90), tr.Quantity)
	assert.True(t, tr.EntryPrice.Equal(decimal.RequireFromString("110.1100275")), tr.EntryPrice.String())
	assert.True(t, tr.ExitPrice.Equal(decimal.RequireFromString("98.9505")), tr.ExitPrice.String())
	assert.True(t, tr.PnL.Equal(tr.ExitPrice.Sub(tr.EntryPrice).Mul(decimal.NewFromInt(tr.Quantity))))
	assert.Equal(t, start.AddDate(0, 0, 220), tr.EntryTime)
	assert.Equal(t, start.AddDate(0, 0, 221), tr.ExitTime)

	notional := tr.EntryPrice.Mul(decimal.NewFromInt(tr.Quantity))
	assert.True(t, notional.LessThanOrEqual(decimal.NewFromInt(15000)), "per symbol exposure")

	require.Len(t, res.LastTrade, 1)
	assert.Equal(t, start.AddDate(0, 0, 220), res.LastTrade["TEST"])
	assert.Empty(t, res.OpenPositions)
	assert.Len(t, res.SlippageSamples, 2)

	// bars 199 to 249 are processed, one day each
	require.Len(t, res.Dailies, 51)
	sum := decimal.Zero
	for i := range res.Dailies {
		sum = sum.Add(res.Dailies[i].PnL)
	}
	assert.True(t, sum.Equal(tr.PnL))
	exitDay := res.Dailies[221-199]
	assert.Equal(t, 1, exitDay.Trades)
	assert.True(t, exitDay.PnL.Equal(tr.PnL))
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 221), exitDay.Date)

	assert.True(t, res.FinalEquity.Equal(res.FinalCash))
	assert.True(t, res.FinalEquity.Equal(decimal.NewFromInt(100000).Add(tr.PnL)))
	assert.Equal(t, 1.0, res.Metrics.PlanAdherence)
	assert.Zero(t, res.Metrics.WinRate)
}

func TestBreakoutTargetScenario(t *testing.T) {
	t.Parallel()
	bt := newTestBacktester(t, nil)
	assertEquityInvariant(t, bt)
	res, err := bt.Run(map[string][]kline.Bar{"TEST": scenarioBars("TEST", 150)})
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, ExitTarget, tr.Reason)
	assert.True(t, tr.PnL.IsPositive())
	assert.True(t, tr.PnL.Equal(tr.ExitPrice.Sub(tr.EntryPrice).Mul(decimal.NewFromInt(90))))
	assert.Equal(t, 1.0, res.Metrics.WinRate)
}

func TestNoExit(t *testing.T) {
	t.Parallel()
	bt := newTestBacktester(t, nil)
	assertEquityInvariant(t, bt)
	res, err := bt.Run(map[string][]kline.Bar{"TEST": scenarioBars("TEST", 105)})
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	require.Len(t, res.OpenPositions, 1)
	p := res.OpenPositions[0]
	assert.Equal(t, int64(90), p.Quantity)
	assert.Equal(t, 29, p.BarsHeld)
	assert.True(t, p.LastPrice.Equal(decimal.NewFromInt(105)))
	assert.NotEmpty(t, p.OCOGroup)
	assert.True(t, p.Stop.Equal(decimal.NewFromInt(99)))
	assert.True(t, p.Target.Equal(decimal.NewFromInt(143)))
	// marked at 110 on entry then 105 for every later bar
	assert.True(t, p.PeakUnrealized.Equal(decimal.NewFromInt(110).Sub(p.AvgEntry).Mul(decimal.NewFromInt(90))))
	assert.Equal(t, 29, p.BarsInDrawdown)
	assert.True(t, p.MaxUnrealizedDrawdown.Equal(decimal.NewFromInt(450)), p.MaxUnrealizedDrawdown.String())
	assert.True(t, res.FinalEquity.Equal(res.FinalCash.Add(decimal.NewFromInt(105*90))))
}

func TestPartialExit(t *testing.T) {
	t.Parallel()
	bars := scenarioBars("TEST", 98)
	bars[221].Volume = 1000
	bt := newTestBacktester(t, nil)
	assertEquityInvariant(t, bt)
	res, err := bt.Run(map[string][]kline.Bar{"TEST": bars})
	require.NoError(t, err)
	require.Len(t, res.Trades, 2)
	assert.Equal(t, int64(50), res.Trades[0].Quantity)
	assert.Equal(t, int64(40), res.Trades[1].Quantity)
	for i := range res.Trades {
		assert.Equal(t, ExitStop, res.Trades[i].Reason)
		assert.True(t, res.Trades[i].ExitPrice.Equal(decimal.RequireFromString("98.9505")))
	}
	assert.Equal(t, start.AddDate(0, 0, 222), res.Trades[1].ExitTime)
	assert.Empty(t, res.OpenPositions)
	assert.Empty(t, bt.engine.PendingGroups())
}

func TestCooldownHaltsOtherSymbols(t *testing.T) {
	t.Parallel()
	bt := newTestBacktester(t, nil)
	res, err := bt.Run(map[string][]kline.Bar{
		"BBB": scenarioBars("BBB", 105),
		"AAA": scenarioBars("AAA", 105),
	})
	require.NoError(t, err)
	require.Len(t, res.OpenPositions, 1)
	assert.Equal(t, "AAA", res.OpenPositions[0].Symbol)
	assert.Len(t, res.LastTrade, 1)

	bt = newTestBacktester(t, func(c *config.Config) { c.Risk.Cooldown = 0 })
	res, err = bt.Run(map[string][]kline.Bar{
		"BBB": scenarioBars("BBB", 105),
		"AAA": scenarioBars("AAA", 105),
	})
	require.NoError(t, err)
	assert.Len(t, res.OpenPositions, 2)
}

func TestMaxPositions(t *testing.T) {
	t.Parallel()
	bt := newTestBacktester(t, func(c *config.Config) {
		c.Risk.Cooldown = 0
		c.Risk.MaxPositions = 1
	})
	res, err := bt.Run(map[string][]kline.Bar{
		"AAA": scenarioBars("AAA", 105),
		"BBB": scenarioBars("BBB", 105),
	})
	require.NoError(t, err)
	require.Len(t, res.OpenPositions, 1)
	assert.Equal(t, "AAA", res.OpenPositions[0].Symbol)
}

func TestGrossExposureBound(t *testing.T) {
	t.Parallel()
	bt := newTestBacktester(t, func(c *config.Config) {
		c.Risk.Cooldown = 0
		c.Risk.MaxPositions = 4
	})
	grossMax := decimal.NewFromFloat(bt.cfg.Risk.MaxGrossExposure)
	calls := 0
	bt.OnEquity = func(_ time.Time, _, equity decimal.Decimal, positions []Position) {
		calls++
		gross := decimal.Zero
		for i := range positions {
			gross = gross.Add(positions[i].LastPrice.Mul(decimal.NewFromInt(positions[i].Quantity)))
		}
		assert.True(t, gross.LessThanOrEqual(equity.Mul(grossMax)), "gross %s exceeds %s of equity %s", gross, grossMax, equity)
	}
	universe := make(map[string][]kline.Bar)
	for _, sym := range []string{"AAA", "BBB", "CCC", "DDD"} {
		universe[sym] = scenarioBars(sym, 105)
	}
	res, err := bt.Run(universe)
	require.NoError(t, err)
	assert.Equal(t, 2*51, calls)

	require.Len(t, res.OpenPositions, 4)
	qty := make(map[string]int64)
	for i := range res.OpenPositions {
		qty[res.OpenPositions[i].Symbol] = res.OpenPositions[i].Quantity
	}
	// three full risk sized entries leave 300 of gross room at 110
	assert.Equal(t, map[string]int64{"AAA": 90, "BBB": 90, "CCC": 90, "DDD": 2}, qty)
}

func TestForcedClose(t *testing.T) {
	t.Parallel()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	first := time.Date(2023, 1, 3, 14, 30, 0, 0, loc)
	bars := make([]kline.Bar, 222)
	for i := 0; i < 221; i++ {
		bars[i] = kline.Bar{Symbol: "TEST", Timestamp: first.AddDate(0, 0, i).UTC(), Open: 100, High: 102.5, Low: 97.5, Close: 100, Volume: 1e6}
	}
	bars[220].High, bars[220].Low, bars[220].Close, bars[220].Volume = 112, 108, 110, 2e6
	closeAt := time.Date(first.Year(), first.Month(), first.Day()+220, 15, 45, 0, 0, loc).UTC()
	bars[221] = kline.Bar{Symbol: "TEST", Timestamp: closeAt, Open: 105, High: 106, Low: 104, Close: 105, Volume: 1e6}

	bt := newTestBacktester(t, func(c *config.Config) { c.Schedule.Enabled = true })
	assertEquityInvariant(t, bt)
	res, err := bt.Run(map[string][]kline.Bar{"TEST": bars})
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, ExitForced, tr.Reason)
	assert.False(t, tr.AdheredToPlan)
	assert.Equal(t, closeAt, tr.ExitTime)
	assert.True(t, tr.ExitPrice.Equal(decimal.NewFromInt(105).Mul(decimal.RequireFromString("0.9995")).Mul(decimal.RequireFromString("1.0005"))), tr.ExitPrice.String())
	assert.Empty(t, res.OpenPositions)
	assert.Empty(t, bt.engine.PendingGroups())
	assert.Empty(t, bt.engine.OpenOrders())
	assert.Zero(t, res.Metrics.PlanAdherence)
}

func TestScheduleBlocksEntries(t *testing.T) {
	t.Parallel()
	// the breakout bar lands at 12:00 New York time, between scan times
	bars := scenarioBars("TEST", 98)
	for i := range bars {
		bars[i].Timestamp = bars[i].Timestamp.Add(time.Hour)
	}
	bt := newTestBacktester(t, func(c *config.Config) { c.Schedule.Enabled = true })
	res, err := bt.Run(map[string][]kline.Bar{"TEST": bars})
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Empty(t, res.OpenPositions)
}

func TestDailyRollover(t *testing.T) {
	t.Parallel()
	day := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	var bars []kline.Bar
	// 210 bars, three per day, so 70 days in total
	for i := 0; i < 210; i++ {
		ts := day.AddDate(0, 0, i/3).Add(time.Duration(14+i%3) * time.Hour)
		bars = append(bars, kline.Bar{Symbol: "TEST", Timestamp: ts, Open: 100, High: 101, Low: 99, Close: 100, Volume: 1e6})
	}
	bt := newTestBacktester(t, nil)
	res, err := bt.Run(map[string][]kline.Bar{"TEST": bars})
	require.NoError(t, err)
	// processing starts at bar 199 which is the second bar of day 66
	require.Len(t, res.Dailies, 4)
	assert.Equal(t, day.AddDate(0, 0, 66), res.Dailies[0].Date)
	assert.Equal(t, day.AddDate(0, 0, 69), res.Dailies[3].Date)
	for i := range res.Dailies {
		assert.True(t, res.Dailies[i].PnL.IsZero())
		assert.True(t, res.Dailies[i].Equity.Equal(decimal.NewFromInt(100000)))
	}
}

func TestInsufficientHistory(t *testing.T) {
	t.Parallel()
	bt := newTestBacktester(t, nil)
	calls := assertEquityInvariant(t, bt)
	res, err := bt.Run(map[string][]kline.Bar{"TEST": scenarioBars("TEST", 98)[:150]})
	require.NoError(t, err)
	assert.Zero(t, *calls)
	assert.Empty(t, res.Trades)
	require.Len(t, res.Dailies, 1, "a closing daily is always emitted")
	assert.True(t, res.Dailies[0].Date.IsZero())
	assert.Zero(t, res.Metrics.OrdersPerDay)
}

func TestRunErrors(t *testing.T) {
	t.Parallel()
	bt := newTestBacktester(t, nil)
	bars := scenarioBars("TEST", 98)
	bars[10], bars[11] = bars[11], bars[10]
	_, err := bt.Run(map[string][]kline.Bar{"TEST": bars})
	require.ErrorIs(t, err, kline.ErrUnsortedBars)
	_, err = bt.Run(nil)
	require.ErrorIs(t, err, errAlreadyRun)

	cfg := config.Default()
	cfg.Risk.MaxPositions = 0
	_, err = New(cfg)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestEmptyRun(t *testing.T) {
	t.Parallel()
	res, err := newTestBacktester(t, nil).Run(nil)
	require.NoError(t, err)
	s := res.Metrics.Summary()
	assert.Zero(t, s["win_rate"])
	assert.Zero(t, s["profit_factor"])
	assert.Zero(t, s["sharpe_ratio"])
	require.Len(t, res.Dailies, 1)
	assert.True(t, res.Dailies[0].Date.IsZero())
	assert.True(t, res.FinalEquity.Equal(decimal.NewFromInt(100000)))
}

func TestExitReasonString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "stop", ExitStop.String())
	assert.Equal(t, "target", ExitTarget.String())
	assert.Equal(t, "forced close", ExitForced.String())
	assert.Equal(t, "unknown", ExitReason(0).String())
}
