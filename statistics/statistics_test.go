package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeEmpty(t *testing.T) {
	t.Parallel()
	s := Compute(nil, nil, nil).Summary()
	for _, k := range []string{
		"win_rate", "profit_factor", "avg_win_loss_ratio", "max_drawdown",
		"sharpe_ratio", "orders_per_day", "plan_adherence", "slippage_impact_bps",
	} {
		v, ok := s[k]
		require.True(t, ok, k)
		assert.Zero(t, v, k)
	}
	var m *Metrics
	assert.Nil(t, m.Summary())
}

func TestCompute(t *testing.T) {
	t.Parallel()
	trades := []TradeRecord{
		{PnL: 300, AdheredToPlan: true, DurationBars: 4, BarsInDrawdown: 1},
		{PnL: -100, AdheredToPlan: true, DurationBars: 2, BarsInDrawdown: 2},
		{PnL: 100, AdheredToPlan: false, DurationBars: 6, BarsInDrawdown: 0},
		{PnL: -100, AdheredToPlan: true, DurationBars: 0, BarsInDrawdown: 1},
	}
	dailies := []DailyRecord{{PnL: 200}, {PnL: -100}, {PnL: 100}, {PnL: -200}}
	m := Compute(trades, dailies, []float64{4, 6})

	assert.Equal(t, 0.5, m.WinRate)
	assert.Equal(t, 2.0, m.ProfitFactor)
	assert.Equal(t, 2.0, m.AvgWinLossRatio)
	assert.Equal(t, 0.75, m.PlanAdherence)
	assert.Equal(t, 1.0, m.OrdersPerDay)
	assert.Equal(t, 5.0, m.SlippageImpactBps)
	assert.Equal(t, 3.0, m.AvgDurationBars)
	assert.Equal(t, 1.0, m.AvgBarsInDrawdown)
	assert.Equal(t, 200.0, m.TotalPnL)
	// cumulative 200, 100, 200, 0 against a peak of 200
	assert.InDelta(t, 1, m.MaxDrawdown, 1e-12)
	assert.InDelta(t, 200, m.MaxDrawdownAmount, 1e-12)

	mean := 0.0
	std := math.Sqrt((200*200 + 100*100 + 100*100 + 200*200) / 3.0)
	assert.InDelta(t, mean/std*math.Sqrt(252), m.SharpeRatio, 1e-12)
}

func TestComputeNoLosses(t *testing.T) {
	t.Parallel()
	m := Compute([]TradeRecord{{PnL: 10}, {PnL: 0}}, []DailyRecord{{PnL: 10}}, nil)
	assert.True(t, math.IsInf(m.ProfitFactor, 1))
	assert.True(t, math.IsInf(m.AvgWinLossRatio, 1))
	assert.Equal(t, 0.5, m.WinRate)
	assert.Zero(t, m.SharpeRatio, "one sample")

	m = Compute([]TradeRecord{{PnL: -10}}, []DailyRecord{{PnL: 5}, {PnL: 5}}, nil)
	assert.Zero(t, m.ProfitFactor)
	assert.Zero(t, m.AvgWinLossRatio)
	assert.Zero(t, m.SharpeRatio, "zero variance")
}

func TestSharpe(t *testing.T) {
	t.Parallel()
	m := Compute(nil, []DailyRecord{{PnL: 1}, {PnL: 3}}, nil)
	std := math.Sqrt(2)
	assert.InDelta(t, 2/std*math.Sqrt(252), m.SharpeRatio, 1e-12)
}
