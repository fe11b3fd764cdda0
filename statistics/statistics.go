package statistics

import (
	gctmath "github.com/thrasher-corp/volatilitytrader/common/math"
)

// Compute aggregates trade and daily records into Metrics
func Compute(trades []TradeRecord, dailies []DailyRecord, slippageBps []float64) *Metrics {
	m := &Metrics{
		TotalTrades:         len(trades),
		TradingDays:         len(dailies),
		SlippageSampleCount: len(slippageBps),
	}
	var grossWin, grossLoss float64
	var adhered int
	durations := make([]float64, len(trades))
	drawdowns := make([]float64, len(trades))
	for i := range trades {
		switch {
		case trades[i].PnL > 0:
			m.Wins++
			grossWin += trades[i].PnL
		case trades[i].PnL < 0:
			m.Losses++
			grossLoss -= trades[i].PnL
		}
		if trades[i].AdheredToPlan {
			adhered++
		}
		m.TotalPnL += trades[i].PnL
		durations[i] = float64(trades[i].DurationBars)
		drawdowns[i] = float64(trades[i].BarsInDrawdown)
	}
	if m.TotalTrades > 0 {
		m.WinRate = float64(m.Wins) / float64(m.TotalTrades)
		m.PlanAdherence = float64(adhered) / float64(m.TotalTrades)
	}
	m.ProfitFactor = gctmath.SafeRatio(grossWin, grossLoss)
	if m.Wins > 0 {
		m.AvgWin = grossWin / float64(m.Wins)
	}
	if m.Losses > 0 {
		m.AvgLoss = grossLoss / float64(m.Losses)
	}
	m.AvgWinLossRatio = gctmath.SafeRatio(m.AvgWin, m.AvgLoss)

	daily := make([]float64, len(dailies))
	for i := range dailies {
		daily[i] = dailies[i].PnL
	}
	m.MaxDrawdown, m.MaxDrawdownAmount = gctmath.MaxDrawdownOfCumulative(daily)
	m.SharpeRatio = gctmath.CalculateSharpeRatio(daily, 0, gctmath.TradingDaysPerYear)
	if m.TradingDays > 0 {
		m.OrdersPerDay = float64(m.TotalTrades) / float64(m.TradingDays)
	}
	m.SlippageImpactBps = gctmath.ArithmeticAverage(slippageBps)
	m.AvgDurationBars = gctmath.ArithmeticAverage(durations)
	m.AvgBarsInDrawdown = gctmath.ArithmeticAverage(drawdowns)
	return m
}

// Summary flattens the metrics into a key value result
func (m *Metrics) Summary() map[string]float64 {
	if m == nil {
		return nil
	}
	return map[string]float64{
		"win_rate":             m.WinRate,
		"profit_factor":        m.ProfitFactor,
		"avg_win_loss_ratio":   m.AvgWinLossRatio,
		"max_drawdown":         m.MaxDrawdown,
		"max_drawdown_amount":  m.MaxDrawdownAmount,
		"sharpe_ratio":         m.SharpeRatio,
		"orders_per_day":       m.OrdersPerDay,
		"plan_adherence":       m.PlanAdherence,
		"slippage_impact_bps":  m.SlippageImpactBps,
		"avg_duration_bars":    m.AvgDurationBars,
		"avg_bars_in_drawdown": m.AvgBarsInDrawdown,
		"total_pnl":            m.TotalPnL,
		"total_trades":         float64(m.TotalTrades),
		"trading_days":         float64(m.TradingDays),
	}
}
