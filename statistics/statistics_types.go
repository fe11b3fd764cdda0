package statistics

// TradeRecord is the subset of a closed trade the metrics need
type TradeRecord struct {
	PnL            float64
	AdheredToPlan  bool
	DurationBars   int
	BarsInDrawdown int
}

// DailyRecord is one day of realised PnL
type DailyRecord struct {
	PnL float64
}

// Metrics summarises a run. Ratios with an empty denominator set are 0,
// except profit factor and win/loss ratio which are +Inf with wins and no losses
type Metrics struct {
	TotalTrades         int
	Wins                int
	Losses              int
	WinRate             float64
	ProfitFactor        float64
	AvgWin              float64
	AvgLoss             float64
	AvgWinLossRatio     float64
	MaxDrawdown         float64
	MaxDrawdownAmount   float64
	SharpeRatio         float64
	OrdersPerDay        float64
	PlanAdherence       float64
	SlippageImpactBps   float64
	AvgDurationBars     float64
	AvgBarsInDrawdown   float64
	TotalPnL            float64
	TradingDays         int
	SlippageSampleCount int
}
