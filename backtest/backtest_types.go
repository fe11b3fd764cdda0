package backtest

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/volatilitytrader/account"
	"github.com/thrasher-corp/volatilitytrader/config"
	"github.com/thrasher-corp/volatilitytrader/execution"
	"github.com/thrasher-corp/volatilitytrader/risk"
	"github.com/thrasher-corp/volatilitytrader/schedule"
	"github.com/thrasher-corp/volatilitytrader/signal"
	"github.com/thrasher-corp/volatilitytrader/statistics"
)

var (
	errAlreadyRun      = errors.New("backtester has already run, create a new one")
	errOutsideSchedule = errors.New("outside scheduled entry time")
)

// ExitReason describes how a position closed
type ExitReason uint8

// ExitReason values
const (
	ExitStop ExitReason = iota + 1
	ExitTarget
	ExitForced
)

// Position is an open long holding owned by the Backtester
type Position struct {
	Symbol                string
	Quantity              int64
	AvgEntry              decimal.Decimal
	Stop                  decimal.Decimal
	Target                decimal.Decimal
	Kind                  signal.Kind
	EntryTime             time.Time
	BarsHeld              int
	PeakUnrealized        decimal.Decimal
	MaxUnrealizedDrawdown decimal.Decimal
	BarsInDrawdown        int
	LastPrice             decimal.Decimal
	OCOGroup              string
}

// Trade is a closed position or the closed part of one
type Trade struct {
	Symbol                string
	Kind                  signal.Kind
	Quantity              int64
	EntryPrice            decimal.Decimal
	ExitPrice             decimal.Decimal
	PnL                   decimal.Decimal
	AdheredToPlan         bool
	Reason                ExitReason
	EntryTime             time.Time
	ExitTime              time.Time
	DurationBars          int
	BarsInDrawdown        int
	PeakUnrealized        decimal.Decimal
	MaxUnrealizedDrawdown decimal.Decimal
}

// Daily is one UTC day of realised PnL
type Daily struct {
	Date   time.Time
	PnL    decimal.Decimal
	Trades int
	Equity decimal.Decimal
}

// Result is the output of a run
type Result struct {
	Trades          []Trade
	Dailies         []Daily
	Metrics         *statistics.Metrics
	OpenPositions   []Position
	SlippageSamples []float64
	// LastTrade maps each symbol entered to its most recent entry time
	LastTrade   map[string]time.Time
	FinalEquity decimal.Decimal
	FinalCash   decimal.Decimal
}

// EquityObserver is called after every equity recompute
type EquityObserver func(t time.Time, cash, equity decimal.Decimal, positions []Position)

// Backtester runs the strategy over a fixed set of bars. It is single use
type Backtester struct {
	// OnEquity is optional
	OnEquity EquityObserver

	cfg        config.Config
	engine     *execution.Engine
	sizer      *risk.Sizer
	schedule   *schedule.Schedule
	thresholds signal.Thresholds
	account    *account.State

	positions map[string]*Position
	trades    []Trade
	dailies   []Daily
	slippage  []float64
	dayTrades int
	hasRun    bool
}
