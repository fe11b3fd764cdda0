package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrDailyLossHalt is returned when the day's loss breaches the halt threshold
	ErrDailyLossHalt = errors.New("daily loss limit")
	// ErrMaxPositions is returned when the open position cap is reached
	ErrMaxPositions = errors.New("max positions")
	// ErrCooldown is returned when any symbol traded within the cooldown window
	ErrCooldown = errors.New("cooldown")
	// ErrNoPrice is returned when exposure is requested without a usable price
	ErrNoPrice = errors.New("no price for symbol")
)

// Limits holds exposure and breaker thresholds. Fractions are of equity
type Limits struct {
	PerSymbolMax     decimal.Decimal
	MaxGrossExposure decimal.Decimal
	MaxPositions     int
	DailyLossHalt    decimal.Decimal
	Cooldown         time.Duration
}

// State is the single account of a backtest run
type State struct {
	Equity   decimal.Decimal
	Cash     decimal.Decimal
	DailyPnL decimal.Decimal
	// LastTrade maps symbol to the time of its most recent entry
	LastTrade map[string]time.Time
	Limits    Limits
}

// Holding is the mark to market input for one open position
type Holding struct {
	Quantity  int64
	LastPrice decimal.Decimal
}
