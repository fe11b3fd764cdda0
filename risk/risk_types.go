package risk

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/volatilitytrader/account"
	"github.com/thrasher-corp/volatilitytrader/signal"
)

// ErrUnknownSignalKind is returned for a signal kind other than Breakout or Reversal
var ErrUnknownSignalKind = errors.New("unknown signal kind")

// ATR multiples for stops and risk multiples for targets
var (
	breakoutStopATR  = decimal.NewFromFloat(2)
	reversalStopATR  = decimal.NewFromFloat(1.5)
	breakoutTargetR  = decimal.NewFromFloat(3)
	reversalTargetR  = decimal.NewFromFloat(2.5)
	basisPointFactor = decimal.NewFromInt(10000)
)

// Sizer turns an entry decision into a sized plan
type Sizer struct {
	RiskFraction decimal.Decimal
	SlippageBps  decimal.Decimal
	Limits       account.Limits
}

// Request holds everything the sizer needs for one entry
type Request struct {
	Kind   signal.Kind
	Entry  decimal.Decimal
	ATR    decimal.Decimal
	Equity decimal.Decimal
	Cash   decimal.Decimal
	Ask    decimal.Decimal
	// Last is the price used for exposure checks
	Last           decimal.Decimal
	SymbolNotional decimal.Decimal
	GrossNotional  decimal.Decimal
}

// Plan is the sized entry. A zero Quantity cancels the entry
type Plan struct {
	Stop         decimal.Decimal
	Target       decimal.Decimal
	RiskQuantity int64
	CashCap      int64
	ExposureCap  int64
	Quantity     int64
}
