package risk

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/volatilitytrader/account"
	"github.com/thrasher-corp/volatilitytrader/common"
	"github.com/thrasher-corp/volatilitytrader/config"
	"github.com/thrasher-corp/volatilitytrader/signal"
)

// StopLoss returns entry less 2 ATR for breakouts and 1.5 ATR for reversals
func StopLoss(kind signal.Kind, entry, atr decimal.Decimal) (decimal.Decimal, error) {
	switch kind {
	case signal.Breakout:
		return entry.Sub(breakoutStopATR.Mul(atr)), nil
	case signal.Reversal:
		return entry.Sub(reversalStopATR.Mul(atr)), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %v", ErrUnknownSignalKind, uint8(kind))
}

// TakeProfit returns entry plus 3R for breakouts and 2.5R for reversals,
// where R is the distance to the stop. Zero risk returns entry
func TakeProfit(kind signal.Kind, entry, stop decimal.Decimal) (decimal.Decimal, error) {
	var multiple decimal.Decimal
	switch kind {
	case signal.Breakout:
		multiple = breakoutTargetR
	case signal.Reversal:
		multiple = reversalTargetR
	default:
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnknownSignalKind, uint8(kind))
	}
	r := entry.Sub(stop).Abs()
	if r.IsZero() {
		return entry, nil
	}
	return entry.Add(multiple.Mul(r)), nil
}

// Shares returns floor(equity x riskFraction / |entry - stop|). No price risk
// returns zero
func Shares(equity, entry, stop, riskFraction decimal.Decimal) int64 {
	priceRisk := entry.Sub(stop).Abs()
	if !priceRisk.IsPositive() {
		return 0
	}
	q := equity.Mul(riskFraction).Div(priceRisk).Floor().IntPart()
	if q < 0 {
		return 0
	}
	return q
}

// NewSizer builds a sizer from the run configuration
func NewSizer(cfg *config.Config) *Sizer {
	return &Sizer{
		RiskFraction: decimal.NewFromFloat(cfg.Risk.RiskFraction),
		SlippageBps:  decimal.NewFromFloat(cfg.Fill.SlippageBps),
		Limits:       account.LimitsFromConfig(cfg.Risk),
	}
}

// Size computes stop, target and the final quantity which is the minimum of
// the risk based quantity, the cash cap and the exposure cap
func (s *Sizer) Size(r *Request) (*Plan, error) {
	if r == nil {
		return nil, common.ErrNilArguments
	}
	stop, err := StopLoss(r.Kind, r.Entry, r.ATR)
	if err != nil {
		return nil, err
	}
	target, err := TakeProfit(r.Kind, r.Entry, stop)
	if err != nil {
		return nil, err
	}
	p := &Plan{
		Stop:         stop,
		Target:       target,
		RiskQuantity: Shares(r.Equity, r.Entry, stop, s.RiskFraction),
	}
	if p.RiskQuantity <= 0 {
		return p, nil
	}
	estimated := r.Ask.Mul(decimal.NewFromInt(1).Add(s.SlippageBps.Div(basisPointFactor)))
	if estimated.IsPositive() && r.Cash.IsPositive() {
		p.CashCap = r.Cash.Div(estimated).Floor().IntPart()
	}
	p.ExposureCap, err = account.ExposureCap(r.Equity, r.SymbolNotional, r.GrossNotional, r.Last, s.Limits)
	if err != nil {
		return nil, err
	}
	p.Quantity = min(p.RiskQuantity, p.CashCap, p.ExposureCap)
	if p.Quantity < 0 {
		p.Quantity = 0
	}
	return p, nil
}
