package account

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/volatilitytrader/config"
)

// LimitsFromConfig converts the risk section of the run configuration
func LimitsFromConfig(cfg config.RiskConfig) Limits {
	return Limits{
		PerSymbolMax:     decimal.NewFromFloat(cfg.PerSymbolMax),
		MaxGrossExposure: decimal.NewFromFloat(cfg.MaxGrossExposure),
		MaxPositions:     cfg.MaxPositions,
		DailyLossHalt:    decimal.NewFromFloat(cfg.DailyLossHalt),
		Cooldown:         cfg.Cooldown,
	}
}

// NewState returns an account holding equity entirely in cash
func NewState(equity decimal.Decimal, l Limits) *State {
	return &State{
		Equity:    equity,
		Cash:      equity,
		LastTrade: make(map[string]time.Time),
		Limits:    l,
	}
}

// CheckCircuitBreakers returns nil when new entries may proceed, otherwise
// the first breaker that applies. A cooldown on any symbol halts every entry
func (s *State) CheckCircuitBreakers(openPositions int, now time.Time) error {
	if s.Equity.IsPositive() && s.DailyPnL.Div(s.Equity).LessThan(s.Limits.DailyLossHalt) {
		return fmt.Errorf("%w: daily pnl %s equity %s", ErrDailyLossHalt, s.DailyPnL, s.Equity)
	}
	if openPositions >= s.Limits.MaxPositions {
		return fmt.Errorf("%w: %d open", ErrMaxPositions, openPositions)
	}
	symbols := make([]string, 0, len(s.LastTrade))
	for sym := range s.LastTrade {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	for _, sym := range symbols {
		if now.Sub(s.LastTrade[sym]) < s.Limits.Cooldown {
			return fmt.Errorf("%w: %s traded at %v", ErrCooldown, sym, s.LastTrade[sym])
		}
	}
	return nil
}

// RecordTrade stamps the symbol's last trade time
func (s *State) RecordTrade(symbol string, t time.Time) {
	if s.LastTrade == nil {
		s.LastTrade = make(map[string]time.Time)
	}
	s.LastTrade[symbol] = t
}

// MarkToMarket sets equity to cash plus the marked value of every holding
func (s *State) MarkToMarket(holdings []Holding) decimal.Decimal {
	equity := s.Cash
	for i := range holdings {
		equity = equity.Add(holdings[i].LastPrice.Mul(decimal.NewFromInt(holdings[i].Quantity)))
	}
	s.Equity = equity
	return equity
}

// AddPnL books realised PnL to the running daily total
func (s *State) AddPnL(pnl decimal.Decimal) {
	s.DailyPnL = s.DailyPnL.Add(pnl)
}

// ResetDaily zeroes the running daily PnL and returns the amount cleared
func (s *State) ResetDaily() decimal.Decimal {
	pnl := s.DailyPnL
	s.DailyPnL = decimal.Zero
	return pnl
}

// ExposureCap returns the largest whole quantity at price that keeps the
// symbol notional within equity x PerSymbolMax and the gross notional within
// equity x MaxGrossExposure
func ExposureCap(equity, symbolNotional, grossNotional, price decimal.Decimal, l Limits) (int64, error) {
	if !price.IsPositive() {
		return 0, ErrNoPrice
	}
	symbolRoom := equity.Mul(l.PerSymbolMax).Sub(symbolNotional)
	grossRoom := equity.Mul(l.MaxGrossExposure).Sub(grossNotional)
	room := decimal.Min(symbolRoom, grossRoom)
	if !room.IsPositive() {
		return 0, nil
	}
	return room.Div(price).Floor().IntPart(), nil
}
