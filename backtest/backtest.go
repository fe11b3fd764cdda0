package backtest

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/volatilitytrader/account"
	"github.com/thrasher-corp/volatilitytrader/common"
	"github.com/thrasher-corp/volatilitytrader/config"
	"github.com/thrasher-corp/volatilitytrader/execution"
	"github.com/thrasher-corp/volatilitytrader/kline"
	"github.com/thrasher-corp/volatilitytrader/log"
	"github.com/thrasher-corp/volatilitytrader/risk"
	"github.com/thrasher-corp/volatilitytrader/scanner"
	"github.com/thrasher-corp/volatilitytrader/schedule"
	"github.com/thrasher-corp/volatilitytrader/signal"
	"github.com/thrasher-corp/volatilitytrader/statistics"
)

var bps = decimal.NewFromInt(common.BasisPoints)

// New validates the configuration and returns a ready Backtester
func New(cfg config.Config) (*Backtester, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sched, err := schedule.New(cfg.Schedule)
	if err != nil {
		return nil, err
	}
	return &Backtester{
		cfg:      cfg,
		engine:   execution.NewEngine(execution.SettingsFromConfig(cfg.Fill)),
		sizer:    risk.NewSizer(&cfg),
		schedule: sched,
		thresholds: signal.Thresholds{
			RVOLMin:       cfg.Strategy.RVOLMin,
			ATRPercentMin: cfg.Strategy.ATRPercentMin,
			RSIMax:        cfg.Strategy.RSIMax,
		},
		account:   account.NewState(decimal.NewFromFloat(cfg.Account.StartingEquity), account.LimitsFromConfig(cfg.Risk)),
		positions: make(map[string]*Position),
	}, nil
}

// step holds the per timestamp market view
type step struct {
	t         time.Time
	snapshots map[string]*execution.Snapshot
	contexts  map[string]*signal.Context
}

// Run walks the global timeline once. It only returns an error for invalid
// input or a contract violation such as an unknown signal kind
func (b *Backtester) Run(bars map[string][]kline.Bar) (*Result, error) {
	if b.hasRun {
		return nil, errAlreadyRun
	}
	b.hasRun = true
	if err := kline.Validate(bars); err != nil {
		return nil, err
	}
	symbols := kline.Symbols(bars)
	series := scanner.Precompute(bars, b.cfg.Strategy)
	timeline := b.processable(kline.Timeline(bars), bars)
	log.Infof(log.BackTester, "running %d symbols over %d timestamps", len(symbols), len(timeline))

	var last time.Time
	for i, t := range timeline {
		s := b.snapshot(t, symbols, bars, series)
		if err := b.process(s, symbols); err != nil {
			return nil, err
		}
		last = t
		if i+1 < len(timeline) && !sameUTCDate(t, timeline[i+1]) {
			b.rollover(t)
		}
	}
	b.rollover(last)
	return b.result(), nil
}

// processable drops the timestamps before any symbol reaches MinHistory bars
func (b *Backtester) processable(timeline []time.Time, bars map[string][]kline.Bar) []time.Time {
	for i, t := range timeline {
		for _, series := range bars {
			if _, count, _ := kline.IndexAt(series, t); count >= b.cfg.Strategy.MinHistory {
				return timeline[i:]
			}
		}
	}
	return nil
}

func (b *Backtester) snapshot(t time.Time, symbols []string, bars map[string][]kline.Bar, series map[string]*scanner.Series) *step {
	s := &step{
		t:         t,
		snapshots: make(map[string]*execution.Snapshot),
		contexts:  make(map[string]*signal.Context),
	}
	for _, sym := range symbols {
		idx, _, exact := kline.IndexAt(bars[sym], t)
		if !exact {
			continue
		}
		snap := b.engine.SnapshotFromBar(&bars[sym][idx])
		s.snapshots[sym] = &snap
		if ctx, ok := series[sym].At(idx); ok {
			s.contexts[sym] = ctx
		}
	}
	return s
}

// process applies one timestamp in order: mark, gate, entries, exits,
// forced close and analytics
func (b *Backtester) process(s *step, symbols []string) error {
	for sym, p := range b.positions {
		if snap, ok := s.snapshots[sym]; ok {
			p.LastPrice = snap.Last
		}
	}
	b.markToMarket(s.t)

	if err := b.gate(s.t); err != nil {
		log.Debugf(log.Risk, "%v entries halted: %v", s.t, err)
	} else if err := b.enter(s, symbols); err != nil {
		return err
	}

	b.exit(s)
	if b.schedule.CloseAll(s.t) {
		b.closeAll(s)
	}
	b.analyse(s)
	b.markToMarket(s.t)
	return nil
}

// gate runs the circuit breakers and, when enabled, the trading schedule
func (b *Backtester) gate(t time.Time) error {
	if err := b.account.CheckCircuitBreakers(len(b.positions), t); err != nil {
		return err
	}
	if !b.schedule.CanEnter(t) {
		return errOutsideSchedule
	}
	return nil
}

func (b *Backtester) enter(s *step, symbols []string) error {
	for _, sym := range symbols {
		ctx, ok := s.contexts[sym]
		if !ok {
			continue
		}
		if _, open := b.positions[sym]; open {
			continue
		}
		if err := b.gate(s.t); err != nil {
			log.Debugf(log.Risk, "%v %s entry halted: %v", s.t, sym, err)
			return nil
		}
		d := b.thresholds.Evaluate(ctx)
		if !d.ShouldEnter {
			continue
		}
		snap := s.snapshots[sym]
		plan, err := b.sizer.Size(&risk.Request{
			Kind:          d.Kind,
			Entry:         decimal.NewFromFloat(d.EntryPrice),
			ATR:           decimal.NewFromFloat(ctx.ATR),
			Equity:        b.account.Equity,
			Cash:          b.account.Cash,
			Ask:           snap.Ask,
			Last:          snap.Last,
			GrossNotional: b.grossNotional(),
		})
		if err != nil {
			if errors.Is(err, risk.ErrUnknownSignalKind) {
				return fmt.Errorf("%s at %v: %w", sym, s.t, err)
			}
			log.Debugf(log.Risk, "%s sizing skipped: %v", sym, err)
			continue
		}
		if plan.Quantity <= 0 {
			log.Debugf(log.Risk, "%s %s sized to zero, risk %d cash %d exposure %d",
				sym, d.Kind, plan.RiskQuantity, plan.CashCap, plan.ExposureCap)
			continue
		}
		fill, err := b.engine.Execute(execution.Order{
			Symbol:   sym,
			Side:     execution.Buy,
			Quantity: plan.Quantity,
			Kind:     execution.Market,
		}, snap)
		if err != nil {
			log.Debugf(log.Execution, "%s entry not filled: %v", sym, err)
			continue
		}
		if err = b.open(sym, d.Kind, plan, fill, snap); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backtester) open(sym string, kind signal.Kind, plan *risk.Plan, fill *execution.Fill, snap *execution.Snapshot) error {
	qty := decimal.NewFromInt(fill.Quantity)
	b.account.Cash = b.account.Cash.Sub(fill.Price.Mul(qty))
	b.account.RecordTrade(sym, fill.Time)
	b.recordSlippage(fill)
	p := &Position{
		Symbol:    sym,
		Quantity:  fill.Quantity,
		AvgEntry:  fill.Price,
		Stop:      plan.Stop,
		Target:    plan.Target,
		Kind:      kind,
		EntryTime: fill.Time,
		LastPrice: snap.Last,
	}
	p.PeakUnrealized = p.unrealized()
	if err := b.protect(p); err != nil {
		return err
	}
	b.positions[sym] = p
	log.Infof(log.BackTester, "%v %s %s entry %d @ %s stop %s target %s",
		fill.Time.Format(common.SimpleTimeFormat), sym, kind, fill.Quantity,
		fill.Price.StringFixed(4), plan.Stop.StringFixed(4), plan.Target.StringFixed(4))
	return nil
}

// protect registers the stop and target pair for the position's quantity
func (b *Backtester) protect(p *Position) error {
	g, err := b.engine.PlaceOCO(
		execution.Order{
			Symbol:   p.Symbol,
			Side:     execution.Sell,
			Quantity: p.Quantity,
			Kind:     execution.Limit,
			Price:    decimal.NullDecimal{Decimal: p.Stop, Valid: true},
		},
		execution.Order{
			Symbol:   p.Symbol,
			Side:     execution.Sell,
			Quantity: p.Quantity,
			Kind:     execution.Limit,
			Price:    decimal.NullDecimal{Decimal: p.Target, Valid: true},
		})
	if err != nil {
		return fmt.Errorf("%s oco registration: %w", p.Symbol, err)
	}
	p.OCOGroup = g.ID
	return nil
}

// exit checks every pending group for symbols with a snapshot. Positions
// opened at this timestamp are not checked until the next one
func (b *Backtester) exit(s *step) {
	for _, g := range b.engine.PendingGroups() {
		snap, ok := s.snapshots[g.Symbol]
		if !ok {
			continue
		}
		p, ok := b.positions[g.Symbol]
		if !ok || p.EntryTime.Equal(s.t) {
			continue
		}
		res, err := b.engine.ProcessOCO(g.ID, snap)
		if err != nil {
			log.Debugf(log.Execution, "%s oco %s not filled: %v", g.Symbol, g.ID, err)
			continue
		}
		if res == nil {
			continue
		}
		reason := ExitStop
		if res.Leg == execution.TargetLeg {
			reason = ExitTarget
		}
		b.close(p, res.Fill, reason, true)
		if p.Quantity > 0 {
			if err := b.protect(p); err != nil {
				log.Errorf(log.BackTester, "%v", err)
			}
		}
	}
}

// closeAll flattens every position at market and cancels its exit pair
func (b *Backtester) closeAll(s *step) {
	for _, sym := range b.openSymbols() {
		p := b.positions[sym]
		if err := b.engine.CancelOCOGroup(p.OCOGroup); err != nil {
			log.Warnf(log.Execution, "%s cancelling oco %s: %v", sym, p.OCOGroup, err)
		}
		snap, ok := s.snapshots[sym]
		if !ok {
			mark := b.engine.SnapshotFromBar(&kline.Bar{
				Symbol:    sym,
				Timestamp: s.t,
				Close:     p.LastPrice.InexactFloat64(),
			})
			snap = &mark
		}
		fill, err := b.engine.Execute(execution.Order{
			Symbol:   sym,
			Side:     execution.Sell,
			Quantity: p.Quantity,
			Kind:     execution.Market,
		}, snap)
		if err != nil {
			log.Errorf(log.Execution, "%s forced close: %v", sym, err)
			continue
		}
		fill.Time = s.t
		b.close(p, fill, ExitForced, false)
	}
}

// close books the fill against the position, removing it once flat
func (b *Backtester) close(p *Position, fill *execution.Fill, reason ExitReason, adhered bool) {
	qty := decimal.NewFromInt(fill.Quantity)
	pnl := fill.Price.Sub(p.AvgEntry).Mul(qty)
	b.trades = append(b.trades, Trade{
		Symbol:                p.Symbol,
		Kind:                  p.Kind,
		Quantity:              fill.Quantity,
		EntryPrice:            p.AvgEntry,
		ExitPrice:             fill.Price,
		PnL:                   pnl,
		AdheredToPlan:         adhered,
		Reason:                reason,
		EntryTime:             p.EntryTime,
		ExitTime:              fill.Time,
		DurationBars:          p.BarsHeld,
		BarsInDrawdown:        p.BarsInDrawdown,
		PeakUnrealized:        p.PeakUnrealized,
		MaxUnrealizedDrawdown: p.MaxUnrealizedDrawdown,
	})
	b.dayTrades++
	b.account.Cash = b.account.Cash.Add(fill.Price.Mul(qty))
	b.account.AddPnL(pnl)
	b.recordSlippage(fill)
	p.Quantity -= fill.Quantity
	if p.Quantity <= 0 {
		delete(b.positions, p.Symbol)
	}
	log.Infof(log.BackTester, "%v %s %s exit %d @ %s pnl %s",
		fill.Time.Format(common.SimpleTimeFormat), p.Symbol, reason, fill.Quantity,
		fill.Price.StringFixed(4), pnl.StringFixed(2))
}

// analyse advances the holding statistics of positions with a bar at t
func (b *Backtester) analyse(s *step) {
	for sym, p := range b.positions {
		snap, ok := s.snapshots[sym]
		if !ok || p.EntryTime.Equal(s.t) {
			continue
		}
		p.BarsHeld++
		p.LastPrice = snap.Last
		u := p.unrealized()
		if u.GreaterThan(p.PeakUnrealized) {
			p.PeakUnrealized = u
		}
		if dd := p.PeakUnrealized.Sub(u); dd.GreaterThan(p.MaxUnrealizedDrawdown) {
			p.MaxUnrealizedDrawdown = dd
		}
		if u.LessThan(p.PeakUnrealized) {
			p.BarsInDrawdown++
		}
	}
}

func (p *Position) unrealized() decimal.Decimal {
	return p.LastPrice.Sub(p.AvgEntry).Mul(decimal.NewFromInt(p.Quantity))
}

func (b *Backtester) markToMarket(t time.Time) {
	holdings := make([]account.Holding, 0, len(b.positions))
	for _, p := range b.positions {
		holdings = append(holdings, account.Holding{Quantity: p.Quantity, LastPrice: p.LastPrice})
	}
	equity := b.account.MarkToMarket(holdings)
	if b.OnEquity != nil {
		b.OnEquity(t, b.account.Cash, equity, b.openPositions())
	}
}

func (b *Backtester) grossNotional() decimal.Decimal {
	gross := decimal.Zero
	for _, p := range b.positions {
		gross = gross.Add(p.LastPrice.Mul(decimal.NewFromInt(p.Quantity)))
	}
	return gross
}

func (b *Backtester) recordSlippage(f *execution.Fill) {
	if !f.Reference.IsPositive() {
		return
	}
	b.slippage = append(b.slippage, f.Price.Sub(f.Reference).Abs().Div(f.Reference).Mul(bps).InexactFloat64())
}

// rollover closes the day that contains t
func (b *Backtester) rollover(t time.Time) {
	var date time.Time
	if !t.IsZero() {
		date = t.UTC().Truncate(24 * time.Hour)
	}
	pnl := b.account.ResetDaily()
	b.dailies = append(b.dailies, Daily{
		Date:   date,
		PnL:    pnl,
		Trades: b.dayTrades,
		Equity: b.account.Equity,
	})
	b.dayTrades = 0
	log.Debugf(log.BackTester, "day %s closed pnl %s equity %s",
		date.Format(common.DateFormat), pnl.StringFixed(2), b.account.Equity.StringFixed(2))
}

func (b *Backtester) openSymbols() []string {
	resp := make([]string, 0, len(b.positions))
	for sym := range b.positions {
		resp = append(resp, sym)
	}
	sort.Strings(resp)
	return resp
}

func (b *Backtester) openPositions() []Position {
	syms := b.openSymbols()
	resp := make([]Position, len(syms))
	for i := range syms {
		resp[i] = *b.positions[syms[i]]
	}
	return resp
}

func (b *Backtester) result() *Result {
	trades := make([]statistics.TradeRecord, len(b.trades))
	for i := range b.trades {
		trades[i] = statistics.TradeRecord{
			PnL:            b.trades[i].PnL.InexactFloat64(),
			AdheredToPlan:  b.trades[i].AdheredToPlan,
			DurationBars:   b.trades[i].DurationBars,
			BarsInDrawdown: b.trades[i].BarsInDrawdown,
		}
	}
	dailies := make([]statistics.DailyRecord, len(b.dailies))
	for i := range b.dailies {
		dailies[i] = statistics.DailyRecord{PnL: b.dailies[i].PnL.InexactFloat64()}
	}
	lastTrade := make(map[string]time.Time, len(b.account.LastTrade))
	for k, v := range b.account.LastTrade {
		lastTrade[k] = v
	}
	return &Result{
		Trades:          b.trades,
		Dailies:         b.dailies,
		Metrics:         statistics.Compute(trades, dailies, b.slippage),
		OpenPositions:   b.openPositions(),
		SlippageSamples: b.slippage,
		LastTrade:       lastTrade,
		FinalEquity:     b.account.Equity,
		FinalCash:       b.account.Cash,
	}
}

func sameUTCDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// String implements fmt.Stringer
func (e ExitReason) String() string {
	switch e {
	case ExitStop:
		return "stop"
	case ExitTarget:
		return "target"
	case ExitForced:
		return "forced close"
	default:
		return "unknown"
	}
}
