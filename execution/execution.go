package execution

import (
	"fmt"
	"sort"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/volatilitytrader/common"
	"github.com/thrasher-corp/volatilitytrader/config"
	"github.com/thrasher-corp/volatilitytrader/kline"
	"github.com/thrasher-corp/volatilitytrader/log"
)

var (
	bps = decimal.NewFromInt(common.BasisPoints)
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// SettingsFromConfig converts the fill section of the run configuration.
// The quoted spread never drops below MinSpreadBps
func SettingsFromConfig(cfg config.FillConfig) Settings {
	spread := cfg.SpreadBps
	if spread < cfg.MinSpreadBps {
		spread = cfg.MinSpreadBps
	}
	return Settings{
		SlippageBps:         decimal.NewFromFloat(cfg.SlippageBps),
		SpreadBps:           decimal.NewFromFloat(spread),
		MaxLimitSpreadBps:   decimal.NewFromFloat(cfg.MaxLimitSpreadBps),
		VolumeParticipation: cfg.VolumeParticipation,
	}
}

// NewEngine returns an engine with no open orders
func NewEngine(s Settings) *Engine {
	return &Engine{
		settings: s,
		orders:   make(map[int64]*Order),
		groups:   make(map[string]*Group),
	}
}

// SnapshotFromBar quotes a bid and ask half the configured spread either side
// of the bar close
func (e *Engine) SnapshotFromBar(b *kline.Bar) Snapshot {
	last := decimal.NewFromFloat(b.Close)
	half := e.settings.SpreadBps.Div(two).Div(bps)
	return Snapshot{
		Bid:    last.Mul(one.Sub(half)),
		Ask:    last.Mul(one.Add(half)),
		Last:   last,
		Volume: b.Volume,
		Time:   b.Timestamp,
	}
}

// SimulateFill fills o against the snapshot without touching the order
// registry. Market orders fill in full at the touch inflated by slippage on
// either side. Limit
// orders are capped by participating volume and priced no worse than the
// touch plus slippage
func (e *Engine) SimulateFill(o *Order, s *Snapshot) (*Fill, error) {
	if o == nil || s == nil {
		return nil, common.ErrNilArguments
	}
	if o.Quantity <= 0 {
		return nil, fmt.Errorf("order %d %w", o.ID, errInvalidQuantity)
	}
	if o.Side != Buy && o.Side != Sell {
		return nil, fmt.Errorf("order %d %w", o.ID, errInvalidSide)
	}
	slip := e.settings.SlippageBps.Div(bps)
	switch o.Kind {
	case Market:
		ref := s.Ask
		if o.Side == Sell {
			ref = s.Bid
		}
		if !ref.IsPositive() {
			return nil, fmt.Errorf("%s %w", o.Symbol, errNoMarketPrice)
		}
		return &Fill{Order: *o, Quantity: o.Quantity, Price: ref.Mul(one.Add(slip)), Reference: ref, Time: s.Time}, nil
	case Limit:
		if !s.Last.IsPositive() {
			return nil, fmt.Errorf("%s %w", o.Symbol, errNoMarketPrice)
		}
		if e.settings.MaxLimitSpreadBps.IsPositive() {
			spread := s.Ask.Sub(s.Bid).Div(s.Last).Mul(bps)
			if spread.GreaterThan(e.settings.MaxLimitSpreadBps) {
				return nil, fmt.Errorf("%s %w: %s bps", o.Symbol, ErrSpreadTooWide, spread.StringFixed(2))
			}
		}
		available := int64(s.Volume * e.settings.VolumeParticipation)
		if available <= 0 {
			return nil, fmt.Errorf("%s %w", o.Symbol, ErrNoLiquidity)
		}
		var ref, price decimal.Decimal
		if o.Side == Buy {
			ref = s.Ask
			if o.Price.Valid && o.Price.Decimal.LessThan(ref) {
				ref = o.Price.Decimal
			}
			price = ref.Mul(one.Add(slip))
		} else {
			ref = s.Bid
			if o.Price.Valid && o.Price.Decimal.GreaterThan(ref) {
				ref = o.Price.Decimal
			}
			price = ref.Mul(one.Sub(slip))
		}
		return &Fill{Order: *o, Quantity: min(o.Quantity, available), Price: price, Reference: ref, Time: s.Time}, nil
	}
	return nil, fmt.Errorf("order %d %w: %d", o.ID, errInvalidOrderKind, o.Kind)
}

// PlaceOrder validates o, assigns the next id and stores it as open
func (e *Engine) PlaceOrder(o Order) (Order, error) {
	if o.Quantity <= 0 {
		return Order{}, errInvalidQuantity
	}
	if o.Side != Buy && o.Side != Sell {
		return Order{}, errInvalidSide
	}
	if o.Kind != Market && o.Kind != Limit {
		return Order{}, errInvalidOrderKind
	}
	e.nextID++
	o.ID = e.nextID
	e.orders[o.ID] = &o
	return o, nil
}

// Execute places o and fills it immediately against the snapshot. The order
// never rests in the open set, any unfilled quantity is dropped
func (e *Engine) Execute(o Order, s *Snapshot) (*Fill, error) {
	placed, err := e.PlaceOrder(o)
	if err != nil {
		return nil, err
	}
	f, err := e.SimulateFill(&placed, s)
	delete(e.orders, placed.ID)
	if err != nil {
		return nil, err
	}
	log.Debugf(log.Execution, "order %d %s %s %d filled %d at %s",
		placed.ID, placed.Symbol, placed.Side, placed.Quantity, f.Quantity, f.Price.StringFixed(4))
	return f, nil
}

// CancelOrder removes a standalone open order
func (e *Engine) CancelOrder(id int64) error {
	o, ok := e.orders[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrOrderNotFound, id)
	}
	if o.OCOGroup != "" {
		return fmt.Errorf("order %d %w %s", id, errOrderInGroup, o.OCOGroup)
	}
	delete(e.orders, id)
	return nil
}

// OpenOrders returns every open order sorted by id
func (e *Engine) OpenOrders() []Order {
	resp := make([]Order, 0, len(e.orders))
	for _, o := range e.orders {
		resp = append(resp, *o)
	}
	sort.Slice(resp, func(i, j int) bool {
		return resp[i].ID < resp[j].ID
	})
	return resp
}

// PlaceOCO registers a stop and target pair as a pending group. Both legs must
// be priced limit sells for the same symbol and quantity
func (e *Engine) PlaceOCO(stop, target Order) (*Group, error) {
	if stop.Symbol != target.Symbol || stop.Quantity != target.Quantity ||
		stop.Kind != Limit || target.Kind != Limit || stop.Side != Sell || target.Side != Sell {
		return nil, errLegMismatch
	}
	if !stop.Price.Valid || !target.Price.Valid {
		return nil, errMissingLimitPrice
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	stop.OCOGroup = id.String()
	target.OCOGroup = id.String()
	if stop, err = e.PlaceOrder(stop); err != nil {
		return nil, err
	}
	if target, err = e.PlaceOrder(target); err != nil {
		delete(e.orders, stop.ID)
		return nil, err
	}
	g := &Group{
		ID:     id.String(),
		Symbol: stop.Symbol,
		Stop:   stop,
		Target: target,
		Status: Pending,
	}
	e.groups[g.ID] = g
	e.groupOrder = append(e.groupOrder, g.ID)
	log.Debugf(log.Execution, "oco %s %s registered stop %s target %s",
		g.ID, g.Symbol, stop.Price.Decimal.StringFixed(4), target.Price.Decimal.StringFixed(4))
	cp := *g
	return &cp, nil
}

// ProcessOCO checks a pending group against the snapshot. The stop leg is
// tried first when last <= stop, then the target when last >= target. A fill
// on either leg resolves the group and removes both legs. A nil resolution
// with a nil error means neither leg triggered; a failed fill attempt returns
// the fill error and leaves the group pending
func (e *Engine) ProcessOCO(groupID string, s *Snapshot) (*Resolution, error) {
	if s == nil {
		return nil, common.ErrNilArguments
	}
	g, ok := e.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	if g.Status != Pending {
		return nil, fmt.Errorf("%s %w", groupID, ErrGroupNotPending)
	}
	var attemptErr error
	if s.Last.LessThanOrEqual(g.Stop.Price.Decimal) {
		f, err := e.SimulateFill(&g.Stop, s)
		if err == nil {
			e.resolve(g, ResolvedStop)
			return &Resolution{GroupID: g.ID, Leg: StopLeg, Fill: f}, nil
		}
		attemptErr = err
	}
	if s.Last.GreaterThanOrEqual(g.Target.Price.Decimal) {
		f, err := e.SimulateFill(&g.Target, s)
		if err == nil {
			e.resolve(g, ResolvedTarget)
			return &Resolution{GroupID: g.ID, Leg: TargetLeg, Fill: f}, nil
		}
		if attemptErr == nil {
			attemptErr = err
		}
	}
	return nil, attemptErr
}

// CancelOCOGroup removes every open order tagged with the group id and marks
// the group cancelled
func (e *Engine) CancelOCOGroup(groupID string) error {
	g, ok := e.groups[groupID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	if g.Status != Pending {
		return fmt.Errorf("%s %w", groupID, ErrGroupNotPending)
	}
	e.resolve(g, Cancelled)
	return nil
}

func (e *Engine) resolve(g *Group, status GroupStatus) {
	g.Status = status
	for id, o := range e.orders {
		if o.OCOGroup == g.ID {
			delete(e.orders, id)
		}
	}
	for i := range e.groupOrder {
		if e.groupOrder[i] == g.ID {
			e.groupOrder = append(e.groupOrder[:i], e.groupOrder[i+1:]...)
			break
		}
	}
}

// PendingGroups returns pending groups in registration order
func (e *Engine) PendingGroups() []Group {
	resp := make([]Group, 0, len(e.groupOrder))
	for _, id := range e.groupOrder {
		resp = append(resp, *e.groups[id])
	}
	return resp
}

// GetGroup returns a snapshot of any group registered with the engine
func (e *Engine) GetGroup(groupID string) (Group, error) {
	g, ok := e.groups[groupID]
	if !ok {
		return Group{}, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	return *g, nil
}

// String implements fmt.Stringer
func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// String implements fmt.Stringer
func (k Kind) String() string {
	switch k {
	case Market:
		return "MARKET"
	case Limit:
		return "LIMIT"
	default:
		return "UNKNOWN"
	}
}

// String implements fmt.Stringer
func (g GroupStatus) String() string {
	switch g {
	case Pending:
		return "PENDING"
	case ResolvedStop:
		return "RESOLVED_STOP"
	case ResolvedTarget:
		return "RESOLVED_TARGET"
	case Cancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}
