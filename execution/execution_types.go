package execution

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoLiquidity is returned when a limit order finds no participating volume.
	// The order stays open and may fill on a later snapshot
	ErrNoLiquidity = errors.New("no liquidity")
	// ErrSpreadTooWide is returned when a limit order meets a spread above the configured maximum
	ErrSpreadTooWide = errors.New("spread too wide")
	// ErrOrderNotFound is returned for an unknown order id
	ErrOrderNotFound = errors.New("order not found")
	// ErrGroupNotFound is returned for an unknown OCO group id
	ErrGroupNotFound = errors.New("oco group not found")
	// ErrGroupNotPending is returned when acting on a resolved or cancelled group
	ErrGroupNotPending = errors.New("oco group not pending")

	errInvalidQuantity   = errors.New("order quantity must be positive")
	errInvalidSide       = errors.New("invalid order side")
	errInvalidOrderKind  = errors.New("invalid order kind")
	errNoMarketPrice     = errors.New("market snapshot has no price")
	errOrderInGroup      = errors.New("order belongs to an oco group, cancel the group")
	errLegMismatch       = errors.New("oco legs must be limit sells for the same symbol and quantity")
	errMissingLimitPrice = errors.New("oco leg has no limit price")
)

// Side is the order direction
type Side uint8

// Side values
const (
	Buy Side = iota + 1
	Sell
)

// Kind is the order type
type Kind uint8

// Kind values
const (
	Market Kind = iota + 1
	Limit
)

// GroupStatus is the state of an OCO group. Pending is the only state with
// outgoing transitions
type GroupStatus uint8

// GroupStatus values
const (
	Pending GroupStatus = iota + 1
	ResolvedStop
	ResolvedTarget
	Cancelled
)

// Leg identifies which side of an OCO group filled
type Leg uint8

// Leg values
const (
	StopLeg Leg = iota + 1
	TargetLeg
)

// Order is immutable once placed. ID is assigned by the Engine
type Order struct {
	ID       int64
	Symbol   string
	Side     Side
	Quantity int64
	Kind     Kind
	Price    decimal.NullDecimal
	OCOGroup string
}

// Snapshot is the market state a fill is simulated against
type Snapshot struct {
	Bid    decimal.Decimal
	Ask    decimal.Decimal
	Last   decimal.Decimal
	Volume float64
	Time   time.Time
}

// Fill is the simulated execution of an order
type Fill struct {
	Order    Order
	Quantity int64
	Price    decimal.Decimal
	// Reference is the pre slippage price the fill was derived from
	Reference decimal.Decimal
	Time      time.Time
}

// Group is a snapshot of an OCO pair
type Group struct {
	ID     string
	Symbol string
	Stop   Order
	Target Order
	Status GroupStatus
}

// Resolution is a filled OCO leg
type Resolution struct {
	GroupID string
	Leg     Leg
	Fill    *Fill
}

// Settings holds the fill simulation parameters
type Settings struct {
	SlippageBps         decimal.Decimal
	SpreadBps           decimal.Decimal
	MaxLimitSpreadBps   decimal.Decimal
	VolumeParticipation float64
}

// Engine simulates fills and owns every open order and OCO group
type Engine struct {
	settings   Settings
	nextID     int64
	orders     map[int64]*Order
	groups     map[string]*Group
	groupOrder []string
}
