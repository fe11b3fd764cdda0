package signal

// Kind is the closed set of setups the strategy trades. The zero value means
// no setup and is rejected by the risk sizer
type Kind uint8

// Kind values
const (
	Unknown Kind = iota
	Breakout
	Reversal
)

// Failure and success reasons reported on a Decision
const (
	ReasonRVOLFail        = "RVOL fail"
	ReasonATRFail         = "ATR% fail"
	ReasonNotAboveUpper   = "Price not > upper BB"
	ReasonWidthNotLow     = "BB width not at 20d low"
	ReasonVolumeNotHigher = "Volume not > yesterday"
	ReasonNotBelowLower   = "Price not <= lower BB"
	ReasonTrendFail       = "Trend filter fail (50<=200)"
	ReasonBreakoutPass    = "BREAKOUT pass"
	ReasonReversalPass    = "REVERSAL pass"
)

// Context is a read only indicator snapshot for one symbol at one bar
type Context struct {
	RVOL       float64
	ATR        float64
	ATRPercent float64
	RSI        float64
	Price      float64
	BBUpper    float64
	BBLower    float64
	BBWidth    float64
	EMAFast    float64
	EMASlow    float64
	// WidthAtLow reports the band width squeeze preceding this bar
	WidthAtLow bool
	// VolumeAboveYesterday reports volume exceeding the previous bar
	VolumeAboveYesterday bool
}

// Decision is the outcome of evaluating a Context
type Decision struct {
	ShouldEnter bool
	Reason      string
	Kind        Kind
	EntryPrice  float64
}

// Thresholds holds the strict lower bounds for RVOL and ATR% and the strict
// upper bound for RSI
type Thresholds struct {
	RVOLMin       float64
	ATRPercentMin float64
	RSIMax        float64
}
