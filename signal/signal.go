package signal

import "fmt"

// DefaultThresholds returns RVOL > 1.8, ATR% > 4 and RSI < 35
func DefaultThresholds() Thresholds {
	return Thresholds{
		RVOLMin:       1.8,
		ATRPercentMin: 4,
		RSIMax:        35,
	}
}

// String implements fmt.Stringer
func (k Kind) String() string {
	switch k {
	case Breakout:
		return "BREAKOUT"
	case Reversal:
		return "REVERSAL"
	default:
		return "UNKNOWN"
	}
}

// EvaluateBreakout checks the breakout rules in order using the default
// thresholds
func EvaluateBreakout(ctx *Context, widthAtLow, volumeAboveYesterday bool) Decision {
	return DefaultThresholds().EvaluateBreakout(ctx, widthAtLow, volumeAboveYesterday)
}

// EvaluateReversal checks the reversal rules in order using the default thresholds
func EvaluateReversal(ctx *Context) Decision {
	return DefaultThresholds().EvaluateReversal(ctx)
}

// Evaluate tries breakout then reversal using the default thresholds
func Evaluate(ctx *Context) Decision {
	return DefaultThresholds().Evaluate(ctx)
}

// EvaluateBreakout returns the first failing breakout rule, or a pass
func (th Thresholds) EvaluateBreakout(ctx *Context, widthAtLow, volumeAboveYesterday bool) Decision {
	if ctx == nil {
		return Decision{Reason: ReasonRVOLFail}
	}
	switch {
	case ctx.RVOL <= th.RVOLMin:
		return Decision{Reason: ReasonRVOLFail}
	case ctx.ATRPercent <= th.ATRPercentMin:
		return Decision{Reason: ReasonATRFail}
	case ctx.Price <= ctx.BBUpper:
		return Decision{Reason: ReasonNotAboveUpper}
	case !widthAtLow:
		return Decision{Reason: ReasonWidthNotLow}
	case !volumeAboveYesterday:
		return Decision{Reason: ReasonVolumeNotHigher}
	}
	return Decision{
		ShouldEnter: true,
		Reason:      ReasonBreakoutPass,
		Kind:        Breakout,
		EntryPrice:  ctx.Price,
	}
}

// EvaluateReversal returns the first failing reversal rule, or a pass
func (th Thresholds) EvaluateReversal(ctx *Context) Decision {
	if ctx == nil {
		return Decision{Reason: ReasonRVOLFail}
	}
	switch {
	case ctx.RVOL <= th.RVOLMin:
		return Decision{Reason: ReasonRVOLFail}
	case ctx.ATRPercent <= th.ATRPercentMin:
		return Decision{Reason: ReasonATRFail}
	case ctx.RSI >= th.RSIMax:
		return Decision{Reason: fmt.Sprintf("RSI not < %g", th.RSIMax)}
	case ctx.Price > ctx.BBLower:
		return Decision{Reason: ReasonNotBelowLower}
	case ctx.EMAFast <= ctx.EMASlow:
		return Decision{Reason: ReasonTrendFail}
	}
	return Decision{
		ShouldEnter: true,
		Reason:      ReasonReversalPass,
		Kind:        Reversal,
		EntryPrice:  ctx.Price,
	}
}

// Evaluate gives breakout precedence. When both setups fail the reversal
// failure is reported
func (th Thresholds) Evaluate(ctx *Context) Decision {
	if ctx == nil {
		return Decision{Reason: ReasonRVOLFail}
	}
	if d := th.EvaluateBreakout(ctx, ctx.WidthAtLow, ctx.VolumeAboveYesterday); d.ShouldEnter {
		return d
	}
	return th.EvaluateReversal(ctx)
}
