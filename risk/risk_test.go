package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/volatilitytrader/account"
	"github.com/thrasher-corp/volatilitytrader/config"
	"github.com/thrasher-corp/volatilitytrader/signal"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestStopLoss(t *testing.T) {
	t.Parallel()
	s, err := StopLoss(signal.Breakout, d(110), d(5.5))
	require.NoError(t, err)
	assert.True(t, s.Equal(d(99)), s.String())

	s, err = StopLoss(signal.Reversal, d(100), d(2))
	require.NoError(t, err)
	assert.True(t, s.Equal(d(97)), s.String())

	_, err = StopLoss(signal.Unknown, d(100), d(2))
	require.ErrorIs(t, err, ErrUnknownSignalKind)
	_, err = StopLoss(signal.Kind(9), d(100), d(2))
	require.ErrorIs(t, err, ErrUnknownSignalKind)
}

func TestTakeProfit(t *testing.T) {
	t.Parallel()
	tp, err := TakeProfit(signal.Breakout, d(110), d(99))
	require.NoError(t, err)
	assert.True(t, tp.Equal(d(143)), tp.String())

	tp, err = TakeProfit(signal.Reversal, d(100), d(97))
	require.NoError(t, err)
	assert.True(t, tp.Equal(d(107.5)), tp.String())

	tp, err = TakeProfit(signal.Breakout, d(100), d(100))
	require.NoError(t, err)
	assert.True(t, tp.Equal(d(100)), "zero risk returns entry")

	_, err = TakeProfit(signal.Unknown, d(100), d(99))
	require.ErrorIs(t, err, ErrUnknownSignalKind)
}

func TestShares(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(1000), Shares(d(100000), d(50), d(49), d(0.01)))
	assert.Equal(t, int64(1000), Shares(d(100000), d(49), d(50), d(0.01)))
	assert.Equal(t, int64(90), Shares(d(100000), d(110), d(99), d(0.01)))
	assert.Zero(t, Shares(d(100000), d(50), d(50), d(0.01)))
	assert.Zero(t, Shares(d(-100000), d(50), d(49), d(0.01)))
}

func TestSize(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	s := NewSizer(&cfg)

	_, err := s.Size(nil)
	require.Error(t, err)

	p, err := s.Size(&Request{
		Kind:   signal.Breakout,
		Entry:  d(110),
		ATR:    d(5.5),
		Equity: d(100000),
		Cash:   d(100000),
		Ask:    d(110.055),
		Last:   d(110),
	})
	require.NoError(t, err)
	assert.True(t, p.Stop.Equal(d(99)))
	assert.True(t, p.Target.Equal(d(143)))
	assert.Equal(t, int64(90), p.RiskQuantity)
	assert.Equal(t, int64(136), p.ExposureCap)
	assert.Equal(t, int64(90), p.Quantity)

	p, err = s.Size(&Request{
		Kind:   signal.Breakout,
		Entry:  d(50),
		ATR:    d(0.5),
		Equity: d(100000),
		Cash:   d(2000),
		Ask:    d(50),
		Last:   d(50),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), p.RiskQuantity)
	assert.Equal(t, int64(39), p.CashCap, "cash over slipped ask")
	assert.Equal(t, int64(39), p.Quantity)

	_, err = s.Size(&Request{Kind: signal.Breakout, Entry: d(50), ATR: d(1), Equity: d(100000), Cash: d(100000)})
	require.ErrorIs(t, err, account.ErrNoPrice)

	p, err = s.Size(&Request{Kind: signal.Breakout, Entry: d(50), ATR: d(0), Equity: d(100000)})
	require.NoError(t, err)
	assert.Zero(t, p.Quantity)

	_, err = s.Size(&Request{Kind: signal.Unknown, Entry: d(50), ATR: d(1)})
	require.ErrorIs(t, err, ErrUnknownSignalKind)
}
