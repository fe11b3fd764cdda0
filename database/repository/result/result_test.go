package result

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/volatilitytrader/backtest"
	"github.com/thrasher-corp/volatilitytrader/database"
	sqlite "github.com/thrasher-corp/volatilitytrader/database/drivers/sqlite3"
	"github.com/thrasher-corp/volatilitytrader/signal"
)

var entry = time.Date(2023, 8, 9, 14, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *database.Instance {
	t.Helper()
	db, err := sqlite.Connect("", &database.Config{ConnectionDetails: database.ConnectionDetails{Database: sqlite.MemoryDatabase}})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.CloseConnection()) })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func testResult() *backtest.Result {
	return &backtest.Result{
		Trades: []backtest.Trade{
			{
				Symbol:         "TEST",
				Kind:           signal.Breakout,
				Reason:         backtest.ExitStop,
				Quantity:       90,
				EntryPrice:     decimal.RequireFromString("110.1100275"),
				ExitPrice:      decimal.RequireFromString("98.9505"),
				PnL:            decimal.RequireFromString("-1004.357475"),
				AdheredToPlan:  true,
				EntryTime:      entry,
				ExitTime:       entry.AddDate(0, 0, 1),
				DurationBars:   1,
				BarsInDrawdown: 1,
			},
			{
				Symbol:     "ABC",
				Kind:       signal.Reversal,
				Reason:     backtest.ExitForced,
				Quantity:   10,
				EntryPrice: decimal.NewFromInt(50),
				ExitPrice:  decimal.NewFromInt(51),
				PnL:        decimal.NewFromInt(10),
				EntryTime:  entry,
				ExitTime:   entry.Add(time.Hour),
			},
		},
		Dailies: []backtest.Daily{
			{Date: entry.Truncate(24 * time.Hour), PnL: decimal.NewFromInt(10), Trades: 1, Equity: decimal.NewFromInt(100010)},
			{},
		},
		FinalEquity: decimal.RequireFromString("99005.642525"),
		FinalCash:   decimal.RequireFromString("99005.642525"),
	}
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	run, err := FromResult(testResult(), []string{"TEST", "ABC"}, entry)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, run.ID)
	require.NoError(t, Save(ctx, db, run))

	got, err := Load(ctx, db, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, entry, got.CreatedAt)
	assert.Equal(t, []string{"TEST", "ABC"}, got.Symbols)
	assert.True(t, got.FinalEquity.Equal(run.FinalEquity))

	require.Len(t, got.Trades, 2)
	for i := range got.Trades {
		want, have := run.Trades[i], got.Trades[i]
		assert.Equal(t, want.Symbol, have.Symbol)
		assert.Equal(t, want.Kind, have.Kind)
		assert.Equal(t, want.Reason, have.Reason)
		assert.Equal(t, want.Quantity, have.Quantity)
		assert.Equal(t, want.AdheredToPlan, have.AdheredToPlan)
		assert.Equal(t, want.EntryTime, have.EntryTime)
		assert.Equal(t, want.ExitTime, have.ExitTime)
		assert.Equal(t, want.DurationBars, have.DurationBars)
		assert.True(t, want.PnL.Equal(have.PnL), have.PnL.String())
		assert.True(t, want.EntryPrice.Equal(have.EntryPrice))
		assert.True(t, want.ExitPrice.Equal(have.ExitPrice))
	}

	require.Len(t, got.Dailies, 2)
	assert.Equal(t, run.Dailies[0].Date, got.Dailies[0].Date)
	assert.Equal(t, 1, got.Dailies[0].Trades)
	assert.True(t, got.Dailies[0].Equity.Equal(decimal.NewFromInt(100010)))
	assert.True(t, got.Dailies[1].Date.IsZero(), "zero date survives")
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	_, err := Load(context.Background(), db, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestSaveErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	require.ErrorIs(t, Save(ctx, nil, nil), errNilRun)
	_, err := FromResult(nil, nil, entry)
	require.ErrorIs(t, err, errNilRun)

	run, err := FromResult(testResult(), nil, entry)
	require.NoError(t, err)
	require.ErrorIs(t, Save(ctx, nil, run), database.ErrDatabaseSupportDisabled)

	db := newTestDB(t)
	require.NoError(t, Save(ctx, db, run))
	require.Error(t, Save(ctx, db, run), "duplicate run id")
	got, err := Load(ctx, db, run.ID)
	require.NoError(t, err)
	assert.Len(t, got.Trades, 2, "failed save rolled back")
	assert.Empty(t, got.Symbols)
}
