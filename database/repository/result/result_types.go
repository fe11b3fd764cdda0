package result

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/volatilitytrader/backtest"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS backtest_run (
	id TEXT PRIMARY KEY,
	created_at BIGINT NOT NULL,
	symbols TEXT NOT NULL,
	final_equity TEXT NOT NULL,
	final_cash TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS backtest_trade (
	run_id TEXT NOT NULL REFERENCES backtest_run(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	kind INTEGER NOT NULL,
	reason INTEGER NOT NULL,
	quantity BIGINT NOT NULL,
	entry_price TEXT NOT NULL,
	exit_price TEXT NOT NULL,
	pnl TEXT NOT NULL,
	adhered_to_plan BOOLEAN NOT NULL,
	entry_ts BIGINT NOT NULL,
	exit_ts BIGINT NOT NULL,
	duration_bars INTEGER NOT NULL,
	bars_in_drawdown INTEGER NOT NULL,
	PRIMARY KEY (run_id, seq)
)`,
	`CREATE TABLE IF NOT EXISTS backtest_daily (
	run_id TEXT NOT NULL REFERENCES backtest_run(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	day BIGINT NOT NULL,
	pnl TEXT NOT NULL,
	trades INTEGER NOT NULL,
	equity TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
)`,
}

var (
	errNilRun = errors.New("nil run")
	// ErrRunNotFound is returned when no run matches the id
	ErrRunNotFound = errors.New("backtest run not found")
)

// Run is a persisted backtest result
type Run struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	Symbols     []string
	FinalEquity decimal.Decimal
	FinalCash   decimal.Decimal
	Trades      []backtest.Trade
	Dailies     []backtest.Daily
}
