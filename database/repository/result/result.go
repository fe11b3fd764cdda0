// Package result persists the trades and daily records of backtest runs
package result

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/thrasher-corp/volatilitytrader/backtest"
	"github.com/thrasher-corp/volatilitytrader/database"
	"github.com/thrasher-corp/volatilitytrader/database/repository"
	"github.com/thrasher-corp/volatilitytrader/log"
	"github.com/thrasher-corp/volatilitytrader/signal"
)

// Migrate creates the run, trade and daily tables
func Migrate(ctx context.Context, db *database.Instance) error {
	return repository.Migrate(ctx, db, schema...)
}

// FromResult builds a run with a fresh id from a finished backtest
func FromResult(res *backtest.Result, symbols []string, created time.Time) (*Run, error) {
	if res == nil {
		return nil, errNilRun
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &Run{
		ID:          id,
		CreatedAt:   created.UTC(),
		Symbols:     symbols,
		FinalEquity: res.FinalEquity,
		FinalCash:   res.FinalCash,
		Trades:      res.Trades,
		Dailies:     res.Dailies,
	}, nil
}

// Save stores the run and all of its rows in one transaction
func Save(ctx context.Context, db *database.Instance, run *Run) error {
	if run == nil {
		return errNilRun
	}
	err := repository.InTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, db.Rebind(`INSERT INTO backtest_run (id, created_at, symbols, final_equity, final_cash) VALUES (?, ?, ?, ?, ?)`),
			run.ID.String(), run.CreatedAt.UnixMilli(), strings.Join(run.Symbols, ","), run.FinalEquity, run.FinalCash); err != nil {
			return err
		}
		for i := range run.Trades {
			t := &run.Trades[i]
			if _, err := tx.ExecContext(ctx, db.Rebind(`INSERT INTO backtest_trade (run_id, seq, symbol, kind, reason, quantity, entry_price, exit_price, pnl, adhered_to_plan, entry_ts, exit_ts, duration_bars, bars_in_drawdown) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
				run.ID.String(), i, t.Symbol, int(t.Kind), int(t.Reason), t.Quantity, t.EntryPrice, t.ExitPrice, t.PnL,
				t.AdheredToPlan, t.EntryTime.UnixMilli(), t.ExitTime.UnixMilli(), t.DurationBars, t.BarsInDrawdown); err != nil {
				return fmt.Errorf("trade %d: %w", i, err)
			}
		}
		for i := range run.Dailies {
			d := &run.Dailies[i]
			var day int64
			if !d.Date.IsZero() {
				day = d.Date.UnixMilli()
			}
			if _, err := tx.ExecContext(ctx, db.Rebind(`INSERT INTO backtest_daily (run_id, seq, day, pnl, trades, equity) VALUES (?, ?, ?, ?, ?, ?)`),
				run.ID.String(), i, day, d.PnL, d.Trades, d.Equity); err != nil {
				return fmt.Errorf("daily %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Infof(log.DatabaseMgr, "saved run %s with %d trades and %d days", run.ID, len(run.Trades), len(run.Dailies))
	return nil
}

// Load reads a run and its rows back in their original order
func Load(ctx context.Context, db *database.Instance, id uuid.UUID) (*Run, error) {
	con, err := db.GetSQL()
	if err != nil {
		return nil, err
	}
	run := &Run{ID: id}
	var created int64
	var symbols string
	err = con.QueryRowContext(ctx, db.Rebind(`SELECT created_at, symbols, final_equity, final_cash FROM backtest_run WHERE id = ?`), id.String()).
		Scan(&created, &symbols, &run.FinalEquity, &run.FinalCash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	run.CreatedAt = time.UnixMilli(created).UTC()
	if symbols != "" {
		run.Symbols = strings.Split(symbols, ",")
	}
	if run.Trades, err = loadTrades(ctx, db, con, id); err != nil {
		return nil, err
	}
	if run.Dailies, err = loadDailies(ctx, db, con, id); err != nil {
		return nil, err
	}
	return run, nil
}

func loadTrades(ctx context.Context, db *database.Instance, con *sql.DB, id uuid.UUID) ([]backtest.Trade, error) {
	rows, err := con.QueryContext(ctx, db.Rebind(`SELECT symbol, kind, reason, quantity, entry_price, exit_price, pnl, adhered_to_plan, entry_ts, exit_ts, duration_bars, bars_in_drawdown FROM backtest_trade WHERE run_id = ? ORDER BY seq`), id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []backtest.Trade
	for rows.Next() {
		var t backtest.Trade
		var kind, reason int
		var entry, exit int64
		if err = rows.Scan(&t.Symbol, &kind, &reason, &t.Quantity, &t.EntryPrice, &t.ExitPrice, &t.PnL,
			&t.AdheredToPlan, &entry, &exit, &t.DurationBars, &t.BarsInDrawdown); err != nil {
			return nil, err
		}
		t.Kind = signal.Kind(kind)
		t.Reason = backtest.ExitReason(reason)
		t.EntryTime = time.UnixMilli(entry).UTC()
		t.ExitTime = time.UnixMilli(exit).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func loadDailies(ctx context.Context, db *database.Instance, con *sql.DB, id uuid.UUID) ([]backtest.Daily, error) {
	rows, err := con.QueryContext(ctx, db.Rebind(`SELECT day, pnl, trades, equity FROM backtest_daily WHERE run_id = ? ORDER BY seq`), id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []backtest.Daily
	for rows.Next() {
		var d backtest.Daily
		var day int64
		if err = rows.Scan(&day, &d.PnL, &d.Trades, &d.Equity); err != nil {
			return nil, err
		}
		if day != 0 {
			d.Date = time.UnixMilli(day).UTC()
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
