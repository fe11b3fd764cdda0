// Package candle caches bars in the configured database
package candle

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/thrasher-corp/volatilitytrader/database"
	"github.com/thrasher-corp/volatilitytrader/database/repository"
	"github.com/thrasher-corp/volatilitytrader/kline"
	"github.com/thrasher-corp/volatilitytrader/log"
)

// Migrate creates the candle table
func Migrate(ctx context.Context, db *database.Instance) error {
	return repository.Migrate(ctx, db, schema)
}

// Insert upserts bars keyed by symbol, timeframe and timestamp
func Insert(ctx context.Context, db *database.Instance, timeframe string, bars []kline.Bar) (uint64, error) {
	if len(bars) < 1 {
		return 0, errNoCandleData
	}
	if timeframe == "" {
		return 0, errInvalidInput
	}
	var totalInserted uint64
	err := repository.InTx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, db.Rebind(upsert))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i := range bars {
			b := &bars[i]
			if _, err = stmt.ExecContext(ctx,
				strings.ToUpper(b.Symbol), timeframe, b.Timestamp.UnixMilli(),
				b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
				return fmt.Errorf("%s %v: %w", b.Symbol, b.Timestamp, err)
			}
			totalInserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if db.Verbose {
		log.Debugf(log.DatabaseMgr, "inserted %d %s candles", totalInserted, timeframe)
	}
	return totalInserted, nil
}

// Series returns the cached bars for symbol between start and end inclusive
func Series(ctx context.Context, db *database.Instance, symbol, timeframe string, start, end time.Time) ([]kline.Bar, error) {
	if symbol == "" || timeframe == "" || start.IsZero() || end.IsZero() {
		return nil, errInvalidInput
	}
	con, err := db.GetSQL()
	if err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(symbol)
	rows, err := con.QueryContext(ctx, db.Rebind(selectRange),
		symbol, timeframe, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []kline.Bar
	for rows.Next() {
		b := kline.Bar{Symbol: symbol}
		var ms int64
		if err = rows.Scan(&ms, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		b.Timestamp = time.UnixMilli(ms).UTC()
		out = append(out, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(out) < 1 {
		return nil, fmt.Errorf("%w: %s %s %v to %v", ErrNoCandleDataFound, symbol, timeframe, start, end)
	}
	return out, nil
}
