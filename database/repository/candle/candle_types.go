package candle

import "errors"

const schema = `CREATE TABLE IF NOT EXISTS candle (
	symbol TEXT NOT NULL,
	timeframe TEXT NOT NULL,
	ts BIGINT NOT NULL,
	open DOUBLE PRECISION NOT NULL,
	high DOUBLE PRECISION NOT NULL,
	low DOUBLE PRECISION NOT NULL,
	close DOUBLE PRECISION NOT NULL,
	volume DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (symbol, timeframe, ts)
)`

const upsert = `INSERT INTO candle (symbol, timeframe, ts, open, high, low, close, volume)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (symbol, timeframe, ts) DO UPDATE SET
	open = excluded.open, high = excluded.high, low = excluded.low,
	close = excluded.close, volume = excluded.volume`

const selectRange = `SELECT ts, open, high, low, close, volume FROM candle
WHERE symbol = ? AND timeframe = ? AND ts BETWEEN ? AND ?
ORDER BY ts`

var (
	errInvalidInput = errors.New("symbol, timeframe, start & end cannot be empty")
	errNoCandleData = errors.New("no candle data provided")
	// ErrNoCandleDataFound returns when no candle data is found
	ErrNoCandleDataFound = errors.New("no candle data found")
)
