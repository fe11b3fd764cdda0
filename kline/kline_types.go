package kline

import (
	"errors"
	"time"
)

var (
	// ErrUnsortedBars is returned when a series is not strictly ascending by timestamp
	ErrUnsortedBars = errors.New("bars not sorted by timestamp")
	// ErrDuplicateTimestamp is returned when a series holds two bars at the same timestamp
	ErrDuplicateTimestamp = errors.New("duplicate bar timestamp")
	// ErrSymbolMismatch is returned when a bar is keyed under another symbol
	ErrSymbolMismatch = errors.New("bar symbol does not match series")
	// ErrInvalidBar is returned for negative prices or volume, or high below low
	ErrInvalidBar = errors.New("invalid bar")
)

// Bar holds one OHLCV candle. Timestamps are UTC with whole second precision
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Series holds the parallel float columns of a symbol's bars
type Series struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}
