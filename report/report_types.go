package report

import (
	"errors"
	"time"
)

var errNilResult = errors.New("nil backtest result")

// Data is the serialisable form of a finished run
type Data struct {
	GeneratedAt   time.Time          `json:"generatedAt"`
	Symbols       []string           `json:"symbols"`
	Summary       map[string]any     `json:"summary"`
	Trades        []Trade            `json:"trades"`
	Dailies       []Daily            `json:"dailies"`
	OpenPositions []Position         `json:"openPositions"`
	LastTrade     map[string]string  `json:"lastTrade"`
	FinalEquity   string             `json:"finalEquity"`
	FinalCash     string             `json:"finalCash"`
	Slippage      map[string]float64 `json:"slippage"`
}

// Trade is a closed trade row
type Trade struct {
	Symbol        string    `json:"symbol"`
	Kind          string    `json:"kind"`
	Reason        string    `json:"reason"`
	Quantity      int64     `json:"quantity"`
	EntryPrice    string    `json:"entryPrice"`
	ExitPrice     string    `json:"exitPrice"`
	PnL           string    `json:"pnl"`
	AdheredToPlan bool      `json:"adheredToPlan"`
	EntryTime     time.Time `json:"entryTime"`
	ExitTime      time.Time `json:"exitTime"`
	DurationBars  int       `json:"durationBars"`
}

// Daily is one closed trading day
type Daily struct {
	Date   string `json:"date"`
	PnL    string `json:"pnl"`
	Trades int    `json:"trades"`
	Equity string `json:"equity"`
}

// Position is a holding still open at the end of the run
type Position struct {
	Symbol    string    `json:"symbol"`
	Quantity  int64     `json:"quantity"`
	AvgEntry  string    `json:"avgEntry"`
	Stop      string    `json:"stop"`
	Target    string    `json:"target"`
	LastPrice string    `json:"lastPrice"`
	EntryTime time.Time `json:"entryTime"`
}
