package kline

import (
	"fmt"
	"sort"
	"time"
)

// Validate checks every symbol series is strictly ascending with sane bars
func Validate(bars map[string][]Bar) error {
	for sym, series := range bars {
		for i := range series {
			b := &series[i]
			if b.Symbol != "" && b.Symbol != sym {
				return fmt.Errorf("%s index %d %w: %s", sym, i, ErrSymbolMismatch, b.Symbol)
			}
			if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 || b.Volume < 0 || b.High < b.Low {
				return fmt.Errorf("%s %v %w", sym, b.Timestamp, ErrInvalidBar)
			}
			if i == 0 {
				continue
			}
			prev := series[i-1].Timestamp
			switch {
			case b.Timestamp.Equal(prev):
				return fmt.Errorf("%s %v %w", sym, b.Timestamp, ErrDuplicateTimestamp)
			case b.Timestamp.Before(prev):
				return fmt.Errorf("%s %v %w", sym, b.Timestamp, ErrUnsortedBars)
			}
		}
	}
	return nil
}

// Timeline returns every distinct bar timestamp across all symbols, ascending
func Timeline(bars map[string][]Bar) []time.Time {
	seen := make(map[int64]struct{})
	var resp []time.Time
	for _, series := range bars {
		for i := range series {
			ts := series[i].Timestamp.UTC()
			if _, ok := seen[ts.UnixNano()]; ok {
				continue
			}
			seen[ts.UnixNano()] = struct{}{}
			resp = append(resp, ts)
		}
	}
	sort.Slice(resp, func(i, j int) bool {
		return resp[i].Before(resp[j])
	})
	return resp
}

// Symbols returns the keys of bars sorted
func Symbols(bars map[string][]Bar) []string {
	resp := make([]string, 0, len(bars))
	for sym := range bars {
		resp = append(resp, sym)
	}
	sort.Strings(resp)
	return resp
}

// ToSeries splits bars into float columns
func ToSeries(bars []Bar) Series {
	s := Series{
		Open:   make([]float64, len(bars)),
		High:   make([]float64, len(bars)),
		Low:    make([]float64, len(bars)),
		Close:  make([]float64, len(bars)),
		Volume: make([]float64, len(bars)),
	}
	for i := range bars {
		s.Open[i] = bars[i].Open
		s.High[i] = bars[i].High
		s.Low[i] = bars[i].Low
		s.Close[i] = bars[i].Close
		s.Volume[i] = bars[i].Volume
	}
	return s
}

// IndexAt returns the index of the bar stamped exactly at ts, and the number
// of bars at or before ts. bars must be sorted
func IndexAt(bars []Bar, ts time.Time) (idx, count int, exact bool) {
	count = sort.Search(len(bars), func(i int) bool {
		return bars[i].Timestamp.After(ts)
	})
	if count > 0 && bars[count-1].Timestamp.Equal(ts) {
		return count - 1, count, true
	}
	return -1, count, false
}
