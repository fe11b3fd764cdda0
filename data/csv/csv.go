// Package csv loads bars from comma separated files with the header
// symbol,timestamp,open,high,low,close,volume
package csv

import (
	enccsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/thrasher-corp/volatilitytrader/common/convert"
	"github.com/thrasher-corp/volatilitytrader/kline"
	"github.com/thrasher-corp/volatilitytrader/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Columns lists the required header fields
var Columns = []string{"symbol", "timestamp", "open", "high", "low", "close", "volume"}

var (
	errMissingColumn = errors.New("missing column")
	errEmptyFile     = errors.New("no bars in file")
)

// Load reads every bar in the file at path
func Load(path string) (map[string][]kline.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	bars, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof(log.DataHistory, "loaded %d symbols from %s", len(bars), path)
	return bars, nil
}

// Read parses bars from r. Columns may appear in any order, a UTF-8 or UTF-16
// byte order mark is honoured. Each series is returned sorted by timestamp
func Read(r io.Reader) (map[string][]kline.Bar, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := enccsv.NewReader(decoded)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errEmptyFile
	}
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i := range header {
		index[strings.ToLower(strings.TrimSpace(header[i]))] = i
	}
	for _, c := range Columns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%w %q", errMissingColumn, c)
		}
	}

	resp := make(map[string][]kline.Bar)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		b, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		resp[b.Symbol] = append(resp[b.Symbol], b)
	}
	if len(resp) == 0 {
		return nil, errEmptyFile
	}
	for sym := range resp {
		series := resp[sym]
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Timestamp.Before(series[j].Timestamp)
		})
	}
	return resp, nil
}

func parseRow(row []string, index map[string]int) (kline.Bar, error) {
	var b kline.Bar
	b.Symbol = strings.ToUpper(strings.TrimSpace(row[index["symbol"]]))
	ts, err := convert.ParseTimestamp(row[index["timestamp"]])
	if err != nil {
		return b, err
	}
	b.Timestamp = ts
	for _, f := range []struct {
		column string
		dst    *float64
	}{
		{"open", &b.Open},
		{"high", &b.High},
		{"low", &b.Low},
		{"close", &b.Close},
		{"volume", &b.Volume},
	} {
		if *f.dst, err = convert.FloatFromString(row[index[f.column]]); err != nil {
			return b, fmt.Errorf("%s %w", f.column, err)
		}
	}
	return b, nil
}
