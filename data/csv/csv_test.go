package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/volatilitytrader/kline"
)

const sample = `symbol,timestamp,open,high,low,close,volume
aapl,2024-01-03 14:30:00,101,102,100,101.5,2000
AAPL,2024-01-02T14:30:00Z,100,101,99,100.5,1000
MSFT,1704205800000,300,301,299,300.5,500
`

func TestRead(t *testing.T) {
	t.Parallel()
	bars, err := Read(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	require.Len(t, bars["AAPL"], 2)
	assert.Equal(t, time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), bars["AAPL"][0].Timestamp, "sorted")
	assert.Equal(t, 100.5, bars["AAPL"][0].Close)
	assert.Equal(t, 2000.0, bars["AAPL"][1].Volume)
	assert.Equal(t, time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), bars["MSFT"][0].Timestamp)
	require.NoError(t, kline.Validate(bars))
}

func TestReadColumnOrderAndBOM(t *testing.T) {
	t.Parallel()
	in := "\ufeffclose,volume,symbol,timestamp,open,high,low\n10,5,X,2024-01-02,9,11,8\n"
	bars, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, bars["X"], 1)
	b := bars["X"][0]
	assert.Equal(t, kline.Bar{Symbol: "X", Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 9, High: 11, Low: 8, Close: 10, Volume: 5}, b)
}

func TestReadErrors(t *testing.T) {
	t.Parallel()
	_, err := Read(strings.NewReader(""))
	require.ErrorIs(t, err, errEmptyFile)
	_, err = Read(strings.NewReader("symbol,timestamp,open,high,low,close\n"))
	require.ErrorIs(t, err, errMissingColumn)
	_, err = Read(strings.NewReader(strings.Join(Columns, ",") + "\n"))
	require.ErrorIs(t, err, errEmptyFile)
	_, err = Read(strings.NewReader(strings.Join(Columns, ",") + "\nX,2024-01-02,a,1,1,1,1\n"))
	require.ErrorContains(t, err, "line 2")
	_, err = Read(strings.NewReader(strings.Join(Columns, ",") + "\nX,never,1,1,1,1,1\n"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	bars, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, bars, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
