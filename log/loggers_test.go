package log

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLevel(t *testing.T) {
	t.Parallel()
	l := splitLevel("INFO|debug|WARN")
	assert.True(t, l.Info)
	assert.True(t, l.Debug)
	assert.True(t, l.Warn)
	assert.False(t, l.Error)
	assert.Equal(t, Levels{}, splitLevel(""))
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) - 1, nil }

func TestOutputs(t *testing.T) {
	t.Parallel()
	var console, file bytes.Buffer
	out := newOutputs()
	require.NoError(t, out.attach(&console))
	require.NoError(t, out.attach(&file))
	require.ErrorIs(t, out.attach(&console), errDuplicateOutput)

	n, err := out.Write([]byte("run started"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, "run started", console.String())
	assert.Equal(t, "run started", file.String())

	require.NoError(t, out.attach(shortWriter{}))
	_, err = out.Write([]byte("x"))
	require.ErrorIs(t, err, io.ErrShortWrite)
}

func TestGetWriters(t *testing.T) {
	t.Parallel()
	_, err := getWriters(nil)
	require.ErrorIs(t, err, errSubloggerConfigIsNil)
	_, err = getWriters(&SubLoggerConfig{Output: "console|stderr"})
	require.NoError(t, err)
	_, err = getWriters(&SubLoggerConfig{Output: "carrier pigeon"})
	require.ErrorIs(t, err, errUnhandledOutputWriter)
}

// TestStaging mutates package state so it does not run in parallel
func TestStaging(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "INFO|ERROR")
	t.Cleanup(func() {
		require.NoError(t, SetupGlobalLogger(GenDefaultSettings()))
	})

	Infof(BackTester, "opened %s", "XYZ")
	Debugf(BackTester, "hidden %d", 1)
	Errorln(Execution, "no", "liquidity")
	Warn(Risk, "hidden too")

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "BACKTESTER | opened XYZ")
	assert.Contains(t, out, "EXECUTION | noliquidity")
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, 2, strings.Count(out, "\n"))

	Infof(nil, "nil sub logger must not panic")
}

func TestSetupGlobalLogger(t *testing.T) {
	cfg := GenDefaultSettings()
	cfg.SubLoggers = []SubLoggerConfig{{Name: "risk", Level: "DEBUG"}}
	require.NoError(t, SetupGlobalLogger(cfg))
	t.Cleanup(func() {
		require.NoError(t, SetupGlobalLogger(GenDefaultSettings()))
	})
	assert.True(t, Risk.levels.Debug)
	assert.False(t, Risk.levels.Info)
	assert.True(t, BackTester.levels.Info)

	cfg.SubLoggers = []SubLoggerConfig{{Name: "nope"}}
	require.ErrorIs(t, SetupGlobalLogger(cfg), errSubLoggerNotFound)

	cfg = GenDefaultSettings()
	cfg.Output = "file"
	require.ErrorIs(t, SetupGlobalLogger(cfg), errFileNameNotSet)
}
