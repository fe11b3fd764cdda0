package convert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/thrasher-corp/volatilitytrader/common"
)

var errUnparsableTimestamp = errors.New("unparsable timestamp")

var timestampLayouts = []string{
	time.RFC3339Nano,
	common.SimpleTimeFormat,
	common.DateFormat,
}

// UnixMillisToTime returns the UTC time for a unix millisecond timestamp
func UnixMillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// FloatFromString parses a trimmed decimal string
func FloatFromString(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("could not convert value %q: %w", s, err)
	}
	return f, nil
}

// ParseTimestamp accepts RFC3339, "2006-01-02 15:04:05", "2006-01-02" or an
// integer unix millisecond value. Times without a zone are read as UTC
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return UnixMillisToTime(ms), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errUnparsableTimestamp, s)
}
