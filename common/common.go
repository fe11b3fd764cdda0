package common

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// SimpleTimeFormat a common, but non-implemented time format in golang
	SimpleTimeFormat = "2006-01-02 15:04:05"
	// DateFormat is the day granularity format used for ranges and daily records
	DateFormat = "2006-01-02"
	// BasisPoints is the number of basis points in one whole unit
	BasisPoints = 10000
)

var (
	// ErrNilArguments is a common error response to highlight that nils were passed in
	// when they should not have been
	ErrNilArguments = errors.New("received nil argument(s)")
	// ErrDateUnset is an error for start end check calculations
	ErrDateUnset = errors.New("date unset")
	// ErrStartAfterEnd is returned when the start date is after the end date
	ErrStartAfterEnd = errors.New("start date after end date")
	// ErrStartEqualsEnd is returned when start and end are the same
	ErrStartEqualsEnd = errors.New("start date equals end date")
	// ErrNoSymbols is returned when an empty symbol list is supplied
	ErrNoSymbols = errors.New("no symbols supplied")
)

// StartEndTimeCheck provides some basic checks which occur
// frequently in the codebase
func StartEndTimeCheck(start, end time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("start %w", ErrDateUnset)
	}
	if end.IsZero() {
		return fmt.Errorf("end %w", ErrDateUnset)
	}
	if start.After(end) {
		return ErrStartAfterEnd
	}
	if start.Equal(end) {
		return ErrStartEqualsEnd
	}
	return nil
}

// SplitSymbols splits a comma separated symbol list, trimming, upper casing
// and dropping empty and duplicate entries while keeping input order
func SplitSymbols(in string) ([]string, error) {
	parts := strings.Split(in, ",")
	seen := make(map[string]struct{}, len(parts))
	resp := make([]string, 0, len(parts))
	for x := range parts {
		s := strings.ToUpper(strings.TrimSpace(parts[x]))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		resp = append(resp, s)
	}
	if len(resp) == 0 {
		return nil, ErrNoSymbols
	}
	return resp, nil
}
