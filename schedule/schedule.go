// Package schedule gates entries and forced exits by wall clock time in a
// named timezone
package schedule

import (
	"fmt"
	"time"

	// embeds the zoneinfo database for hosts without one
	_ "time/tzdata"

	"github.com/thrasher-corp/volatilitytrader/config"
)

// Schedule is a parsed trading schedule. A disabled schedule allows entries
// at every bar and never forces a close
type Schedule struct {
	enabled    bool
	loc        *time.Location
	scanTimes  []time.Duration
	tolerance  time.Duration
	noNewAfter time.Duration
	closeAllBy time.Duration
}

// New parses the schedule section of the run configuration
func New(cfg config.ScheduleConfig) (*Schedule, error) {
	s := &Schedule{enabled: cfg.Enabled, tolerance: cfg.ScanTolerance}
	if !cfg.Enabled {
		return s, nil
	}
	var err error
	if s.loc, err = time.LoadLocation(cfg.Timezone); err != nil {
		return nil, err
	}
	if s.noNewAfter, err = clock(cfg.NoNewAfter); err != nil {
		return nil, err
	}
	if s.closeAllBy, err = clock(cfg.CloseAllBy); err != nil {
		return nil, err
	}
	for i := range cfg.ScanTimes {
		c, err := clock(cfg.ScanTimes[i])
		if err != nil {
			return nil, err
		}
		s.scanTimes = append(s.scanTimes, c)
	}
	return s, nil
}

func clock(v string) (time.Duration, error) {
	t, err := time.Parse(config.ClockFormat, v)
	if err != nil {
		return 0, fmt.Errorf("schedule clock %q: %w", v, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Enabled reports whether the schedule constrains the run
func (s *Schedule) Enabled() bool {
	return s != nil && s.enabled
}

// sinceMidnight returns the local wall clock offset of t
func (s *Schedule) sinceMidnight(t time.Time) time.Duration {
	l := t.In(s.loc)
	return time.Duration(l.Hour())*time.Hour +
		time.Duration(l.Minute())*time.Minute +
		time.Duration(l.Second())*time.Second
}

// IsScanTime reports whether t is within tolerance of any scan time
func (s *Schedule) IsScanTime(t time.Time) bool {
	if !s.Enabled() {
		return true
	}
	now := s.sinceMidnight(t)
	for _, st := range s.scanTimes {
		d := now - st
		if d < 0 {
			d = -d
		}
		if d <= s.tolerance {
			return true
		}
	}
	return false
}

// WithinEntryWindow reports whether t is before the no new entries time
func (s *Schedule) WithinEntryWindow(t time.Time) bool {
	if !s.Enabled() {
		return true
	}
	return s.sinceMidnight(t) < s.noNewAfter
}

// CanEnter reports whether new entries are allowed at t
func (s *Schedule) CanEnter(t time.Time) bool {
	return s.IsScanTime(t) && s.WithinEntryWindow(t)
}

// CloseAll reports whether every position must be flattened at t
func (s *Schedule) CloseAll(t time.Time) bool {
	if !s.Enabled() {
		return false
	}
	return s.sinceMidnight(t) >= s.closeAllBy
}
