package trade

import (
	"fmt"
	"time"

	"plutus/pkg/errors"
)

// ViewMode selects the reporting window granularity
type ViewMode string

const (
	ViewMonthly ViewMode = "monthly"
	ViewYearly  ViewMode = "yearly"
)

// Valid checks if the view mode is valid
func (m ViewMode) Valid() bool {
	return m == ViewMonthly || m == ViewYearly
}

// String returns string representation
func (m ViewMode) String() string {
	return string(m)
}

// Period is a reporting window selected by the user: one calendar month
// or one calendar year. Month is ignored in yearly mode.
type Period struct {
	Mode  ViewMode
	Year  int
	Month time.Month
}

// Validate checks the period is well formed
func (p Period) Validate() error {
	if !p.Mode.Valid() {
		return errors.Wrapf(errors.ErrInvalidPeriod, "unknown view mode %q", p.Mode)
	}
	if p.Year < 2000 || p.Year > 2200 {
		return errors.Wrapf(errors.ErrInvalidPeriod, "year %d out of range", p.Year)
	}
	if p.Mode == ViewMonthly && (p.Month < time.January || p.Month > time.December) {
		return errors.Wrapf(errors.ErrInvalidPeriod, "month %d out of range", p.Month)
	}
	return nil
}

// Range returns the inclusive [start, end] window the period covers, in UTC.
// Monthly: first through last instant of the month.
// Yearly: Jan 1 through Dec 31 of the year.
func (p Period) Range() (time.Time, time.Time) {
	var start time.Time
	switch p.Mode {
	case ViewMonthly:
		start = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	default:
		start = time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	}
}

// Label returns the human-readable period title used in exports,
// e.g. "July 2025" or "2025".
func (p Period) Label() string {
	if p.Mode == ViewMonthly {
		return fmt.Sprintf("%s %d", p.Month.String(), p.Year)
	}
	return fmt.Sprintf("%d", p.Year)
}

// CurrentMonth returns the monthly period containing now.
func CurrentMonth(now time.Time) Period {
	now = now.UTC()
	return Period{Mode: ViewMonthly, Year: now.Year(), Month: now.Month()}
}

// FilterAll disables filtering on a dimension
const FilterAll = "all"

// Filter narrows the fetched record set. Empty or "all" values disable
// the corresponding dimension.
type Filter struct {
	Exchange    string
	TradingPair string
	Strategy    string
}

// HasExchange reports whether the exchange dimension is active
func (f Filter) HasExchange() bool {
	return f.Exchange != "" && f.Exchange != FilterAll
}

// HasTradingPair reports whether the trading pair dimension is active
func (f Filter) HasTradingPair() bool {
	return f.TradingPair != "" && f.TradingPair != FilterAll
}

// HasStrategy reports whether the strategy dimension is active
func (f Filter) HasStrategy() bool {
	return f.Strategy != "" && f.Strategy != FilterAll
}
