package types

import (
	"time"
)

// PeriodKind distinguishes daily from monthly periods.
type PeriodKind string

const (
	PeriodDaily   PeriodKind = "daily"
	PeriodMonthly PeriodKind = "monthly"
)

// Period is a half-open time range [From, To) covering exactly one calendar
// day or one calendar month, always in UTC. Settlements and reception closes
// are keyed by it.
type Period struct {
	Kind PeriodKind
	From time.Time
	To   time.Time
}

// DayPeriod builds the period for a single calendar date.
func DayPeriod(date time.Time) Period {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return Period{
		Kind: PeriodDaily,
		From: from,
		To:   from.AddDate(0, 0, 1),
	}
}

// MonthPeriod builds the period for a full calendar month.
func MonthPeriod(month time.Month, year int) Period {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Kind: PeriodMonthly,
		From: from,
		To:   from.AddDate(0, 1, 0),
	}
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(p.From) && t.Before(p.To)
}

// SameDay reports whether two instants fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// String renders the period for error messages and logs.
func (p Period) String() string {
	if p.Kind == PeriodMonthly {
		return p.From.Format("2006-01")
	}
	return p.From.Format("2006-01-02")
}
