package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayPeriod_HalfOpen(t *testing.T) {
	p := DayPeriod(time.Date(2026, 3, 10, 17, 45, 0, 0, time.UTC))

	assert.True(t, p.Contains(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2026, 3, 9, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, "2026-03-10", p.String())
}

func TestMonthPeriod_CoversWholeMonth(t *testing.T) {
	p := MonthPeriod(time.February, 2028)

	assert.True(t, p.Contains(time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC)))
	// 2028 is a leap year.
	assert.True(t, p.Contains(time.Date(2028, 2, 29, 12, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2028, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2028-02", p.String())
}

func TestPeriod_ContainsNormalizesZone(t *testing.T) {
	p := DayPeriod(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	// 21:00 on the 9th at UTC-5 is 02:00 on the 10th in UTC.
	est := time.FixedZone("UTC-5", -5*3600)
	assert.True(t, p.Contains(time.Date(2026, 3, 9, 21, 0, 0, 0, est)))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	c := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, c))
}

func TestApplyPercentAndComplement(t *testing.T) {
	base := MoneyFromInt(10000)

	assert.True(t, ApplyPercent(base, NewPercent(35)).Equal(MoneyFromInt(3500)))
	assert.True(t, ApplyPercent(base, NewPercent(0)).IsZero())
	assert.True(t, Complement(NewPercent(35)).Equal(NewPercent(65)))

	// The two shares always partition the base exactly.
	rate := NewPercent(33)
	sum := ApplyPercent(base, rate).Add(ApplyPercent(base, Complement(rate)))
	assert.True(t, sum.Equal(base))
}
