package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextMonday(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{"monday returns one week later", date(2024, 1, 15), date(2024, 1, 22)},
		{"sunday returns next day", date(2024, 1, 14), date(2024, 1, 15)},
		{"wednesday returns following monday", date(2024, 1, 10), date(2024, 1, 15)},
		{"saturday returns following monday", date(2024, 1, 13), date(2024, 1, 15)},
		{"month rollover", date(2024, 1, 30), date(2024, 2, 5)},
		{"year rollover", date(2024, 12, 31), date(2025, 1, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextMonday(tt.input))
		})
	}
}

func TestNextMondayProperties(t *testing.T) {
	// Over a full year: result is always a Monday and always strictly
	// after the input.
	d := date(2024, 1, 1)
	for i := 0; i < 366; i++ {
		got := NextMonday(d)
		assert.Equal(t, time.Monday, got.Weekday(), "input %s", d)
		assert.True(t, got.After(d), "input %s", d)
		assert.LessOrEqual(t, int(got.Sub(d).Hours()/24), 7, "input %s", d)
		d = d.AddDate(0, 0, 1)
	}
}

func TestNextMonthStart(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{"mid month", date(2024, 1, 15), date(2024, 2, 1)},
		{"first of month returns next month", date(2024, 3, 1), date(2024, 4, 1)},
		{"last of month", date(2024, 2, 29), date(2024, 3, 1)},
		{"december rolls into next year", date(2024, 12, 10), date(2025, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextMonthStart(tt.input))
		})
	}
}

func TestCycleBoundariesWeekly(t *testing.T) {
	cycle, err := CycleBoundaries(BillingPeriodWeekly, date(2024, 1, 10))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 15), cycle.Start)
	assert.Equal(t, date(2024, 1, 21), cycle.End)
	assert.Equal(t, date(2024, 1, 22), cycle.RenewalDate)
}

func TestCycleBoundariesMonthly(t *testing.T) {
	// 2024 is a leap year.
	cycle, err := CycleBoundaries(BillingPeriodMonthly, date(2024, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 1), cycle.Start)
	assert.Equal(t, date(2024, 2, 29), cycle.End)
	assert.Equal(t, date(2024, 3, 1), cycle.RenewalDate)

	// Non-leap February.
	cycle, err = CycleBoundaries(BillingPeriodMonthly, date(2023, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, date(2023, 2, 28), cycle.End)
}

func TestCycleBoundariesMonthlyAllMonths(t *testing.T) {
	// Cycle end is always the true last day of its month.
	for m := time.January; m <= time.December; m++ {
		cycle, err := CycleBoundaries(BillingPeriodMonthly, date(2024, m, 10))
		require.NoError(t, err)
		assert.Equal(t, 1, cycle.Start.Day())
		assert.Equal(t, cycle.Start.AddDate(0, 1, -1), cycle.End)
		assert.Equal(t, cycle.End.AddDate(0, 0, 1), cycle.RenewalDate)
		assert.True(t, cycle.Start.Before(cycle.RenewalDate))
		assert.False(t, cycle.Start.After(cycle.End))
	}
}

func TestCycleBoundariesInvalidPeriod(t *testing.T) {
	_, err := CycleBoundaries(BillingPeriod("daily"), date(2024, 1, 1))
	assert.Error(t, err)
}

func TestNextCycleFrom(t *testing.T) {
	// A weekly cycle renewing on a Monday starts on that same Monday.
	cycle, err := NextCycleFrom(BillingPeriodWeekly, date(2024, 1, 22))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 22), cycle.Start)
	assert.Equal(t, date(2024, 1, 28), cycle.End)
	assert.Equal(t, date(2024, 1, 29), cycle.RenewalDate)

	// A monthly cycle renewing on the 1st starts on that same day.
	cycle, err = NextCycleFrom(BillingPeriodMonthly, date(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 1), cycle.Start)
	assert.Equal(t, date(2024, 3, 31), cycle.End)
	assert.Equal(t, date(2024, 4, 1), cycle.RenewalDate)
}

func TestDatesInCycle(t *testing.T) {
	cycle := BillingCycle{
		Start: date(2024, 1, 15),
		End:   date(2024, 1, 21),
	}
	dates := DatesInCycle(cycle, Weekdays{time.Monday, time.Wednesday, time.Friday})
	require.Len(t, dates, 3)
	assert.Equal(t, date(2024, 1, 15), dates[0])
	assert.Equal(t, date(2024, 1, 17), dates[1])
	assert.Equal(t, date(2024, 1, 19), dates[2])
}
