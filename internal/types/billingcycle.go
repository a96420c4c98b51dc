package types

import (
	"time"

	ierr "github.com/tiffinly/tiffinly/internal/errors"
)

// BillingCycle is the span of one invoice: [Start, End] inclusive, with
// RenewalDate being the day the next cycle's invoice is generated.
// Invariant: Start <= End < RenewalDate.
type BillingCycle struct {
	Start       time.Time `json:"cycle_start"`
	End         time.Time `json:"cycle_end"`
	RenewalDate time.Time `json:"renewal_date"`
}

// DateOnly truncates a time to UTC midnight. All cycle math operates on
// calendar dates, never wall-clock times.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two times fall on the same calendar date in UTC.
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// NextMonday returns the Monday strictly after the given date. A Monday
// input yields the Monday one week later; a Sunday input yields the
// immediately following day.
func NextMonday(d time.Time) time.Time {
	d = DateOnly(d)
	days := (8 - int(d.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return d.AddDate(0, 0, days)
}

// NextMonthStart returns the first day of the month after the given
// date. A day-1 input yields the first of the following month, never
// the input itself.
func NextMonthStart(d time.Time) time.Time {
	y, m, _ := DateOnly(d).Date()
	return time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
}

// CycleBoundaries computes the next cycle strictly after startDate.
//
//	weekly:  Start = next Monday, End = following Sunday, RenewalDate = Monday after End
//	monthly: Start = first of next month, End = last day of that month, RenewalDate = first of the month after
func CycleBoundaries(period BillingPeriod, startDate time.Time) (BillingCycle, error) {
	if err := period.Validate(); err != nil {
		return BillingCycle{}, err
	}

	switch period {
	case BillingPeriodWeekly:
		start := NextMonday(startDate)
		end := start.AddDate(0, 0, 6)
		return BillingCycle{
			Start:       start,
			End:         end,
			RenewalDate: end.AddDate(0, 0, 1),
		}, nil
	case BillingPeriodMonthly:
		start := NextMonthStart(startDate)
		// First of next month minus one day is leap-year aware.
		end := start.AddDate(0, 1, -1)
		return BillingCycle{
			Start:       start,
			End:         end,
			RenewalDate: start.AddDate(0, 1, 0),
		}, nil
	}

	return BillingCycle{}, ierr.NewErrorf("unhandled billing period: %s", period).
		Mark(ierr.ErrInternal)
}

// NextCycleFrom computes the cycle that begins ON the renewal date. The
// pure boundary functions never return their input date, so the renewal
// job anchors from the day before: for a Monday renewal the new weekly
// cycle starts that same Monday, and for a day-1 renewal the new
// monthly cycle starts that same day.
func NextCycleFrom(period BillingPeriod, renewalDate time.Time) (BillingCycle, error) {
	return CycleBoundaries(period, DateOnly(renewalDate).AddDate(0, 0, -1))
}

// DatesInCycle returns every date within the cycle span whose weekday is
// in the scheduled set, in ascending order.
func DatesInCycle(cycle BillingCycle, weekdays Weekdays) []time.Time {
	var dates []time.Time
	for d := cycle.Start; !d.After(cycle.End); d = d.AddDate(0, 0, 1) {
		if weekdays.Contains(d.Weekday()) {
			dates = append(dates, d)
		}
	}
	return dates
}
