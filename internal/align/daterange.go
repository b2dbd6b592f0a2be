// Package align builds date intervals for events and findings, decides which
// of them overlap, and consolidates the labeled spans retrieved for every
// overlapping (event, finding) pair.
package align

import (
	"time"

	"github.com/ppiankov/befundlink/internal/model"
)

// DefaultClampMonths is how far a finding's interval may reach back from its
// latest date
const DefaultClampMonths = 4

// EventInterval returns (min, max) of the dates. No clamping is applied.
func EventInterval(dates model.DateSet) model.Interval {
	minDate, maxDate, ok := dates.Bounds()
	if !ok {
		return model.Interval{}
	}
	return model.Interval{Start: minDate, End: maxDate}
}

// FindingInterval returns the finding's interval using DefaultClampMonths
func FindingInterval(dates model.DateSet) model.Interval {
	return ClampedInterval(dates, DefaultClampMonths)
}

// ClampedInterval returns (min, max) of the dates with the start raised to
// max minus months calendar months when min lies further back. The latest
// date is always kept as the end.
func ClampedInterval(dates model.DateSet, months int) model.Interval {
	minDate, maxDate, ok := dates.Bounds()
	if !ok {
		return model.Interval{}
	}
	lower := SubtractMonths(maxDate, months)
	if minDate.Before(lower) {
		minDate = lower
	}
	return model.Interval{Start: minDate, End: maxDate}
}

// SubtractMonths moves d back by the given number of calendar months. A day
// that does not exist in the target month is clipped to that month's last day
// (2021-10-31 minus 4 months is 2021-06-30).
func SubtractMonths(d time.Time, months int) time.Time {
	year, month, day := d.Date()

	total := year*12 + int(month) - 1 - months
	targetYear := floorDiv(total, 12)
	targetMonth := time.Month(total - targetYear*12 + 1)

	if last := daysIn(targetYear, targetMonth); day > last {
		day = last
	}
	return time.Date(targetYear, targetMonth, day, 0, 0, 0, 0, d.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
